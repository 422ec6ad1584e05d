package sources

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/jturner/defence-radar/internal/curation"
)

// maxDetailEnrichments bounds how many detail pages one run will fetch for
// records the listing page gave no deadline for.
const maxDetailEnrichments = 20

// HTMLListingConnector crawls tender listing pages with per-source CSS
// selectors. Many defence sources (DASA calls, NSPA bidding tables, prime
// supplier pages) publish nothing machine-readable, so this is the fallback
// strategy for all of them.
type HTMLListingConnector struct {
	cfg     SourceConfig
	fetcher Fetcher
}

func NewHTMLListingConnector(cfg SourceConfig, fetcher Fetcher) *HTMLListingConnector {
	return &HTMLListingConnector{cfg: cfg, fetcher: fetcher}
}

func (c *HTMLListingConnector) Name() string                    { return c.cfg.ID }
func (c *HTMLListingConnector) SourceType() curation.SourceType { return c.cfg.SourceType }

func (c *HTMLListingConnector) Fetch(ctx context.Context) ([]curation.RawCandidate, error) {
	sel := c.cfg.Selectors
	if sel.Container == "" {
		return nil, fmt.Errorf("source %q: html_listing requires selectors.container", c.cfg.ID)
	}

	collector := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
		colly.Async(false),
	)
	rps := c.cfg.Fetch.RateLimitRPS
	if rps == 0 {
		rps = 1.0
	}
	_ = collector.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      time.Duration(float64(time.Second) / rps),
	})
	if c.cfg.Fetch.TimeoutSeconds > 0 {
		collector.SetRequestTimeout(time.Duration(c.cfg.Fetch.TimeoutSeconds) * time.Second)
	}

	var (
		mu       sync.Mutex
		raws     []curation.RawCandidate
		pages    int
		crawlErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	collector.OnHTML(sel.Container, func(e *colly.HTMLElement) {
		raw := c.extractCandidate(e)
		if strings.TrimSpace(raw.Title) == "" {
			return
		}
		mu.Lock()
		raws = append(raws, raw)
		mu.Unlock()
	})

	if sel.NextPage != "" {
		collector.OnHTML(sel.NextPage, func(e *colly.HTMLElement) {
			mu.Lock()
			pages++
			follow := c.cfg.MaxPages == 0 || pages < c.cfg.MaxPages
			mu.Unlock()
			if !follow {
				return
			}
			next := e.Request.AbsoluteURL(e.Attr("href"))
			if next != "" {
				_ = e.Request.Visit(next)
			}
		})
	}

	collector.OnError(func(resp *colly.Response, err error) {
		mu.Lock()
		if crawlErr == nil {
			crawlErr = fmt.Errorf("crawling %s: %w", resp.Request.URL, err)
		}
		mu.Unlock()
	})

	for _, seed := range c.cfg.Seeds {
		if err := collector.Visit(seed); err != nil {
			log.Printf("[%s] seed %s failed: %v", c.cfg.ID, seed, err)
		}
	}
	collector.Wait()

	if len(raws) == 0 && crawlErr != nil {
		return nil, crawlErr
	}

	c.enrichMissingDeadlines(ctx, raws)

	log.Printf("[%s] fetched %d raw candidates", c.cfg.ID, len(raws))
	return raws, nil
}

func (c *HTMLListingConnector) extractCandidate(e *colly.HTMLElement) curation.RawCandidate {
	sel := c.cfg.Selectors

	text := func(selector string) string {
		if selector == "" {
			return ""
		}
		return strings.TrimSpace(e.DOM.Find(selector).First().Text())
	}

	link := ""
	if sel.Link != "" {
		attr := sel.LinkAttr
		if attr == "" {
			attr = "href"
		}
		if href, ok := e.DOM.Find(sel.Link).First().Attr(attr); ok {
			link = e.Request.AbsoluteURL(href)
		}
	}

	body := text(sel.Body)
	if body == "" {
		// Pages that never name the purchaser still belong to the portal's
		// owner; the normalizer rejects bodiless records otherwise.
		body = c.cfg.Name
	}

	return curation.RawCandidate{
		Title:           text(sel.Title),
		Summary:         text(sel.Summary),
		ContractingBody: body,
		URL:             link,
		Source:          c.cfg.ID,
		SourceType:      c.cfg.SourceType,
		Country:         c.cfg.Country,
		RawDeadline:     text(sel.Deadline),
		RawValue:        text(sel.Value),
	}
}

// enrichMissingDeadlines visits detail pages for records the listing gave no
// deadline for, scanning page text and linked PDF attachments for dates.
// Failures here are expected and never fail the connector.
func (c *HTMLListingConnector) enrichMissingDeadlines(ctx context.Context, raws []curation.RawCandidate) {
	if c.fetcher == nil {
		return
	}

	enriched := 0
	for i := range raws {
		if raws[i].RawDeadline != "" || raws[i].URL == "" {
			continue
		}
		if enriched >= maxDetailEnrichments {
			break
		}
		enriched++

		guesses, err := c.deadlineGuessesFromDetail(ctx, raws[i].URL)
		if err != nil {
			log.Printf("[%s] detail enrichment for %s failed: %v", c.cfg.ID, raws[i].URL, err)
			continue
		}
		raws[i].DeadlineGuesses = guesses
	}
}

func (c *HTMLListingConnector) deadlineGuessesFromDetail(ctx context.Context, pageURL string) ([]string, error) {
	doc, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer doc.Body.Close()

	parsed, err := goquery.NewDocumentFromReader(doc.Body)
	if err != nil {
		return nil, err
	}

	var guesses []string
	for _, t := range curation.ParseDateCandidates(parsed.Text()) {
		guesses = append(guesses, t.Format("2006-01-02"))
	}

	// Tender packs often bury the real deadline in an attached PDF.
	if len(guesses) == 0 {
		parsed.Find("a[href$='.pdf']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			if !ok {
				return true
			}
			pdfGuesses, err := ExtractDeadlineGuesses(ctx, c.fetcher, absoluteURL(pageURL, href))
			if err != nil {
				return true
			}
			guesses = pdfGuesses
			return false
		})
	}

	return guesses, nil
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	u := strings.TrimSuffix(base, "/")
	if strings.HasPrefix(href, "/") {
		if idx := strings.Index(u, "://"); idx >= 0 {
			if slash := strings.Index(u[idx+3:], "/"); slash >= 0 {
				u = u[:idx+3+slash]
			}
		}
	}
	return u + "/" + strings.TrimPrefix(href, "/")
}
