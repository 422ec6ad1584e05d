package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jturner/defence-radar/internal/curation"
)

// OCDSConnector pulls notices from Contracts Finder / Find a Tender style
// search APIs publishing Open Contracting Data Standard records.
type OCDSConnector struct {
	cfg    SourceConfig
	client *http.Client
}

func NewOCDSConnector(cfg SourceConfig) *OCDSConnector {
	timeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OCDSConnector{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *OCDSConnector) Name() string                    { return c.cfg.ID }
func (c *OCDSConnector) SourceType() curation.SourceType { return c.cfg.SourceType }

// ocdsSearchRequest matches the Contracts Finder search_notices schema.
type ocdsSearchRequest struct {
	SearchCriteria ocdsSearchCriteria `json:"searchCriteria"`
	Size           int                `json:"size"`
	Page           int                `json:"page"`
}

type ocdsSearchCriteria struct {
	Keyword  string   `json:"keyword"`
	Statuses []string `json:"statuses"`
}

type ocdsSearchResponse struct {
	NoticeList []struct {
		Item ocdsNotice `json:"item"`
	} `json:"noticeList"`
	HitCount int `json:"hitOfNoticesCount"`
}

// ocdsNotice captures the fields we map into a raw candidate.
type ocdsNotice struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	OrganisationName string   `json:"organisationName"`
	DeadlineDate     string   `json:"deadlineDate"`
	ValueLow         *float64 `json:"valueLow"`
	ValueHigh        *float64 `json:"valueHigh"`
	NoticeType       string   `json:"noticeType"`
	Region           string   `json:"region"`
	CpvCodes         []string `json:"cpvCodes"`
	NoticeURL        string   `json:"noticeURL"`
}

// Fetch runs one search per configured keyword and merges the pages.
func (c *OCDSConnector) Fetch(ctx context.Context) ([]curation.RawCandidate, error) {
	var raws []curation.RawCandidate
	seen := make(map[string]bool)

	keywords := c.cfg.Keywords
	if len(keywords) == 0 {
		keywords = []string{"defence"}
	}

	pageSize := 100
	for _, keyword := range keywords {
		for page := 0; page < c.cfg.MaxPages; page++ {
			notices, total, err := c.searchPage(ctx, keyword, page, pageSize)
			if err != nil {
				return raws, fmt.Errorf("%s keyword %q page %d: %w", c.cfg.ID, keyword, page, err)
			}

			for _, n := range notices {
				if n.ID == "" || seen[n.ID] {
					continue
				}
				seen[n.ID] = true
				raws = append(raws, c.toRawCandidate(n))
			}

			if (page+1)*pageSize >= total || len(notices) == 0 {
				break
			}
		}
	}

	log.Printf("[%s] fetched %d raw candidates", c.cfg.ID, len(raws))
	return raws, nil
}

func (c *OCDSConnector) searchPage(ctx context.Context, keyword string, page, size int) ([]ocdsNotice, int, error) {
	reqBody := ocdsSearchRequest{
		SearchCriteria: ocdsSearchCriteria{
			Keyword:  keyword,
			Statuses: []string{"Open"},
		},
		Size: size,
		Page: page,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, 0, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp ocdsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, 0, fmt.Errorf("decoding response: %w", err)
	}

	notices := make([]ocdsNotice, 0, len(apiResp.NoticeList))
	for _, wrapped := range apiResp.NoticeList {
		notices = append(notices, wrapped.Item)
	}
	return notices, apiResp.HitCount, nil
}

func (c *OCDSConnector) toRawCandidate(n ocdsNotice) curation.RawCandidate {
	rawValue := ""
	if n.ValueHigh != nil && *n.ValueHigh > 0 {
		rawValue = fmt.Sprintf("£%.0f", *n.ValueHigh)
	} else if n.ValueLow != nil && *n.ValueLow > 0 {
		rawValue = fmt.Sprintf("£%.0f", *n.ValueLow)
	}

	extra := map[string]string{}
	if len(n.CpvCodes) > 0 {
		extra["cpv_codes"] = strings.Join(n.CpvCodes, ",")
	}

	return curation.RawCandidate{
		Title:           n.Title,
		Summary:         n.Description,
		ContractingBody: n.OrganisationName,
		URL:             n.NoticeURL,
		Source:          c.cfg.ID,
		SourceType:      c.cfg.SourceType,
		Country:         c.cfg.Country,
		Location:        n.Region,
		RawDeadline:     n.DeadlineDate,
		RawValue:        rawValue,
		ProcurementType: n.NoticeType,
		Extra:           extra,
	}
}
