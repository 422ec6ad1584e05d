package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jturner/defence-radar/internal/curation"
)

const listingPage = `<html><body>
<div class="tender">
  <h3 class="title"><a href="/tenders/radar-1">Naval radar refurbishment</a></h3>
  <span class="org">NSPA</span>
  <span class="closes">2026-11-30</span>
  <span class="budget">£250,000</span>
</div>
<div class="tender">
  <h3 class="title"><a href="https://other.example.org/t/2">Tactical communications study</a></h3>
  <span class="closes">15/12/2026</span>
</div>
<div class="tender">
  <h3 class="title"></h3>
</div>
</body></html>`

func htmlTestConfig(baseURL string) SourceConfig {
	return SourceConfig{
		ID:         "test_html",
		Name:       "Test Portal",
		SourceType: curation.SourceEUNATO,
		Country:    "International",
		Strategy:   "html_listing",
		Seeds:      []string{baseURL + "/listing"},
		MaxPages:   1,
		Fetch:      FetchConfig{RateLimitRPS: 100},
		Selectors: SelectorConfig{
			Container: "div.tender",
			Link:      "h3.title a",
			Title:     "h3.title a",
			Body:      "span.org",
			Deadline:  "span.closes",
			Value:     "span.budget",
		},
	}
}

func TestHTMLListingConnectorFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, listingPage)
	}))
	defer server.Close()

	conn := NewHTMLListingConnector(htmlTestConfig(server.URL), nil)

	raws, err := conn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The third row has no title and is dropped.
	if len(raws) != 2 {
		t.Fatalf("expected 2 raws, got %d", len(raws))
	}

	first := raws[0]
	if first.Title != "Naval radar refurbishment" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.URL != server.URL+"/tenders/radar-1" {
		t.Errorf("expected relative link resolved, got %q", first.URL)
	}
	if first.ContractingBody != "NSPA" {
		t.Errorf("unexpected contracting body %q", first.ContractingBody)
	}
	if first.RawDeadline != "2026-11-30" {
		t.Errorf("unexpected raw deadline %q", first.RawDeadline)
	}
	if first.RawValue != "£250,000" {
		t.Errorf("unexpected raw value %q", first.RawValue)
	}

	second := raws[1]
	if second.URL != "https://other.example.org/t/2" {
		t.Errorf("expected absolute link kept, got %q", second.URL)
	}
	// Missing org cell falls back to the portal name.
	if second.ContractingBody != "Test Portal" {
		t.Errorf("unexpected contracting body %q", second.ContractingBody)
	}
}

func TestHTMLListingConnectorFetch_RequiresContainer(t *testing.T) {
	cfg := htmlTestConfig("http://localhost")
	cfg.Selectors.Container = ""

	conn := NewHTMLListingConnector(cfg, nil)
	if _, err := conn.Fetch(context.Background()); err == nil {
		t.Error("expected error when container selector is missing")
	}
}

func TestHTMLListingConnectorFetch_DeadServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	conn := NewHTMLListingConnector(htmlTestConfig(server.URL), nil)
	if _, err := conn.Fetch(context.Background()); err == nil {
		t.Error("expected error when every seed fails and nothing was scraped")
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		href     string
		expected string
	}{
		{
			name:     "already absolute",
			base:     "https://portal.example.org/tenders/1",
			href:     "https://cdn.example.org/pack.pdf",
			expected: "https://cdn.example.org/pack.pdf",
		},
		{
			name:     "root-relative",
			base:     "https://portal.example.org/tenders/1",
			href:     "/docs/pack.pdf",
			expected: "https://portal.example.org/docs/pack.pdf",
		},
		{
			name:     "relative to base",
			base:     "https://portal.example.org",
			href:     "pack.pdf",
			expected: "https://portal.example.org/pack.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := absoluteURL(tt.base, tt.href); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
