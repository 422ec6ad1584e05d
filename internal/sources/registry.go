package sources

import (
	"embed"
	"fmt"
	"os"

	"github.com/jturner/defence-radar/internal/curation"
	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for all data sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // Default: 3
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // Requests per second, default: 1.0
	ProxyURL       string  `yaml:"proxy_url,omitempty"`
}

// SelectorConfig maps listing-page CSS selectors for the html_listing strategy.
type SelectorConfig struct {
	Container string `yaml:"container,omitempty"` // wrapper for one listed tender
	Link      string `yaml:"link,omitempty"`
	LinkAttr  string `yaml:"link_attr,omitempty"` // attribute to extract link from (default: href)
	Title     string `yaml:"title,omitempty"`
	Body      string `yaml:"body,omitempty"` // contracting body
	Deadline  string `yaml:"deadline,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Summary   string `yaml:"summary,omitempty"`
	NextPage  string `yaml:"next_page,omitempty"` // pagination link
}

// SourceConfig defines a single data source for aggregation.
type SourceConfig struct {
	ID         string              `yaml:"id"`
	Name       string              `yaml:"name"`
	SourceType curation.SourceType `yaml:"source_type"`
	Country    string              `yaml:"country"`
	Strategy   string              `yaml:"strategy"` // "ocds_api", "html_listing"
	BaseURL    string              `yaml:"base_url,omitempty"`
	APIKey     string              `yaml:"api_key,omitempty"`
	Keywords   []string            `yaml:"keywords,omitempty"` // search terms for API strategies
	Seeds      []string            `yaml:"seed_urls,omitempty"`
	MaxPages   int                 `yaml:"max_pages,omitempty"`
	Active     bool                `yaml:"active"`

	Fetch     FetchConfig    `yaml:"fetch,omitempty"`
	Selectors SelectorConfig `yaml:"selectors,omitempty"`
}

// LoadRegistry reads the embedded sources.yaml, falling back to the given
// path for local development. Environment variables in the YAML (e.g.
// ${FTS_API_KEY}) are expanded before parsing.
func LoadRegistry(path string) (*Registry, error) {
	data, err := sourcesYAML.ReadFile("config/sources.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, err
	}

	return &reg, nil
}

// BuildConnectors instantiates a connector for every active source in the
// registry.
func BuildConnectors(reg *Registry, fetcher Fetcher) ([]Connector, error) {
	var connectors []Connector
	for _, cfg := range reg.Sources {
		if !cfg.Active {
			continue
		}
		switch cfg.Strategy {
		case "ocds_api":
			connectors = append(connectors, NewOCDSConnector(cfg))
		case "html_listing":
			connectors = append(connectors, NewHTMLListingConnector(cfg, fetcher))
		default:
			return nil, fmt.Errorf("source %q: unknown strategy %q", cfg.ID, cfg.Strategy)
		}
	}
	return connectors, nil
}
