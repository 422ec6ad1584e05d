package sources

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// RateLimitedFetcher provides rate limiting, retries and configurable
// timeouts per domain. Tender portals are slow and ban aggressive clients,
// so every domain gets its own client and ticker.
type RateLimitedFetcher struct {
	clients       map[string]*http.Client
	limiters      map[string]*time.Ticker
	configs       map[string]FetchConfig
	defaultConfig FetchConfig
	mu            sync.RWMutex
}

// NewRateLimitedFetcher creates a new rate-limited fetcher with default config.
func NewRateLimitedFetcher(defaultConfig FetchConfig) *RateLimitedFetcher {
	if defaultConfig.TimeoutSeconds == 0 {
		defaultConfig.TimeoutSeconds = 30
	}
	if defaultConfig.MaxRetries == 0 {
		defaultConfig.MaxRetries = 3
	}
	if defaultConfig.RateLimitRPS == 0 {
		defaultConfig.RateLimitRPS = 1.0
	}

	return &RateLimitedFetcher{
		clients:       make(map[string]*http.Client),
		limiters:      make(map[string]*time.Ticker),
		configs:       make(map[string]FetchConfig),
		defaultConfig: defaultConfig,
	}
}

// SetDomainConfig registers per-domain fetch settings from the registry.
func (f *RateLimitedFetcher) SetDomainConfig(domain string, config FetchConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs[domain] = config
}

func getDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Host, nil
}

func (f *RateLimitedFetcher) getClient(domain string, config FetchConfig) *http.Client {
	f.mu.RLock()
	client, exists := f.clients[domain]
	f.mu.RUnlock()
	if exists {
		return client
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, exists := f.clients[domain]; exists {
		return client
	}

	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           safeDialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if config.ProxyURL != "" {
		if proxyURL, err := url.Parse(config.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client = &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: safeCheckRedirect,
	}
	f.clients[domain] = client

	interval := time.Duration(float64(time.Second) / config.RateLimitRPS)
	if interval == 0 {
		interval = time.Second
	}
	f.limiters[domain] = time.NewTicker(interval)

	return client
}

// safeDialContext wraps the default dialer to block private IPs.
func safeDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return nil, fmt.Errorf("blocked private IP: %s", ip)
		}
	}

	return d.DialContext(ctx, network, addr)
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	return ip.IsLoopback() || ip.IsLinkLocalMulticast() || ip.IsLinkLocalUnicast() ||
		ip.IsMulticast() || ip.IsPrivate() || ip.IsUnspecified()
}

// safeCheckRedirect limits redirects and validates destinations.
func safeCheckRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after 10 redirects")
	}
	if req.URL == nil || (req.URL.Scheme != "http" && req.URL.Scheme != "https") {
		return fmt.Errorf("redirect scheme blocked")
	}

	host := req.URL.Hostname()
	if host == "" {
		return fmt.Errorf("redirect host missing")
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return err
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("redirect to private IP blocked: %s", ip)
		}
	}

	return nil
}

// shouldRetry determines if an error or status code should trigger a retry.
func shouldRetry(err error, statusCode int) bool {
	if err != nil {
		if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
			return true
		}
		return false
	}

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Fetch implements the Fetcher interface with rate limiting and retries.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (*FetchedDocument, error) {
	domain, err := getDomain(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	config := f.defaultConfig
	f.mu.RLock()
	if domainConfig, exists := f.configs[domain]; exists {
		config = domainConfig
	}
	f.mu.RUnlock()

	client := f.getClient(domain, config)

	f.mu.RLock()
	limiter, exists := f.limiters[domain]
	f.mu.RUnlock()
	if exists {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-limiter.C:
		}
	}

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 0.5s, 1s, 2s + jitter
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			jitter := time.Duration(rand.Intn(100)) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", defaultUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetry(err, 0) {
				continue
			}
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return &FetchedDocument{
				URL:         rawURL,
				StatusCode:  resp.StatusCode,
				ContentType: resp.Header.Get("Content-Type"),
				Body:        resp.Body,
				FetchedAt:   time.Now(),
				Headers:     resp.Header,
			}, nil
		}

		resp.Body.Close()
		if shouldRetry(nil, resp.StatusCode) {
			lastErr = fmt.Errorf("status code %d", resp.StatusCode)
			continue
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
