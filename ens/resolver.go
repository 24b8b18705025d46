// Package ens resolves ENS names like vitalik.eth to wallet addresses
// through a public REST resolution service.
package ens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL     = "https://api.ensideas.com"
	defaultCacheSize   = 256
	defaultHTTPTimeout = 15 * time.Second

	zeroAddress = "0x0000000000000000000000000000000000000000"
)

// IsName reports whether s looks like an ENS name rather than a raw address.
func IsName(s string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(s)), ".eth")
}

// Resolver resolves ENS names to addresses, caching results in memory so
// repeated lookups for the same name never leave the process.
type Resolver struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache[string, string]
	log     zerolog.Logger
}

// Config controls how NewResolver builds a Resolver.
type Config struct {
	// BaseURL overrides the resolution service endpoint, mainly for tests.
	BaseURL string
	// CacheSize bounds the name-to-address cache. Zero means the default.
	CacheSize int
	// HTTPClient overrides the default retrying client, mainly for tests.
	HTTPClient *http.Client
	// Logger receives per-lookup debug logs. Nil disables logging.
	Logger *zerolog.Logger
}

// NewResolver returns a Resolver ready to look up names.
func NewResolver(cfg Config) (*Resolver, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create resolution cache: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = 3
		retryClient.HTTPClient.Timeout = defaultHTTPTimeout
		retryClient.Logger = nil
		httpClient = retryClient.StandardClient()
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Resolver{
		baseURL: baseURL,
		http:    httpClient,
		cache:   cache,
		log:     logger,
	}, nil
}

// Resolve returns the wallet address registered for name.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", errors.New("missing ENS name")
	}

	if address, ok := r.cache.Get(normalized); ok {
		return address, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/ens/resolve/"+url.PathEscape(normalized), nil)
	if err != nil {
		return "", fmt.Errorf("build resolution request for %q: %w", normalized, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve ENS name %q: %w", normalized, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read resolution response for %q: %w", normalized, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ENS resolution service %d for %q", resp.StatusCode, normalized)
	}

	var parsed struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode resolution response for %q: %w", normalized, err)
	}
	address := strings.TrimSpace(parsed.Address)
	if address == "" || strings.EqualFold(address, zeroAddress) {
		return "", fmt.Errorf("ENS name %q did not resolve to an address", normalized)
	}

	r.cache.Add(normalized, address)
	r.log.Debug().Str("name", normalized).Str("address", address).Msg("resolved ENS name")
	return address, nil
}
