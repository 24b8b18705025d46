package opensea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	mainnetBaseURL = "https://api.opensea.io/api/v1"
	testnetBaseURL = "https://testnets-api.opensea.io/api/v1"

	// PageSize is the number of assets requested per page. A response with
	// fewer assets than this marks the owner's inventory as exhausted.
	PageSize = 20

	defaultHTTPTimeout = 30 * time.Second
	retryMax           = 3
	retryWaitMin       = 1 * time.Second
	retryWaitMax       = 10 * time.Second

	// OpenSea throttles anonymous callers hard; keyed callers get more room.
	unkeyedRequestsPerSecond = 1
	keyedRequestsPerSecond   = 4
)

// Client talks to the OpenSea v1 REST API. Transient failures are retried by
// the underlying HTTP client before an error surfaces, and requests are rate
// limited to stay under OpenSea's throttling thresholds.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Config controls how NewClient builds a Client.
type Config struct {
	// APIKey is sent as X-API-KEY when set.
	APIKey string
	// Testnet points the client at the testnets API host.
	Testnet bool
	// HTTPClient overrides the default retrying client, mainly for tests.
	HTTPClient *http.Client
	// Logger receives per-request debug logs. Nil disables logging.
	Logger *zerolog.Logger
}

// NewClient returns a Client ready to fetch asset pages.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = retryMax
		retryClient.RetryWaitMin = retryWaitMin
		retryClient.RetryWaitMax = retryWaitMax
		retryClient.HTTPClient.Timeout = defaultHTTPTimeout
		retryClient.Logger = nil
		httpClient = retryClient.StandardClient()
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	rps := rate.Limit(unkeyedRequestsPerSecond)
	if apiKey != "" {
		rps = rate.Limit(keyedRequestsPerSecond)
	}

	baseURL := mainnetBaseURL
	if cfg.Testnet {
		baseURL = testnetBaseURL
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(rps, 1),
		log:     logger,
	}
}

// Assets fetches one page of assets owned by owner, starting at offset.
func (c *Client) Assets(ctx context.Context, owner string, offset int) ([]Asset, error) {
	return c.fetchAssets(ctx, owner, "", offset)
}

// CollectionAssets fetches one page of assets owned by owner within a single
// contract's collection.
func (c *Client) CollectionAssets(ctx context.Context, owner, contractAddress string, offset int) ([]Asset, error) {
	if strings.TrimSpace(contractAddress) == "" {
		return nil, errors.New("missing contract address")
	}
	return c.fetchAssets(ctx, owner, contractAddress, offset)
}

func (c *Client) fetchAssets(ctx context.Context, owner, contractAddress string, offset int) ([]Asset, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, errors.New("missing owner address")
	}
	if offset < 0 {
		return nil, fmt.Errorf("negative offset %d", offset)
	}

	query := url.Values{}
	query.Set("owner", owner)
	query.Set("limit", strconv.Itoa(PageSize))
	query.Set("offset", strconv.Itoa(offset))
	if contractAddress != "" {
		query.Set("asset_contract_address", contractAddress)
	}

	body, err := c.get(ctx, c.baseURL+"/assets?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var parsed assetsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode assets response: %w", err)
	}

	assets := make([]Asset, 0, len(parsed.Assets))
	for _, wire := range parsed.Assets {
		assets = append(assets, wire.toAsset())
	}
	c.log.Debug().
		Str("owner", owner).
		Int("offset", offset).
		Int("count", len(assets)).
		Msg("fetched assets page")
	return assets, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build OpenSea request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call OpenSea API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read OpenSea response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("OpenSea API throttled the request (status %d)", resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OpenSea API %d: %s", resp.StatusCode, bodySnippet(body))
	}
	return body, nil
}

// bodySnippet flattens an error body to one short line for error messages.
func bodySnippet(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 200 {
		return s[:200] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
