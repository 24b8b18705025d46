package opensea

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func jsonResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testClient(fn roundTripFunc) *Client {
	return &Client{
		baseURL: mainnetBaseURL,
		http:    &http.Client{Transport: fn},
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     zerolog.Nop(),
	}
}

const twoAssetBody = `{
	"assets": [
		{
			"id": 1001,
			"token_id": "7",
			"name": "Cool Cat #7",
			"description": "A cool cat.",
			"image_url": "https://img.example/full/7.png",
			"image_thumbnail_url": "https://img.example/thumb/7.png",
			"permalink": "https://opensea.io/assets/0xABC/7",
			"asset_contract": {"address": "0xABCdef0123"},
			"collection": {"name": "Cool Cats"},
			"traits": [
				{"trait_type": "Background", "value": "Blue"},
				{"trait_type": "Generation", "value": 2}
			]
		},
		{
			"id": 1002,
			"token_id": "8",
			"name": "",
			"asset_contract": {"address": "0xABCdef0123"},
			"collection": {"name": "Cool Cats"}
		}
	]
}`

func TestAssetsBuildsPagedRequest(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", req.Method)
		}
		if req.URL.Host != "api.opensea.io" || req.URL.Path != "/api/v1/assets" {
			t.Fatalf("unexpected URL: %s", req.URL.String())
		}
		query := req.URL.Query()
		if got := query.Get("owner"); got != "0xb794f5ea0ba39494ce839613fffba74279579268" {
			t.Fatalf("unexpected owner param: %q", got)
		}
		if got := query.Get("limit"); got != "20" {
			t.Fatalf("unexpected limit param: %q", got)
		}
		if got := query.Get("offset"); got != "40" {
			t.Fatalf("unexpected offset param: %q", got)
		}
		if query.Has("asset_contract_address") {
			t.Fatalf("unexpected contract filter in %q", req.URL.RawQuery)
		}
		if got := req.Header.Get("X-API-KEY"); got != "" {
			t.Fatalf("unexpected API key header: %q", got)
		}
		return jsonResponse(200, twoAssetBody), nil
	})

	assets, err := client.Assets(context.Background(), "0xb794f5ea0ba39494ce839613fffba74279579268", 40)
	if err != nil {
		t.Fatalf("Assets returned error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}

	first := assets[0]
	if first.ID != 1001 || first.TokenID != "7" {
		t.Fatalf("unexpected identity: id=%d token=%q", first.ID, first.TokenID)
	}
	if first.Name != "Cool Cat #7" || first.CollectionName != "Cool Cats" {
		t.Fatalf("unexpected metadata: %+v", first)
	}
	if first.ContractAddress != "0xABCdef0123" {
		t.Fatalf("unexpected contract address: %q", first.ContractAddress)
	}
	if len(first.Traits) != 2 {
		t.Fatalf("expected 2 traits, got %d", len(first.Traits))
	}
	if first.Traits[1].Type != "Generation" || first.Traits[1].Value != "2" {
		t.Fatalf("unexpected numeric trait: %+v", first.Traits[1])
	}
}

func TestAssetsSendsAPIKeyHeader(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("X-API-KEY"); got != "test-opensea-key" {
			t.Fatalf("unexpected API key header: %q", got)
		}
		return jsonResponse(200, `{"assets":[]}`), nil
	})
	client.apiKey = "test-opensea-key"

	if _, err := client.Assets(context.Background(), "0xabc", 0); err != nil {
		t.Fatalf("Assets returned error: %v", err)
	}
}

func TestCollectionAssetsAddsContractFilter(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("asset_contract_address"); got != "0x1a92f7381b9f03921564a437210bb9396471050c" {
			t.Fatalf("unexpected contract filter: %q", got)
		}
		return jsonResponse(200, `{"assets":[]}`), nil
	})

	_, err := client.CollectionAssets(context.Background(), "0xabc", "0x1a92f7381b9f03921564a437210bb9396471050c", 0)
	if err != nil {
		t.Fatalf("CollectionAssets returned error: %v", err)
	}

	if _, err := client.CollectionAssets(context.Background(), "0xabc", "", 0); err == nil {
		t.Fatal("expected error for missing contract address")
	}
}

func TestFetchAssetsValidatesArguments(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) (*http.Response, error) {
		t.Fatal("request should not be issued")
		return nil, nil
	})

	if _, err := client.Assets(context.Background(), "  ", 0); err == nil {
		t.Fatal("expected error for missing owner")
	}
	if _, err := client.Assets(context.Background(), "0xabc", -20); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestAssetsSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(400, `{"success": false}`), nil
	})
	_, err := client.Assets(context.Background(), "not-an-address", 0)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "OpenSea API 400") {
		t.Fatalf("unexpected error: %v", err)
	}

	throttled := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(429, ``), nil
	})
	_, err = throttled.Assets(context.Background(), "0xabc", 0)
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected throttling error, got %v", err)
	}
}

func TestAssetsDecodeFailure(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `<html>gateway timeout</html>`), nil
	})
	if _, err := client.Assets(context.Background(), "0xabc", 0); err == nil {
		t.Fatal("expected decode error for non-JSON body")
	}
}

func TestNewClientConfig(t *testing.T) {
	t.Parallel()

	mainnet := NewClient(Config{})
	if mainnet.baseURL != mainnetBaseURL {
		t.Fatalf("unexpected mainnet base URL: %q", mainnet.baseURL)
	}
	if got := mainnet.limiter.Limit(); got != rate.Limit(unkeyedRequestsPerSecond) {
		t.Fatalf("unexpected anonymous rate: %v", got)
	}

	testnet := NewClient(Config{Testnet: true, APIKey: "  key  "})
	if testnet.baseURL != testnetBaseURL {
		t.Fatalf("unexpected testnet base URL: %q", testnet.baseURL)
	}
	if testnet.apiKey != "key" {
		t.Fatalf("expected trimmed API key, got %q", testnet.apiKey)
	}
	if got := testnet.limiter.Limit(); got != rate.Limit(keyedRequestsPerSecond) {
		t.Fatalf("unexpected keyed rate: %v", got)
	}
}
