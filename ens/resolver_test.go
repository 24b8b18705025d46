package ens

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
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

func testResolver(t *testing.T, fn roundTripFunc) *Resolver {
	t.Helper()
	resolver, err := NewResolver(Config{HTTPClient: &http.Client{Transport: fn}})
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	return resolver
}

func TestIsName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  bool
	}{
		{"vitalik.eth", true},
		{"Vitalik.ETH", true},
		{"  vitalik.eth  ", true},
		{"0xb794f5ea0ba39494ce839613fffba74279579268", false},
		{"vitalik", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsName(tc.input); got != tc.want {
			t.Fatalf("IsName(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestResolveReturnsAddress(t *testing.T) {
	t.Parallel()

	resolver := testResolver(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/ens/resolve/vitalik.eth" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(200, `{"address":"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045","name":"vitalik.eth"}`), nil
	})

	address, err := resolver.Resolve(context.Background(), "Vitalik.ETH")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if address != "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045" {
		t.Fatalf("unexpected address: %q", address)
	}
}

func TestResolveCachesLookups(t *testing.T) {
	t.Parallel()

	calls := 0
	resolver := testResolver(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(200, `{"address":"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"}`), nil
	})

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), "vitalik.eth"); err != nil {
			t.Fatalf("Resolve %d returned error: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 remote lookup, got %d", calls)
	}
}

func TestResolveRejectsUnregisteredName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"null address", `{"address":null}`},
		{"zero address", `{"address":"0x0000000000000000000000000000000000000000"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := testResolver(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(200, tc.body), nil
			})
			if _, err := resolver.Resolve(context.Background(), "nobody.eth"); err == nil {
				t.Fatal("expected error for unregistered name")
			}
		})
	}
}

func TestResolveSurfacesServiceErrors(t *testing.T) {
	t.Parallel()

	resolver := testResolver(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(502, `bad gateway`), nil
	})
	_, err := resolver.Resolve(context.Background(), "vitalik.eth")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected service error, got %v", err)
	}

	failures := testResolver(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"address":`), nil
	})
	if _, err := failures.Resolve(context.Background(), "vitalik.eth"); err == nil {
		t.Fatal("expected decode error")
	}
}
