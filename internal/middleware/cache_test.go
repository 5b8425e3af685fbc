package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/privacy2run/internal/config"
)

func newCtx(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/athletes/:id")
	return c
}

func TestCacheKeyDistinguishesPathParams(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "athletes", KeyStrategy: "route_query"}

	k1 := cacheKeyFrom(cfg, newCtx("/athletes/1"))
	k2 := cacheKeyFrom(cfg, newCtx("/athletes/2"))
	if k1 == k2 {
		t.Fatalf("distinct athlete ids share cache key %q", k1)
	}
}

func TestCacheKeyDistinguishesPathParamsPerStrategy(t *testing.T) {
	for _, strategy := range []string{"route", "method_route", "method_route_query", "route_query"} {
		cfg := config.CacheConfig{Prefix: "athletes", KeyStrategy: strategy}
		k1 := cacheKeyFrom(cfg, newCtx("/athletes/1"))
		k2 := cacheKeyFrom(cfg, newCtx("/athletes/2"))
		if k1 == k2 {
			t.Fatalf("strategy %s: distinct athlete ids share cache key %q", strategy, k1)
		}
	}
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "athletes", KeyStrategy: "route_query"}

	k1 := cacheKeyFrom(cfg, newCtx("/athletes/1?page=1"))
	k2 := cacheKeyFrom(cfg, newCtx("/athletes/1?page=2"))
	if k1 == k2 {
		t.Fatalf("distinct query strings share cache key %q", k1)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"text/plain"}}
	body := []byte("Run,50,2.5,120,150\n")

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatalf("decode rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Fatalf("expected status 200 got %d", status)
	}
	if gotHdr.Get("Content-Type") != "text/plain" {
		t.Fatalf("header lost in round trip: %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Fatalf("expected body %q got %q", body, gotBody)
	}
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, make([]byte, 7)} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Fatalf("decode accepted truncated payload of %d bytes", len(bs))
		}
	}
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "fresh")
	})

	c := newCtx("/athletes/1")
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler never reached")
	}
	if got := c.Response().Header().Get("X-Cache"); got != "" {
		t.Fatalf("disabled cache still set X-Cache=%q", got)
	}
}

func TestCacheNilRedisPassesThrough(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}
	mw := NewRedisCache(cfg, nil)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "fresh")
	})

	if err := h(newCtx("/athletes/1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler never reached without Redis")
	}
}
