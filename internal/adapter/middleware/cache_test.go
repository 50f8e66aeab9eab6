package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// helper: new Echo with the middleware and counting routes
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(ResponseCache(rdb, ttl))
	e.POST("/v1/schedules", handler)
	e.GET("/v1/schedules", handler)
	e.DELETE("/v1/schedules", handler)
	return e
}

func doReq(t *testing.T, e *echo.Echo, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// countingHandler echoes a call counter so replays are distinguishable
func countingHandler(calls *int) echo.HandlerFunc {
	return func(c echo.Context) error {
		*calls++
		return c.JSON(http.StatusOK, map[string]any{"call": *calls})
	}
}

func Test_MissThenHit_POST(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	body := `{"principal":100000,"term":48,"rate":6.49}`
	rec1 := doReq(t, e, http.MethodPost, "/v1/schedules", strings.NewReader(body))
	if rec1.Code != http.StatusOK || rec1.Header().Get(HeaderXCache) != "MISS" {
		t.Fatalf("first => code %d cache %q", rec1.Code, rec1.Header().Get(HeaderXCache))
	}

	rec2 := doReq(t, e, http.MethodPost, "/v1/schedules", strings.NewReader(body))
	if rec2.Code != http.StatusOK || rec2.Header().Get(HeaderXCache) != "HIT" {
		t.Fatalf("replay => code %d cache %q", rec2.Code, rec2.Header().Get(HeaderXCache))
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if !strings.HasPrefix(rec2.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Fatalf("content type not replayed: %q", rec2.Header().Get(echo.HeaderContentType))
	}

	// different body => different key
	rec3 := doReq(t, e, http.MethodPost, "/v1/schedules", strings.NewReader(`{"principal":1,"term":1,"rate":0}`))
	if rec3.Header().Get(HeaderXCache) != "MISS" || calls != 2 {
		t.Fatalf("different body => cache %q calls %d", rec3.Header().Get(HeaderXCache), calls)
	}
}

func Test_QueryOrderDoesNotMatter_GET(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	doReq(t, e, http.MethodGet, "/v1/schedules?principal=1000&term=12&rate=5", nil)
	rec := doReq(t, e, http.MethodGet, "/v1/schedules?rate=5&term=12&principal=1000", nil)
	if rec.Header().Get(HeaderXCache) != "HIT" || calls != 1 {
		t.Fatalf("reordered query => cache %q calls %d", rec.Header().Get(HeaderXCache), calls)
	}
}

func Test_NonSuccessNotCached(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	})

	for i := 0; i < 2; i++ {
		rec := doReq(t, e, http.MethodPost, "/v1/schedules", strings.NewReader(`{`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("unexpected cached keys: %v", keys)
	}
}

func Test_HandlerErrorNotCached(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "nope")
	})
	rec := doReq(t, e, http.MethodGet, "/v1/schedules?term=0", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", rec.Code)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("unexpected cached keys: %v", keys)
	}
}

func Test_EntryExpires(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, 30*time.Second, countingHandler(&calls))

	doReq(t, e, http.MethodGet, "/v1/schedules?term=12", nil)
	mr.FastForward(31 * time.Second)
	rec := doReq(t, e, http.MethodGet, "/v1/schedules?term=12", nil)
	if rec.Header().Get(HeaderXCache) != "MISS" || calls != 2 {
		t.Fatalf("expired => cache %q calls %d", rec.Header().Get(HeaderXCache), calls)
	}
}

func Test_DispositionReplayed(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="schedule.pdf"`)
		return c.Blob(http.StatusOK, "application/pdf", []byte("%PDF-1.3"))
	})
	doReq(t, e, http.MethodGet, "/v1/schedules?term=1", nil)
	rec := doReq(t, e, http.MethodGet, "/v1/schedules?term=1", nil)
	if rec.Header().Get(HeaderXCache) != "HIT" {
		t.Fatalf("want HIT, got %q", rec.Header().Get(HeaderXCache))
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != `attachment; filename="schedule.pdf"` {
		t.Fatalf("disposition = %q", got)
	}
	if rec.Header().Get(echo.HeaderContentType) != "application/pdf" || rec.Body.String() != "%PDF-1.3" {
		t.Fatalf("unexpected replay: %q %q", rec.Header().Get(echo.HeaderContentType), rec.Body.String())
	}
}

func Test_PathParamsGetSeparateEntries(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	calls := 0
	e := echo.New()
	e.HideBanner = true
	e.GET("/v1/schedules/export/:format", func(c echo.Context) error {
		calls++
		if c.Param("format") == "pdf" {
			c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="loan-schedule-48.pdf"`)
			return c.Blob(http.StatusOK, "application/pdf", []byte("%PDF-1.3"))
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="loan-schedule-48.xlsx"`)
		return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("PK\x03\x04"))
	}, ResponseCache(rdb, time.Minute))

	const query = "?principal=100000&term=48&rate=6.49"
	doReq(t, e, http.MethodGet, "/v1/schedules/export/xlsx"+query, nil)
	rec := doReq(t, e, http.MethodGet, "/v1/schedules/export/pdf"+query, nil)
	if rec.Header().Get(HeaderXCache) != "MISS" || calls != 2 {
		t.Fatalf("pdf after xlsx => cache %q calls %d", rec.Header().Get(HeaderXCache), calls)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Fatalf("content type = %q, want application/pdf", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Fatalf("body = %q, want a pdf", rec.Body.String())
	}

	rec = doReq(t, e, http.MethodGet, "/v1/schedules/export/pdf"+query, nil)
	if rec.Header().Get(HeaderXCache) != "HIT" || !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), ".pdf") {
		t.Fatalf("pdf replay => cache %q disposition %q", rec.Header().Get(HeaderXCache), rec.Header().Get(echo.HeaderContentDisposition))
	}
}

func Test_OtherMethodsBypass(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))
	rec := doReq(t, e, http.MethodDelete, "/v1/schedules", nil)
	if rec.Code != http.StatusOK || rec.Header().Get(HeaderXCache) != "" {
		t.Fatalf("delete => code %d cache %q", rec.Code, rec.Header().Get(HeaderXCache))
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("unexpected cached keys: %v", keys)
	}
}

func Test_NilClientPassesThrough(t *testing.T) {
	calls := 0
	e := setupEcho(nil, time.Minute, countingHandler(&calls))
	doReq(t, e, http.MethodGet, "/v1/schedules?term=1", nil)
	doReq(t, e, http.MethodGet, "/v1/schedules?term=1", nil)
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
}

func Test_StoreUnavailable_Bypasses(t *testing.T) {
	// closed port → GET fails fast, request is still served
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	calls := 0
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	rec := doReq(t, e, http.MethodPost, "/v1/schedules", bytes.NewReader([]byte(`{}`)))
	if rec.Code != http.StatusOK || rec.Header().Get(HeaderXCache) != "BYPASS" {
		t.Fatalf("store unavailable => code %d cache %q", rec.Code, rec.Header().Get(HeaderXCache))
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func Test_requestHash(t *testing.T) {
	a := requestHash(url.Values{"b": {"2"}, "a": {"1"}}, []byte("x"))
	b := requestHash(url.Values{"a": {"1"}, "b": {"2"}}, []byte("x"))
	if a != b {
		t.Fatalf("hash depends on map order: %s vs %s", a, b)
	}
	if a == requestHash(url.Values{"a": {"1"}, "b": {"2"}}, []byte("y")) {
		t.Fatal("hash ignores body")
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64", len(a))
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/v1/schedules", "abc")
	if k != "sched:post:/v1/schedules:abc" {
		t.Fatalf("buildKey = %q", k)
	}
}

func Test_saveAndLoadEntry(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	ctx := context.Background()

	if _, found, err := loadEntry(ctx, rdb, "sched:missing"); err != nil || found {
		t.Fatalf("missing key => found=%v err=%v", found, err)
	}

	in := cacheEntry{Code: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`), CreatedAt: nowUTC()}
	if err := saveEntry(ctx, rdb, "sched:k", in, time.Minute); err != nil {
		t.Fatalf("saveEntry: %v", err)
	}
	out, found, err := loadEntry(ctx, rdb, "sched:k")
	if err != nil || !found {
		t.Fatalf("loadEntry found=%v err=%v", found, err)
	}
	if out.Code != 200 || string(out.Body) != `{"ok":true}` || out.ContentType != "application/json" {
		t.Fatalf("unexpected entry: %+v", out)
	}

	if err := rdb.Set(ctx, "sched:garbage", "not json", time.Minute).Err(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadEntry(ctx, rdb, "sched:garbage"); err == nil {
		t.Fatal("expected decode error for garbage entry")
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
}
