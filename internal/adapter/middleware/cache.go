package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"loan-calculator/internal/observability/metrics"
)

const (
	HeaderXCache = "X-Cache"

	cacheOpTimeout = 2 * time.Second
)

type cacheEntry struct {
	Code        int       `json:"code"`
	ContentType string    `json:"content_type"`
	Disposition string    `json:"disposition,omitempty"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// ResponseCache replays successful schedule responses from redis.
// Key = method + request path + sha256(sorted query, body). A nil client disables
// the cache; redis failures degrade to computing the response.
func ResponseCache(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if rdb == nil || (req.Method != http.MethodGet && req.Method != http.MethodPost) {
				return next(c)
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))

			// the concrete path, not the route pattern: export/xlsx and export/pdf differ
			key := buildKey(req.Method, req.URL.Path, requestHash(req.URL.Query(), body))
			ctx, cancel := context.WithTimeout(req.Context(), cacheOpTimeout)
			cur, found, err := loadEntry(ctx, rdb, key)
			cancel()

			switch {
			case err != nil:
				log.Printf("response cache: load %s: %v", key, err)
				metrics.IncCacheLookup(metrics.CacheError)
				c.Response().Header().Set(HeaderXCache, "BYPASS")
				return next(c)
			case found:
				metrics.IncCacheLookup(metrics.CacheHit)
				c.Response().Header().Set(HeaderXCache, "HIT")
				if cur.Disposition != "" {
					c.Response().Header().Set(echo.HeaderContentDisposition, cur.Disposition)
				}
				return c.Blob(cur.Code, cur.ContentType, cur.Body)
			}

			metrics.IncCacheLookup(metrics.CacheMiss)
			c.Response().Header().Set(HeaderXCache, "MISS")

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			if rec.code < 200 || rec.code >= 300 || rec.buf.Len() == 0 {
				return nil
			}
			h := c.Response().Header()
			entry := cacheEntry{
				Code:        rec.code,
				ContentType: h.Get(echo.HeaderContentType),
				Disposition: h.Get(echo.HeaderContentDisposition),
				Body:        rec.buf.Bytes(),
				CreatedAt:   nowUTC(),
			}
			ctx, cancel = context.WithTimeout(context.Background(), cacheOpTimeout)
			defer cancel()
			if err := saveEntry(ctx, rdb, key, entry, ttl); err != nil {
				log.Printf("response cache: save %s: %v", key, err)
			}
			return nil
		}
	}
}
