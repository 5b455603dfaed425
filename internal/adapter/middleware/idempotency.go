package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// HeaderIdempotencyKey is optional; requests without it are not deduplicated.
	HeaderIdempotencyKey = "Idempotency-Key"
	// How long we hold the "in-progress" lock before it must be refreshed by finishing the handler.
	provisionalLockTTL = 60 * time.Second
	storeTimeout       = 2 * time.Second
	anonymous          = "anon"
)

type idempEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	RequestKey string    `json:"request_key"`
	CreatedAt  time.Time `json:"created_at"`
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

// IdempotencyConfig configures IdempotencyMiddleware.
type IdempotencyConfig struct {
	Redis redis.Cmdable
	// TTL of a stored response.
	TTL time.Duration
	// Subject names the caller for the key; empty means anonymous.
	Subject func(c echo.Context) string
	Log     *zap.Logger
}

// IdempotencyMiddleware replays the stored response for a repeated Idempotency-Key.
// key = method + route + caller + Idempotency-Key. Server errors are not stored so
// the client may retry with the same key.
func IdempotencyMiddleware(cfg IdempotencyConfig) echo.MiddlewareFunc {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			method := req.Method

			// Only enforce on mutating methods
			switch method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			raw := req.Header.Get(HeaderIdempotencyKey)
			if raw == "" {
				return next(c)
			}
			reqKey, valid := normalizeKey(raw)
			if !valid {
				return c.JSON(http.StatusBadRequest, errorBody("invalid Idempotency-Key format"))
			}

			subject := anonymous
			if cfg.Subject != nil {
				if s := cfg.Subject(c); s != "" {
					subject = s
				}
			}

			// Buffer & hash body
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(method, c.Path(), subject, reqKey)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			entry := idempEntry{
				InProgress: true,
				BodySHA256: bhash,
				RequestKey: reqKey,
				CreatedAt:  nowUTC(),
			}
			ok, err := provisionalSet(ctx, cfg.Redis, key, entry)
			if err != nil {
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, errorBody("idempotency store unavailable"))
			}
			if !ok {
				// Key exists: body must match, and we may be able to replay
				cur, errLoad := loadEntry(ctx, cfg.Redis, key)
				if errLoad != nil {
					log.Warn("idempotency entry unreadable", zap.String("key", key), zap.Error(errLoad))
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, errorBody("Idempotency-Key reused with different body"))
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					c.Response().Header().Set("Idempotent-Replayed", "true")
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, errorBody("request is already in progress"))
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be done; finish bookkeeping on a fresh one
			bg, cancelBG := context.WithTimeout(context.Background(), storeTimeout)
			defer cancelBG()
			if rec.code >= http.StatusInternalServerError {
				if err := release(bg, cfg.Redis, key); err != nil {
					log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			final := idempEntry{
				Code:       rec.code,
				Body:       rec.buf.Bytes(),
				BodySHA256: bhash,
				RequestKey: reqKey,
				CreatedAt:  nowUTC(),
			}
			if err := saveFinal(bg, cfg.Redis, key, final, cfg.TTL); err != nil {
				log.Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
