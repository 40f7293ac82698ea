package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"re-view.backend/internal/interfaces/http/response"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// IdempotencyMiddleware replays the stored response when a mutation is
// retried with the same Idempotency-Key. Keys are scoped per caller and
// route; only 2xx responses are kept.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		caller := "anonymous"
		if actor := GetActor(c); actor != nil {
			caller = actor.UserID.String()
		}
		storageKey := redis.Key("idempotency", caller, c.Request.Method, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			response.ErrorWithError(c, http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Request already in progress")
			return
		case err == nil:
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr != nil {
				logger.Warn(ctx, "Discarding unreadable idempotency record", zap.String("key", storageKey), zap.Error(jsonErr))
				_ = redisDel(ctx, storageKey)
				break
			}
			c.Header("X-Idempotency-Hit", "true")
			c.Data(stored.Status, "application/json; charset=utf-8", []byte(stored.Body))
			c.Abort()
			return
		case !errors.Is(err, redis.Nil):
			// store unavailable; serve without the guarantee
			logger.Warn(ctx, "Idempotency lookup failed", zap.String("key", storageKey), zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			response.ErrorWithError(c, http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Request already in progress")
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			// allow the client to retry
			_ = redisDel(ctx, storageKey)
			return
		}
		payload, _ := json.Marshal(storedResponse{Status: status, Body: w.body.String()})
		if err := redisSet(ctx, storageKey, string(payload), RetentionDuration); err != nil {
			logger.Warn(ctx, "Failed to store idempotent response", zap.String("key", storageKey), zap.Error(err))
		}
	}
}
