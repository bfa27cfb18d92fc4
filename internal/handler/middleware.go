package handler

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// KeyValidator resolves an API key to an active record, nil when unknown.
type KeyValidator interface {
	Validate(ctx context.Context, key string) (*domain.APIKey, error)
}

// APIKeyAuth returns a Gin middleware that enforces X-API-Key header validation.
// The static key is checked first, then the database keys. With neither
// configured the middleware is a no-op.
func APIKeyAuth(staticKey string, keys KeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staticKey == "" && keys == nil {
			c.Next()
			return
		}
		provided := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-API-Key header"})
			return
		}
		if staticKey != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(staticKey)) == 1 {
			c.Next()
			return
		}
		if keys != nil {
			key, err := keys.Validate(c.Request.Context(), provided)
			if err != nil {
				respondError(c, err)
				return
			}
			if key != nil {
				c.Set("api_key_name", key.Name)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid API key"})
	}
}

// AdminAuth guards the admin routes with the X-Admin-Token header.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin endpoint not configured"})
			return
		}
		provided := c.GetHeader("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin token"})
			return
		}
		c.Next()
	}
}

// ClientIP is the first X-Forwarded-For hop, falling back to the peer address.
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	return c.RemoteIP()
}

type WindowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit allows limit requests per client per minute using a Redis fixed
// window. Counter failures let the request through.
func RateLimit(counter WindowCounter, class string, limit int) gin.HandlerFunc {
	return rateLimit(counter, class, limit, time.Minute, time.Now)
}

func rateLimit(counter WindowCounter, class string, limit int, window time.Duration, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 {
			c.Next()
			return
		}
		t := now()
		slot := t.UnixNano() / int64(window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", class, ClientIP(c), slot)

		ctx := c.Request.Context()
		n, err := counter.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("rate limit %s: %v", class, err)
			c.Next()
			return
		}
		if n == 1 {
			counter.Expire(ctx, key, window)
		}
		if n > int64(limit) {
			reset := time.Unix(0, (slot+1)*int64(window))
			retry := int(reset.Sub(t).Seconds() + 0.999)
			if retry < 1 {
				retry = 1
			}
			respondError(c, apierr.RateLimited(retry))
			return
		}
		c.Next()
	}
}

type RequestRecorder interface {
	RecordRequest(ctx context.Context, latency time.Duration, failed bool)
}

// RequestMetrics counts every request and its latency. Server errors count as
// failures.
func RequestMetrics(rec RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if rec != nil {
			rec.RecordRequest(c.Request.Context(), time.Since(start), c.Writer.Status() >= http.StatusInternalServerError)
		}
	}
}
