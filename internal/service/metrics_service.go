package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyRequests     = "metrics:requests"
	keyErrors       = "metrics:errors"
	keyLatencySum   = "metrics:latency_sum"
	keyLatencyCount = "metrics:latency_count"
	keyCacheHits    = "metrics:cache_hits"
	keyCacheMisses  = "metrics:cache_misses"
	keyAPICalls     = "metrics:api_calls"
	keyLastReset    = "metrics:last_reset"
)

var counterKeys = []string{
	keyRequests, keyErrors, keyLatencySum, keyLatencyCount,
	keyCacheHits, keyCacheMisses, keyAPICalls,
}

type CounterStore interface {
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// MetricsService keeps usage counters in Redis. Counter failures are logged
// and never surface to callers.
type MetricsService struct {
	redis CounterStore
	now   func() time.Time
}

func NewMetricsService(redisClient CounterStore) *MetricsService {
	return &MetricsService{redis: redisClient, now: time.Now}
}

type RequestMetrics struct {
	Total            int64   `json:"total"`
	Errors           int64   `json:"errors"`
	ErrorRatePercent float64 `json:"error_rate_percent"`
}

type LatencyMetrics struct {
	AvgMs   float64 `json:"avg_ms"`
	Samples int64   `json:"samples"`
}

type CacheMetrics struct {
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

type ExternalAPIMetrics struct {
	Calls int64 `json:"calls"`
}

type MetricsSummary struct {
	Requests    RequestMetrics     `json:"requests"`
	Latency     LatencyMetrics     `json:"latency"`
	Cache       CacheMetrics       `json:"cache"`
	ExternalAPI ExternalAPIMetrics `json:"external_api"`
	LastReset   *string            `json:"last_reset"`
	CollectedAt time.Time          `json:"collected_at"`
}

func (s *MetricsService) incr(ctx context.Context, key string, n int64) {
	if s == nil || s.redis == nil {
		return
	}
	if err := s.redis.IncrBy(ctx, key, n).Err(); err != nil {
		log.Printf("metrics: increment %s: %v", key, err)
	}
}

// RecordRequest counts one served request and its latency.
func (s *MetricsService) RecordRequest(ctx context.Context, latency time.Duration, failed bool) {
	s.incr(ctx, keyRequests, 1)
	if failed {
		s.incr(ctx, keyErrors, 1)
	}
	s.incr(ctx, keyLatencySum, latency.Milliseconds())
	s.incr(ctx, keyLatencyCount, 1)
}

func (s *MetricsService) RecordCacheHit(ctx context.Context)  { s.incr(ctx, keyCacheHits, 1) }
func (s *MetricsService) RecordCacheMiss(ctx context.Context) { s.incr(ctx, keyCacheMisses, 1) }
func (s *MetricsService) RecordAPICall(ctx context.Context)   { s.incr(ctx, keyAPICalls, 1) }

func (s *MetricsService) value(ctx context.Context, key string) int64 {
	n, err := s.redis.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("metrics: read %s: %v", key, err)
	}
	return n
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (s *MetricsService) Summary(ctx context.Context) *MetricsSummary {
	if s == nil || s.redis == nil {
		return &MetricsSummary{CollectedAt: time.Now().UTC()}
	}
	sum := &MetricsSummary{CollectedAt: s.now().UTC()}

	requests := s.value(ctx, keyRequests)
	errs := s.value(ctx, keyErrors)
	latencySum := s.value(ctx, keyLatencySum)
	latencyCount := s.value(ctx, keyLatencyCount)
	hits := s.value(ctx, keyCacheHits)
	misses := s.value(ctx, keyCacheMisses)

	sum.Requests = RequestMetrics{Total: requests, Errors: errs, ErrorRatePercent: percent(errs, requests)}
	if latencyCount > 0 {
		sum.Latency.AvgMs = round2(float64(latencySum) / float64(latencyCount))
	}
	sum.Latency.Samples = latencyCount
	sum.Cache = CacheMetrics{Hits: hits, Misses: misses, HitRatePercent: percent(hits, hits+misses)}
	sum.ExternalAPI.Calls = s.value(ctx, keyAPICalls)

	if last, err := s.redis.Get(ctx, keyLastReset).Result(); err == nil {
		sum.LastReset = &last
	}
	return sum
}

// Reset clears every counter and stamps the reset time.
func (s *MetricsService) Reset(ctx context.Context) error {
	if err := s.redis.Del(ctx, counterKeys...).Err(); err != nil {
		return err
	}
	return s.redis.Set(ctx, keyLastReset, s.now().UTC().Format(time.RFC3339), 0).Err()
}
