package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/cache"
	"nsn-odds-data/internal/config"
	"nsn-odds-data/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *memoryStore) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntCmd(ctx)
}

type countingCalls struct{ n atomic.Int64 }

func (c *countingCalls) RecordAPICall(context.Context) { c.n.Add(1) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func newTestClient(store *cache.Cache, rt roundTripFunc) *OddsAPIClient {
	cfg := &config.Config{
		OddsAPIKey:            "secret",
		OddsAPIBaseURL:        "http://example",
		OddsAPIRequestsPerMin: 1000,
		CacheTTLSports:        86400,
		CacheTTLEvents:        300,
	}
	client := NewOddsAPIClient(cfg, store, trace.NewNoopTracerProvider().Tracer("test"))
	client.client = &http.Client{Transport: rt}
	client.limiter = NewRateLimiter(100, time.Millisecond)
	client.now = func() time.Time { return fixedNow }
	return client
}

func TestOddsAPIClientGetOdds(t *testing.T) {
	t.Parallel()

	client := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/odds" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("apiKey") != "secret" || q.Get("eventId") != "123" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		if q.Get("markets") != "Asian Handicap" {
			t.Fatalf("expected upstream market name, got %q", q.Get("markets"))
		}
		if q.Get("bookmakers") != "bet365,betfair" {
			t.Fatalf("unexpected bookmakers: %q", q.Get("bookmakers"))
		}
		return jsonResponse(http.StatusOK, `{"id": 123, "home": "A", "away": "B", "bookmakers": {"Bet365": [{"name": "Asian Handicap", "odds": [{"hdp": -0.5, "home": 1.9, "away": 1.9}]}]}}`), nil
	})

	odds, err := client.GetOdds(context.Background(), "123", []string{"bet365", "betfair"}, domain.MarketAsianHandicap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if odds == nil || odds.MarketKey() != "asian_handicap" || odds.BookmakerCount() != 1 {
		t.Fatalf("unexpected odds: %+v", odds)
	}
}

func TestOddsAPIClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rt         roundTripFunc
		wantCode   string
		wantStatus int
		check      func(t *testing.T, e *apierr.Error)
	}{
		{
			name: "rate limited",
			rt: func(*http.Request) (*http.Response, error) {
				resp := jsonResponse(http.StatusTooManyRequests, `{}`)
				resp.Header.Set("Retry-After", "17")
				return resp, nil
			},
			wantCode:   apierr.CodeRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			check: func(t *testing.T, e *apierr.Error) {
				if e.Details["retry_after"] != 17 {
					t.Fatalf("expected retry_after 17, got %v", e.Details["retry_after"])
				}
			},
		},
		{
			name: "rate limited without header",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{}`), nil
			},
			wantCode:   apierr.CodeRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			check: func(t *testing.T, e *apierr.Error) {
				if e.Details["retry_after"] != defaultRetryAfter {
					t.Fatalf("expected default retry_after, got %v", e.Details["retry_after"])
				}
			},
		},
		{
			name: "server error",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusInternalServerError, strings.Repeat("x", 800)), nil
			},
			wantCode:   apierr.CodeProviderError,
			wantStatus: http.StatusBadGateway,
			check: func(t *testing.T, e *apierr.Error) {
				if body, _ := e.Details["response_body"].(string); len(body) != maxErrorBody {
					t.Fatalf("expected truncated body, got %d bytes", len(body))
				}
			},
		},
		{
			name: "upstream not found",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusNotFound, `{"error":"not found"}`), nil
			},
			wantCode:   apierr.CodeProviderError,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "timeout",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, context.DeadlineExceeded
			},
			wantCode:   apierr.CodeProviderTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name: "network failure",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			wantCode:   apierr.CodeProviderError,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(nil, tt.rt)
			_, err := client.GetSports(context.Background())
			e, ok := apierr.As(err)
			if !ok {
				t.Fatalf("expected api error, got %v", err)
			}
			if e.Code != tt.wantCode || e.Status != tt.wantStatus {
				t.Fatalf("expected %s/%d, got %s/%d", tt.wantCode, tt.wantStatus, e.Code, e.Status)
			}
			if tt.check != nil {
				tt.check(t, e)
			}
		})
	}
}

func TestOddsAPIClientServesCatalogueFromCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	calls := &countingCalls{}
	client := newTestClient(cache.New(newMemoryStore()), func(*http.Request) (*http.Response, error) {
		hits.Add(1)
		return jsonResponse(http.StatusOK, `[{"slug": "football", "name": "Football"}, {"key": "tennis", "title": "Tennis", "active": false}]`), nil
	})
	client.WithCallRecorder(calls)

	for i := 0; i < 3; i++ {
		sports, err := client.GetSports(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sports) != 2 {
			t.Fatalf("expected 2 sports, got %d", len(sports))
		}
		if sports[0] != (domain.Sport{Key: "football", Title: "Football", Active: true}) {
			t.Fatalf("unexpected first sport: %+v", sports[0])
		}
		if sports[1].Active {
			t.Fatalf("expected tennis inactive")
		}
	}
	if hits.Load() != 1 || calls.n.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d requests and %d recorded", hits.Load(), calls.n.Load())
	}
}

func TestOddsAPIClientGetEventsExpandsDates(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	client := newTestClient(cache.New(store), func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("from") != "2026-03-10T00:00:00Z" || q.Get("to") != "2026-03-11T23:59:59Z" {
			t.Fatalf("unexpected date range: %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, `[
			{"id": 1, "home": "A", "away": "B", "date": "2026-03-10T18:00:00Z", "status": "settled", "sport": {"name": "Football", "slug": "football"}, "league": {"name": "Premier League", "slug": "premier-league"}},
			{"id": 2, "home_team": "C", "away_team": "D", "status": "live", "league": "Serie A"}
		]`), nil
	})

	events, err := client.GetEvents(context.Background(), domain.EventFilter{
		Sport:    "football",
		DateFrom: "2026-03-10",
		DateTo:   "2026-03-11",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Status != domain.StatusEnded || events[0].League.Slug != "premier-league" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Status != domain.StatusInProgress || events[1].Home != "C" || events[1].League.Name != "Serie A" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if !events[1].Date.Equal(fixedNow) {
		t.Fatalf("expected missing date to fall back to now, got %v", events[1].Date)
	}

	key := "events:from=2026-03-10T00:00:00Z:sport=football:to=2026-03-11T23:59:59Z"
	if _, ok := store.data[key]; !ok {
		t.Fatalf("expected cache entry %s, have %v", key, store.data)
	}
}

func TestOddsAPIClientGetLiveEventsFiltersSport(t *testing.T) {
	t.Parallel()

	client := newTestClient(nil, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[
			{"id": 1, "home": "A", "away": "B", "sport": {"slug": "football"}, "scores": {"home": 2, "away": "1"}, "minute": 67, "period": "2H"},
			{"id": 2, "home": "C", "away": "D", "sport": {"slug": "basketball"}}
		]`), nil
	})

	events, err := client.GetLiveEvents(context.Background(), "football")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Scores == nil || ev.Scores.Home != 2 || ev.Scores.Away != 1 {
		t.Fatalf("unexpected scores: %+v", ev.Scores)
	}
	if ev.Minute == nil || *ev.Minute != 67 || ev.Period == nil || *ev.Period != "2H" {
		t.Fatalf("unexpected clock: %+v", ev)
	}
}

func TestOddsAPIClientGetOddsMultiDropsFailures(t *testing.T) {
	t.Parallel()

	client := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Query().Get("eventId") {
		case "1":
			return jsonResponse(http.StatusOK, `{"id": 1, "bookmakers": {"Bet365": [{"name": "ML", "odds": [{"home": 2, "draw": 3, "away": 4}]}]}}`), nil
		case "2":
			return jsonResponse(http.StatusOK, `{"id": 2, "bookmakers": {}}`), nil
		default:
			return jsonResponse(http.StatusBadGateway, `down`), nil
		}
	})

	results := client.GetOddsMulti(context.Background(), []string{"1", "2", "3"}, []string{"bet365"}, domain.Market1X2)
	if len(results) != 1 || results[0].EventInfo().ID != "1" {
		t.Fatalf("expected only event 1, got %+v", results)
	}
}

func TestOddsAPIClientGetValueBetsToleratesBookmakerFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Query().Get("bookmaker") {
		case "betano":
			return jsonResponse(http.StatusOK, `[
				{"id": "a", "eventId": 1, "bookmaker": "Betano", "betSide": "home", "expectedValue": 5.5, "market": {"name": "ML", "home": "2.0", "away": "3.0"}, "bookmakerOdds": {"home": "2.2", "draw": "N/A", "away": "3.1"}, "event": {"home": "A", "away": "B", "sport": "Football", "league": "Brazil - Serie A"}},
				{"id": "b", "eventId": 2, "bookmaker": "Betano", "expectedValue": 1.0, "event": {"home": "C", "away": "D", "sport": "Football"}}
			]`), nil
		default:
			return nil, errors.New("boom")
		}
	})

	bets, err := client.GetValueBets(context.Background(), []string{"betano", "pixbet"}, domain.ValueBetFilter{MinEV: 2.0, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bets) != 1 || bets[0].ID != "a" {
		t.Fatalf("expected only bet a, got %+v", bets)
	}
	if bets[0].BookmakerOdds.Draw != nil {
		t.Fatalf("expected N/A draw to be dropped")
	}
}

func TestOddsAPIClientGetArbitrageBetsCapsFetch(t *testing.T) {
	t.Parallel()

	tests := map[int]string{5: "15", 40: "100"}
	for limit, want := range tests {
		client := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
			if got := req.URL.Query().Get("limit"); got != want {
				t.Fatalf("limit %d: expected upstream limit %s, got %s", limit, want, got)
			}
			return jsonResponse(http.StatusOK, `[]`), nil
		})
		bets, err := client.GetArbitrageBets(context.Background(), []string{"bet365", "betfair"}, domain.ArbitrageFilter{MinProfit: 1, Limit: limit})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bets) != 0 {
			t.Fatalf("expected no bets, got %d", len(bets))
		}
	}
}

func TestOddsAPIClientGetParticipant(t *testing.T) {
	t.Parallel()

	client := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/participants/42" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"name": "Real Madrid", "sport": "football"}`), nil
	})

	p, err := client.GetParticipant(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || p.ID != "42" || p.Slug != "real-madrid" || p.Sport != "football" {
		t.Fatalf("unexpected participant: %+v", p)
	}
}
