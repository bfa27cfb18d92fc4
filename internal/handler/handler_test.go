package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/queue"
	"nsn-odds-data/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("handler-test")

func testRegions() *service.RegionFilter {
	return service.NewRegionFilter(map[string][]string{
		"br": {"betano", "sportingbet"},
		"uk": {"bet365", "betfair"},
	})
}

// newTestRouter wires h into a fresh engine with no middleware.
func newTestRouter(h *Handler, mw Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r, mw)
	return r
}

func doRequest(r http.Handler, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("parse error: %v (body %s)", err, w.Body.String())
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error
}

type providerStub struct {
	odds       domain.MarketOdds
	multi      []domain.MarketOdds
	movements  *domain.OddsMovements
	valueBets  []domain.ValueBet
	arbs       []domain.ArbitrageBet
	err        error
	lastBooks  []string
	lastVBFilt domain.ValueBetFilter
}

func (p *providerStub) GetSports(context.Context) ([]domain.Sport, error) {
	return []domain.Sport{{Key: "football", Title: "Football", Active: true}}, p.err
}

func (p *providerStub) GetBookmakers(context.Context) ([]domain.Bookmaker, error) {
	return []domain.Bookmaker{{Key: "betano", Name: "Betano"}, {Key: "bet365", Name: "Bet365"}}, p.err
}

func (p *providerStub) GetLeagues(context.Context, string) ([]domain.League, error) {
	return nil, p.err
}

func (p *providerStub) GetOdds(_ context.Context, _ string, bookmakers []string, _ domain.Market) (domain.MarketOdds, error) {
	p.lastBooks = bookmakers
	return p.odds, p.err
}

func (p *providerStub) GetOddsMulti(_ context.Context, _ []string, bookmakers []string, _ domain.Market) []domain.MarketOdds {
	p.lastBooks = bookmakers
	return p.multi
}

func (p *providerStub) GetOddsUpdated(context.Context, int64, string, string, string) ([]json.RawMessage, error) {
	return []json.RawMessage{json.RawMessage(`{"id":"1"}`)}, p.err
}

func (p *providerStub) GetOddsMovements(context.Context, string, string, string) (*domain.OddsMovements, error) {
	return p.movements, p.err
}

func (p *providerStub) GetValueBets(_ context.Context, bookmakers []string, f domain.ValueBetFilter) ([]domain.ValueBet, error) {
	p.lastBooks = bookmakers
	p.lastVBFilt = f
	return p.valueBets, p.err
}

func (p *providerStub) GetArbitrageBets(_ context.Context, bookmakers []string, _ domain.ArbitrageFilter) ([]domain.ArbitrageBet, error) {
	p.lastBooks = bookmakers
	return p.arbs, p.err
}

func (p *providerStub) GetParticipants(context.Context, string, string) ([]domain.Participant, error) {
	return nil, p.err
}

func (p *providerStub) GetParticipant(context.Context, string) (*domain.Participant, error) {
	return nil, p.err
}

func sampleOdds(keys ...string) *domain.OddsOutput {
	out := &domain.OddsOutput{
		Event:  domain.EventData{ID: "123", Sport: "football", HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		Market: string(domain.Market1X2),
	}
	for _, k := range keys {
		out.Bookmakers = append(out.Bookmakers, domain.BookmakerOdds{Key: k, Odds: domain.OddsValues{Home: 2.1, Draw: 3.3, Away: 3.6}})
	}
	return out
}

type filesStub struct {
	rd          *domain.RequestData
	file        *domain.StaticFile
	generated   int
	lastBooks   []string
	info        *domain.StaticFile
	data        []byte
	cleanup     *service.CleanupResult
	cleanupDays int
	err         error
}

func (f *filesStub) Prepare(_ context.Context, eventID string, market domain.Market) (*domain.RequestData, *domain.StaticFile, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if strings.TrimSpace(eventID) == "" {
		return nil, nil, apierr.Validation("event_id is required")
	}
	if f.rd == nil {
		f.rd = &domain.RequestData{ID: uuid.New(), ProviderID: eventID, Market: string(market)}
		f.file = &domain.StaticFile{ID: uuid.New(), RequestDataID: f.rd.ID, Path: "2026/03/odds-" + eventID + "-abcd1234.json"}
	}
	return f.rd, f.file, nil
}

func (f *filesStub) Generate(_ context.Context, _ *domain.RequestData, _ *domain.StaticFile, bookmakers []string, _ bool) (service.GenerateOutcome, error) {
	f.generated++
	f.lastBooks = bookmakers
	return service.OutcomeUpdated, nil
}

func (f *filesStub) FileInfo(context.Context, uuid.UUID) (*domain.StaticFile, error) {
	if f.info == nil {
		return nil, apierr.NotFound("Request not found")
	}
	return f.info, nil
}

func (f *filesStub) ReadFile(year, month, name string) ([]byte, error) {
	if f.data == nil {
		return nil, apierr.NotFound("File not found")
	}
	return f.data, nil
}

func (f *filesStub) Cleanup(_ context.Context, retentionDays int) (*service.CleanupResult, error) {
	f.cleanupDays = retentionDays
	return f.cleanup, nil
}

type jobsStub struct {
	jobs []queue.GenerateJob
}

func (j *jobsStub) Enqueue(_ context.Context, job queue.GenerateJob) (string, error) {
	j.jobs = append(j.jobs, job)
	return "1-0", nil
}

type metricsStub struct {
	recorded int
	failed   int
	resets   int
}

func (m *metricsStub) Summary(context.Context) *service.MetricsSummary {
	return &service.MetricsSummary{CollectedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (m *metricsStub) Reset(context.Context) error {
	m.resets++
	return nil
}

func (m *metricsStub) RecordRequest(_ context.Context, _ time.Duration, failed bool) {
	m.recorded++
	if failed {
		m.failed++
	}
}
