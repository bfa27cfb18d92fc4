package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/queue"
	"nsn-odds-data/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type OddsReader interface {
	Sports(ctx context.Context) ([]domain.Sport, error)
	Bookmakers(ctx context.Context, region string) ([]domain.Bookmaker, error)
	Leagues(ctx context.Context, sport string) ([]domain.League, error)
	Odds(ctx context.Context, eventID, region string, market domain.Market, bookmakers []string) (domain.MarketOdds, error)
	OddsMulti(ctx context.Context, eventIDs []string, region string, market domain.Market, bookmakers []string) ([]domain.MarketOdds, error)
	OddsUpdated(ctx context.Context, since int64, region, bookmaker, sport, market string) ([]json.RawMessage, error)
	Movements(ctx context.Context, eventID, region, bookmaker, market string) (*domain.OddsMovements, error)
	ValueBets(ctx context.Context, region string, f domain.ValueBetFilter) ([]domain.ValueBet, error)
	ArbitrageBets(ctx context.Context, region string, f domain.ArbitrageFilter) ([]domain.ArbitrageBet, error)
	Participants(ctx context.Context, sport, search string, limit, offset int) (*service.ParticipantPage, error)
	Participant(ctx context.Context, id string) (*domain.Participant, error)
}

type EventReader interface {
	List(ctx context.Context, f domain.EventFilter, limit, offset int) (*domain.EventList, error)
	Live(ctx context.Context, sport string, limit int) ([]domain.Event, error)
	Search(ctx context.Context, q, sport string, limit int) (*domain.EventList, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	Upcoming(ctx context.Context, leagues []string, limit, offset int) (*domain.EventList, error)
}

type StaticFiles interface {
	Prepare(ctx context.Context, eventID string, market domain.Market) (*domain.RequestData, *domain.StaticFile, error)
	Generate(ctx context.Context, rd *domain.RequestData, file *domain.StaticFile, bookmakers []string, force bool) (service.GenerateOutcome, error)
	FileInfo(ctx context.Context, requestID uuid.UUID) (*domain.StaticFile, error)
	ReadFile(year, month, name string) ([]byte, error)
	Cleanup(ctx context.Context, retentionDays int) (*service.CleanupResult, error)
}

type JobQueue interface {
	Enqueue(ctx context.Context, job queue.GenerateJob) (string, error)
}

type WhitelistAdmin interface {
	List(ctx context.Context, sport string) ([]*domain.LeagueWhitelist, error)
	Add(ctx context.Context, sport, slug string, name *string) (*domain.LeagueWhitelist, error)
	Remove(ctx context.Context, sport, slug string) error
	Toggle(ctx context.Context, sport, slug string, active bool) error
	SyncDefaults(ctx context.Context) (added, total int, err error)
}

type KeyAdmin interface {
	Create(ctx context.Context, name string) (*domain.APIKey, error)
	List(ctx context.Context) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id int64) error
}

type MetricsReporter interface {
	Summary(ctx context.Context) *service.MetricsSummary
	Reset(ctx context.Context) error
}

// Services are the dependencies behind the HTTP routes. Jobs may be nil, in
// which case generation runs inline.
type Services struct {
	Odds      OddsReader
	Events    EventReader
	Files     StaticFiles
	Jobs      JobQueue
	Whitelist WhitelistAdmin
	Keys      KeyAdmin
	Metrics   MetricsReporter
	Regions   *service.RegionFilter
}

type Settings struct {
	RetentionDays  int
	CleanDataToken string
}

// Middleware groups per-route-class handlers installed by RegisterRoutes.
// Nil entries are skipped.
type Middleware struct {
	Auth           gin.HandlerFunc
	Admin          gin.HandlerFunc
	RateLimit      gin.HandlerFunc
	HeavyRateLimit gin.HandlerFunc
	SearchLimit    gin.HandlerFunc
}

type Handler struct {
	tracer   trace.Tracer
	svc      Services
	settings Settings
}

func New(tracer trace.Tracer, svc Services, settings Settings) *Handler {
	return &Handler{tracer: tracer, svc: svc, settings: settings}
}

func chain(hs ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// requires answers 503 when a backing service was not configured.
func requires(ok bool, what string) gin.HandlerFunc {
	if ok {
		return nil
	}
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": what + " unavailable"})
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, mw Middleware) {
	files := requires(h.svc.Files != nil, "static files")
	keys := requires(h.svc.Keys != nil, "api keys")
	whitelist := requires(h.svc.Whitelist != nil, "whitelist")
	events := requires(h.svc.Events != nil, "events")

	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics)
	r.GET("/static/:year/:month/:file", chain(files, h.ServeStatic)...)
	r.POST("/clean-data/:token", chain(files, h.CleanData)...)

	api := r.Group("", chain(mw.Auth)...)
	std := api.Group("", chain(mw.RateLimit)...)
	heavy := api.Group("", chain(mw.HeavyRateLimit)...)
	search := api.Group("", chain(mw.SearchLimit)...)

	std.GET("/sports", h.ListSports)
	std.GET("/bookmakers", h.ListBookmakers)
	std.GET("/leagues", h.ListLeagues)
	std.GET("/participants", h.ListParticipants)
	std.GET("/participants/:id", h.GetParticipant)

	std.GET("/events", chain(events, h.ListEvents)...)
	std.GET("/events/live", chain(events, h.LiveEvents)...)
	search.GET("/events/search", chain(events, h.SearchEvents)...)
	std.GET("/events/upcoming", chain(events, h.UpcomingEvents)...)
	std.GET("/events/:id", chain(events, h.GetEvent)...)

	std.GET("/odds", h.GetOdds)
	std.GET("/odds/multi", h.GetOddsMulti)
	std.GET("/odds/updated", h.GetOddsUpdated)
	std.GET("/odds/movements", h.GetOddsMovements)

	heavy.GET("/value-bets", h.ListValueBets)
	heavy.GET("/arbitrage-bets", h.ListArbitrageBets)
	heavy.POST("/generate", chain(files, h.Generate)...)
	std.GET("/files/:request_id", chain(files, h.GetFileInfo)...)

	admin := r.Group("/admin", chain(mw.Admin)...)
	admin.POST("/api-keys", chain(keys, h.CreateAPIKey)...)
	admin.GET("/api-keys", chain(keys, h.ListAPIKeys)...)
	admin.DELETE("/api-keys/:id", chain(keys, h.RevokeAPIKey)...)
	admin.GET("/whitelist", chain(whitelist, h.ListWhitelist)...)
	admin.GET("/whitelist/:sport", chain(whitelist, h.ListWhitelist)...)
	admin.POST("/whitelist", chain(whitelist, h.AddWhitelist)...)
	admin.POST("/whitelist/sync", chain(whitelist, h.SyncWhitelist)...)
	admin.DELETE("/whitelist/:sport/*league_slug", chain(whitelist, h.RemoveWhitelist)...)
	admin.PATCH("/whitelist/:sport/*league_slug", chain(whitelist, h.ToggleWhitelist)...)
	admin.POST("/metrics/reset", chain(requires(h.svc.Metrics != nil, "metrics"), h.ResetMetrics)...)
}
