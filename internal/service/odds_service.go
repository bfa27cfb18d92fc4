package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	MaxMultiEvents = 10

	DefaultMinEV          = 2.0
	DefaultValueBetLimit  = 10
	DefaultMinProfit      = 1.0
	DefaultArbitrageLimit = 5
	maxBetLimit           = 50
)

// OddsProvider is the upstream odds source behind OddsService.
type OddsProvider interface {
	GetSports(ctx context.Context) ([]domain.Sport, error)
	GetBookmakers(ctx context.Context) ([]domain.Bookmaker, error)
	GetLeagues(ctx context.Context, sport string) ([]domain.League, error)
	GetOdds(ctx context.Context, eventID string, bookmakers []string, market domain.Market) (domain.MarketOdds, error)
	GetOddsMulti(ctx context.Context, eventIDs []string, bookmakers []string, market domain.Market) []domain.MarketOdds
	GetOddsUpdated(ctx context.Context, since int64, bookmaker, sport, market string) ([]json.RawMessage, error)
	GetOddsMovements(ctx context.Context, eventID, bookmaker, market string) (*domain.OddsMovements, error)
	GetValueBets(ctx context.Context, bookmakers []string, f domain.ValueBetFilter) ([]domain.ValueBet, error)
	GetArbitrageBets(ctx context.Context, bookmakers []string, f domain.ArbitrageFilter) ([]domain.ArbitrageBet, error)
	GetParticipants(ctx context.Context, sport, search string) ([]domain.Participant, error)
	GetParticipant(ctx context.Context, id string) (*domain.Participant, error)
}

// OddsService applies region rules and request defaults on top of the provider.
type OddsService struct {
	tracer   trace.Tracer
	provider OddsProvider
	regions  *RegionFilter
}

func NewOddsService(tracer trace.Tracer, provider OddsProvider, regions *RegionFilter) *OddsService {
	return &OddsService{tracer: tracer, provider: provider, regions: regions}
}

func (s *OddsService) Regions() *RegionFilter { return s.regions }

func requireRegion(region string) error {
	if strings.TrimSpace(region) == "" {
		return apierr.Validation("region is required")
	}
	return nil
}

// restrict drops bookmakers the upstream returned outside region and reports
// whether any remain.
func (s *OddsService) restrict(odds domain.MarketOdds, region string) bool {
	if odds == nil {
		return false
	}
	return odds.RetainBookmakers(func(key string) bool { return s.regions.Allows(region, key) }) > 0
}

// Odds returns one market document for eventID. Missing or empty odds are a 404.
func (s *OddsService) Odds(ctx context.Context, eventID, region string, market domain.Market, bookmakers []string) (domain.MarketOdds, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.odds")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", eventID), attribute.String("region", region))

	if strings.TrimSpace(eventID) == "" {
		return nil, apierr.Validation("eventId is required")
	}
	if err := requireRegion(region); err != nil {
		return nil, err
	}
	bms, err := s.regions.BookmakersForRegion(region, bookmakers)
	if err != nil {
		return nil, err
	}

	odds, err := s.provider.GetOdds(ctx, eventID, bms, market)
	if err != nil {
		return nil, err
	}
	if !s.restrict(odds, region) {
		return nil, apierr.NotFound(fmt.Sprintf("No odds available for event %s", eventID))
	}
	return odds, nil
}

// OddsMulti fetches between one and MaxMultiEvents events. Events without
// odds are left out.
func (s *OddsService) OddsMulti(ctx context.Context, eventIDs []string, region string, market domain.Market, bookmakers []string) ([]domain.MarketOdds, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.odds-multi")
	defer span.End()

	if len(eventIDs) == 0 || len(eventIDs) > MaxMultiEvents {
		return nil, apierr.Validation(fmt.Sprintf("eventIds must contain between 1 and %d ids", MaxMultiEvents))
	}
	if err := requireRegion(region); err != nil {
		return nil, err
	}
	bms, err := s.regions.BookmakersForRegion(region, bookmakers)
	if err != nil {
		return nil, err
	}

	results := s.provider.GetOddsMulti(ctx, eventIDs, bms, market)
	out := make([]domain.MarketOdds, 0, len(results))
	for _, odds := range results {
		if s.restrict(odds, region) {
			out = append(out, odds)
		}
	}
	return out, nil
}

// defaultBookmaker checks bookmaker against region, picking the region's
// first bookmaker when none is given.
func (s *OddsService) defaultBookmaker(bookmaker, region string) (string, error) {
	if err := requireRegion(region); err != nil {
		return "", err
	}
	bookmaker = normalizeKey(bookmaker)
	if bookmaker == "" {
		allowed, err := s.regions.AllowedBookmakers(region)
		if err != nil {
			return "", err
		}
		if len(allowed) == 0 {
			return "", apierr.Validation(fmt.Sprintf("Region '%s' has no bookmakers", region))
		}
		return allowed[0], nil
	}
	if err := s.regions.ValidateBookmakerAccess(bookmaker, region); err != nil {
		return "", err
	}
	return bookmaker, nil
}

func (s *OddsService) OddsUpdated(ctx context.Context, since int64, region, bookmaker, sport, market string) ([]json.RawMessage, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.odds-updated")
	defer span.End()

	if since <= 0 {
		return nil, apierr.Validation("since must be a positive unix timestamp")
	}
	bm, err := s.defaultBookmaker(bookmaker, region)
	if err != nil {
		return nil, err
	}
	return s.provider.GetOddsUpdated(ctx, since, bm, sport, market)
}

func (s *OddsService) Movements(ctx context.Context, eventID, region, bookmaker, market string) (*domain.OddsMovements, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.movements")
	defer span.End()

	if strings.TrimSpace(eventID) == "" {
		return nil, apierr.Validation("eventId is required")
	}
	bm, err := s.defaultBookmaker(bookmaker, region)
	if err != nil {
		return nil, err
	}
	m, err := s.provider.GetOddsMovements(ctx, eventID, bm, market)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apierr.NotFound("No odds movements found for this event")
	}
	return m, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// ValueBets aggregates value bets across every bookmaker licensed in region.
func (s *OddsService) ValueBets(ctx context.Context, region string, f domain.ValueBetFilter) ([]domain.ValueBet, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.value-bets")
	defer span.End()

	if err := requireRegion(region); err != nil {
		return nil, err
	}
	bms, err := s.regions.AllowedBookmakers(region)
	if err != nil {
		return nil, err
	}
	if f.MinEV < 0 {
		return nil, apierr.Validation("minEV must be >= 0")
	}
	f.Limit = clampLimit(f.Limit, DefaultValueBetLimit, maxBetLimit)
	f.Bookmakers = bms

	bets, err := s.provider.GetValueBets(ctx, bms, f)
	if err != nil {
		return nil, err
	}
	if bets == nil {
		bets = []domain.ValueBet{}
	}
	return bets, nil
}

func (s *OddsService) ArbitrageBets(ctx context.Context, region string, f domain.ArbitrageFilter) ([]domain.ArbitrageBet, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.arbitrage-bets")
	defer span.End()

	if err := requireRegion(region); err != nil {
		return nil, err
	}
	bms, err := s.regions.AllowedBookmakers(region)
	if err != nil {
		return nil, err
	}
	if f.MinProfit < 0 {
		return nil, apierr.Validation("minProfit must be >= 0")
	}
	f.Limit = clampLimit(f.Limit, DefaultArbitrageLimit, maxBetLimit)

	bets, err := s.provider.GetArbitrageBets(ctx, bms, f)
	if err != nil {
		return nil, err
	}
	if bets == nil {
		bets = []domain.ArbitrageBet{}
	}
	return bets, nil
}

func (s *OddsService) Sports(ctx context.Context) ([]domain.Sport, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.sports")
	defer span.End()

	return s.provider.GetSports(ctx)
}

// Bookmakers lists upstream bookmakers, limited to region when one is given.
func (s *OddsService) Bookmakers(ctx context.Context, region string) ([]domain.Bookmaker, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.bookmakers")
	defer span.End()

	if region != "" {
		if _, err := s.regions.AllowedBookmakers(region); err != nil {
			return nil, err
		}
	}
	books, err := s.provider.GetBookmakers(ctx)
	if err != nil {
		return nil, err
	}
	if region != "" {
		books = FilterBookmakers(s.regions, books, region, func(b domain.Bookmaker) string { return b.Key })
	}
	return books, nil
}

func (s *OddsService) Leagues(ctx context.Context, sport string) ([]domain.League, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.leagues")
	defer span.End()

	return s.provider.GetLeagues(ctx, sport)
}

type ParticipantPage struct {
	Data  []domain.Participant `json:"data"`
	Total int                  `json:"total"`
}

func (s *OddsService) Participants(ctx context.Context, sport, search string, limit, offset int) (*ParticipantPage, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.participants")
	defer span.End()

	if strings.TrimSpace(sport) == "" {
		return nil, apierr.Validation("sport is required")
	}
	all, err := s.provider.GetParticipants(ctx, sport, search)
	if err != nil {
		return nil, err
	}
	return &ParticipantPage{Data: paginate(all, limit, offset), Total: len(all)}, nil
}

func (s *OddsService) Participant(ctx context.Context, id string) (*domain.Participant, error) {
	ctx, span := s.tracer.Start(ctx, "odds-service.participant")
	defer span.End()

	p, err := s.provider.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("Participant not found")
	}
	return p, nil
}

// paginate returns items[offset:offset+limit], clipped to the slice and never nil.
func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
