package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/cache"
	"nsn-odds-data/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	UpcomingCacheKey = "events:upcoming"
	upcomingSport    = "football"
	upcomingWindow   = 7 * 24 * time.Hour
	minSearchLength  = 2
)

type EventProvider interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	GetEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error)
	GetLiveEvents(ctx context.Context, sport string) ([]domain.Event, error)
}

type EventService struct {
	tracer       trace.Tracer
	provider     EventProvider
	whitelist    *WhitelistService
	cache        *cache.Cache
	majorLeagues []string
	upcomingTTL  time.Duration
	now          func() time.Time
}

func NewEventService(
	tracer trace.Tracer,
	provider EventProvider,
	whitelist *WhitelistService,
	store *cache.Cache,
	majorLeagues []string,
	upcomingTTL time.Duration,
) *EventService {
	return &EventService{
		tracer:       tracer,
		provider:     provider,
		whitelist:    whitelist,
		cache:        store,
		majorLeagues: majorLeagues,
		upcomingTTL:  upcomingTTL,
		now:          time.Now,
	}
}

func validStatus(s string) bool {
	switch domain.EventStatus(s) {
	case "", domain.StatusNotStarted, domain.StatusInProgress, domain.StatusEnded:
		return true
	}
	return false
}

// List returns whitelisted events matching f, paginated after filtering.
func (s *EventService) List(ctx context.Context, f domain.EventFilter, limit, offset int) (*domain.EventList, error) {
	ctx, span := s.tracer.Start(ctx, "event-service.list")
	defer span.End()

	if !validStatus(f.Status) {
		return nil, apierr.Validation("status must be one of not_started, in_progress, ended")
	}
	events, err := s.provider.GetEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	matcher, err := s.whitelist.Matcher(ctx, f.Sport)
	if err != nil {
		return nil, err
	}
	events = FilterEvents(events, matcher)

	return &domain.EventList{
		Data:       paginate(events, limit, offset),
		Pagination: domain.Pagination{Total: len(events), Limit: limit, Offset: offset},
	}, nil
}

func (s *EventService) Live(ctx context.Context, sport string, limit int) ([]domain.Event, error) {
	ctx, span := s.tracer.Start(ctx, "event-service.live")
	defer span.End()

	events, err := s.provider.GetLiveEvents(ctx, sport)
	if err != nil {
		return nil, err
	}
	matcher, err := s.whitelist.Matcher(ctx, sport)
	if err != nil {
		return nil, err
	}
	return paginate(FilterEvents(events, matcher), limit, 0), nil
}

// Search matches q case-insensitively against home and away team names.
func (s *EventService) Search(ctx context.Context, q, sport string, limit int) (*domain.EventList, error) {
	ctx, span := s.tracer.Start(ctx, "event-service.search")
	defer span.End()

	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < minSearchLength {
		return nil, apierr.Validation("q must be at least 2 characters")
	}
	events, err := s.provider.GetEvents(ctx, domain.EventFilter{Sport: sport})
	if err != nil {
		return nil, err
	}

	var matched []domain.Event
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Home), q) || strings.Contains(strings.ToLower(e.Away), q) {
			matched = append(matched, e)
		}
	}
	return &domain.EventList{
		Data:       paginate(matched, limit, 0),
		Pagination: domain.Pagination{Total: len(matched), Limit: limit},
	}, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := s.tracer.Start(ctx, "event-service.get")
	defer span.End()

	ev, err := s.provider.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, apierr.EventNotFound(id)
	}
	return ev, nil
}

// Upcoming serves the cached next-week football list. A leagues override
// filters on league display name.
func (s *EventService) Upcoming(ctx context.Context, leagues []string, limit, offset int) (*domain.EventList, error) {
	ctx, span := s.tracer.Start(ctx, "event-service.upcoming")
	defer span.End()

	var events []domain.Event
	found, err := s.cache.GetJSON(ctx, UpcomingCacheKey, &events)
	if err != nil {
		log.Printf("upcoming events cache read error: %v", err)
	}
	if !found {
		if events, err = s.RefreshUpcoming(ctx); err != nil {
			return nil, err
		}
	}

	if len(leagues) > 0 {
		events = filterByLeagueName(events, leagues)
	}
	return &domain.EventList{
		Data:       paginate(events, limit, offset),
		Pagination: domain.Pagination{Total: len(events), Limit: limit, Offset: offset},
	}, nil
}

// RefreshUpcoming fetches football events for the next seven days in the
// configured major leagues, sorts them by kickoff and caches the result.
func (s *EventService) RefreshUpcoming(ctx context.Context) ([]domain.Event, error) {
	ctx, span := s.tracer.Start(ctx, "event-service.refresh-upcoming")
	defer span.End()

	now := s.now().UTC()
	events, err := s.provider.GetEvents(ctx, domain.EventFilter{
		Sport:    upcomingSport,
		DateFrom: now.Format("2006-01-02"),
		DateTo:   now.Add(upcomingWindow).Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}

	events = filterByLeagueName(events, s.majorLeagues)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	if err := s.cache.SetJSON(ctx, UpcomingCacheKey, events, s.upcomingTTL); err != nil {
		log.Printf("upcoming events cache write error: %v", err)
	}
	return events, nil
}

func filterByLeagueName(events []domain.Event, names []string) []domain.Event {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.TrimSpace(n)] = struct{}{}
	}
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if _, ok := set[e.League.Name]; ok {
			out = append(out, e)
		}
	}
	return out
}
