package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/cache"
	"nsn-odds-data/internal/config"
	"nsn-odds-data/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	requestTimeout    = 30 * time.Second
	maxErrorBody      = 500
	defaultRetryAfter = 60
	maxMultiEvents    = 10
	maxArbitrageFetch = 100

	liveEventsTTL  = 30 * time.Second
	oddsUpdatedTTL = 30 * time.Second
	movementsTTL   = 5 * time.Minute
	betsTTL        = 2 * time.Minute
)

// CallRecorder counts outbound provider calls.
type CallRecorder interface {
	RecordAPICall(ctx context.Context)
}

// OddsAPIClient talks to the Odds-API.io v3 REST API. Catalogue and event
// lookups are cached in Redis; odds lookups are not.
type OddsAPIClient struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	tracer     trace.Tracer
	limiter    *RateLimiter
	cache      *cache.Cache
	calls      CallRecorder
	catalogTTL time.Duration
	eventsTTL  time.Duration
	now        func() time.Time
}

// NewOddsAPIClient builds a client from cfg. store may be nil to disable caching.
func NewOddsAPIClient(cfg *config.Config, store *cache.Cache, tracer trace.Tracer) *OddsAPIClient {
	return &OddsAPIClient{
		client:     &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(cfg.OddsAPIBaseURL, "/"),
		apiKey:     cfg.OddsAPIKey,
		tracer:     tracer,
		limiter:    NewPerMinuteLimiter(cfg.OddsAPIRequestsPerMin),
		cache:      store,
		catalogTTL: time.Duration(cfg.CacheTTLSports) * time.Second,
		eventsTTL:  time.Duration(cfg.CacheTTLEvents) * time.Second,
		now:        time.Now,
	}
}

// WithCallRecorder attaches r and returns c.
func (c *OddsAPIClient) WithCallRecorder(r CallRecorder) *OddsAPIClient {
	c.calls = r
	return c
}

// get fetches endpoint, serving and filling the cache when cacheKey is set.
func (c *OddsAPIClient) get(ctx context.Context, endpoint string, params url.Values, cacheKey string, ttl time.Duration) (json.RawMessage, error) {
	if cacheKey != "" {
		var cached json.RawMessage
		hit, err := c.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			log.Printf("odds-api: cache read %s: %v", cacheKey, err)
		}
		if hit {
			return cached, nil
		}
	}

	body, err := c.doRequest(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" && ttl > 0 {
		if err := c.cache.SetJSON(ctx, cacheKey, body, ttl); err != nil {
			log.Printf("odds-api: cache write %s: %v", cacheKey, err)
		}
	}
	return body, nil
}

func (c *OddsAPIClient) doRequest(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	if c.calls != nil {
		c.calls.RecordAPICall(ctx)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apierr.ProviderTimeout(endpoint, int(requestTimeout/time.Second))
		}
		return nil, apierr.ProviderUnavailable(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, apierr.ProviderTimeout(endpoint, int(requestTimeout/time.Second))
		}
		return nil, apierr.ProviderUnavailable(endpoint, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
		if err != nil || retryAfter <= 0 {
			retryAfter = defaultRetryAfter
		}
		return nil, apierr.RateLimited(retryAfter)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, apierr.ProviderError(endpoint, resp.StatusCode, string(body))
	}
	if !json.Valid(body) {
		return nil, apierr.ProviderError(endpoint, resp.StatusCode, "invalid JSON body")
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// decodeList splits a JSON array into its items. Anything else yields nil.
func decodeList(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func isObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}

type rawSport struct {
	Slug   *string `json:"slug"`
	Key    string  `json:"key"`
	Name   *string `json:"name"`
	Title  string  `json:"title"`
	Active *bool   `json:"active"`
}

func (c *OddsAPIClient) GetSports(ctx context.Context) ([]domain.Sport, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-sports")
	defer span.End()

	raw, err := c.get(ctx, "/sports", nil, "sports:all", c.catalogTTL)
	if err != nil {
		return nil, err
	}

	sports := []domain.Sport{}
	for _, item := range decodeList(raw) {
		var s rawSport
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		sport := domain.Sport{Key: s.Key, Title: s.Title, Active: true}
		if s.Slug != nil {
			sport.Key = *s.Slug
		}
		if s.Name != nil {
			sport.Title = *s.Name
		}
		if s.Active != nil {
			sport.Active = *s.Active
		}
		sports = append(sports, sport)
	}
	return sports, nil
}

type rawBookmaker struct {
	Key      *string `json:"key"`
	Slug     string  `json:"slug"`
	Name     *string `json:"name"`
	Title    string  `json:"title"`
	Region   *string `json:"region"`
	IsActive *bool   `json:"isActive"`
	Active   *bool   `json:"active"`
}

func (c *OddsAPIClient) GetBookmakers(ctx context.Context) ([]domain.Bookmaker, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-bookmakers")
	defer span.End()

	raw, err := c.get(ctx, "/bookmakers", nil, "bookmakers:all", c.catalogTTL)
	if err != nil {
		return nil, err
	}

	books := []domain.Bookmaker{}
	for _, item := range decodeList(raw) {
		var b rawBookmaker
		if err := json.Unmarshal(item, &b); err != nil {
			continue
		}
		bm := domain.Bookmaker{Key: b.Slug, Name: b.Title, Region: b.Region, IsActive: true}
		if b.Key != nil {
			bm.Key = *b.Key
		}
		if b.Name != nil {
			bm.Name = *b.Name
		}
		switch {
		case b.IsActive != nil:
			bm.IsActive = *b.IsActive
		case b.Active != nil:
			bm.IsActive = *b.Active
		}
		books = append(books, bm)
	}
	return books, nil
}

type rawLeague struct {
	Name  string   `json:"name"`
	Slug  string   `json:"slug"`
	Sport labelRef `json:"sport"`
}

func (c *OddsAPIClient) GetLeagues(ctx context.Context, sport string) ([]domain.League, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-leagues")
	defer span.End()

	params := url.Values{}
	if sport != "" {
		params.Set("sport", sport)
	}
	raw, err := c.get(ctx, "/leagues", params, "leagues:"+orAll(sport), c.catalogTTL)
	if err != nil {
		return nil, err
	}

	fallback := sport
	if fallback == "" {
		fallback = "football"
	}
	leagues := []domain.League{}
	for _, item := range decodeList(raw) {
		var l rawLeague
		if err := json.Unmarshal(item, &l); err != nil {
			continue
		}
		league := domain.League{Name: l.Name, Slug: l.Slug, Sport: fallback}
		switch {
		case l.Sport.object:
			league.Sport = l.Sport.slugOr(fallback)
		case l.Sport.set:
			league.Sport = l.Sport.text
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

// GetEvent returns nil when the upstream has no parseable event for id.
func (c *OddsAPIClient) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-event")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", id))

	raw, err := c.get(ctx, "/events/"+url.PathEscape(id), nil, "event:"+id, c.eventsTTL)
	if err != nil {
		return nil, err
	}
	if !isObject(raw) {
		return nil, nil
	}
	var ev rawEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Printf("odds-api: parse event %s: %v", id, err)
		return nil, nil
	}
	out := ev.toEvent("", c.now())
	return &out, nil
}

// GetEvents lists events matching f. Date-only bounds are widened to the
// whole day in UTC.
func (c *OddsAPIClient) GetEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-events")
	defer span.End()

	params := url.Values{}
	setIf(params, "sport", f.Sport)
	setIf(params, "league", f.League)
	setIf(params, "status", f.Status)
	if f.DateFrom != "" {
		from := f.DateFrom
		if !strings.Contains(from, "T") {
			from += "T00:00:00Z"
		}
		params.Set("from", from)
	}
	if f.DateTo != "" {
		to := f.DateTo
		if !strings.Contains(to, "T") {
			to += "T23:59:59Z"
		}
		params.Set("to", to)
	}

	raw, err := c.get(ctx, "/events", params, eventsCacheKey(params), c.eventsTTL)
	if err != nil {
		return nil, err
	}
	return c.parseEvents(raw, f.Sport, false), nil
}

// GetLiveEvents lists in-play events. The upstream has no sport filter for
// this endpoint, so sport is applied locally.
func (c *OddsAPIClient) GetLiveEvents(ctx context.Context, sport string) ([]domain.Event, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-live-events")
	defer span.End()

	raw, err := c.get(ctx, "/events/live", nil, "events:live:all", liveEventsTTL)
	if err != nil {
		return nil, err
	}
	events := c.parseEvents(raw, sport, true)
	if sport == "" {
		return events, nil
	}
	filtered := events[:0]
	for _, e := range events {
		if e.Sport.Slug == sport {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (c *OddsAPIClient) parseEvents(raw json.RawMessage, sport string, live bool) []domain.Event {
	now := c.now()
	events := []domain.Event{}
	for _, item := range decodeList(raw) {
		var ev rawEvent
		if err := json.Unmarshal(item, &ev); err != nil {
			log.Printf("odds-api: skip unparseable event: %v", err)
			continue
		}
		if live {
			events = append(events, ev.toLiveEvent(sport, now))
		} else {
			events = append(events, ev.toEvent(sport, now))
		}
	}
	return events
}

func eventsCacheKey(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := params.Get(k); v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return "events:" + strings.Join(parts, ":")
}

// GetOdds fetches and normalizes odds for one event and market. It returns
// nil when no requested bookmaker offers usable odds.
func (c *OddsAPIClient) GetOdds(ctx context.Context, eventID string, bookmakers []string, market domain.Market) (domain.MarketOdds, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-odds")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.id", eventID),
		attribute.String("market", string(market)),
	)

	params := url.Values{}
	params.Set("eventId", eventID)
	params.Set("bookmakers", strings.Join(bookmakers, ","))
	params.Set("markets", market.UpstreamName())

	raw, err := c.get(ctx, "/odds", params, "", 0)
	if err != nil {
		return nil, err
	}
	if !isObject(raw) {
		return nil, nil
	}
	odds, err := TransformOdds(raw, market, c.now().UTC())
	if err != nil {
		log.Printf("odds-api: transform %s odds for %s: %v", market, eventID, err)
		return nil, nil
	}
	return odds, nil
}

// GetOddsMulti fetches up to ten events in parallel. Failed or empty lookups
// are dropped; results keep the order of eventIDs.
func (c *OddsAPIClient) GetOddsMulti(ctx context.Context, eventIDs []string, bookmakers []string, market domain.Market) []domain.MarketOdds {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-odds-multi")
	defer span.End()

	if len(eventIDs) > maxMultiEvents {
		eventIDs = eventIDs[:maxMultiEvents]
	}

	results := make([]domain.MarketOdds, len(eventIDs))
	var wg sync.WaitGroup
	for i, id := range eventIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			odds, err := c.GetOdds(ctx, id, bookmakers, market)
			if err != nil {
				log.Printf("odds-api: multi odds for %s: %v", id, err)
				return
			}
			results[i] = odds
		}(i, id)
	}
	wg.Wait()

	out := make([]domain.MarketOdds, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// GetOddsUpdated returns the raw entries changed since the unix time since.
func (c *OddsAPIClient) GetOddsUpdated(ctx context.Context, since int64, bookmaker, sport, market string) ([]json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-odds-updated")
	defer span.End()

	if market == "" {
		market = "ML"
	}
	params := url.Values{}
	params.Set("since", strconv.FormatInt(since, 10))
	params.Set("market", market)
	setIf(params, "bookmaker", bookmaker)
	setIf(params, "sport", sport)

	key := fmt.Sprintf("odds_updated:%d:%s:%s:%s", since, orAll(bookmaker), orAll(sport), market)
	raw, err := c.get(ctx, "/odds/updated", params, key, oddsUpdatedTTL)
	if err != nil {
		return nil, err
	}
	items := decodeList(raw)
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

// GetOddsMovements returns nil when the upstream has no usable history.
func (c *OddsAPIClient) GetOddsMovements(ctx context.Context, eventID, bookmaker, market string) (*domain.OddsMovements, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-odds-movements")
	defer span.End()

	if market == "" {
		market = "ML"
	}
	params := url.Values{}
	params.Set("eventId", eventID)
	params.Set("bookmaker", bookmaker)
	params.Set("market", market)

	key := fmt.Sprintf("movements:%s:%s:%s", eventID, bookmaker, market)
	raw, err := c.get(ctx, "/odds/movements", params, key, movementsTTL)
	if err != nil {
		return nil, err
	}
	return transformMovements(raw, eventID, bookmaker, market, c.now()), nil
}

func (c *OddsAPIClient) valueBetsFor(ctx context.Context, bookmaker string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("bookmaker", bookmaker)
	params.Set("includeEventDetails", "true")
	raw, err := c.get(ctx, "/value-bets", params, "value_bets:"+bookmaker, betsTTL)
	if err != nil {
		return nil, err
	}
	return decodeList(raw), nil
}

// GetValueBets queries every bookmaker concurrently and merges the results.
// A bookmaker that fails contributes nothing.
func (c *OddsAPIClient) GetValueBets(ctx context.Context, bookmakers []string, f domain.ValueBetFilter) ([]domain.ValueBet, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-value-bets")
	defer span.End()
	span.SetAttributes(attribute.Int("bookmakers", len(bookmakers)))

	perBookmaker := make([][]json.RawMessage, len(bookmakers))
	var wg sync.WaitGroup
	for i, bm := range bookmakers {
		wg.Add(1)
		go func(i int, bm string) {
			defer wg.Done()
			items, err := c.valueBetsFor(ctx, bm)
			if err != nil {
				log.Printf("odds-api: value bets for %s: %v", bm, err)
				return
			}
			perBookmaker[i] = items
		}(i, bm)
	}
	wg.Wait()

	var all []json.RawMessage
	for _, items := range perBookmaker {
		all = append(all, items...)
	}
	return selectValueBets(all, f, c.now()), nil
}

// GetArbitrageBets fetches opportunities across bookmakers in one call. The
// upstream is asked for three times the limit, capped at 100, to leave room
// for local filtering.
func (c *OddsAPIClient) GetArbitrageBets(ctx context.Context, bookmakers []string, f domain.ArbitrageFilter) ([]domain.ArbitrageBet, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-arbitrage-bets")
	defer span.End()

	csv := strings.Join(bookmakers, ",")
	params := url.Values{}
	params.Set("bookmakers", csv)
	params.Set("includeEventDetails", "true")
	params.Set("limit", strconv.Itoa(min(f.Limit*3, maxArbitrageFetch)))

	raw, err := c.get(ctx, "/arbitrage-bets", params, "arbitrage:"+csv, betsTTL)
	if err != nil {
		return nil, err
	}
	return selectArbitrageBets(decodeList(raw), f, c.now()), nil
}

type rawParticipant struct {
	ID      flexString `json:"id"`
	Name    string     `json:"name"`
	Slug    *string    `json:"slug"`
	Sport   labelRef   `json:"sport"`
	Country *string    `json:"country"`
	Logo    *string    `json:"logo"`
}

func (p rawParticipant) toParticipant(sport string) domain.Participant {
	out := domain.Participant{
		ID:      string(p.ID),
		Name:    p.Name,
		Slug:    strings.ReplaceAll(strings.ToLower(p.Name), " ", "-"),
		Sport:   sport,
		Country: p.Country,
		Logo:    p.Logo,
	}
	if p.Slug != nil {
		out.Slug = *p.Slug
	}
	switch {
	case p.Sport.object:
		out.Sport = p.Sport.slugOr(sport)
	case p.Sport.set:
		out.Sport = p.Sport.text
	}
	return out
}

func (c *OddsAPIClient) GetParticipants(ctx context.Context, sport, search string) ([]domain.Participant, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-participants")
	defer span.End()

	params := url.Values{}
	params.Set("sport", sport)
	setIf(params, "search", search)

	raw, err := c.get(ctx, "/participants", params, fmt.Sprintf("participants:%s:%s", sport, orAll(search)), c.catalogTTL)
	if err != nil {
		return nil, err
	}
	participants := []domain.Participant{}
	for _, item := range decodeList(raw) {
		var p rawParticipant
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		participants = append(participants, p.toParticipant(sport))
	}
	return participants, nil
}

// GetParticipant returns nil when the upstream has no such participant.
func (c *OddsAPIClient) GetParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	ctx, span := c.tracer.Start(ctx, "odds-api.get-participant")
	defer span.End()

	raw, err := c.get(ctx, "/participants/"+url.PathEscape(id), nil, "participant:"+id, c.catalogTTL)
	if err != nil {
		return nil, err
	}
	if !isObject(raw) {
		return nil, nil
	}
	var p rawParticipant
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil
	}
	if p.ID == "" {
		p.ID = flexString(id)
	}
	out := p.toParticipant("")
	return &out, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
