package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, _ := strconv.ParseInt(string(f.data[key]), 10, 64)
	cur += value
	f.data[key] = []byte(strconv.FormatInt(cur, 10))
	return redis.NewIntResult(cur, nil)
}

// stubProvider serves canned upstream data for both odds and event lookups.
type stubProvider struct {
	mu sync.Mutex

	odds         map[string]domain.MarketOdds
	oddsErr      error
	oddsCalls    int
	lastBooks    []string
	events       []domain.Event
	eventsCalls  int
	lastFilter   domain.EventFilter
	live         []domain.Event
	event        *domain.Event
	movements    *domain.OddsMovements
	lastMoveBook string
	updated      []json.RawMessage
	valueBets    []domain.ValueBet
	valueFilter  domain.ValueBetFilter
	arbs         []domain.ArbitrageBet
	arbFilter    domain.ArbitrageFilter
	bookmakers   []domain.Bookmaker
	participants []domain.Participant
	participant  *domain.Participant
}

func (p *stubProvider) GetSports(ctx context.Context) ([]domain.Sport, error) {
	return []domain.Sport{{Key: "football", Title: "Football", Active: true}}, nil
}

func (p *stubProvider) GetBookmakers(ctx context.Context) ([]domain.Bookmaker, error) {
	return p.bookmakers, nil
}

func (p *stubProvider) GetLeagues(ctx context.Context, sport string) ([]domain.League, error) {
	return []domain.League{{Name: "Brazil - Brasileiro Serie A", Slug: "brazil-brasileiro-serie-a", Sport: sport}}, nil
}

func (p *stubProvider) GetOdds(ctx context.Context, eventID string, bookmakers []string, market domain.Market) (domain.MarketOdds, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.oddsCalls++
	p.lastBooks = bookmakers
	if p.oddsErr != nil {
		return nil, p.oddsErr
	}
	odds, ok := p.odds[eventID]
	if !ok {
		return nil, nil
	}
	return cloneOdds(odds), nil
}

func (p *stubProvider) GetOddsMulti(ctx context.Context, eventIDs []string, bookmakers []string, market domain.Market) []domain.MarketOdds {
	var out []domain.MarketOdds
	for _, id := range eventIDs {
		if odds, _ := p.GetOdds(ctx, id, bookmakers, market); odds != nil {
			out = append(out, odds)
		}
	}
	return out
}

func (p *stubProvider) GetOddsUpdated(ctx context.Context, since int64, bookmaker, sport, market string) ([]json.RawMessage, error) {
	p.lastMoveBook = bookmaker
	return p.updated, nil
}

func (p *stubProvider) GetOddsMovements(ctx context.Context, eventID, bookmaker, market string) (*domain.OddsMovements, error) {
	p.lastMoveBook = bookmaker
	return p.movements, nil
}

func (p *stubProvider) GetValueBets(ctx context.Context, bookmakers []string, f domain.ValueBetFilter) ([]domain.ValueBet, error) {
	p.lastBooks = bookmakers
	p.valueFilter = f
	return p.valueBets, nil
}

func (p *stubProvider) GetArbitrageBets(ctx context.Context, bookmakers []string, f domain.ArbitrageFilter) ([]domain.ArbitrageBet, error) {
	p.lastBooks = bookmakers
	p.arbFilter = f
	return p.arbs, nil
}

func (p *stubProvider) GetParticipants(ctx context.Context, sport, search string) ([]domain.Participant, error) {
	return p.participants, nil
}

func (p *stubProvider) GetParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	return p.participant, nil
}

func (p *stubProvider) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return p.event, nil
}

func (p *stubProvider) GetEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventsCalls++
	p.lastFilter = f
	return append([]domain.Event(nil), p.events...), nil
}

func (p *stubProvider) GetLiveEvents(ctx context.Context, sport string) ([]domain.Event, error) {
	return append([]domain.Event(nil), p.live...), nil
}

// cloneOdds copies a moneyline document so callers may mutate it.
func cloneOdds(odds domain.MarketOdds) domain.MarketOdds {
	doc, ok := odds.(*domain.OddsOutput)
	if !ok {
		return odds
	}
	cp := *doc
	cp.Bookmakers = append([]domain.BookmakerOdds(nil), doc.Bookmakers...)
	return &cp
}

func moneyline(eventID string, generated time.Time, books ...domain.BookmakerOdds) *domain.OddsOutput {
	return &domain.OddsOutput{
		Event: domain.EventData{
			ID:           eventID,
			Sport:        "football",
			HomeTeam:     "Flamengo",
			AwayTeam:     "Palmeiras",
			CommenceTime: time.Date(2026, 3, 12, 19, 0, 0, 0, time.UTC),
		},
		Market:     "1x2",
		Bookmakers: books,
		Metadata:   domain.OddsMetadata{GeneratedAt: generated},
	}
}

func book(key string, home float64) domain.BookmakerOdds {
	return domain.BookmakerOdds{
		Key:       key,
		Name:      key,
		Odds:      domain.OddsValues{Home: home, Draw: 3.3, Away: 3.6},
		UpdatedAt: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}
}

type fakeWhitelistStore struct {
	slugs    []string
	entries  []*domain.LeagueWhitelist
	inserted []domain.LeagueWhitelist
	err      error
}

func (f *fakeWhitelistStore) ActiveSlugs(ctx context.Context, sport string) ([]string, error) {
	return f.slugs, f.err
}

func (f *fakeWhitelistStore) List(ctx context.Context, sport string) ([]*domain.LeagueWhitelist, error) {
	return f.entries, f.err
}

func (f *fakeWhitelistStore) Upsert(ctx context.Context, sport, slug string, name *string) (*domain.LeagueWhitelist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.LeagueWhitelist{ID: 1, Sport: sport, LeagueSlug: slug, LeagueName: name, IsActive: true}, nil
}

func (f *fakeWhitelistStore) Remove(ctx context.Context, sport, slug string) error {
	return f.err
}

func (f *fakeWhitelistStore) SetActive(ctx context.Context, sport, slug string, active bool) error {
	return f.err
}

func (f *fakeWhitelistStore) InsertMissing(ctx context.Context, entries []domain.LeagueWhitelist) (int, error) {
	f.inserted = entries
	return len(entries) - 3, f.err
}

// memoryRecords backs both the request_data and static_files stores.
type memoryRecords struct {
	mu        sync.Mutex
	requests  map[uuid.UUID]*domain.RequestData
	files     map[uuid.UUID]*domain.StaticFile
	refreshed map[uuid.UUID]int
	deleted   []uuid.UUID
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{
		requests:  make(map[uuid.UUID]*domain.RequestData),
		files:     make(map[uuid.UUID]*domain.StaticFile),
		refreshed: make(map[uuid.UUID]int),
	}
}

func (m *memoryRecords) GetOrCreate(ctx context.Context, provider, providerID, sport, market string) (*domain.RequestData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rd := range m.requests {
		if rd.Provider == provider && rd.ProviderID == providerID && rd.Market == market {
			return rd, nil
		}
	}
	rd := &domain.RequestData{ID: uuid.New(), Provider: provider, ProviderID: providerID, Sport: sport, Market: market}
	m.requests[rd.ID] = rd
	return rd, nil
}

func (m *memoryRecords) Get(ctx context.Context, id uuid.UUID) (*domain.RequestData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rd, ok := m.requests[id]; ok {
		return rd, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryRecords) ListActive(ctx context.Context) ([]*domain.RequestData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RequestData
	for _, rd := range m.requests {
		if !rd.IsEnded {
			out = append(out, rd)
		}
	}
	return out, nil
}

func (m *memoryRecords) ListExpired(ctx context.Context, cutoff time.Time) ([]*domain.RequestData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RequestData
	for _, rd := range m.requests {
		if (rd.IsEnded && rd.UpdatedAt.Before(cutoff)) || (rd.EventDate != nil && rd.EventDate.Before(cutoff)) {
			out = append(out, rd)
		}
	}
	return out, nil
}

func (m *memoryRecords) MarkRefreshed(ctx context.Context, id uuid.UUID, eventDate *time.Time, isEnded bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rd, ok := m.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if eventDate != nil {
		d := *eventDate
		rd.EventDate = &d
	}
	rd.IsEnded = rd.IsEnded || isEnded
	rd.LastRefreshed = &at
	m.refreshed[id]++
	return nil
}

func (m *memoryRecords) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.requests[id]; ok {
			delete(m.requests, id)
			n++
		}
	}
	m.deleted = append(m.deleted, ids...)
	return n, nil
}

type memoryFiles struct{ *memoryRecords }

func (m memoryFiles) Get(ctx context.Context, id uuid.UUID) (*domain.StaticFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok {
		return f, nil
	}
	return nil, repository.ErrNotFound
}

func (m memoryFiles) GetByRequestData(ctx context.Context, requestDataID uuid.UUID) (*domain.StaticFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.RequestDataID == requestDataID {
			return f, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memoryFiles) Create(ctx context.Context, requestDataID uuid.UUID, path string) (*domain.StaticFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := &domain.StaticFile{ID: uuid.New(), RequestDataID: requestDataID, Path: path}
	m.files[f.ID] = f
	return f, nil
}

func (m memoryFiles) UpdateContent(ctx context.Context, id uuid.UUID, hash string, lastModified int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.Hash = &hash
	f.LastModified = &lastModified
	return nil
}

func (m memoryFiles) ListPaths(ctx context.Context, requestDataIDs []uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(requestDataIDs))
	for _, id := range requestDataIDs {
		want[id] = true
	}
	var out []string
	for _, f := range m.files {
		if want[f.RequestDataID] {
			out = append(out, f.Path)
		}
	}
	return out, nil
}

type fakeKeyStore struct {
	keys    map[string]*domain.APIKey
	touched []int64
	err     error
}

func (f *fakeKeyStore) Create(ctx context.Context, key, name string) (*domain.APIKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	k := &domain.APIKey{ID: int64(len(f.keys) + 1), Key: key, Name: name, IsActive: true, CreatedAt: testNow}
	f.keys[key] = k
	return k, nil
}

func (f *fakeKeyStore) GetActive(ctx context.Context, key string) (*domain.APIKey, error) {
	if k, ok := f.keys[key]; ok && k.IsActive {
		return k, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeKeyStore) Touch(ctx context.Context, id int64, at time.Time) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeKeyStore) List(ctx context.Context) ([]*domain.APIKey, error) {
	return nil, f.err
}

func (f *fakeKeyStore) Revoke(ctx context.Context, id int64) error {
	for _, k := range f.keys {
		if k.ID == id {
			k.IsActive = false
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeKeyStore) Delete(ctx context.Context, id int64) error {
	for key, k := range f.keys {
		if k.ID == id {
			delete(f.keys, key)
			return nil
		}
	}
	return repository.ErrNotFound
}
