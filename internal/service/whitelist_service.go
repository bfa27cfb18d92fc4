package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/repository"

	"github.com/pelletier/go-toml/v2"
	"go.opentelemetry.io/otel/trace"
)

//go:embed default_whitelist.toml
var defaultWhitelistTOML []byte

// LeagueMatcher tests league slugs against whitelist entries. Entries holding
// `*`, `?` or `[` are glob patterns; everything else matches exactly.
type LeagueMatcher struct {
	exact    map[string]struct{}
	patterns []string
}

func NewLeagueMatcher(slugs []string) LeagueMatcher {
	m := LeagueMatcher{exact: make(map[string]struct{})}
	for _, s := range slugs {
		if strings.ContainsAny(s, "*?[") {
			m.patterns = append(m.patterns, s)
			continue
		}
		m.exact[s] = struct{}{}
	}
	return m
}

// Empty reports whether the matcher has no entries, in which case nothing is filtered.
func (m LeagueMatcher) Empty() bool {
	return len(m.exact) == 0 && len(m.patterns) == 0
}

func (m LeagueMatcher) Allowed(slug string) bool {
	if _, ok := m.exact[slug]; ok {
		return true
	}
	for _, p := range m.patterns {
		if ok, err := path.Match(p, slug); err == nil && ok {
			return true
		}
	}
	return false
}

// FilterEvents keeps events whose league is whitelisted. An empty matcher keeps everything.
func FilterEvents(events []domain.Event, m LeagueMatcher) []domain.Event {
	if m.Empty() {
		return events
	}
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if m.Allowed(e.League.Slug) {
			out = append(out, e)
		}
	}
	return out
}

type WhitelistStore interface {
	ActiveSlugs(ctx context.Context, sport string) ([]string, error)
	List(ctx context.Context, sport string) ([]*domain.LeagueWhitelist, error)
	Upsert(ctx context.Context, sport, slug string, name *string) (*domain.LeagueWhitelist, error)
	Remove(ctx context.Context, sport, slug string) error
	SetActive(ctx context.Context, sport, slug string, active bool) error
	InsertMissing(ctx context.Context, entries []domain.LeagueWhitelist) (int, error)
}

type WhitelistService struct {
	tracer trace.Tracer
	store  WhitelistStore
}

func NewWhitelistService(tracer trace.Tracer, store WhitelistStore) *WhitelistService {
	return &WhitelistService{tracer: tracer, store: store}
}

// Matcher loads the active whitelist for sport (all sports when empty). A
// nil service or store yields an empty matcher.
func (s *WhitelistService) Matcher(ctx context.Context, sport string) (LeagueMatcher, error) {
	if s == nil || s.store == nil {
		return NewLeagueMatcher(nil), nil
	}
	ctx, span := s.tracer.Start(ctx, "whitelist-service.matcher")
	defer span.End()

	slugs, err := s.store.ActiveSlugs(ctx, sport)
	if err != nil {
		return LeagueMatcher{}, apierr.Database(err)
	}
	return NewLeagueMatcher(slugs), nil
}

func (s *WhitelistService) List(ctx context.Context, sport string) ([]*domain.LeagueWhitelist, error) {
	ctx, span := s.tracer.Start(ctx, "whitelist-service.list")
	defer span.End()

	entries, err := s.store.List(ctx, sport)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if entries == nil {
		entries = []*domain.LeagueWhitelist{}
	}
	return entries, nil
}

// Add upserts an entry and reactivates it.
func (s *WhitelistService) Add(ctx context.Context, sport, slug string, name *string) (*domain.LeagueWhitelist, error) {
	ctx, span := s.tracer.Start(ctx, "whitelist-service.add")
	defer span.End()

	sport, slug = strings.TrimSpace(sport), strings.TrimSpace(slug)
	if sport == "" || slug == "" {
		return nil, apierr.Validation("sport and league_slug are required")
	}
	entry, err := s.store.Upsert(ctx, sport, slug, name)
	if err != nil {
		return nil, apierr.Database(err)
	}
	return entry, nil
}

func (s *WhitelistService) Remove(ctx context.Context, sport, slug string) error {
	ctx, span := s.tracer.Start(ctx, "whitelist-service.remove")
	defer span.End()

	return whitelistErr(s.store.Remove(ctx, sport, slug))
}

func (s *WhitelistService) Toggle(ctx context.Context, sport, slug string, active bool) error {
	ctx, span := s.tracer.Start(ctx, "whitelist-service.toggle")
	defer span.End()

	return whitelistErr(s.store.SetActive(ctx, sport, slug, active))
}

// SyncDefaults inserts the built-in entries that are missing and returns how
// many were added along with the size of the default list.
func (s *WhitelistService) SyncDefaults(ctx context.Context) (added, total int, err error) {
	ctx, span := s.tracer.Start(ctx, "whitelist-service.sync-defaults")
	defer span.End()

	defaults, err := DefaultWhitelist()
	if err != nil {
		return 0, 0, err
	}
	added, err = s.store.InsertMissing(ctx, defaults)
	if err != nil {
		return added, len(defaults), apierr.Database(err)
	}
	log.Printf("Whitelist sync added %d of %d default leagues", added, len(defaults))
	return added, len(defaults), nil
}

func whitelistErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apierr.NotFound("Whitelist entry not found")
	default:
		return apierr.Database(err)
	}
}

type defaultWhitelistFile struct {
	League []struct {
		Sport string `toml:"sport"`
		Slug  string `toml:"slug"`
		Name  string `toml:"name"`
	} `toml:"league"`
}

// DefaultWhitelist returns the embedded list of leagues seeded by SyncDefaults.
func DefaultWhitelist() ([]domain.LeagueWhitelist, error) {
	var doc defaultWhitelistFile
	if err := toml.Unmarshal(defaultWhitelistTOML, &doc); err != nil {
		return nil, fmt.Errorf("parse default whitelist: %w", err)
	}
	out := make([]domain.LeagueWhitelist, 0, len(doc.League))
	for _, l := range doc.League {
		entry := domain.LeagueWhitelist{Sport: l.Sport, LeagueSlug: l.Slug, IsActive: true}
		if l.Name != "" {
			name := l.Name
			entry.LeagueName = &name
		}
		out = append(out, entry)
	}
	return out, nil
}
