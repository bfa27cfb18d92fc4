package repository

import (
	"context"

	"nsn-odds-data/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const whitelistColumns = `id, sport, league_slug, league_name, is_active, created_at`

type WhitelistRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewWhitelistRepository(pool PgxPool, tracer trace.Tracer) *WhitelistRepository {
	return &WhitelistRepository{pool: pool, tracer: tracer}
}

func scanWhitelist(row pgx.Row) (*domain.LeagueWhitelist, error) {
	w := &domain.LeagueWhitelist{}
	if err := row.Scan(&w.ID, &w.Sport, &w.LeagueSlug, &w.LeagueName, &w.IsActive, &w.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return w, nil
}

// ActiveSlugs returns the active league slugs and patterns, optionally for one sport.
func (r *WhitelistRepository) ActiveSlugs(ctx context.Context, sport string) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "whitelist-repo.active-slugs")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT league_slug FROM league_whitelists
		 WHERE is_active = TRUE AND ($1 = '' OR sport = $1)`,
		sport)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

func (r *WhitelistRepository) List(ctx context.Context, sport string) ([]*domain.LeagueWhitelist, error) {
	ctx, span := r.tracer.Start(ctx, "whitelist-repo.list")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT `+whitelistColumns+` FROM league_whitelists
		 WHERE ($1 = '' OR sport = $1)
		 ORDER BY sport, league_slug`,
		sport)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.LeagueWhitelist
	for rows.Next() {
		w, err := scanWhitelist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Upsert adds the league or reactivates and renames an existing entry.
func (r *WhitelistRepository) Upsert(ctx context.Context, sport, slug string, name *string) (*domain.LeagueWhitelist, error) {
	ctx, span := r.tracer.Start(ctx, "whitelist-repo.upsert")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO league_whitelists (sport, league_slug, league_name, is_active)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (sport, league_slug) DO UPDATE SET
		     league_name = EXCLUDED.league_name,
		     is_active = TRUE
		 RETURNING `+whitelistColumns,
		sport, slug, name)
	return scanWhitelist(row)
}

func (r *WhitelistRepository) Remove(ctx context.Context, sport, slug string) error {
	ctx, span := r.tracer.Start(ctx, "whitelist-repo.remove")
	defer span.End()

	return affectedOne(r.pool.Exec(ctx,
		`DELETE FROM league_whitelists WHERE sport = $1 AND league_slug = $2`, sport, slug))
}

func (r *WhitelistRepository) SetActive(ctx context.Context, sport, slug string, active bool) error {
	ctx, span := r.tracer.Start(ctx, "whitelist-repo.set-active")
	defer span.End()

	return affectedOne(r.pool.Exec(ctx,
		`UPDATE league_whitelists SET is_active = $3 WHERE sport = $1 AND league_slug = $2`,
		sport, slug, active))
}

// InsertMissing adds entries that are not yet present and reports how many
// were inserted. Existing entries are left untouched.
func (r *WhitelistRepository) InsertMissing(ctx context.Context, entries []domain.LeagueWhitelist) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	ctx, span := r.tracer.Start(ctx, "whitelist-repo.insert-missing")
	defer span.End()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO league_whitelists (sport, league_slug, league_name, is_active)
			 VALUES ($1, $2, $3, TRUE)
			 ON CONFLICT (sport, league_slug) DO NOTHING`,
			e.Sport, e.LeagueSlug, e.LeagueName,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	added := 0
	for range entries {
		tag, err := br.Exec()
		if err != nil {
			return added, err
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}
