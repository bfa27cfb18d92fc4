package repository

import (
	"context"
	"time"

	"nsn-odds-data/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const requestDataColumns = `id, provider, provider_id, sport, market, is_ended, event_date, last_refreshed, created_at, updated_at`

type RequestDataRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewRequestDataRepository(pool PgxPool, tracer trace.Tracer) *RequestDataRepository {
	return &RequestDataRepository{pool: pool, tracer: tracer}
}

func scanRequestData(row pgx.Row) (*domain.RequestData, error) {
	rd := &domain.RequestData{}
	err := row.Scan(&rd.ID, &rd.Provider, &rd.ProviderID, &rd.Sport, &rd.Market,
		&rd.IsEnded, &rd.EventDate, &rd.LastRefreshed, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return rd, nil
}

// GetOrCreate returns the record for (provider, providerID, market), inserting
// it when missing. An existing record keeps its sport and state.
func (r *RequestDataRepository) GetOrCreate(ctx context.Context, provider, providerID, sport, market string) (*domain.RequestData, error) {
	ctx, span := r.tracer.Start(ctx, "request-data-repo.get-or-create")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO request_data (provider, provider_id, sport, market)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (provider, provider_id, market) DO UPDATE SET
		     provider = EXCLUDED.provider
		 RETURNING `+requestDataColumns,
		provider, providerID, sport, market,
	)
	return scanRequestData(row)
}

func (r *RequestDataRepository) Get(ctx context.Context, id uuid.UUID) (*domain.RequestData, error) {
	ctx, span := r.tracer.Start(ctx, "request-data-repo.get")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT `+requestDataColumns+` FROM request_data WHERE id = $1`, id)
	return scanRequestData(row)
}

// ListActive returns every record whose event has not ended.
func (r *RequestDataRepository) ListActive(ctx context.Context) ([]*domain.RequestData, error) {
	ctx, span := r.tracer.Start(ctx, "request-data-repo.list-active")
	defer span.End()

	return r.list(ctx,
		`SELECT `+requestDataColumns+` FROM request_data
		 WHERE is_ended = FALSE
		 ORDER BY event_date NULLS FIRST`)
}

// ListExpired returns ended records untouched since cutoff and any record
// whose event started before cutoff.
func (r *RequestDataRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]*domain.RequestData, error) {
	ctx, span := r.tracer.Start(ctx, "request-data-repo.list-expired")
	defer span.End()

	return r.list(ctx,
		`SELECT `+requestDataColumns+` FROM request_data
		 WHERE (is_ended = TRUE AND updated_at < $1)
		    OR (event_date IS NOT NULL AND event_date < $1)`,
		cutoff)
}

func (r *RequestDataRepository) list(ctx context.Context, sql string, args ...any) ([]*domain.RequestData, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.RequestData
	for rows.Next() {
		rd, err := scanRequestData(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// MarkRefreshed records a generation. A nil eventDate keeps the stored one
// and is_ended never flips back to false.
func (r *RequestDataRepository) MarkRefreshed(ctx context.Context, id uuid.UUID, eventDate *time.Time, isEnded bool, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "request-data-repo.mark-refreshed")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE request_data SET
		     event_date = COALESCE($2, event_date),
		     is_ended = is_ended OR $3,
		     last_refreshed = $4,
		     updated_at = NOW()
		 WHERE id = $1`,
		id, eventDate, isEnded, at,
	)
	return err
}

// Delete removes the given records; their static files cascade.
func (r *RequestDataRepository) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, span := r.tracer.Start(ctx, "request-data-repo.delete")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM request_data WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
