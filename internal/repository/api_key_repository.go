package repository

import (
	"context"
	"time"

	"nsn-odds-data/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const apiKeyColumns = `id, key, name, is_active, created_at, last_used_at`

type APIKeyRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAPIKeyRepository(pool PgxPool, tracer trace.Tracer) *APIKeyRepository {
	return &APIKeyRepository{pool: pool, tracer: tracer}
}

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	k := &domain.APIKey{}
	if err := row.Scan(&k.ID, &k.Key, &k.Name, &k.IsActive, &k.CreatedAt, &k.LastUsedAt); err != nil {
		return nil, notFound(err)
	}
	return k, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key, name string) (*domain.APIKey, error) {
	ctx, span := r.tracer.Start(ctx, "api-key-repo.create")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO api_keys (key, name) VALUES ($1, $2) RETURNING `+apiKeyColumns,
		key, name)
	return scanAPIKey(row)
}

// GetActive returns the key only while it is active.
func (r *APIKeyRepository) GetActive(ctx context.Context, key string) (*domain.APIKey, error) {
	ctx, span := r.tracer.Start(ctx, "api-key-repo.get-active")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key = $1 AND is_active = TRUE`, key)
	return scanAPIKey(row)
}

func (r *APIKeyRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "api-key-repo.touch")
	defer span.End()

	_, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *APIKeyRepository) List(ctx context.Context) ([]*domain.APIKey, error) {
	ctx, span := r.tracer.Start(ctx, "api-key-repo.list")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*domain.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Revoke deactivates key id, reporting ErrNotFound for unknown ids.
func (r *APIKeyRepository) Revoke(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "api-key-repo.revoke")
	defer span.End()

	return affectedOne(r.pool.Exec(ctx, `UPDATE api_keys SET is_active = FALSE WHERE id = $1`, id))
}

func (r *APIKeyRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "api-key-repo.delete")
	defer span.End()

	return affectedOne(r.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id))
}
