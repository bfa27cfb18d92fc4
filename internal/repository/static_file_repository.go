package repository

import (
	"context"

	"nsn-odds-data/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const staticFileColumns = `id, request_data_id, path, hash, last_modified, created_at, updated_at`

type StaticFileRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewStaticFileRepository(pool PgxPool, tracer trace.Tracer) *StaticFileRepository {
	return &StaticFileRepository{pool: pool, tracer: tracer}
}

func scanStaticFile(row pgx.Row) (*domain.StaticFile, error) {
	sf := &domain.StaticFile{}
	err := row.Scan(&sf.ID, &sf.RequestDataID, &sf.Path, &sf.Hash, &sf.LastModified, &sf.CreatedAt, &sf.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return sf, nil
}

func (r *StaticFileRepository) Get(ctx context.Context, id uuid.UUID) (*domain.StaticFile, error) {
	ctx, span := r.tracer.Start(ctx, "static-file-repo.get")
	defer span.End()

	row := r.pool.QueryRow(ctx, `SELECT `+staticFileColumns+` FROM static_files WHERE id = $1`, id)
	return scanStaticFile(row)
}

// GetByRequestData returns the oldest file for the record.
func (r *StaticFileRepository) GetByRequestData(ctx context.Context, requestDataID uuid.UUID) (*domain.StaticFile, error) {
	ctx, span := r.tracer.Start(ctx, "static-file-repo.get-by-request-data")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT `+staticFileColumns+` FROM static_files
		 WHERE request_data_id = $1
		 ORDER BY created_at
		 LIMIT 1`,
		requestDataID)
	return scanStaticFile(row)
}

func (r *StaticFileRepository) Create(ctx context.Context, requestDataID uuid.UUID, path string) (*domain.StaticFile, error) {
	ctx, span := r.tracer.Start(ctx, "static-file-repo.create")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO static_files (request_data_id, path)
		 VALUES ($1, $2)
		 RETURNING `+staticFileColumns,
		requestDataID, path)
	return scanStaticFile(row)
}

// UpdateContent stores the hash and modification time of the bytes last written.
func (r *StaticFileRepository) UpdateContent(ctx context.Context, id uuid.UUID, hash string, lastModified int64) error {
	ctx, span := r.tracer.Start(ctx, "static-file-repo.update-content")
	defer span.End()

	return affectedOne(r.pool.Exec(ctx,
		`UPDATE static_files SET hash = $2, last_modified = $3, updated_at = NOW() WHERE id = $1`,
		id, hash, lastModified))
}

// ListPaths returns the paths of every file attached to the given records.
func (r *StaticFileRepository) ListPaths(ctx context.Context, requestDataIDs []uuid.UUID) ([]string, error) {
	if len(requestDataIDs) == 0 {
		return nil, nil
	}
	ctx, span := r.tracer.Start(ctx, "static-file-repo.list-paths")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT path FROM static_files WHERE request_data_id = ANY($1)`, requestDataIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
