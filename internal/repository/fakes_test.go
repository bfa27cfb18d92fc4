package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type call struct {
	sql  string
	args []any
}

type fakePool struct {
	calls    []call
	row      []any
	rowErr   error
	rows     [][]any
	queryErr error
	execTag  string
	execErr  error
	batchTag []string
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.calls = append(p.calls, call{sql, args})
	return pgconn.NewCommandTag(p.execTag), p.execErr
}

func (p *fakePool) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	for _, q := range b.QueuedQueries {
		p.calls = append(p.calls, call{q.SQL, q.Arguments})
	}
	return &fakeBatch{tags: p.batchTag}
}

func (p *fakePool) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.calls = append(p.calls, call{sql, args})
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	return &fakeRows{data: p.rows, pos: -1}, nil
}

func (p *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.calls = append(p.calls, call{sql, args})
	return fakeRow{values: p.row, err: p.rowErr}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.data[r.pos]) }

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos], nil }

type fakeBatch struct {
	tags []string
	pos  int
}

func (b *fakeBatch) Exec() (pgconn.CommandTag, error) {
	if b.pos >= len(b.tags) {
		return pgconn.CommandTag{}, fmt.Errorf("no more results")
	}
	tag := pgconn.NewCommandTag(b.tags[b.pos])
	b.pos++
	return tag, nil
}

func (b *fakeBatch) Query() (pgx.Rows, error) { return nil, fmt.Errorf("not supported") }
func (b *fakeBatch) QueryRow() pgx.Row        { return fakeRow{err: fmt.Errorf("not supported")} }
func (b *fakeBatch) Close() error             { return nil }

// assign copies values into Scan destinations, wrapping into pointers where
// the destination is nullable.
func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if dv.Kind() == reflect.Pointer && v.Type() != dv.Type() {
			p := reflect.New(dv.Type().Elem())
			p.Elem().Set(v)
			dv.Set(p)
			continue
		}
		dv.Set(v)
	}
	return nil
}
