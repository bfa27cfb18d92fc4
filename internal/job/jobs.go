package job

import (
	"context"
	"log"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/queue"
	"nsn-odds-data/internal/service"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type OddsRefresher interface {
	RefreshActive(ctx context.Context) (service.RefreshResult, error)
}

type UpcomingRefresher interface {
	RefreshUpcoming(ctx context.Context) ([]domain.Event, error)
}

type StaticFileGenerator interface {
	GenerateByID(ctx context.Context, staticFileID uuid.UUID, bookmakers []string) (service.GenerateOutcome, error)
}

// RefreshOdds regenerates static files whose refresh interval has elapsed.
func RefreshOdds(r OddsRefresher) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := r.RefreshActive(ctx)
		return err
	}
}

// RefreshUpcoming rebuilds the cached upcoming events list.
func RefreshUpcoming(r UpcomingRefresher) func(context.Context) error {
	return func(ctx context.Context) error {
		events, err := r.RefreshUpcoming(ctx)
		if err != nil {
			return err
		}
		log.Printf("Upcoming events cache refreshed: %d events", len(events))
		return nil
	}
}

// GenerateWorker handles queued static file generation jobs.
type GenerateWorker struct {
	tracer    trace.Tracer
	generator StaticFileGenerator
}

func NewGenerateWorker(tracer trace.Tracer, generator StaticFileGenerator) *GenerateWorker {
	return &GenerateWorker{tracer: tracer, generator: generator}
}

func (w *GenerateWorker) Handle(ctx context.Context, job queue.GenerateJob) error {
	ctx, span := w.tracer.Start(ctx, "generate-worker.handle")
	defer span.End()
	span.SetAttributes(attribute.String("static_file.id", job.StaticFileID.String()))

	outcome, err := w.generator.GenerateByID(ctx, job.StaticFileID, job.Bookmakers)
	if err != nil {
		return err
	}
	log.Printf("Static file %s: %s", job.StaticFileID, outcome)
	return nil
}
