package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

type task struct {
	name string
	run  func(ctx context.Context) error
	job  cron.Job
}

// Scheduler runs periodic jobs on cron expressions. Each job also runs once
// at start, and a run still in progress causes the next tick to be skipped.
type Scheduler struct {
	tracer  trace.Tracer
	cron    *cron.Cron
	tasks   []task
	timeout time.Duration
	ctx     context.Context
}

func NewScheduler(tracer trace.Tracer, timeout time.Duration) *Scheduler {
	return &Scheduler{
		tracer:  tracer,
		cron:    cron.New(),
		timeout: timeout,
		ctx:     context.Background(),
	}
}

// Add registers fn under name with a five-field cron spec. The startup run
// and scheduled ticks share one skip-if-running guard.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	t := task{name: name, run: fn}
	t.job = cron.SkipIfStillRunning(cron.DefaultLogger)(cron.FuncJob(func() { s.runTask(s.ctx, t) }))
	if _, err := s.cron.AddJob(spec, t.job); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.tasks = append(s.tasks, t)
	return nil
}

// Start runs every job once, then follows the schedule. Blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("Scheduler starting with %d jobs", len(s.tasks))

	s.ctx = ctx
	for _, t := range s.tasks {
		go t.job.Run()
	}
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runTask(ctx context.Context, t task) {
	ctx, span := s.tracer.Start(ctx, "scheduler."+t.name)
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := t.run(ctx); err != nil {
		log.Printf("job %s error: %v", t.name, err)
	}
}
