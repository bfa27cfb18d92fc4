package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"nsn-odds-data/internal/cache"
	"nsn-odds-data/internal/config"
	"nsn-odds-data/internal/db"
	"nsn-odds-data/internal/job"
	"nsn-odds-data/internal/provider"
	"nsn-odds-data/internal/queue"
	"nsn-odds-data/internal/repository"
	"nsn-odds-data/internal/service"
	"nsn-odds-data/pkg/tracing"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

type consumer interface {
	Run(ctx context.Context, h queue.Handler) error
}

type scheduler interface {
	Add(name, spec string, fn func(ctx context.Context) error) error
	Start(ctx context.Context)
}

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newConsumerFunc  = func(cfg *config.Config, name string) consumer {
		return queue.NewConsumer(cache.Client, cfg.StreamName, cfg.ConsumerGroup, name,
			cfg.WorkerConcurrency, time.Duration(cfg.JobTimeoutSecs)*time.Second)
	}
	newSchedulerFunc = func(tracer trace.Tracer, timeout time.Duration) scheduler {
		return job.NewScheduler(tracer, timeout)
	}
	setupSignalNotify = signal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	if db.Pool == nil || cache.Client == nil {
		log.Fatal("worker needs both Postgres and Redis")
	}

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	metrics := service.NewMetricsService(cache.Client)
	store := cache.Shared().WithRecorder(metrics)
	odds := provider.NewOddsAPIClient(cfg, store, tracer).WithCallRecorder(metrics)

	files := service.NewStaticFileService(
		tracer,
		repository.NewRequestDataRepository(db.Pool, tracer),
		repository.NewStaticFileRepository(db.Pool, tracer),
		odds,
		cfg.StaticFilesPath,
		cfg.DefaultBookmakers,
	)
	whitelist := service.NewWhitelistService(tracer, repository.NewWhitelistRepository(db.Pool, tracer))
	events := service.NewEventService(tracer, odds, whitelist, store, cfg.MajorLeagues,
		time.Duration(cfg.CacheTTLUpcoming)*time.Second)

	sched := newSchedulerFunc(tracer, time.Duration(cfg.JobTimeoutSecs)*time.Second)
	if err := schedule(sched, cfg, files, events); err != nil {
		log.Fatal(err)
	}

	worker := job.NewGenerateWorker(tracer, files)
	cons := newConsumerFunc(cfg, consumerName())

	done := make(chan struct{})
	go func() {
		runLoops(ctx, sched, cons, worker.Handle)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down worker...")

	cancel()
	<-done
	cache.Close()
	db.Close()

	log.Println("Worker exiting")
}

func schedule(s scheduler, cfg *config.Config, odds job.OddsRefresher, upcoming job.UpcomingRefresher) error {
	if err := s.Add("refresh-odds", cfg.RefreshSchedule, job.RefreshOdds(odds)); err != nil {
		return err
	}
	return s.Add("refresh-upcoming", cfg.UpcomingSchedule, job.RefreshUpcoming(upcoming))
}

// runLoops runs the scheduler and the stream consumer until ctx is cancelled.
func runLoops(ctx context.Context, s scheduler, c consumer, h queue.Handler) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := c.Run(ctx, h); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()
	wg.Wait()
}
