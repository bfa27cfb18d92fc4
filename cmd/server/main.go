package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nsn-odds-data/internal/bot"
	"nsn-odds-data/internal/cache"
	"nsn-odds-data/internal/config"
	"nsn-odds-data/internal/db"
	"nsn-odds-data/internal/handler"
	"nsn-odds-data/internal/provider"
	"nsn-odds-data/internal/queue"
	"nsn-odds-data/internal/repository"
	"nsn-odds-data/internal/service"
	"nsn-odds-data/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "nsn-odds-data/docs"
)

// upstream is everything the services need from the odds provider.
type upstream interface {
	service.OddsProvider
	service.EventProvider
}

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	migrateUpFunc    = db.MigrateUp
	newProviderFunc  = func(cfg *config.Config, store *cache.Cache, tracer trace.Tracer, calls provider.CallRecorder) upstream {
		return provider.NewOddsAPIClient(cfg, store, tracer).WithCallRecorder(calls)
	}
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           NSN Odds Data API
// @version         1.0
// @description     Odds aggregation over Odds-API.io with region-aware bookmaker filtering, value bets, arbitrage and static odds files.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	if db.Pool != nil {
		if err := migrateUpFunc(cfg.DatabaseURL); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	var metrics *service.MetricsService
	if cache.Client != nil {
		metrics = service.NewMetricsService(cache.Client)
	} else {
		metrics = service.NewMetricsService(nil)
	}
	store := cache.Shared().WithRecorder(metrics)

	odds := newProviderFunc(cfg, store, tracer, metrics)
	regions := service.NewRegionFilter(cfg.Regions)
	oddsService := service.NewOddsService(tracer, odds, regions)

	svc := handler.Services{
		Odds:    oddsService,
		Regions: regions,
		Metrics: metrics,
	}

	var whitelist *service.WhitelistService
	var keys *service.APIKeyService
	if db.Pool != nil {
		whitelist = service.NewWhitelistService(tracer, repository.NewWhitelistRepository(db.Pool, tracer))
		keys = service.NewAPIKeyService(tracer, repository.NewAPIKeyRepository(db.Pool, tracer))
		svc.Whitelist = whitelist
		svc.Keys = keys
		svc.Files = service.NewStaticFileService(
			tracer,
			repository.NewRequestDataRepository(db.Pool, tracer),
			repository.NewStaticFileRepository(db.Pool, tracer),
			odds,
			cfg.StaticFilesPath,
			cfg.DefaultBookmakers,
		)
	} else {
		log.Println("Postgres unavailable, static files and admin endpoints disabled")
	}
	svc.Events = service.NewEventService(tracer, odds, whitelist, store, cfg.MajorLeagues,
		time.Duration(cfg.CacheTTLUpcoming)*time.Second)

	if cache.Client != nil {
		svc.Jobs = queue.NewPublisher(cache.Client, cfg.StreamName)
	}

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(oddsService, regions)

	h := newHandlerFunc(tracer, svc, handler.Settings{
		RetentionDays:  cfg.RetentionDaysEnded,
		CleanDataToken: cfg.CleanDataToken,
	})

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName()))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(handler.RequestMetrics(metrics))

	h.RegisterRoutes(r, middleware(cfg, keys))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	cache.Close()
	db.Close()

	log.Println("Server exiting")
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "X-API-Key", "X-Admin-Token")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}

func middleware(cfg *config.Config, keys *service.APIKeyService) handler.Middleware {
	mw := handler.Middleware{Admin: handler.AdminAuth(cfg.AdminToken)}
	if cfg.APIKeyEnabled {
		var validator handler.KeyValidator
		if keys != nil {
			validator = keys
		}
		mw.Auth = handler.APIKeyAuth(cfg.APIKey, validator)
	}
	if cfg.RateLimitEnabled && cache.Client != nil {
		mw.RateLimit = handler.RateLimit(cache.Client, "default", cfg.RateLimitDefault)
		mw.HeavyRateLimit = handler.RateLimit(cache.Client, "heavy", cfg.RateLimitHeavy)
		mw.SearchLimit = handler.RateLimit(cache.Client, "search", cfg.RateLimitSearch)
	}
	return mw
}
