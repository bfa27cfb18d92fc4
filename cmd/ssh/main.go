package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"nsn-odds-data/internal/cache"
	"nsn-odds-data/internal/config"
	"nsn-odds-data/internal/provider"
	"nsn-odds-data/internal/service"
	"nsn-odds-data/internal/tui"
	"nsn-odds-data/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

// ctxKey is a typed context key to avoid collisions.
type ctxKey string

const sshUserKey ctxKey = "ssh_user"

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	initRedisFunc   = cache.InitRedis
	initTracerFunc  = tracing.InitTracer
	newProviderFunc = func(cfg *config.Config, store *cache.Cache, tracer trace.Tracer, calls provider.CallRecorder) service.OddsProvider {
		return provider.NewOddsAPIClient(cfg, store, tracer).WithCallRecorder(calls)
	}
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

// authorizedKey reports whether key's SHA256 fingerprint is in allowed.
func authorizedKey(allowed []string, key gossh.PublicKey) (string, bool) {
	fingerprint := gossh.FingerprintSHA256(key)
	for _, a := range allowed {
		if strings.TrimSpace(a) == fingerprint {
			return fingerprint, true
		}
	}
	return fingerprint, false
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
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

	if len(cfg.SSHAuthorizedKeys) == 0 {
		log.Println("SSH_AUTHORIZED_KEYS is empty, every login will be refused")
	}

	var metrics *service.MetricsService
	if cache.Client != nil {
		metrics = service.NewMetricsService(cache.Client)
	} else {
		metrics = service.NewMetricsService(nil)
	}
	store := cache.Shared().WithRecorder(metrics)
	regions := service.NewRegionFilter(cfg.Regions)
	oddsService := service.NewOddsService(tracer, newProviderFunc(cfg, store, tracer, metrics), regions)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint, ok := authorizedKey(cfg.SSHAuthorizedKeys, key)
			if !ok {
				log.Printf("SSH auth denied: user=%s fingerprint=%s", ctx.User(), fingerprint)
				return false
			}
			ctx.SetValue(sshUserKey, ctx.User())
			log.Printf("SSH auth accepted: user=%s fingerprint=%s", ctx.User(), fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				username, _ := s.Context().Value(sshUserKey).(string)
				if username == "" {
					username = "unknown"
				}

				model := tui.NewAppModel(tui.Services{
					Odds:     oddsService,
					Metrics:  metrics,
					Regions:  regions.Regions(),
					Username: username,
				})
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}
	cache.Close()

	log.Println("SSH server exited")
}
