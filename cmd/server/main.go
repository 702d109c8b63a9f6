// Command shopguard starts the shop security API server.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/and161185/shopguard/internal/chain"
	"github.com/and161185/shopguard/internal/challenge"
	"github.com/and161185/shopguard/internal/config"
	"github.com/and161185/shopguard/internal/limiter"
	"github.com/and161185/shopguard/internal/metrics"
	"github.com/and161185/shopguard/internal/migrate"
	"github.com/and161185/shopguard/internal/repository/postgres"
	grpcserver "github.com/and161185/shopguard/internal/server/grpc"
	httpserver "github.com/and161185/shopguard/internal/server/http"
	"github.com/and161185/shopguard/internal/service"
	"github.com/and161185/shopguard/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves the HTTP API plus the
// ops gRPC health endpoint until SIGINT/SIGTERM.
func main() {
	cfg, cfgErr := config.Load(os.Args[1:], ".env")

	newLogger := zap.NewProduction
	if cfg.Dev {
		newLogger = zap.NewDevelopment
	}
	logger, _ := newLogger()
	defer func() { _ = logger.Sync() }()
	if cfgErr != nil {
		logger.Fatal("config", zap.Error(cfgErr))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("opsAddr", cfg.OpsAddr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	challengeRepo := postgres.NewChallengeRepo(db)
	mintRepo := postgres.NewMintRepo(db)
	lim := limiter.NewPG(db.Pool, limiter.DefaultPolicy)

	// Sessions
	tokens := token.NewRegistry()
	introspector := token.NewIntrospector([]byte(cfg.TokenKey)).WithLeeway(cfg.TokenLeeway)
	m := metrics.New(func() float64 { return float64(tokens.Len()) })

	// Services
	tracker := challenge.NewTracker(challengeRepo, m, logger)
	hub := chain.NewHub(logger)
	m.TrackChainListeners(func() float64 { return float64(hub.Len()) })
	authSvc := service.NewAuthService(userRepo, tokens, introspector, cfg.AccessTTL, lim)
	userSvc := service.NewUserService(userRepo, tokens, introspector)
	web3Svc := service.NewWeb3Service(cfg.Wallet, tracker, hub, mintRepo, m, logger)

	api := httpserver.New(authSvc, userSvc, web3Svc, tracker, logger,
		httpserver.WithMetrics(m),
		httpserver.WithDevRoutes(cfg.Dev),
		httpserver.WithTrustedProxies(cfg.TrustedProxies),
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var ops *grpc.Server
	if cfg.OpsAddr != "" {
		var hs *health.Server
		ops, hs = startOps(ctx, cfg, db, logger, errCh)
		defer hs.Shutdown()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if ops != nil {
		done := make(chan struct{})
		go func() {
			ops.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			ops.Stop()
		}
	}

	logger.Info("shutdown complete")
}

// startOps serves gRPC health on cfg.OpsAddr, driven by database pings.
func startOps(ctx context.Context, cfg config.Config, db *postgres.DB, logger *zap.Logger, errCh chan<- error) (*grpc.Server, *health.Server) {
	s, hs := grpcserver.NewOps(logger, cfg.Dev)
	go grpcserver.MonitorHealth(ctx, hs, db, 5*time.Second, logger)

	lis, err := net.Listen("tcp", cfg.OpsAddr)
	if err != nil {
		logger.Fatal("listen", zap.String("addr", cfg.OpsAddr), zap.Error(err))
	}
	go func() {
		logger.Info("ops listening", zap.String("addr", cfg.OpsAddr))
		if err := s.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	return s, hs
}
