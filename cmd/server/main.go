package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"investhorizon_backend/internal/app/router"
	authadapters "investhorizon_backend/internal/feature/auth/adapters"
	authws "investhorizon_backend/internal/feature/auth/transport/ws"
	authusecase "investhorizon_backend/internal/feature/auth/usecase"
	investmentsadapters "investhorizon_backend/internal/feature/investments/adapters"
	investmentshandler "investhorizon_backend/internal/feature/investments/transport/handler"
	investmentsusecase "investhorizon_backend/internal/feature/investments/usecase"
	"investhorizon_backend/internal/platform/cache"
	"investhorizon_backend/internal/platform/config"
	"investhorizon_backend/internal/platform/db"
	infrahttp "investhorizon_backend/internal/platform/http"
	"investhorizon_backend/internal/platform/logging"
	"investhorizon_backend/internal/platform/password"
	"investhorizon_backend/internal/platform/redis"
)

func main() {
	// .env はローカル開発用。存在しなくてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.Open(cfg.DB, cfg.DBConnectTimeout, cfg.RunMigrations)
	if err != nil {
		logger.Error("failed to connect database", "error", err, "driver", cfg.DB.Driver)
		os.Exit(1)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer func() {
			if err := sqlDB.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := redis.NewRedisClient(ctx, cfg.Redis); err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close redis client", "error", err)
			}
		}()
	}

	hasher, err := password.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		logger.Error("invalid bcrypt cost", "error", err, "cost", cfg.BcryptCost)
		os.Exit(1)
	}

	// Repository
	userRepo := authadapters.NewUserGorm(gdb)
	investmentRepo := cache.NewCachingInvestmentRepository(rdb, cfg.InvestmentsTTL, investmentsadapters.NewInvestmentGorm(gdb), "investments")

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, hasher)
	investmentsUC := investmentsusecase.NewInvestmentUsecase(investmentRepo)

	// Handler
	sessionH := authws.NewSessionHandler(authUC, logger)
	gateway := authws.NewGateway(sessionH, cfg.AllowedOrigins, logger)
	investmentsH := investmentshandler.NewInvestmentHandler(investmentsUC, logger)

	httpSrv := infrahttp.NewServer(cfg.Address(), router.NewRouter(investmentsH))
	wsSrv := infrahttp.NewServer(cfg.WSAddress(), router.NewWebSocketRouter(gateway))

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{httpSrv, wsSrv} {
		srv := srv
		g.Go(func() error {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.ShutdownPeriod)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
		defer cancel()

		// ハイジャック済みのWebSocket接続はShutdownの対象外のため個別に閉じる
		gateway.Close()
		return errors.Join(httpSrv.Shutdown(shutdownCtx), wsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
