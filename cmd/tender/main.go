package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tender-backend/internal/artifact"
	"tender-backend/internal/config"
	"tender-backend/internal/currency"
	"tender-backend/internal/logger"
	"tender-backend/internal/pricing"
	"tender-backend/internal/service/auth"
	"tender-backend/internal/service/calculate"
	generate_excel "tender-backend/internal/service/generate-excel"
	"tender-backend/internal/service/orders"
	"tender-backend/internal/service/users"
	"tender-backend/internal/storage/mysql"
	"tender-backend/internal/storage/redis"
)

type services struct {
	orders    *orders.Service
	users     *users.Service
	auth      *auth.Service
	calculate *calculate.Service
	report    *generate_excel.GenerateExcelService
	rates     currency.Provider
}

func main() {
	cfg := config.MustConfig()

	log, logCloser := logger.Setup(cfg.Env, cfg.Log, os.Stdout)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := mysql.New(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	if cfg.Database.Migrate {
		if err := storage.Migrate(ctx); err != nil {
			log.Error("failed to migrate db", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	var rates currency.Provider = currency.NewCBRClient(currency.CBRConfig{
		URL:        cfg.Currency.URL,
		Timeout:    cfg.Currency.Timeout,
		MaxRetries: cfg.Currency.MaxRetries,
	}, log)

	if cfg.Redis.Addr != "" {
		cache := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer cache.Close()

		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, rates are cached only when it comes back", slog.String("error", err.Error()))
		}
		rates = currency.NewCachedProvider(rates, cache, cfg.Currency.CacheTTL, log)
	}

	var model pricing.Model
	switch cfg.Pricing.Engine {
	case "native":
		model = pricing.NativeModel{}
	default:
		model = pricing.NewSpreadsheetModel(cfg.Pricing.TemplatesDir, log)
	}

	artifacts, err := setupArtifacts(ctx, cfg)
	if err != nil {
		log.Error("failed to init artifact storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := services{
		orders:    orders.New(storage),
		users:     users.New(storage),
		auth:      auth.New(storage, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		calculate: calculate.New(log, storage, model, rates, artifacts),
		report:    generate_excel.NewGenerateService(storage),
		rates:     rates,
	}

	log.Info("server started",
		slog.String("address", cfg.Address),
		slog.String("env", cfg.Env),
		slog.String("pricing_engine", cfg.Pricing.Engine),
		slog.String("artifact_storage", cfg.Pricing.Storage),
	)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, storage, svc),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}

	log.Error("server stopped")
}

func setupArtifacts(ctx context.Context, cfg *config.Config) (artifact.Store, error) {
	if cfg.Pricing.Storage == "minio" {
		return artifact.NewMinioStore(ctx, artifact.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		}, cfg.Pricing.PublicBaseURL)
	}

	return artifact.NewDiskStore(cfg.Pricing.UploadsDir, cfg.Pricing.PublicBaseURL)
}
