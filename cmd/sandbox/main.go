package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/config"
	"github.com/equipskill/equipskill-dashboard/internal/repository"
	"github.com/equipskill/equipskill-dashboard/internal/server"
	"github.com/equipskill/equipskill-dashboard/pkg/jwt"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
	"github.com/equipskill/equipskill-dashboard/pkg/profiling"
	"github.com/equipskill/equipskill-dashboard/pkg/tracing"
)

const devUserID = "dev-user"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting EquipSkill sandbox backend",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.Start(cfg.Profiling, profiling.Identity{
		ServiceName: cfg.Observability.ServiceName,
		Namespace:   cfg.Observability.ServiceNamespace,
		Version:     cfg.Observability.ServiceVersion,
		InstanceID:  cfg.Observability.ServiceInstanceID,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.RecordInfrastructureMetrics(ctx.Done())

	secret := cfg.Sandbox.JWTSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	tokenManager := jwt.NewTokenManager(secret, cfg.Sandbox.JWTIssuer, cfg.Sandbox.TokenTTLHours)

	store := repository.NewMemoryStore()
	for i := 0; i < cfg.Sandbox.SeedUsers; i++ {
		userID := fmt.Sprintf("demo-%d", i+1)
		p := store.SeedDemo(userID, "", int64(i+1), cfg.Sandbox.SeedEquipment)
		token, tokenErr := tokenManager.GenerateToken(userID, p.ContactEmail, p.FullName(), "both")
		if tokenErr != nil {
			logger.Fatal("Failed to issue demo token", zap.Error(tokenErr))
		}
		fmt.Printf("demo user %s (%s): %s\n", userID, p.FullName(), token)
	}

	devToken, err := tokenManager.GenerateToken(devUserID, "dev@equipskill.local", "Dev User", "both")
	if err != nil {
		logger.Fatal("Failed to issue dev token", zap.Error(err))
	}
	fmt.Printf("dev token (export EQUIPSKILL_TOKEN=...): %s\n", devToken)

	gin.SetMode(cfg.Server.GinMode)
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	router := server.NewRouter(ctx, store, tokenManager, server.Options{
		ServiceName:       cfg.Observability.ServiceName,
		AllowedOrigins:    allowedOrigins,
		RequestsPerSecond: 50,
		Burst:             100,
		StatsCacheTTL:     time.Duration(cfg.Cache.StatsTTLSeconds) * time.Second,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Sandbox started",
			zap.String("port", cfg.Server.Port),
			zap.String("api", "http://localhost:"+cfg.Server.Port+server.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down sandbox...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Sandbox forced to shutdown", zap.Error(err))
	}

	logger.Info("Sandbox exited")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
