package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"gatepass/docs"
	"gatepass/internal/auth"
	"gatepass/internal/cache"
	"gatepass/internal/config"
	"gatepass/internal/db"
	"gatepass/internal/handler"
	"gatepass/internal/logging"
	"gatepass/internal/repository"
	"gatepass/internal/router"
	"gatepass/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Gate Pass API
// @version 1.0
// @description Issues and approves gate passes for goods leaving or entering the facility.
// @host localhost:8000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.Setup(logging.Options{
		JSON:    cfg.LogJSON,
		Debug:   cfg.LogDebug,
		Service: "gatepass-api",
	})

	if cfg.UsesDefaultJWTSecret() {
		logger.Warn("JWT_SECRET is not set, signing tokens with the development default")
	}

	gormDB, err := db.Open(cfg, logger)
	if err != nil {
		logger.Error("database init", "err", err)
		os.Exit(1)
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		db.Reset(gormDB, logger)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate", "err", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr, "err", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	gatePassRepo := repository.NewGatePassRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, logger)
	userService := service.NewUserService(userRepo, cacheClient)
	productService := service.NewProductService(productRepo)
	gatePassService := service.NewGatePassService(gatePassRepo, cacheClient, logger)
	authorizer := service.NewAuthorizer(userService)

	seeded, err := userService.EnsureDefaultAdmin(context.Background(), cfg.DefaultAdminPassword)
	if err != nil {
		logger.Error("bootstrap admin", "err", err)
		os.Exit(1)
	}
	if seeded {
		logger.Info("created default admin user", "username", service.DefaultAdminUsername)
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, authService, authorizer, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService),
		User:     handler.NewUserHandler(userService),
		Product:  handler.NewProductHandler(productService),
		GatePass: handler.NewGatePassHandler(gatePassService),
	})

	docs.SwaggerInfo.Host = swaggerHost(cfg)
	logger.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", "addr", addr, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "err", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// swaggerHost strips any scheme from SWAGGER_HOST, falling back to the
// local listen address.
func swaggerHost(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		return "localhost:" + cfg.ServerPort
	}
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimSuffix(host, "/")
}
