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

	"github.com/redis/go-redis/v9"

	audithttp "github.com/erashu/erashu-admin/internal/audit/http"
	"github.com/erashu/erashu-admin/internal/app"
	"github.com/erashu/erashu-admin/internal/audit"
	"github.com/erashu/erashu-admin/internal/auth"
	"github.com/erashu/erashu-admin/internal/platform/db"
	"github.com/erashu/erashu-admin/internal/rbac"
	"github.com/erashu/erashu-admin/internal/roles"
	"github.com/erashu/erashu-admin/internal/shared"
	"github.com/erashu/erashu-admin/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "erashu_admin_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	catalog := rbac.NewCatalog()
	rbacRepo := rbac.NewRepository(pool)

	// The catalog is fixed at deploy time; seeding on every boot is a no-op
	// once the rows exist.
	if err := rbac.NewSeeder(catalog, rbacRepo, logger).EnsureSeeded(ctx); err != nil {
		logger.Error("seed permission catalog", slog.Any("error", err))
		os.Exit(1)
	}

	resolver := rbac.NewResolver(rbacRepo, catalog)
	permCache := rbac.NewSessionPermissionCache(redisClient, resolver, cfg.SessionTTL)
	guard := rbac.NewGuard(cfg.AdminBasePath, rbac.DefaultGuardRules(), logger)
	rbacMW := rbac.Middleware{Resolver: resolver, Logger: logger}

	auditRecorder := audit.NewRecorder(pool, logger)
	auditService := audit.NewService(audit.NewRepository(pool))
	auditHandler := audithttp.NewHandler(logger, auditService, rbacMW)

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, permCache, auditRecorder)

	rolesService := roles.NewService(roles.NewRepository(pool), catalog)
	rolesHandler := roles.NewHandler(logger, rolesService, auditRecorder, rbacMW)

	usersService := users.NewService(users.NewRepository(pool), catalog)
	usersHandler := users.NewHandler(logger, usersService, auditRecorder, rbacMW)

	permissionsHandler := rbac.NewPermissionsHandler(catalog, rbacMW)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Guard:              guard,
		PermissionCache:    permCache,
		AuthHandler:        authHandler,
		RolesHandler:       rolesHandler,
		UsersHandler:       usersHandler,
		PermissionsHandler: permissionsHandler,
		AuditHandler:       auditHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("admin server listening", slog.String("addr", cfg.AppAddr), slog.String("base_path", cfg.AdminBasePath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
