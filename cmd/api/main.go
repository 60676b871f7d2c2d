// Package main is the entrypoint for the cloud control-plane API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/plumecms/cloud/internal/billing"
	"github.com/plumecms/cloud/internal/cache"
	"github.com/plumecms/cloud/internal/config"
	"github.com/plumecms/cloud/internal/handler"
	"github.com/plumecms/cloud/internal/metrics"
	"github.com/plumecms/cloud/internal/middleware"
	"github.com/plumecms/cloud/internal/provision"
	"github.com/plumecms/cloud/internal/repository"
	"github.com/plumecms/cloud/internal/server"
	"github.com/plumecms/cloud/internal/service"
)

func main() {
	ctx := context.Background()

	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// The process refuses to serve until every required integration is
	// configured. Optional integrations only gate their own features.
	if !cfg.Ready() {
		for _, check := range cfg.Readiness() {
			if check.State == config.StateMissing {
				logger.Error("required integration not configured",
					"integration", check.Name,
					"missing", strings.Join(check.Missing, ","),
				)
			}
		}
		os.Exit(1)
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Optional integrations.
	var provisioner provision.Provisioner = provision.Disabled{}
	if cfg.NeonEnabled() {
		provisioner = provision.NewNeonClient(cfg.NeonAPIKey)
		logger.Info("database provisioning enabled")
	} else {
		logger.Warn("database provisioning disabled; workspaces get no dedicated database")
	}

	var customers service.CustomerRegistrar
	if cfg.StripeEnabled() {
		customers = billing.NewCustomerClient(cfg.StripeSecretKey)
		logger.Info("billing integration enabled")
	} else {
		logger.Warn("billing integration disabled")
	}

	recorder := metrics.NewInMemory()

	// Services
	accountService := service.NewAccountService(repo, cacheClient, cfg.SessionTTL, recorder)
	workspaceService := service.NewWorkspaceService(repo, provisioner, customers, logger, recorder)
	memberService := service.NewMemberService(repo)
	invitationService := service.NewInvitationService(repo, recorder)
	subscriptionHandler := billing.NewSubscriptionHandler(repo, logger)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient, cfg)
	metricsHandler := handler.NewMetricsHandler(recorder)
	authHandler := handler.NewAuthHandler(accountService, logger, cfg.SessionTTL, !cfg.IsDevelopment())
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	memberHandler := handler.NewMemberHandler(memberService, logger)
	invitationHandler := handler.NewInvitationHandler(invitationService, logger)
	webhookHandler := handler.NewWebhookHandler(subscriptionHandler, logger, recorder)

	r := setupRouter(routerDeps{
		root:        h,
		health:      healthHandler,
		metrics:     metricsHandler,
		auth:        authHandler,
		workspaces:  workspaceHandler,
		members:     memberHandler,
		invitations: invitationHandler,
		webhooks:    webhookHandler,
		accounts:    accountService,
		cache:       cacheClient,
		cfg:         cfg,
		logger:      logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	root        *handler.Handler
	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	auth        *handler.AuthHandler
	workspaces  *handler.WorkspaceHandler
	members     *handler.MemberHandler
	invitations *handler.InvitationHandler
	webhooks    *handler.WebhookHandler
	accounts    *service.AccountService
	cache       *cache.Cache
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = deps.cfg.IsDevelopment()
	securityCfg.MaxRequestBodySize = deps.cfg.MaxRequestBodySize
	r.Use(middleware.Security(securityCfg))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Use(middleware.Session(deps.accounts, deps.logger))

	// Unauthenticated surface
	r.Get("/", deps.root.Hello)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	authLimit := middleware.RateLimitAuth(middleware.RateLimitConfig{
		Logger:    deps.logger,
		Cache:     deps.cache,
		Enabled:   deps.cfg.AuthRateLimitEnabled,
		PerMinute: deps.cfg.AuthRateLimitPerMin,
		Burst:     deps.cfg.AuthRateLimitBurst,
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/signup", deps.auth.Signup)
			r.With(authLimit).Post("/login", deps.auth.Login)
			r.Post("/logout", deps.auth.Logout)
		})

		// Raw-body billing webhook; authenticated by its signature
		// header, not by session.
		r.Post("/webhooks/stripe", deps.webhooks.Stripe)

		// Invitation preview is public so invitees can see what they
		// were invited to before logging in.
		r.Get("/invitations/{token}", deps.invitations.Preview)
		r.With(middleware.RequireAuth).Post("/invitations/{token}/accept", deps.invitations.Accept)

		r.Route("/workspaces", func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", deps.workspaces.List)
			r.Post("/", deps.workspaces.Create)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", deps.workspaces.Get)
				r.Patch("/", deps.workspaces.Update)
				r.Delete("/", deps.workspaces.Delete)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", deps.members.List)
					r.Post("/leave", deps.members.Leave)
					r.Patch("/{userID}", deps.members.ChangeRole)
					r.Delete("/{userID}", deps.members.Remove)
				})

				r.Route("/invitations", func(r chi.Router) {
					r.Get("/", deps.invitations.List)
					r.Post("/", deps.invitations.Create)
					r.Delete("/{id}", deps.invitations.Revoke)
				})
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.root.NotFound)
	r.MethodNotAllowed(deps.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
