package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/vlehub/user-service/internal/application/auth"
	"github.com/vlehub/user-service/internal/application/users"
	"github.com/vlehub/user-service/internal/config"
	"github.com/vlehub/user-service/internal/domain"
	"github.com/vlehub/user-service/internal/infrastructure/db/postgres"
	"github.com/vlehub/user-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/vlehub/user-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/vlehub/user-service/internal/infrastructure/redis"
	"github.com/vlehub/user-service/internal/infrastructure/security"
	"github.com/vlehub/user-service/internal/logger"
	http_handlers "github.com/vlehub/user-service/internal/transport/http/handlers"
	"github.com/vlehub/user-service/internal/transport/http/middleware"
	"github.com/vlehub/user-service/internal/transport/http/response"
	"github.com/vlehub/user-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

// App bundles the built HTTP server with the runtime knobs main needs.
type App struct {
	HTTP            *http.Server
	ShutdownTimeout time.Duration
}

func NewServer() (*App, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*App, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string) (DBCloser, error)

	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) *redis.Client

	NewNotifier func(rabbitURL string) (Notifier, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type Notifier interface {
	Send(ctx context.Context, msg auth.Notification) error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*App, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	// 2) migrations
	if deps.Migrate != nil {
		if err := deps.Migrate(context.Background(), sqlDB); err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	userRepo := postgres.NewUserRepo(sqlDB)
	adminRepo := postgres.NewAdminRepo(sqlDB)

	// 3) redis (best-effort; memory fallbacks keep dev working)
	var redisCli *redis.Client
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		if c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); c != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := c.Ping(ctx); err != nil {
				logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory token stores")
				_ = c.Close()
			} else {
				logger.Logger.Info().Msg("redis connected")
				redisCli = c
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
		}
	}

	// 4) session + OTT stores
	var sessionStore auth.SessionStore
	var ottStore auth.OneTimeTokenStore

	if redisCli != nil {
		sessionStore = redis.NewSessionStore(redisCli)
		ottStore = redis.NewOneTimeTokenStore(redisCli)
	} else {
		sessionStore = memory.NewSessionStore()
		ottStore = memory.NewOneTimeTokenStore()
	}

	// 5) notifier
	var notifier auth.Notifier = memory.NewNoopNotifier()
	if cfg.Features.Notifications {
		n, err := deps.NewNotifier(cfg.RabbitURL)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop notifier")
			} else {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		} else {
			notifier = n
			if c, ok := n.(interface{ Close() error }); ok {
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
		}
	}

	// 6) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(12)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	// 7) services
	authSvc := auth.NewService(
		userRepo,
		hasher,
		signer,
		sessionStore,
		ottStore,
		notifier,
		auth.Config{
			AccessTTL:             cfg.AccessTokenTTL,
			RefreshTTL:            cfg.RefreshTokenTTL,
			PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
			VerifyEmailTokenTTL:   cfg.VerifyEmailTokenTTL,
		},
	)

	var profileRepo users.ProfileRepo
	if cfg.Features.ProfileManagement {
		pr := postgres.NewProfileRepo(sqlDB)
		profileRepo = pr

		// Every new user gets a profile; defaults come from the schema.
		authSvc = authSvc.WithPostCreateHook(func(ctx context.Context, u domain.User) error {
			if err := pr.Create(ctx, domain.Profile{UserID: u.ID, IsPublic: true}); err != nil {
				logger.Logger.Error().Err(err).Str("user_id", u.ID).Msg("profile auto-create failed")
			}
			return nil
		})
	}

	usersSvc := users.NewService(adminRepo, profileRepo)

	// 8) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc)
	usersH := http_handlers.NewUsersHandler(usersSvc)
	healthH := http_handlers.NewHealthHandler(sqlDB)

	authMW := middleware.Auth(signer, response.WriteError)

	// rate limit (fail-open)
	var fwLimiter *redis.FixedWindowLimiter
	if redisCli != nil {
		fwLimiter = redis.NewFixedWindowLimiter(redisCli)
	}

	rl := func(key string, limit int, window time.Duration) func(http.Handler) http.Handler {
		if fwLimiter == nil {
			return nil
		}
		return middleware.RateLimitFixedWindow(
			fwLimiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   window,
			},
			response.WriteError,
		)
	}

	// 9) router
	mux, err := deps.NewRouter(router.Deps{
		Health: healthH,
		Auth:   authH,
		Users:  usersH,
		AuthMW: authMW,

		RegisterRL: rl("auth.register", 3, time.Minute),
		LoginRL:    rl("auth.login", 5, time.Minute),
		ResetRL:    rl("auth.password_reset", 3, 10*time.Minute),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	handler := middleware.RequestID(mux)

	// 10) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	app := &App{
		HTTP:            srv,
		ShutdownTimeout: cfg.HTTPShutdownTimeout,
	}
	return app, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string) (DBCloser, error) {
			return config.NewDB(addr)
		},
		Migrate: postgres.RunMigrations,
		NewRedis: redis.New,
		NewNotifier: func(url string) (Notifier, error) {
			return rabbitmq_pub.NewNotifier(url)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
