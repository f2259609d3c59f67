package main

// @title           LinkedIn Broker API
// @version         1.0
// @description     OAuth2 PKCE token broker and posting proxy for LinkedIn. Holds member credentials encrypted at rest and publishes on their behalf.

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driven/auth"
	boltstore "github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driven/bolt"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driven/crypto"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driven/linkedin"
	mongostore "github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driven/mongo"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driven/postgres"
	redisadapter "github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driven/redis"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/adapters/driving/http"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/config"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/services"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/metrics"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/worker"
)

var version = "dev"

func main() {
	// Run mode from RUN_MODE or the first argument
	mode := getEnv("RUN_MODE", "all")
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if mode == "issue-token" {
		if err := issueToken(cfg, args); err != nil {
			log.Fatalf("issue-token: %v", err)
		}
		return
	}

	logger.Info("linkedin-broker starting", "version", version, "mode", mode,
		"store", cfg.StoreBackend, "pkce", cfg.PKCEBackend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	switch mode {
	case "api":
		err = app.server.Start(ctx)
	case "worker":
		err = runWorker(ctx, app.worker)
	case "all":
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return runWorker(gctx, app.worker) })
		g.Go(func() error { return app.server.Start(gctx) })
		err = g.Wait()
	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, all or issue-token)", mode)
	}
	if err != nil {
		logger.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	logger.Info("linkedin-broker stopped")
}

type app struct {
	server  *http.Server
	worker  *worker.Worker
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// stores is the backend selected by STORE_BACKEND.
type stores struct {
	identities driven.IdentityStore
	states     driven.PKCEStore
	lock       driven.DistributedLock
	checks     map[string]http.Pinger
}

func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	st, err := openStores(ctx, cfg, logger, a)
	if err != nil {
		a.close()
		return nil, err
	}

	// ===== Driven adapters =====
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	codec, err := crypto.NewTokenCodec(cfg.TokenEncryptionKey)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("token codec: %w", err)
	}

	provider := linkedin.NewClient(linkedin.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		AuthURL:      cfg.AuthURL,
		TokenURL:     cfg.TokenURL,
		UserInfoURL:  cfg.UserInfoURL,
		PostsURL:     cfg.PostsURL,
		Timeout:      cfg.ProviderTimeout,
		Metrics:      recorder,
	})
	authAdapter := auth.NewAdapter(cfg.JWTSecret)

	// ===== Services =====
	authService := services.NewAuthService(authAdapter)
	oauthService := services.NewOAuthService(services.OAuthServiceConfig{
		Provider:      provider,
		StateStore:    st.states,
		IdentityStore: st.identities,
		Codec:         codec,
		Metrics:       recorder,
		Logger:        logger,
		StateTTL:      cfg.PKCETTL,
	})
	publishService := services.NewPublishService(services.PublishServiceConfig{
		Provider:      provider,
		IdentityStore: st.identities,
		Codec:         codec,
		Metrics:       recorder,
		Logger:        logger,
	})
	draftService := services.NewDraftService(st.identities)
	identityService := services.NewIdentityService(st.identities)

	// ===== Background jobs =====
	janitor := services.NewStateJanitor(st.states, recorder, logger)
	jobs := []worker.Job{{
		Name:     "pkce-janitor",
		Interval: cfg.StateCleanupInterval,
		Run:      janitor.Run,
	}}
	if cfg.SweepEnabled {
		sweep := services.NewWelcomeSweep(services.WelcomeSweepConfig{
			IdentityStore: st.identities,
			Provider:      provider,
			Codec:         codec,
			Lock:          st.lock,
			Metrics:       recorder,
			Logger:        logger,
			Message:       cfg.WelcomeMessage,
			BatchSize:     cfg.SweepBatchSize,
			Concurrency:   cfg.SweepConcurrency,
			LockTTL:       cfg.SweepInterval,
		})
		jobs = append(jobs, worker.Job{
			Name:       "welcome-sweep",
			Interval:   cfg.SweepInterval,
			Run:        sweep.Run,
			RunOnStart: true,
		})
	} else {
		logger.Info("welcome sweep disabled via SWEEP_ENABLED=false")
	}

	w, err := worker.NewWorker(worker.WorkerConfig{Jobs: jobs, Logger: logger})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("worker: %w", err)
	}
	a.worker = w

	// ===== HTTP =====
	a.server = http.NewServer(http.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Version:         version,
		ShutdownTimeout: cfg.ShutdownTimeout,
		CallbackRate:    rate.Limit(cfg.CallbackRPS),
		CallbackBurst:   cfg.CallbackBurst,
		APIRate:         rate.Limit(cfg.APIRPS),
		APIBurst:        cfg.APIBurst,
	}, http.Services{
		Auth:       authService,
		OAuth:      oauthService,
		Publish:    publishService,
		Drafts:     draftService,
		Identities: identityService,
	}, http.Infra{
		Checks:  st.checks,
		Metrics: metrics.Handler(registry),
	}, logger)

	return a, nil
}

// openStores connects the identity store, the PKCE store and the sweep lock.
// Each opened backend registers its closer on a.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger, a *app) (*stores, error) {
	st := &stores{checks: map[string]http.Pinger{}}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		logger.Info("connecting to PostgreSQL")
		db, err := postgres.Connect(ctx, postgres.Config{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })

		if err := db.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		st.identities = postgres.NewIdentityStore(db)
		st.states = postgres.NewPKCEStore(db, cfg.PKCETTL)
		st.lock = postgres.NewAdvisoryLock(db)
		logger.Info("PostgreSQL connected and migrated")

	case config.BackendMongo:
		logger.Info("connecting to MongoDB", "database", cfg.MongoDatabase)
		db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Close(closeCtx)
		})

		if err := db.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		st.identities = mongostore.NewIdentityStore(db)
		st.states = mongostore.NewPKCEStore(db, cfg.PKCETTL)
		logger.Info("MongoDB connected")

	case config.BackendBolt:
		logger.Info("opening bolt database", "path", cfg.BoltPath)
		db, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("open bolt: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })

		st.identities = boltstore.NewIdentityStore(db)
		st.states = boltstore.NewPKCEStore(db, cfg.PKCETTL)
	}
	st.checks["store"] = st.identities

	// Redis backs PKCE states when asked, and the sweep lock whenever it
	// is configured.
	if cfg.RedisURL != "" {
		logger.Info("connecting to Redis")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}

		lock := redisadapter.NewLock(client)
		st.lock = lock
		st.checks["redis"] = lock
		if cfg.PKCEBackend == config.PKCEBackendRedis {
			st.states = redisadapter.NewPKCEStore(client, cfg.PKCETTL)
			logger.Info("using Redis PKCE store")
		}
	}

	if st.lock == nil {
		logger.Info("no distributed lock available, run a single worker instance")
	}
	return st, nil
}

func runWorker(ctx context.Context, w *worker.Worker) error {
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	<-ctx.Done()

	slog.Info("stopping worker")
	w.Stop()
	return nil
}

// issueToken mints a caller token for a backend service and prints it.
func issueToken(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	subject := fs.String("subject", "", "caller name recorded as the token subject")
	scopes := fs.String("scopes", "", "comma separated scopes (oauth,publish,drafts); empty grants all")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var scopeList []string
	for _, s := range strings.Split(*scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopeList = append(scopeList, s)
		}
	}

	authService := services.NewAuthService(auth.NewAdapter(cfg.JWTSecret))
	token, err := authService.IssueToken(context.Background(), *subject, scopeList, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
