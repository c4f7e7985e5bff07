package bootstrap

import (
	"humesync/internal/adapters/config"
	errnoop "humesync/internal/adapters/errors/noop"
	"humesync/internal/adapters/errors/sentry"
	"humesync/internal/adapters/hume"
	"humesync/internal/adapters/kafka"
	pgclient "humesync/internal/adapters/postgres"
	"humesync/internal/adapters/ratelimit"
	redisclient "humesync/internal/adapters/redis"
	"humesync/internal/api"
	"humesync/internal/api/health"
	"humesync/internal/events"
	"humesync/internal/metrics"
	"humesync/internal/prompts"
	pgrepo "humesync/internal/repository/postgres"
	redisrepo "humesync/internal/repository/redis"
	agentsvc "humesync/internal/services/agent"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
	"humesync/pkg/templates"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects Postgres (required) and Redis (optional)
func (c *Container) MustInitInfrastructure() {
	var err error

	c.Log.Info("Connecting to PostgreSQL...")
	c.PG, err = pgclient.NewClient(c.Context, c.Config.Postgres)
	if err != nil {
		c.Log.Fatalf("failed to connect postgres: %v", err)
	}
	if err := c.PG.Migrate(); err != nil {
		c.Log.Fatalf("failed to migrate postgres: %v", err)
	}
	c.Log.Info("✓ PostgreSQL connected and migrated")

	if !c.Config.Redis.Enabled() {
		c.Log.Info("Redis not configured, snapshot cache and create lock disabled")
		return
	}

	c.Log.Info("Connecting to Redis...")
	c.Redis, err = redisclient.NewClient(c.Context, c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("failed to connect redis: %v", err)
	}
	c.Log.Info("✓ Redis connected")
}

// ========================================
// Phase 3: Repositories
// ========================================

// MustInitRepositories creates the agent store and the Redis-backed helpers
func (c *Container) MustInitRepositories() {
	c.Repos.Agent = pgrepo.NewAgentRepository(c.PG.DB())

	if c.Redis != nil {
		c.Repos.SnapshotCache = redisrepo.NewSnapshotCache(c.Redis)
		c.Repos.CreateLock = redisrepo.NewCreateLock(c.Redis)
	}

	metrics.RegisterAgentCollector(metrics.NewAgentCollector(c.Log, c.PG.DB()))
	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: External Adapters
// ========================================

// MustInitAdapters builds the prompt composer, the provider client and the event publisher
func (c *Container) MustInitAdapters() {
	composer, err := provideComposer(c.Config.Prompts, c.Log)
	if err != nil {
		c.Log.Fatalf("failed to load prompt templates: %v", err)
	}
	c.Adapters.Composer = composer

	c.Adapters.Hume = provideHumeClient(c.Config.Hume, composer)
	c.Log.Infow("✓ Voice provider client ready",
		"base_url", c.Config.Hume.BaseURL,
		"timeout", c.Config.Hume.Timeout,
		"requests_per_minute", c.Config.Hume.RequestsPerMinute,
	)

	c.Adapters.KafkaProducer = provideKafkaProducer(c.Config, c.Log)
	if c.Adapters.KafkaProducer != nil {
		c.Adapters.Events = events.NewPublisher(c.Adapters.KafkaProducer, c.Config.App.Name)
	}
}

// ========================================
// Phase 5: Services
// ========================================

// MustInitServices wires the agent sync service.
// Optional collaborators are only set when present, so the service sees true nils.
func (c *Container) MustInitServices() {
	deps := agentsvc.Deps{
		Repository: c.Repos.Agent,
		Remote:     c.Adapters.Hume,
		Composer:   c.Adapters.Composer,
	}
	if c.Repos.SnapshotCache != nil {
		deps.Cache = c.Repos.SnapshotCache
	}
	if c.Repos.CreateLock != nil {
		deps.Locker = c.Repos.CreateLock
	}
	if c.Adapters.Events != nil {
		deps.Events = c.Adapters.Events
	}

	c.Services.AgentSync = agentsvc.NewService(deps, agentsvc.Config{
		DefaultVoice:    c.Config.Hume.DefaultVoice,
		DefaultLanguage: c.Config.Hume.DefaultLanguage,
		SnapshotTTL:     c.Config.Redis.SnapshotCacheTTL,
		CreateLockTTL:   c.Config.Redis.CreateLockTTL,
	})
	c.Log.Info("✓ Agent sync service initialized")
}

// ========================================
// Phase 6: Background
// ========================================

// MustInitBackground registers background workers
func (c *Container) MustInitBackground() {
	c.WorkerScheduler = provideWorkers(c.Config.Workers, c.Services.AgentSync)
}

// ========================================
// Phase 7: Application
// ========================================

// MustInitApplication builds the ops HTTP server
func (c *Container) MustInitApplication() {
	checks := map[string]health.Checker{
		"postgres": c.PG.Health,
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Health
	}

	handler := health.New(c.Log, checks, c.WorkerScheduler, c.Config.App.Name, c.Config.App.Version)
	c.HTTPServer = api.NewServer(api.ServerConfig{
		Addr:        c.Config.Metrics.Addr,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, handler, c.Log)
}

// ========================================
// Providers
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

// provideComposer uses templates from disk when a directory is configured, else the embedded set
func provideComposer(cfg config.PromptsConfig, log *logger.Logger) (*prompts.Composer, error) {
	if cfg.TemplatesDir == "" {
		return prompts.NewComposer(nil), nil
	}

	reg, err := templates.NewRegistry(cfg.TemplatesDir)
	if err != nil {
		return nil, errors.Wrapf(err, "templates dir %s", cfg.TemplatesDir)
	}
	if err := prompts.CheckSections(reg); err != nil {
		return nil, errors.Wrapf(err, "templates dir %s", cfg.TemplatesDir)
	}
	log.Infow("Loaded prompt templates from disk", "dir", cfg.TemplatesDir, "count", len(reg.List()))
	return prompts.NewComposer(reg), nil
}

func provideHumeClient(cfg config.HumeConfig, composer hume.PromptComposer) *hume.Client {
	return hume.NewClient(hume.Config{
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		MaxCreateAttempts: cfg.MaxCreateAttempts,
	},
		hume.WithLimiter(ratelimit.NewLimiter("hume", cfg.RequestsPerMinute)),
		hume.WithComposer(composer),
	)
}

func provideKafkaProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	if !cfg.Kafka.Enabled() {
		log.Info("Kafka not configured, sync events disabled")
		return nil
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
	})
	log.Infow("✓ Kafka producer ready", "brokers", cfg.Kafka.Brokers, "topics", kafka.Topics())
	return producer
}
