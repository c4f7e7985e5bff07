package bootstrap

import (
	"context"
	"sync"

	"humesync/internal/adapters/config"
	"humesync/internal/adapters/hume"
	"humesync/internal/adapters/kafka"
	pgclient "humesync/internal/adapters/postgres"
	redisclient "humesync/internal/adapters/redis"
	"humesync/internal/api"
	"humesync/internal/events"
	"humesync/internal/prompts"
	pgrepo "humesync/internal/repository/postgres"
	redisrepo "humesync/internal/repository/redis"
	agentsvc "humesync/internal/services/agent"
	"humesync/internal/workers"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are listed in initialization order.
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Data stores. Redis is nil when not configured.
	PG    *pgclient.Client
	Redis *redisclient.Client

	Repos    *Repositories
	Adapters *Adapters
	Services *Services

	HTTPServer      *api.Server
	WorkerScheduler *workers.Scheduler

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups the stores the sync service reads and writes
type Repositories struct {
	Agent         *pgrepo.AgentRepository
	SnapshotCache *redisrepo.SnapshotCache // nil without Redis
	CreateLock    *redisrepo.CreateLock    // nil without Redis
}

// Adapters groups external adapters
type Adapters struct {
	Hume          *hume.Client
	Composer      *prompts.Composer
	KafkaProducer *kafka.Producer   // nil without brokers
	Events        *events.Publisher // nil without brokers
}

// Services groups application services
type Services struct {
	AgentSync *agentsvc.Service
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:     &Repositories{},
		Adapters:  &Adapters{},
		Services:  &Services{},
		Lifecycle: NewLifecycle(),
		WG:        &sync.WaitGroup{},
		Context:   ctx,
		Cancel:    cancel,
	}
}

// MustInit initializes all components in the correct order.
// Panics on any initialization error (fail-fast at startup).
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitBackground()
	c.MustInitApplication()
}

// Start launches the HTTP server and background workers
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.HTTPServer.Start(); err != nil {
			c.Log.Errorw("HTTP server failed", "error", err)
		}
	}()

	if err := c.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}
	c.Log.Infow("✓ Workers started", "count", len(c.WorkerScheduler.GetWorkers()))

	return nil
}

// Shutdown cancels the root context and releases everything in order
func (c *Container) Shutdown() {
	c.Log.Info("Shutdown signal received, stopping all systems...")
	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.HTTPServer,
		c.WorkerScheduler,
		c.Adapters.KafkaProducer,
		c.PG,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}
