// Package wire provides dependency injection for the archivist application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/archivist/internal/adapters/redisq"
	"github.com/example/archivist/internal/adapters/sqlite"
	"github.com/example/archivist/internal/app"
	"github.com/example/archivist/internal/config"
	"github.com/example/archivist/internal/db"
	"github.com/example/archivist/internal/ports/primary"
	"github.com/example/archivist/internal/scheduler"
	"github.com/example/archivist/internal/worker"
)

var (
	cfg            *config.Config
	logger         *zap.Logger
	archiveService primary.ArchiveService
	jobWorker      *worker.Worker
	sweeper        *scheduler.Sweeper
	once           sync.Once
)

// lockTTL bounds how long a crashed worker can block an archive.
const lockTTL = 10 * time.Minute

// ArchiveService returns the singleton ArchiveService instance.
func ArchiveService() primary.ArchiveService {
	once.Do(initServices)
	return archiveService
}

// Worker returns the singleton job worker.
func Worker() *worker.Worker {
	once.Do(initServices)
	return jobWorker
}

// Sweeper returns the singleton stale-archive sweeper.
func Sweeper() *scheduler.Sweeper {
	once.Do(initServices)
	return sweeper
}

// Config returns the resolved configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the shared logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) with the injected DB
	archiveRepo := sqlite.NewArchiveRepository(database)
	channelRepo := sqlite.NewChannelRepository(database)
	messageRepo := sqlite.NewMessageRepository(database)
	topicRepo := sqlite.NewTopicRepository(database)
	membershipRepo := sqlite.NewMembershipRepository(database)
	noticeRepo := sqlite.NewNoticeRepository(database)
	txRunner := sqlite.NewTxRunner(database)

	queue, err := redisq.NewQueue(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to connect to redis queue: %v", err)
	}
	lock, err := redisq.NewLock(cfg.RedisAddr, lockTTL)
	if err != nil {
		log.Fatalf("failed to connect to redis lock: %v", err)
	}

	// Pipeline components
	dispatcher := app.NewNotificationDispatcher(noticeRepo, cfg.SystemActor, logger)
	finalizer := app.NewChannelFinalizer(channelRepo, messageRepo, membershipRepo, topicRepo,
		app.FinalizerConfig{TopicStatusPolicy: cfg.TopicStatusPolicy, SystemActor: cfg.SystemActor}, logger)
	registrar := app.NewRegistrar(archiveRepo, channelRepo, messageRepo, topicRepo, queue, logger)
	pipeline := app.NewPipeline(archiveRepo, messageRepo, topicRepo, txRunner, lock,
		app.NewReferenceMigrator(), finalizer, dispatcher,
		app.PipelineConfig{BatchSize: cfg.BatchSize, SystemActor: cfg.SystemActor}, logger)

	// Service (primary port implementation)
	archiveService = app.NewArchiveService(registrar, pipeline, archiveRepo, noticeRepo)

	jobWorker = worker.NewWorker(queue, archiveService,
		worker.Config{MaxAttempts: cfg.WorkerMaxAttempts, RetryDelay: cfg.WorkerRetryDelay}, logger)
	sweeper = scheduler.NewSweeper(archiveRepo, queue,
		scheduler.Config{Interval: cfg.SweepInterval, StaleAfter: cfg.SweepStaleAfter}, logger)
}
