package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/johnquangdev/meeting-agent/docs"
	"github.com/johnquangdev/meeting-agent/internal/adapter/handler"
	"github.com/johnquangdev/meeting-agent/internal/adapter/repository"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/livekit"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-agent/internal/usecase/lifecycle"
	"github.com/johnquangdev/meeting-agent/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/jobcontext"
	"github.com/johnquangdev/meeting-agent/pkg/jwt"
	"github.com/johnquangdev/meeting-agent/pkg/metrics"
	"github.com/johnquangdev/meeting-agent/pkg/openai"
	"github.com/johnquangdev/meeting-agent/pkg/signature"
	pkgvalidator "github.com/johnquangdev/meeting-agent/pkg/validator"
	"github.com/johnquangdev/meeting-agent/pkg/workflow"
)

// @title           Meeting Agent API
// @version         1.0
// @description     Call provider webhooks and operator routes for the meeting lifecycle and transcript pipeline.

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server.exit", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("database.connecting")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	// Production deployments manage schema with `meetctl migrate`.
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			return errors.New("DB_AUTO_MIGRATE is enabled in production; run meetctl migrate instead")
		}
		n, err := database.Migrate(db, database.DefaultMigrationsDir, false, 0)
		if err != nil {
			return err
		}
		logger.Info("database.migrated", zap.Int("applied", n))
	}

	var redisClient *redis.Client
	if cfg.Pipeline.QueueDriver == queue.DriverRedis || cfg.Pipeline.CheckpointDriver == "redis" {
		redisClient, err = cache.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.Pipeline.QueueDriver == queue.DriverNATS {
		natsConn, err = queue.ConnectNATS(&cfg.NATS)
		if err != nil {
			return err
		}
		defer natsConn.Drain()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	userRepo := repository.NewUserRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)

	backends := queue.Backends{NATS: natsConn}
	if redisClient != nil {
		backends.Redis = redisClient
	}
	workQueue, err := queue.Open(cfg, backends)
	if err != nil {
		return err
	}
	defer workQueue.Close()

	if rq, ok := workQueue.(*queue.RedisQueue); ok {
		n, err := rq.RecoverProcessing(rootCtx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("pipeline.queue.recovered", zap.Int("items", n))
		}
	}
	instrumented := queue.WithMetrics(workQueue, cfg.Pipeline.QueueDriver, m)

	checkpoints, closeCheckpoints, err := newCheckpointStore(cfg, db, redisClient)
	if err != nil {
		return err
	}
	defer closeCheckpoints()

	runner := workflow.NewRunner(checkpoints,
		workflow.WithLogger(logger.Named("workflow")),
		workflow.WithBackOff(workflow.ExponentialBackOff(cfg.Pipeline.StepRetryInterval, cfg.Pipeline.StepMaxRetries)),
		workflow.WithObserver(m.ObserveStep),
	)

	processor := pipeline.NewProcessor(
		meetingRepo,
		userRepo,
		agentRepo,
		pipeline.NewHTTPFetcher(&cfg.Pipeline),
		openai.NewClient(&cfg.OpenAI),
		runner,
		&cfg.OpenAI,
		logger.Named("pipeline"),
	)
	if cfg.Storage.Enabled {
		archive, err := storage.NewMinIOClient(rootCtx, &cfg.Storage)
		if err != nil {
			return err
		}
		processor.WithArchiver(archive)
	}

	workers := pipeline.NewWorkerPool(instrumented, processor, cfg.Pipeline.Workers, jobcontext.Options{
		Timeout:    cfg.Pipeline.JobTimeout,
		MaxRetries: cfg.Pipeline.JobMaxRetries,
		BaseDelay:  cfg.Pipeline.RetryBaseDelay,
	}, m, logger.Named("pipeline"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workers.Start(workerCtx)

	provider := livekit.NewClient(
		cfg.LiveKit.URL,
		cfg.LiveKit.APIKey,
		cfg.LiveKit.APISecret,
		cfg.LiveKit.AgentName,
		cfg.LiveKit.UseMock,
	)
	if cfg.LiveKit.UseMock {
		logger.Warn("livekit.mock_mode")
	}

	bridge := lifecycle.NewAgentBridge(agentRepo, provider, cfg.LiveKit.CallType, cfg.OpenAI.APIKey, logger.Named("bridge"))
	lifecycleService := lifecycle.NewLifecycleService(meetingRepo, bridge, provider, instrumented, cfg.LiveKit.CallType, logger.Named("lifecycle"))

	validate := pkgvalidator.New()
	webhookHandler := handler.NewWebhookHandler(
		signature.NewVerifier(cfg.Webhook.APIKey, cfg.Webhook.Secret),
		lifecycle.NewEventParser(validate),
		lifecycleService,
		m,
		logger.Named("webhook"),
	)
	meetingController := handler.NewMeetingController(lifecycleService, logger.Named("meetings"))
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	handler.NewRouter(cfg, webhookHandler, meetingController, jwtManager, registry).Setup(e)

	serverErr := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("server.starting",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("queue_driver", cfg.Pipeline.QueueDriver),
			zap.String("checkpoint_driver", cfg.Pipeline.CheckpointDriver),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("server.shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server.forced_shutdown", zap.Error(err))
	}

	// Interrupted jobs stay unsettled and resume from their checkpoints.
	stopWorkers()
	workers.Wait()

	logger.Info("server.stopped")
	return nil
}

func newCheckpointStore(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (workflow.CheckpointStore, func() error, error) {
	switch cfg.Pipeline.CheckpointDriver {
	case "postgres":
		return repository.NewCheckpointRepository(db), noopClose, nil
	case "redis":
		if redisClient == nil {
			return nil, nil, errors.New("redis checkpoint driver requires a redis client")
		}
		return cache.NewRedisCheckpointStore(redisClient, cfg.Pipeline.CheckpointTTL), noopClose, nil
	case "memory":
		store := cache.NewMemoryCheckpointStore(cfg.Pipeline.CheckpointTTL)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported checkpoint driver %q", cfg.Pipeline.CheckpointDriver)
	}
}

func noopClose() error { return nil }
