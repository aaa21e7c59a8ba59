package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/infra/config"
	"github.com/arklim/workflow-resolution/internal/infra/database"
	"github.com/arklim/workflow-resolution/internal/infra/directory"
	kafkainfra "github.com/arklim/workflow-resolution/internal/infra/kafka"
	"github.com/arklim/workflow-resolution/internal/infra/logger"
	redisinfra "github.com/arklim/workflow-resolution/internal/infra/redis"
	"github.com/arklim/workflow-resolution/internal/infra/telemetry"
	postgresrepo "github.com/arklim/workflow-resolution/internal/repository/postgres"
	redisrepo "github.com/arklim/workflow-resolution/internal/repository/redis"
	"github.com/arklim/workflow-resolution/internal/transport/http/routes"
	"github.com/arklim/workflow-resolution/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	countCache := redisrepo.NewTargetCountCache(redisClient.Client(), cfg.Redis.TargetCountPrefix, log)

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	// The resolver works against the directory ports. When an upstream
	// directory service is configured, lookups go over HTTP; otherwise the
	// local store answers them directly.
	var (
		users      port.UserDirectory
		hierarchy  port.HierarchyNavigator
		membership port.RoleMembershipIndex
	)
	if cfg.Directory.BaseURL != "" {
		client := directory.NewClient(cfg.Directory, log)
		users, hierarchy, membership = client, client, client
		log.Info("using remote directory", zap.String("base_url", cfg.Directory.BaseURL))
	} else {
		local := directory.NewLocalDirectory(repos.Units, repos.Users, repos.Roles, cfg.Resolution.LookupTimeout, log)
		users, hierarchy, membership = local, local, local
	}

	assignees := usecase.NewAssigneeResolver(users, hierarchy, membership)
	targets := usecase.NewTargetResolverRegistry(repos.Users, repos.Units, repos.VirtualGroups, countCache, cfg.Resolution.CountCacheTTL, log)
	resolutionService := usecase.NewResolutionService(assignees, targets, repos.Roles, eventPublisher, log)
	orgUnitService := usecase.NewOrgUnitService(repos.Units, countCache, eventPublisher, log)
	groupService := usecase.NewVirtualGroupService(repos.VirtualGroups, repos.Roles, repos.Users, countCache, eventPublisher, log)
	directoryService := usecase.NewDirectoryService(repos.Units, repos.Users, repos.Roles)

	engine := routes.Register(routes.Dependencies{
		Config:            cfg,
		Logger:            log,
		ResolutionCounter: metrics.ResolutionCounter(),
		Database:          pool,
		Cache:             redisClient,
		Services: routes.ServiceSet{
			Resolution:    resolutionService,
			OrgUnits:      orgUnitService,
			VirtualGroups: groupService,
			Directory:     directoryService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			_ = a.tracer.Shutdown(context.Background())
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting workflow resolution API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
