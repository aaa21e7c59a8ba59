package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/infra/config"
	"github.com/arklim/workflow-resolution/internal/transport/http/handlers"
	"github.com/arklim/workflow-resolution/internal/transport/http/middleware"
	"github.com/arklim/workflow-resolution/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Resolution    *usecase.ResolutionService
	OrgUnits      *usecase.OrgUnitService
	VirtualGroups *usecase.VirtualGroupService
	Directory     *usecase.DirectoryService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config            *config.AppConfig
	Logger            *zap.Logger
	Services          ServiceSet
	ResolutionCounter *prometheus.CounterVec
	Database          DatabaseChecker
	Cache             CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}

	if httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err != nil {
		deps.Logger.Warn("failed to register http metrics", zap.Error(err))
	} else {
		r.Use(httpMetrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		if deps.Services.Resolution != nil {
			resolutionHandler := handlers.NewResolutionHandler(deps.Services.Resolution, deps.ResolutionCounter)
			resolutionHandler.RegisterRoutes(api.Group("/assignments"))
		}

		if deps.Services.OrgUnits != nil {
			unitHandler := handlers.NewOrgUnitHandler(deps.Services.OrgUnits)
			unitHandler.RegisterRoutes(api.Group("/business-units"))
		}

		if deps.Services.VirtualGroups != nil {
			groupHandler := handlers.NewVirtualGroupHandler(deps.Services.VirtualGroups)
			groupHandler.RegisterRoutes(api.Group("/virtual-groups"))
		}

		if deps.Services.Directory != nil {
			directoryHandler := handlers.NewDirectoryHandler(deps.Services.Directory)
			directoryHandler.RegisterRoutes(api.Group("/directory"))
		}
	}

	return r
}
