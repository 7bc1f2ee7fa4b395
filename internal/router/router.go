package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fee-api/internal/handler"
	"github.com/noah-isme/school-fee-api/internal/middleware"
	"github.com/noah-isme/school-fee-api/internal/service"
	"github.com/noah-isme/school-fee-api/pkg/config"
	"github.com/noah-isme/school-fee-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-fee-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-fee-api/pkg/middleware/requestid"
)

// Handlers groups the handler instances mounted by New.
type Handlers struct {
	Students *handler.StudentHandler
	Fees     *handler.FeeHandler
	Reports  *handler.ReportHandler
	Metrics  *handler.MetricsHandler
}

// New builds the gin engine with the global middleware chain and every route.
func New(cfg *config.Config, handlers Handlers, metrics *service.MetricsService, logr *zap.Logger) (*gin.Engine, error) {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	corsMiddleware, err := corsmiddleware.New(cfg.CORS.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsMiddleware)
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", handlers.Metrics.Health)
	r.GET("/ready", handlers.Metrics.Ready)
	r.GET("/metrics", handlers.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	students := api.Group("/students")
	{
		students.GET("", handlers.Students.List)
		students.POST("", handlers.Students.Create)
		students.GET("/export", handlers.Reports.ExportClass)
		students.GET("/:id", handlers.Students.Get)
		students.DELETE("/:id", handlers.Students.Delete)
		students.PUT("/:id/fee", handlers.Students.RecordFee)
		students.DELETE("/:id/fee", handlers.Students.ClearFee)
	}

	api.GET("/classes", handlers.Fees.Classes)

	fees := api.Group("/fees")
	{
		fees.GET("/total", handlers.Fees.Total)
		fees.GET("/monthly", handlers.Fees.Monthly)
		fees.GET("/monthly/export", handlers.Reports.ExportMonthly)
	}

	return r, nil
}
