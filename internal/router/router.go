// Package router assembles the gin engine: middleware chain, system routes and the student API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/handler"
	"github.com/noah-isme/student-records-api/internal/middleware"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/config"
	"github.com/noah-isme/student-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/requestid"
)

// Dependencies carries everything the routes need.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Students *handler.StudentHandler
	System   *handler.MetricsHandler
}

// New builds the engine. Probe and metrics endpoints stay at the root; student routes live under APIPrefix.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger, "/health", "/ready", "/metrics"))
	// Metrics must wrap ErrorHandler to observe the status it renders.
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.ErrorHandler(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))

	registerSystemRoutes(r, deps)

	api := r.Group(deps.Config.APIPrefix)
	students := api.Group("/students")
	{
		students.GET("", deps.Students.List)
		students.POST("", deps.Students.Create)
		students.GET("/export", deps.Students.Export)
		students.GET("/:id", deps.Students.Get)
		students.PUT("/:id", deps.Students.Update)
		students.PATCH("/:id", deps.Students.Update)
		students.PATCH("/:id/status", deps.Students.SetStatus)
		students.GET("/:id/report", deps.Students.Report)
	}

	return r
}
