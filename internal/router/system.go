package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/student-records-api/api/swagger"
)

func registerSystemRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/health", deps.System.Health)
	r.GET("/ready", deps.System.Ready)

	if deps.Config.Metrics.Enabled {
		r.GET("/metrics", deps.System.Prometheus)
	}

	if deps.Config.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
