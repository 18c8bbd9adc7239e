package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-inventory-service/http/controller"
	middlewares "github.com/tnqbao/gau-inventory-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)
	r.GET("/healthz", ctrl.HealthCheck)

	apiRoutes := r.Group("/api/v1/inventory")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		apiRoutes.POST("/graphql", ctrl.GraphQL)
		apiRoutes.GET("/dashboard", ctrl.GetDashboard)
		apiRoutes.GET("/sistemas/:id/report.pdf", ctrl.DownloadSystemReport)
	}
	return r
}
