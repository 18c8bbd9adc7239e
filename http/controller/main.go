package controller

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-inventory-service/config"
	"github.com/tnqbao/gau-inventory-service/graph"
	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/service"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Service    *service.Service
	Executor   *graph.Executor
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository, svc *service.Service) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if svc == nil {
		panic("Failed to initialize Service")
	}

	executor, err := graph.NewExecutor(svc, infra.Logger)
	if err != nil {
		panic("Failed to build GraphQL schema: " + err.Error())
	}

	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Service:    svc,
		Executor:   executor,
	}
}

// requestContext carries the authenticated caller into the service layer.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if userID := c.GetString("user_id"); userID != "" {
		ctx = service.WithActor(ctx, userID)
	}
	return graph.WithPermission(ctx, c.GetString("permission"))
}
