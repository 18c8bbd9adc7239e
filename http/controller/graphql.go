package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-inventory-service/graph"
	"github.com/tnqbao/gau-inventory-service/utils"
)

func (ctrl *Controller) GraphQL(c *gin.Context) {
	ctx := c.Request.Context()

	var req graph.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[GraphQL] Failed to bind request: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	result := ctrl.Executor.Execute(requestContext(c), req)
	utils.JSON200(c, result)
}
