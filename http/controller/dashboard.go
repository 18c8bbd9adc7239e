package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-inventory-service/utils"
)

func (ctrl *Controller) GetDashboard(c *gin.Context) {
	ctx := requestContext(c)

	dashboard, err := ctrl.Service.Dashboard(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Dashboard] Failed to load dashboard: %v", err)
		utils.JSONError(c, err)
		return
	}

	utils.JSON200(c, dashboard)
}
