package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tnqbao/gau-inventory-service/utils"
)

// DownloadSystemReport renders the system report and streams it back as a PDF attachment.
func (ctrl *Controller) DownloadSystemReport(c *gin.Context) {
	ctx := requestContext(c)

	systemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Report] Invalid system id %q", c.Param("id"))
		utils.JSON400(c, "Invalid system id")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Report] Rendering report for system %s", systemID)

	pdf, fileName, err := ctrl.Service.RenderSystemReport(ctx, systemID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Report] Failed to render report for system %s: %v", systemID, err)
		utils.JSONError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
