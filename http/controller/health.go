package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-inventory-service/utils"
)

const healthTimeout = 3 * time.Second

func (ctrl *Controller) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true
	record := func(name string, err error) {
		if err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Health] %s check failed: %v", name, err)
			checks[name] = err.Error()
			healthy = false
			return
		}
		checks[name] = "ok"
	}

	if ctrl.Infra.Postgres != nil {
		sqlDB, err := ctrl.Infra.Postgres.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		record("postgres", err)
	}
	if ctrl.Infra.Redis != nil {
		record("redis", ctrl.Infra.Redis.Ping(ctx))
	}
	if ctrl.Infra.Minio != nil {
		mode, err := ctrl.Infra.Minio.HealthCheck(ctx)
		record("minio", err)
		if err == nil {
			checks["minio"] = mode
		}
	}

	status := "ok"
	if !healthy {
		status = "degraded"
		utils.JSON503(c, gin.H{"status": status, "checks": checks})
		return
	}
	utils.JSON200(c, gin.H{"status": status, "checks": checks})
}
