package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. Audit writes and reads share
// one handler; /metrics serves the Prometheus registry.
func SetupRoutes(router *gin.Engine, auditHandler *AuditHandler, usageHandler *UsageHandler, metricsHandler http.Handler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metricsHandler))

	v1 := router.Group("/api/v1")
	{
		accounts := v1.Group("/accounts/:id")
		accounts.POST("/audits", auditHandler.StartAudit)
		accounts.GET("/audits", auditHandler.ListAudits)
		accounts.GET("/score", auditHandler.HealthScore)
		accounts.GET("/usage", usageHandler.UsageStatus)

		v1.GET("/audits/:id", auditHandler.GetAudit)
		v1.PATCH("/issues/:id/fixed", auditHandler.MarkIssueFixed)
	}
}
