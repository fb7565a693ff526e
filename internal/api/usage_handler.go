package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/logger"
)

// UsageReader defines the usage operations needed by the handler.
type UsageReader interface {
	UsageStatus(ctx context.Context, accountID string) (*domain.UsageStatus, error)
}

// UsageHandler handles usage HTTP requests.
type UsageHandler struct {
	svc    UsageReader
	logger logger.Logger
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(svc UsageReader, log logger.Logger) *UsageHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &UsageHandler{svc: svc, logger: log}
}

// UsageStatus handles GET /api/v1/accounts/:id/usage.
func (h *UsageHandler) UsageStatus(c *gin.Context) {
	status, err := h.svc.UsageStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("usage lookup failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, status)
}
