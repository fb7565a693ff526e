package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/logger"
	"github.com/jonesrussell/seo-auditor/internal/scoring"
)

// Auditor defines the audit operations needed by the handler.
type Auditor interface {
	StartAudit(ctx context.Context, accountID string) (*domain.Audit, error)
	GetAudit(ctx context.Context, id string) (*domain.Audit, []domain.Issue, error)
	ListAudits(ctx context.Context, accountID string, limit int) ([]domain.Audit, error)
	MarkIssueFixed(ctx context.Context, accountID, issueID string, fixed bool) error
	HealthScore(ctx context.Context, accountID string) (scoring.Breakdown, error)
}

// AuditHandler handles audit HTTP requests.
type AuditHandler struct {
	svc    Auditor
	logger logger.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(svc Auditor, log logger.Logger) *AuditHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuditHandler{svc: svc, logger: log}
}

// StartAudit handles POST /api/v1/accounts/:id/audits.
func (h *AuditHandler) StartAudit(c *gin.Context) {
	accountID := c.Param("id")

	audit, err := h.svc.StartAudit(c.Request.Context(), accountID)
	if err != nil {
		h.renderStartError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, audit)
}

// renderStartError maps admission errors to structured responses so
// clients can branch without parsing messages.
func (h *AuditHandler) renderStartError(c *gin.Context, err error) {
	var rateLimited *domain.RateLimitedError
	if errors.As(err, &rateLimited) {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rateLimited.NextAllowedAt)))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":           "rate_limited",
			"message":         err.Error(),
			"next_allowed_at": rateLimited.NextAllowedAt.UTC().Format(time.RFC3339),
		})
		return
	}

	var exceeded *domain.QuotaExceededError
	if errors.As(err, &exceeded) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "quota_exceeded",
			"message":   err.Error(),
			"action":    exceeded.Action,
			"used":      exceeded.Used,
			"limit":     exceeded.Limit,
			"remaining": exceeded.Remaining(),
		})
		return
	}

	h.logger.Error("audit start failed", logger.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func retryAfterSeconds(next time.Time) int {
	seconds := int(time.Until(next).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

// GetAudit handles GET /api/v1/audits/:id.
func (h *AuditHandler) GetAudit(c *gin.Context) {
	audit, issues, err := h.svc.GetAudit(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit not found"})
			return
		}
		h.logger.Error("audit lookup failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if issues == nil {
		issues = []domain.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{"audit": audit, "issues": issues})
}

// ListAudits handles GET /api/v1/accounts/:id/audits.
func (h *AuditHandler) ListAudits(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	audits, err := h.svc.ListAudits(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.logger.Error("audit list failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if audits == nil {
		audits = []domain.Audit{}
	}
	c.JSON(http.StatusOK, gin.H{"audits": audits})
}

type markFixedRequest struct {
	AccountID string `binding:"required" json:"account_id"`
	Fixed     *bool  `binding:"required" json:"fixed"`
}

// MarkIssueFixed handles PATCH /api/v1/issues/:id/fixed.
func (h *AuditHandler) MarkIssueFixed(c *gin.Context) {
	var req markFixedRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	err := h.svc.MarkIssueFixed(c.Request.Context(), req.AccountID, c.Param("id"), *req.Fixed)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
			return
		}
		h.logger.Error("issue update failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// HealthScore handles GET /api/v1/accounts/:id/score.
func (h *AuditHandler) HealthScore(c *gin.Context) {
	breakdown, err := h.svc.HealthScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no completed audit"})
			return
		}
		h.logger.Error("score lookup failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
