// controller/audit_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/coregate/audit"
	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/middleware"
	"github.com/dev-mohitbeniwal/coregate/util"
)

// AuditController lets a verified caller read the auth decisions recorded
// for its own API key.
type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	auditLogs := r.Group("/audit", middleware...)
	{
		auditLogs.GET("", ac.QueryLogs)
	}
}

// QueryLogs accepts optional from/to (RFC 3339) and size query parameters.
func (ac *AuditController) QueryLogs(c *gin.Context) {
	fingerprint := middleware.KeyFingerprintFromContext(c)
	if fingerprint == "" {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", coregate_errors.ErrUnauthorized)
		return
	}

	filter := audit.Filter{KeyFingerprint: fingerprint}
	var err error
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid from", errors.Join(coregate_errors.ErrInvalidInput, err))
		return
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid to", errors.Join(coregate_errors.ErrInvalidInput, err))
		return
	}
	if size := c.Query("size"); size != "" {
		if filter.Size, err = strconv.Atoi(size); err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid size", errors.Join(coregate_errors.ErrInvalidInput, err))
			return
		}
	}

	logs, err := ac.auditService.QueryLogs(c.Request.Context(), filter)
	if err != nil {
		util.RespondWithError(c, http.StatusBadGateway, "Audit store unavailable", err)
		return
	}

	if credential, ok := middleware.CredentialFromContext(c); ok {
		logger.Debug("Audit logs queried",
			zap.String("app", credential.AppName),
			zap.Int("count", len(logs)))
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}
