package controller_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/coregate/audit"
	"github.com/dev-mohitbeniwal/coregate/controller"
	"github.com/dev-mohitbeniwal/coregate/middleware"
	"github.com/dev-mohitbeniwal/coregate/signature"
	"github.com/dev-mohitbeniwal/coregate/test/mock"
)

func asCaller(fingerprint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if fingerprint != "" {
			c.Set(middleware.ContextKeyFingerprint, fingerprint)
			c.Set(middleware.ContextCredential, &signature.Credential{AppName: "billing", PublicKey: "pk-1"})
		}
		c.Next()
	}
}

func getAudit(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAuditController(t *testing.T) {
	fingerprint := signature.Fingerprint("pk-1")

	t.Run("QueryLogs_Success", func(t *testing.T) {
		auditService := new(mock.MockAuditService)
		router, api := setupRouter()
		controller.NewAuditController(auditService).RegisterRoutes(api, asCaller(fingerprint))

		auditService.On("QueryLogs", tmock.Anything, audit.Filter{
			From:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			KeyFingerprint: fingerprint,
			Size:           5,
		}).Return([]audit.AuditLog{{ID: "a", Action: audit.ActionVerify, KeyFingerprint: fingerprint}}, nil).Once()

		w := getAudit(router, "/api/v1/audit?from=2024-01-01T00:00:00Z&size=5")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"key_fingerprint":"`+fingerprint+`"`)
		assert.NotContains(t, w.Body.String(), "pk-1")
		auditService.AssertExpectations(t)
	})

	t.Run("QueryLogs_InvalidParams", func(t *testing.T) {
		auditService := new(mock.MockAuditService)
		router, api := setupRouter()
		controller.NewAuditController(auditService).RegisterRoutes(api, asCaller(fingerprint))

		assert.Equal(t, http.StatusBadRequest, getAudit(router, "/api/v1/audit?from=yesterday").Code)
		assert.Equal(t, http.StatusBadRequest, getAudit(router, "/api/v1/audit?to=2024-13-01").Code)
		assert.Equal(t, http.StatusBadRequest, getAudit(router, "/api/v1/audit?size=ten").Code)
		auditService.AssertNotCalled(t, "QueryLogs", tmock.Anything, tmock.Anything)
	})

	t.Run("QueryLogs_NoCaller", func(t *testing.T) {
		auditService := new(mock.MockAuditService)
		router, api := setupRouter()
		controller.NewAuditController(auditService).RegisterRoutes(api, asCaller(""))

		assert.Equal(t, http.StatusUnauthorized, getAudit(router, "/api/v1/audit").Code)
		auditService.AssertNotCalled(t, "QueryLogs", tmock.Anything, tmock.Anything)
	})

	t.Run("QueryLogs_StoreError", func(t *testing.T) {
		auditService := new(mock.MockAuditService)
		router, api := setupRouter()
		controller.NewAuditController(auditService).RegisterRoutes(api, asCaller(fingerprint))

		auditService.On("QueryLogs", tmock.Anything, tmock.Anything).
			Return(nil, errors.New("cluster unavailable")).Once()

		w := getAudit(router, "/api/v1/audit")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"error":"Audit store unavailable"}`, w.Body.String())
	})
}
