// middleware/signature.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/coregate/audit"
	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/metrics"
	"github.com/dev-mohitbeniwal/coregate/signature"
	"github.com/dev-mohitbeniwal/coregate/util"
)

const (
	ContextKeyFingerprint = "keyFingerprint"
	ContextCredential     = "credential"
)

// RequireAPIKey only checks that x-api-key is present.
func RequireAPIKey(svc signature.ISignatureService, bus *util.EventBus) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := signature.FromHTTPRequest(c.Request)
		if err := svc.UseSignature(req); err != nil {
			reject(c, bus, audit.ActionPresence, req, err)
			return
		}

		c.Set(ContextKeyFingerprint, signature.Fingerprint(req.Header(signature.HeaderAPIKey)))
		record(c, bus, audit.ActionPresence, req, nil, nil)
		c.Next()
	}
}

// VerifySignature authenticates the request and stores the caller's
// credential on the context.
func VerifySignature(svc signature.ISignatureService, bus *util.EventBus) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := signature.FromHTTPRequest(c.Request)
		credential, err := svc.VerifySignature(c.Request.Context(), req)
		if err != nil {
			reject(c, bus, audit.ActionVerify, req, err)
			return
		}

		c.Set(ContextKeyFingerprint, signature.Fingerprint(req.Header(signature.HeaderAPIKey)))
		c.Set(ContextCredential, credential)
		record(c, bus, audit.ActionVerify, req, credential, nil)
		c.Next()
	}
}

// KeyFingerprintFromContext returns the fingerprint of the caller's API key,
// or "" when no signature middleware ran.
func KeyFingerprintFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyFingerprint)
}

// CredentialFromContext returns the credential set by VerifySignature.
func CredentialFromContext(c *gin.Context) (*signature.Credential, bool) {
	v, ok := c.Get(ContextCredential)
	if !ok {
		return nil, false
	}
	credential, ok := v.(*signature.Credential)
	return credential, ok && credential != nil
}

func reject(c *gin.Context, bus *util.EventBus, action string, req *signature.Request, err error) {
	record(c, bus, action, req, nil, err)
	if !coregate_errors.IsMissingSignature(err) {
		logger.Error("Unexpected signature failure", zap.Error(err))
	}
	util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", coregate_errors.ErrUnauthorized)
	c.Abort()
}

func record(c *gin.Context, bus *util.EventBus, action string, req *signature.Request, credential *signature.Credential, err error) {
	outcome := "authenticated"
	if err != nil {
		outcome = "rejected"
	}
	metrics.IncAuthDecision(outcome)

	if bus == nil {
		return
	}
	entry := audit.AuditLog{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		Action:         action,
		KeyFingerprint: signature.Fingerprint(req.Header(signature.HeaderAPIKey)),
		Method:         c.Request.Method,
		Path:           c.Request.URL.Path,
		ClientIP:       c.ClientIP(),
		Authenticated:  err == nil,
		Reason:         coregate_errors.RejectionReason(err),
	}
	if credential != nil {
		entry.AppName = credential.AppName
	}
	bus.Publish(c.Request.Context(), audit.EventAuthDecision, entry)
}
