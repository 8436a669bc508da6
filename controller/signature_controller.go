// controller/signature_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	"github.com/dev-mohitbeniwal/coregate/signature"
	"github.com/dev-mohitbeniwal/coregate/util"
)

// SignatureController issues signatures for client tooling. The caller's
// own API key is the public key being signed for.
type SignatureController struct {
	signatures signature.ISignatureService
}

func NewSignatureController(signatures signature.ISignatureService) *SignatureController {
	return &SignatureController{signatures: signatures}
}

func (sc *SignatureController) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	signatures := r.Group("/signatures", middleware...)
	{
		signatures.POST("", sc.CreateSignature)
	}
}

// CreateSignature signs the request's own query and body.
func (sc *SignatureController) CreateSignature(c *gin.Context) {
	req := signature.FromHTTPRequest(c.Request)
	publicKey := req.Header(signature.HeaderAPIKey)
	if publicKey == "" {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", coregate_errors.ErrUnauthorized)
		return
	}

	query, err := signature.CanonicalQuery(req.Query)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid query", errors.Join(coregate_errors.ErrInvalidInput, err))
		return
	}

	encrypted, err := sc.signatures.EncryptSignature(query, signature.CanonicalBody(req.Body), publicKey)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Internal server error", errors.Join(coregate_errors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"signature": encrypted})
}
