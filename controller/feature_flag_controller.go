// controller/feature_flag_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	"github.com/dev-mohitbeniwal/coregate/featureflag"
	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/middleware"
	"github.com/dev-mohitbeniwal/coregate/util"
)

type FeatureFlagController struct {
	flags featureflag.IFeatureFlag
}

func NewFeatureFlagController(flags featureflag.IFeatureFlag) *FeatureFlagController {
	return &FeatureFlagController{flags: flags}
}

type flagStatusRequest struct {
	Context      featureflag.FlagContext `json:"context"`
	DefaultValue *bool                   `json:"default_value"`
}

type flagStatusResponse struct {
	Flag  string `json:"flag"`
	Value bool   `json:"value"`
}

// RegisterRoutes mounts the flag routes behind the given middleware.
func (fc *FeatureFlagController) RegisterRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	flags := r.Group("/feature-flags", middleware...)
	{
		flags.POST("/:name/status", fc.GetStatus)
	}
}

// GetStatus endpoint
func (fc *FeatureFlagController) GetStatus(c *gin.Context) {
	var req flagStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid flag request", errors.Join(coregate_errors.ErrInvalidInput, err))
		return
	}

	defaultValue := featureflag.DefaultValue
	if req.DefaultValue != nil {
		defaultValue = *req.DefaultValue
	}

	name := c.Param("name")
	status, err := fc.flags.GetStatusFlag(c.Request.Context(), req.Context, name, defaultValue)
	if err != nil {
		switch {
		case errors.Is(err, coregate_errors.ErrRemoteAuthority),
			errors.Is(err, coregate_errors.ErrAuthorityUnreachable),
			errors.Is(err, coregate_errors.ErrMalformedResponse):
			util.RespondWithError(c, http.StatusBadGateway, "Flag authority unavailable", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Internal server error", errors.Join(coregate_errors.ErrInternalServer, err))
		}
		return
	}

	if credential, ok := middleware.CredentialFromContext(c); ok {
		logger.Debug("Flag status served",
			zap.String("app", credential.AppName),
			zap.String("flag", name),
			zap.Bool("value", status))
	}
	c.JSON(http.StatusOK, flagStatusResponse{Flag: name, Value: status})
}
