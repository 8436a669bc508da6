// router/router.go
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/coregate/controller"
	"github.com/dev-mohitbeniwal/coregate/metrics"
	"github.com/dev-mohitbeniwal/coregate/middleware"
	"github.com/dev-mohitbeniwal/coregate/signature"
	"github.com/dev-mohitbeniwal/coregate/util"
)

func SetupRouter(
	controllers *controller.Controllers,
	signatures signature.ISignatureService,
	eventBus *util.EventBus,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	controllers.Health.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")

	controllers.FeatureFlag.RegisterRoutes(api,
		middleware.RateLimiter(rateLimitRequests, rateLimitDuration),
		middleware.VerifySignature(signatures, eventBus),
	)
	controllers.Signature.RegisterRoutes(api,
		middleware.RequireAPIKey(signatures, eventBus),
	)
	if controllers.Audit != nil {
		controllers.Audit.RegisterRoutes(api,
			middleware.RateLimiter(rateLimitRequests, rateLimitDuration),
			middleware.VerifySignature(signatures, eventBus),
		)
	}

	return router
}
