// controller/health_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/coregate/cache"
)

// HealthController reports liveness and the state of the cache: "up" with
// Redis, "memory" on the in-process fallback, "degraded" with no cache.
type HealthController struct {
	cacheAvailable func() bool
	store          cache.Store
}

type sizedStore interface {
	Len() int
}

func NewHealthController(cacheAvailable func() bool, store cache.Store) *HealthController {
	return &HealthController{cacheAvailable: cacheAvailable, store: store}
}

func (hc *HealthController) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", hc.Health)
}

func (hc *HealthController) Health(c *gin.Context) {
	if hc.cacheAvailable != nil && hc.cacheAvailable() {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": "up"})
		return
	}
	if sized, ok := hc.store.(sizedStore); ok {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": "memory", "entries": sized.Len()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": "degraded"})
}
