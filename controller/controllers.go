// controller/controllers.go
package controller

import (
	"github.com/dev-mohitbeniwal/coregate/audit"
	"github.com/dev-mohitbeniwal/coregate/cache"
	"github.com/dev-mohitbeniwal/coregate/featureflag"
	"github.com/dev-mohitbeniwal/coregate/signature"
)

type Controllers struct {
	FeatureFlag *FeatureFlagController
	Signature   *SignatureController
	Health      *HealthController
	// Audit is nil when the audit trail is disabled.
	Audit *AuditController
}

func InitializeControllers(
	flags featureflag.IFeatureFlag,
	signatures signature.ISignatureService,
	auditService audit.Service,
	store cache.Store,
	cacheAvailable func() bool,
) *Controllers {
	controllers := &Controllers{
		FeatureFlag: NewFeatureFlagController(flags),
		Signature:   NewSignatureController(signatures),
		Health:      NewHealthController(cacheAvailable, store),
	}
	if auditService != nil {
		controllers.Audit = NewAuditController(auditService)
	}
	return controllers
}
