// audit/service.go
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/util"
)

type Service interface {
	LogDecision(ctx context.Context, log AuditLog) error
	QueryLogs(ctx context.Context, filter Filter) ([]AuditLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogDecision(ctx context.Context, log AuditLog) error {
	return s.repo.LogDecision(ctx, log)
}

func (s *service) QueryLogs(ctx context.Context, filter Filter) ([]AuditLog, error) {
	return s.repo.QueryLogs(ctx, filter)
}

// Subscribe writes every auth decision published on bus to svc.
func Subscribe(bus *util.EventBus, svc Service) {
	bus.Subscribe(EventAuthDecision, func(ctx context.Context, event util.Event) error {
		log, ok := event.Payload.(AuditLog)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
		}
		if err := svc.LogDecision(ctx, log); err != nil {
			logger.Warn("Failed to record auth decision",
				zap.String("id", log.ID),
				zap.Error(err))
			return err
		}
		return nil
	})
}
