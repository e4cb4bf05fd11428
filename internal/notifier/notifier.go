package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/expofair/expofair-api/internal/domain"
)

// Notifier receives lifecycle events after the owning transaction has
// committed. Delivery is fire-and-forget: callers log a failed Notify
// and move on, a state transition is never rolled back for it.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}

// LogNotifier writes events to the application log. It stands in for
// the external email/browser-notification dispatcher.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, event domain.Event) error {
	zap.L().Info("lifecycle event",
		zap.String("type", string(event.Type)),
		zap.String("exhibition_id", event.ExhibitionID.String()),
		zap.String("application_id", event.ApplicationID.String()),
		zap.String("stall_instance_id", event.StallInstanceID.String()),
		zap.String("brand_id", event.BrandID.String()),
	)

	return nil
}

// Multi fans one event out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event domain.Event) error {
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			zap.L().Warn("notifier failed", zap.Error(err))
		}
	}

	return nil
}
