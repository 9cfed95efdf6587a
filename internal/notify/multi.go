package notify

import (
	"context"

	"ordermgmt-be/internal/logger"
	"ordermgmt-be/internal/order"

	"go.uber.org/zap"
)

// Multi fans an event out to several publishers. A failing publisher is
// logged and skipped.
type Multi []order.Publisher

func (m Multi) Publish(ctx context.Context, evt order.Event) error {
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			logger.FromCtx(ctx).Warn("publisher failed",
				zap.String("event", evt.Name),
				zap.String("key", evt.Key),
				zap.Error(err),
			)
		}
	}
	return nil
}
