// Package notifier relays session events to outside observers. Observers only
// read the event stream; nothing here can steer the session.
package notifier

import (
	"context"
	"log/slog"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

// drain feeds events to handle until the stream closes or ctx is done.
// Handler errors are logged and never stop the stream.
func drain(
	ctx context.Context,
	events <-chan entity.Event,
	name string,
	handle func(context.Context, entity.Event) error,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := handle(ctx, e); err != nil {
				logger(ctx).Error(name+" failed",
					slog.String(logx.FieldEvent, string(e.Kind)),
					logx.Error(err),
				)
			}
		}
	}
}
