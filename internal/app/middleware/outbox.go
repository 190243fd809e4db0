package middleware

import (
	"context"

	"villacove/internal/app/commands"
	"villacove/internal/app/outbox"
)

// OutboxFlush runs after a successful command so queued events leave
// with the same request. Stores whose Add already lands rows inside the
// transaction implement Flush as a no-op.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
