// Package service holds the business rules behind every API operation:
// input validation, ownership checks and side effects.
package service

import (
	"context"
	"log/slog"

	"recipebox/internal/middleware"
	"recipebox/internal/notifications"
)

// EventPublisher delivers activity events to a user.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, ev notifications.Event) error
}

// publish sends ev best-effort; delivery failures never fail the request.
func publish(ctx context.Context, pub EventPublisher, userID uint, ev notifications.Event) {
	if pub == nil {
		return
	}
	if err := pub.PublishUser(ctx, userID, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "event publish failed",
			slog.String("type", ev.Type), slog.String("error", err.Error()))
	}
}
