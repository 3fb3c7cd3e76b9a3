package server

import (
	"context"
	"time"

	"socialfeed/internal/middleware"
)

const publishTimeout = 2 * time.Second

// publishFeedEvent is best effort: a failed publish is logged and never
// reaches the client.
func (s *Server) publishFeedEvent(eventType string, payload map[string]any) {
	if !s.notifier.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.notifier.PublishEvent(ctx, eventType, payload); err != nil {
		middleware.Logger.Warn("failed to publish feed event", "event", eventType, "error", err)
	}
}

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]any) {
	if !s.notifier.Enabled() || userID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.notifier.PublishUser(ctx, userID, eventType, payload); err != nil {
		middleware.Logger.Warn("failed to publish user event", "event", eventType, "user_id", userID, "error", err)
	}
}
