package services

import (
	"context"
	"log/slog"
)

// Broadcaster pushes an event onto the live admin feed.
type Broadcaster interface {
	Broadcast(v any)
}

// AdminNotifyService fans workforce and invoice events out to every admin:
// a push per registered admin device plus a websocket broadcast. All
// delivery is best-effort.
type AdminNotifyService struct {
	Tokens DeviceTokenStore
	Push   Pusher
	Feed   Broadcaster
	Logger *slog.Logger
}

func (s *AdminNotifyService) NotifyAdmins(ctx context.Context, title, body string, data map[string]string) {
	tokens, err := s.Tokens.AdminTokens(ctx)
	if err != nil {
		s.Logger.Error("list admin tokens", "err", err)
	}
	for _, token := range tokens {
		if err := s.Push.Send(ctx, token, title, body, data); err != nil {
			s.Logger.Error("admin push failed", "err", err)
		}
	}

	if s.Feed != nil {
		payload := map[string]any{"title": title, "body": body}
		for k, v := range data {
			payload[k] = v
		}
		s.Feed.Broadcast(payload)
	}
}
