package services

import (
	"context"
	"log/slog"

	"firebase.google.com/go/messaging"
)

// FCMClient is the slice of the firebase messaging client the push service
// uses.
type FCMClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DeviceTokenStore manages registered push targets.
type DeviceTokenStore interface {
	Insert(ctx context.Context, userID int, token string) error
	Delete(ctx context.Context, token string) error
	TokensByUser(ctx context.Context, userID int) ([]string, error)
	AdminTokens(ctx context.Context) ([]string, error)
}

// PushService delivers push notifications over FCM. Tokens FCM reports as
// unregistered are pruned so they are not retried forever.
type PushService struct {
	Client FCMClient
	Tokens DeviceTokenStore
	Logger *slog.Logger
}

func (p *PushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	// Push is optional; without FCM credentials delivery is a no-op.
	if p.Client == nil {
		return nil
	}
	_, err := p.Client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			p.Logger.Info("pruning unregistered device token")
			if delErr := p.Tokens.Delete(ctx, token); delErr != nil {
				p.Logger.Error("delete device token", "err", delErr)
			}
			return nil
		}
		return err
	}
	return nil
}

// Register stores a device token for a user.
func (p *PushService) Register(ctx context.Context, userID int, token string) error {
	return p.Tokens.Insert(ctx, userID, token)
}

// Unregister drops a device token.
func (p *PushService) Unregister(ctx context.Context, token string) error {
	return p.Tokens.Delete(ctx, token)
}
