package services

import (
	"fmt"

	"twinflame-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushService delivers APNs notifications to the partner's device. A nil
// *PushService is a no-op, so callers never need to check configuration.
type PushService struct {
	client *apns2.Client
	topic  string
}

// NewPushService creates a token-based APNs client. Returns nil when no key
// is configured.
func NewPushService(cfg config.PushConfig) (*PushService, error) {
	if cfg.KeyPath == "" {
		return nil, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Sandbox {
		client = client.Development()
	} else {
		client = client.Production()
	}

	return &PushService{client: client, topic: cfg.Topic}, nil
}

// Notify sends an alert to a device token. Failures are logged, never
// propagated; push is best-effort.
func (s *PushService) Notify(deviceToken *string, title, body string) {
	if s == nil || deviceToken == nil || *deviceToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: *deviceToken,
		Topic:       s.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := s.client.Push(notification)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().Str("reason", res.Reason).Msg("Push notification rejected")
	}
}
