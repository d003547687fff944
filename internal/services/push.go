package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"

	"together-backend/internal/config"
	"together-backend/internal/repository"
)

// PushService delivers APNs alerts to the partner's device. Without a
// configured certificate it is a no-op.
type PushService struct {
	client      *apns2.Client
	topic       string
	userRepo    *repository.UserRepository
	pairService *PairService
}

// NewPushService creates the APNs client from a P12 certificate file.
func NewPushService(cfg config.PushConfig, userRepo *repository.UserRepository, pairService *PairService) (*PushService, error) {
	s := &PushService{topic: cfg.Topic, userRepo: userRepo, pairService: pairService}
	if cfg.CertFile == "" {
		return s, nil
	}

	cert, err := certificate.FromP12File(cfg.CertFile, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load push certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	s.client = client
	return s, nil
}

// Enabled reports whether push delivery is configured.
func (s *PushService) Enabled() bool { return s.client != nil }

// NotifyPartner sends an alert to the device of the user's partner, if the
// partner registered a push token. Failures are logged, never fatal.
func (s *PushService) NotifyPartner(ctx context.Context, userID, title, body string) {
	if s == nil || s.client == nil {
		return
	}

	partnerID := s.pairService.PartnerID(ctx, userID)
	if partnerID == "" {
		return
	}

	partner, err := s.userRepo.GetByID(ctx, partnerID)
	if err != nil || partner.PushToken == nil {
		return
	}

	n := &apns2.Notification{
		DeviceToken: *partner.PushToken,
		Topic:       s.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := s.client.PushWithContext(ctx, n)
	if err != nil {
		log.Warn().Err(err).Str("partner_id", partnerID).Msg("Push delivery failed")
		return
	}
	if !res.Sent() {
		log.Warn().
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Str("partner_id", partnerID).
			Msg("Push rejected")
	}
}
