package email

import (
	"context"
	"errors"
	"time"
)

// Sender define la interfaz para envio de correos transaccionales.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail, name, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, toEmail, resetURL string, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _, _, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendPasswordReset(_ context.Context, _, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
