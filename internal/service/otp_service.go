package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notes-api/internal/email"
	"notes-api/internal/repository"
)

const DefaultOTPTTL = 5 * time.Minute

// OTPService emite y verifica codigos de un solo uso asociados a un email.
type OTPService struct {
	logger     *zap.Logger
	store      OTPStore
	users      repository.UserRepository
	sender     email.Sender
	limiter    RateLimiter
	ttl        time.Duration
	bypassCode string
	now        func() time.Time
}

type OTPOption func(*OTPService)

// WithDevBypassCode acepta un codigo fijo; main solo lo inyecta fuera de produccion.
func WithDevBypassCode(code string) OTPOption {
	return func(s *OTPService) {
		s.bypassCode = strings.TrimSpace(code)
	}
}

// WithRequestLimiter limita las solicitudes de OTP por email.
func WithRequestLimiter(limiter RateLimiter) OTPOption {
	return func(s *OTPService) {
		s.limiter = limiter
	}
}

func NewOTPService(logger *zap.Logger, store OTPStore, users repository.UserRepository, sender email.Sender, ttl time.Duration, opts ...OTPOption) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewMemoryOTPStore()
	}
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	s := &OTPService{
		logger: logger,
		store:  store,
		users:  users,
		sender: sender,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request genera un codigo nuevo (reemplazando el anterior) y lo envia por email.
func (s *OTPService) Request(ctx context.Context, emailAddr, name string) error {
	emailAddr = normalizeEmail(emailAddr)
	name = strings.TrimSpace(name)
	if emailAddr == "" || name == "" {
		return ErrMissingOTPFields
	}
	if !repository.IsValidEmail(emailAddr) {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, emailAddr) {
		return ErrRateLimited
	}

	existing, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil && existing.IsEmailVerified {
		return ErrUserExists
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	code, hash, err := generateOTP()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.ttl)
	if err := s.store.Put(ctx, emailAddr, hash, expiresAt); err != nil {
		return err
	}

	if s.sender == nil {
		return ErrOTPSendFailure
	}
	if err := s.sender.SendVerificationOTP(ctx, emailAddr, name, code, expiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrOTPSendFailure
	}
	return nil
}

// Verify consume el codigo si es correcto y no expiro. No distingue entre
// codigo inexistente, expirado o distinto.
func (s *OTPService) Verify(ctx context.Context, emailAddr, code string) (bool, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || code == "" {
		return false, nil
	}
	if s.bypassCode != "" && subtle.ConstantTimeCompare([]byte(code), []byte(s.bypassCode)) == 1 {
		s.logger.Warn("development otp bypass used", zap.String("email", emailAddr))
		return true, nil
	}
	if !isValidOTPCode(code) {
		return false, nil
	}
	return s.store.Consume(ctx, emailAddr, func(codeHash string) bool {
		return verifyOTP(code, codeHash)
	})
}
