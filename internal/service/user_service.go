package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notes-api/internal/domain"
	"notes-api/internal/email"
	"notes-api/internal/repository"
)

// OTPVerifier consume un OTP previamente solicitado.
type OTPVerifier interface {
	Verify(ctx context.Context, emailAddr, code string) (bool, error)
}

// TokenIssuer emite tokens de sesion para un usuario.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// UserService coordina signup, signin y el ciclo de vida del password.
type UserService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	hasher       *PasswordHasher
	otp          OTPVerifier
	tokens       TokenIssuer
	resets       *ResetTokenIssuer
	emailSender  email.Sender
	resetURLBase string
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type UserServiceDeps struct {
	Users        repository.UserRepository
	Hasher       *PasswordHasher
	OTP          OTPVerifier
	Tokens       TokenIssuer
	Resets       *ResetTokenIssuer
	EmailSender  email.Sender
	ResetURLBase string
}

func NewUserService(logger *zap.Logger, deps UserServiceDeps) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Hasher == nil {
		deps.Hasher = NewPasswordHasher(DefaultBcryptCost)
	}
	if deps.Resets == nil {
		deps.Resets = NewResetTokenIssuer(DefaultResetTokenTTL)
	}
	return &UserService{
		logger:       logger,
		users:        deps.Users,
		hasher:       deps.Hasher,
		otp:          deps.OTP,
		tokens:       deps.Tokens,
		resets:       deps.Resets,
		emailSender:  deps.EmailSender,
		resetURLBase: strings.TrimRight(deps.ResetURLBase, "/"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type SignupInput struct {
	Name        string
	Email       string
	DateOfBirth string
	Password    string
	OTP         string
}

// AuthResult es la respuesta de signup/signin: el usuario y su token de sesion.
type AuthResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// Signup consume el OTP del email y crea la cuenta ya verificada.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)
	dobRaw := strings.TrimSpace(input.DateOfBirth)
	code := strings.TrimSpace(input.OTP)
	if name == "" || emailAddr == "" || dobRaw == "" || input.Password == "" || code == "" {
		return AuthResult{}, ErrMissingFields
	}
	dob, err := parseDateOfBirth(dobRaw)
	if err != nil {
		return AuthResult{}, ErrInvalidDateOfBirth
	}
	if err := CheckLength(input.Password); err != nil {
		return AuthResult{}, err
	}
	now := s.now()
	// El OTP se consume al verificarlo: todo lo que pueda fallar por datos
	// del formulario se revisa antes.
	if err := repository.ValidateProfile(domain.User{Name: name, Email: emailAddr, DateOfBirth: dob}, now); err != nil {
		return AuthResult{}, err
	}

	ok, err := s.otp.Verify(ctx, emailAddr, code)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, ErrOTPInvalid
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return AuthResult{}, ErrUserExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return AuthResult{}, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := domain.User{
		ID:              uuid.NewString(),
		Name:            name,
		Email:           emailAddr,
		DateOfBirth:     dob,
		PasswordHash:    passwordHash,
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, ErrUserExists
		}
		return AuthResult{}, err
	}

	return s.authResult(user)
}

// Signin responde lo mismo para email desconocido y password incorrecto.
func (s *UserService) Signin(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return AuthResult{}, ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Mismo costo de bcrypt que un password incorrecto.
			s.hasher.Verify(password, s.dummyPasswordHash())
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.authResult(user)
}

// GetByID resuelve el usuario de un token de sesion.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ForgotPassword emite un token de reset si la cuenta existe. El resultado es
// indistinguible para emails desconocidos.
func (s *UserService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrMissingEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	secret, hash, expiresAt, err := s.resets.Issue()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return err
	}

	if s.emailSender == nil {
		s.logger.Warn("password reset email not sent: sender not configured", zap.String("user_id", user.ID))
		return nil
	}
	if err := s.emailSender.SendPasswordReset(ctx, user.Email, s.resetURL(secret), expiresAt); err != nil {
		s.logger.Warn("send password reset failed", zap.Error(err), zap.String("user_id", user.ID))
	}
	return nil
}

// ResolveResetToken devuelve el dueño de un token de reset vigente.
func (s *UserService) ResolveResetToken(ctx context.Context, secret string) (domain.User, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return domain.User{}, ErrResetTokenInvalid
	}
	now := s.now()
	user, err := s.users.GetByResetToken(ctx, HashResetToken(secret), now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrResetTokenInvalid
		}
		return domain.User{}, err
	}
	if !user.HasResetToken() || !user.ResetTokenExpiresAt.After(now) {
		return domain.User{}, ErrResetTokenInvalid
	}
	return user, nil
}

// ResetPassword canjea el token una sola vez y guarda el nuevo hash.
func (s *UserService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" || newPassword == "" {
		return ErrMissingResetFields
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	// El UPDATE condicional decide solo: token vigente o nada.
	user, err := s.users.ConsumeResetToken(ctx, HashResetToken(secret), passwordHash, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResetTokenInvalid
		}
		return err
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *UserService) authResult(user domain.User) (AuthResult, error) {
	if s.tokens == nil {
		return AuthResult{}, errors.New("token issuer not configured")
	}
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	user.PasswordHash = ""
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	return AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *UserService) resetURL(secret string) string {
	return s.resetURLBase + "/reset-password?token=" + url.QueryEscape(secret)
}

func (s *UserService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func parseDateOfBirth(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
