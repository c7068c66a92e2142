package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	DefaultResetTokenTTL = time.Hour
	resetTokenBytes      = 32
)

// ResetTokenIssuer genera secretos de reset; solo su digest SHA-256 se persiste.
type ResetTokenIssuer struct {
	ttl time.Duration
	now func() time.Time
}

func NewResetTokenIssuer(ttl time.Duration) *ResetTokenIssuer {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenIssuer{
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Issue devuelve el secreto en claro (para el email), su hash y la expiracion.
func (i *ResetTokenIssuer) Issue() (string, string, time.Time, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}
	secret := hex.EncodeToString(buf)
	return secret, HashResetToken(secret), i.now().Add(i.ttl), nil
}

func HashResetToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
