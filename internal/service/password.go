package service

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt ignora todo lo que pase de 72 bytes.
	MaxPasswordBytes  = 72
	DefaultBcryptCost = 12
)

// PasswordHasher aplica bcrypt a las credenciales antes de persistirlas.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// CheckLength aplica los limites de largo sin calcular el hash.
func CheckLength(plain string) error {
	if len([]rune(plain)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(plain) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Hash valida el largo y devuelve el hash bcrypt.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if err := CheckLength(plain); err != nil {
		return "", err
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Verify compara en tiempo constante; un hash vacio nunca coincide.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
