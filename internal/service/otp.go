package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const otpLength = 6

// generateOTP devuelve un codigo de 6 digitos y su hash salado "salt:hash".
func generateOTP() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	return code, saltStr + ":" + hashOTP(saltStr, code), nil
}

func hashOTP(salt, code string) string {
	hashBytes := sha256.Sum256([]byte(salt + ":" + code))
	return base64.StdEncoding.EncodeToString(hashBytes[:])
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	hash := hashOTP(parts[0], code)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(parts[1])) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
