package service

import (
	"context"
	"sync"
	"time"
)

// OTPStore guarda un unico OTP vivo por email (el ultimo Put gana).
type OTPStore interface {
	Put(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	// Consume borra el registro solo si no expiro y match acepta su hash.
	Consume(ctx context.Context, email string, match func(codeHash string) bool) (bool, error)
}

type otpRecord struct {
	codeHash  string
	expiresAt time.Time
}

const otpSweepInterval = time.Minute

type memoryOTPStore struct {
	mu        sync.Mutex
	items     map[string]otpRecord
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryOTPStore crea un store en memoria para despliegues de una sola instancia.
func NewMemoryOTPStore() OTPStore {
	return newMemoryOTPStore(func() time.Time { return time.Now().UTC() })
}

func newMemoryOTPStore(now func() time.Time) *memoryOTPStore {
	return &memoryOTPStore{
		items: make(map[string]otpRecord),
		now:   now,
	}
}

// Put tambien descarta, como mucho una vez por minuto, los codigos vencidos
// que nadie llego a verificar.
func (s *memoryOTPStore) Put(_ context.Context, email, codeHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now := s.now(); now.Sub(s.lastSweep) >= otpSweepInterval {
		for key, rec := range s.items {
			if !now.Before(rec.expiresAt) {
				delete(s.items, key)
			}
		}
		s.lastSweep = now
	}
	s.items[email] = otpRecord{codeHash: codeHash, expiresAt: expiresAt}
	return nil
}

func (s *memoryOTPStore) Consume(_ context.Context, email string, match func(codeHash string) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[email]
	if !ok {
		return false, nil
	}
	if !s.now().Before(rec.expiresAt) {
		delete(s.items, email)
		return false, nil
	}
	if !match(rec.codeHash) {
		return false, nil
	}
	delete(s.items, email)
	return true, nil
}
