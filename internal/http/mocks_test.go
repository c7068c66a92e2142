package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"notes-api/internal/domain"
	"notes-api/internal/repository"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := repository.ValidateUser(user, time.Now().UTC()); err != nil {
		return err
	}
	key := strings.ToLower(user.Email)
	if _, ok := m.usersByEmail[key]; ok {
		return repository.ErrDuplicateEmail
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[key] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user.PasswordHash = ""
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.usersByID[id], nil
}

func (m *mockUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.ResetTokenHash = tokenHash
	user.ResetTokenExpiresAt = &expiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.usersByID {
		if u.HasResetToken() && u.ResetTokenHash == tokenHash && u.ResetTokenExpiresAt.After(now) {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.usersByID {
		if u.HasResetToken() && u.ResetTokenHash == tokenHash && u.ResetTokenExpiresAt.After(now) {
			u.PasswordHash = passwordHash
			u.ResetTokenHash = ""
			u.ResetTokenExpiresAt = nil
			m.usersByID[id] = u
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type mockNoteRepo struct {
	mu    sync.Mutex
	notes map[string]domain.Note
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]domain.Note)}
}

func (m *mockNoteRepo) Create(_ context.Context, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := repository.ValidateNote(note); err != nil {
		return err
	}
	m.notes[note.ID] = note
	return nil
}

func (m *mockNoteRepo) ListByUserID(_ context.Context, userID string) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Note, 0)
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNoteRepo) GetForUser(_ context.Context, id, userID string) (domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return domain.Note{}, pgx.ErrNoRows
	}
	return n, nil
}

func (m *mockNoteRepo) Update(_ context.Context, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := repository.ValidateNote(note); err != nil {
		return err
	}
	n, ok := m.notes[note.ID]
	if !ok || n.UserID != note.UserID {
		return pgx.ErrNoRows
	}
	m.notes[note.ID] = note
	return nil
}

func (m *mockNoteRepo) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.notes, id)
	return nil
}

type mockEmailSender struct {
	mu       sync.Mutex
	lastCode string
	lastURL  string
	err      error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, _, _, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCode = code
	return m.err
}

func (m *mockEmailSender) SendPasswordReset(_ context.Context, _, resetURL string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastURL = resetURL
	return m.err
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string) bool { return false }
