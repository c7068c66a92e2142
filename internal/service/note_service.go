package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"notes-api/internal/domain"
	"notes-api/internal/repository"
)

// NoteService expone el CRUD de notas acotado al usuario autenticado.
type NoteService struct {
	notes repository.NoteRepository
	now   func() time.Time
}

func NewNoteService(notes repository.NoteRepository) *NoteService {
	return &NoteService{
		notes: notes,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// UpdateNoteInput usa punteros: un campo nil no se modifica.
type UpdateNoteInput struct {
	Title   *string
	Content *string
}

func (s *NoteService) List(ctx context.Context, userID string) ([]domain.Note, error) {
	return s.notes.ListByUserID(ctx, userID)
}

func (s *NoteService) Create(ctx context.Context, userID, title, content string) (domain.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" || content == "" {
		return domain.Note{}, ErrMissingNoteFields
	}
	now := s.now()
	note := domain.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, userID, id string, input UpdateNoteInput) (domain.Note, error) {
	note, err := s.get(ctx, userID, id)
	if err != nil {
		return domain.Note{}, err
	}
	if input.Title != nil {
		note.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	note.UpdatedAt = s.now()
	if err := s.notes.Update(ctx, note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Note{}, ErrNoteNotFound
		}
		return domain.Note{}, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNoteNotFound
	}
	if err := s.notes.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoteNotFound
		}
		return err
	}
	return nil
}

func (s *NoteService) get(ctx context.Context, userID, id string) (domain.Note, error) {
	// Un id mal formado no puede existir; evita el error de cast en postgres.
	if _, err := uuid.Parse(id); err != nil {
		return domain.Note{}, ErrNoteNotFound
	}
	note, err := s.notes.GetForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Note{}, ErrNoteNotFound
		}
		return domain.Note{}, err
	}
	return note, nil
}
