package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"

	"notes-api/internal/domain"
)

const (
	NameMinLength      = 2
	NameMaxLength      = 50
	MinimumAge         = 13
	NoteTitleMaxLength = 100
	NoteContentMaxLen  = 1000
)

// ErrDuplicateEmail se devuelve cuando el email ya pertenece a otra cuenta.
var ErrDuplicateEmail = errors.New("duplicate email")

// FieldViolation describe una restriccion incumplida por un campo.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError agrupa todas las violaciones detectadas antes de persistir.
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldViolation{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var validate = validator.New()

// IsValidEmail aplica el mismo formato que el binding `email` de gin.
func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// ValidateUser verifica las restricciones de campo de un usuario nuevo.
func ValidateUser(user domain.User, now time.Time) error {
	verr := &ValidationError{}
	validateProfile(verr, user, now)

	if user.PasswordHash == "" {
		verr.add("password", "Password is required")
	}
	if (user.ResetTokenHash == "") != (user.ResetTokenExpiresAt == nil) {
		verr.add("passwordResetToken", "Reset token and expiry must be set together")
	}

	return verr.orNil()
}

// ValidateProfile revisa nombre, email y edad; no mira credenciales.
func ValidateProfile(user domain.User, now time.Time) error {
	verr := &ValidationError{}
	validateProfile(verr, user, now)
	return verr.orNil()
}

func validateProfile(verr *ValidationError, user domain.User, now time.Time) {
	name := strings.TrimSpace(user.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		verr.add("name", "Name is required")
	case n < NameMinLength:
		verr.add("name", fmt.Sprintf("Name must be at least %d characters long", NameMinLength))
	case n > NameMaxLength:
		verr.add("name", fmt.Sprintf("Name cannot exceed %d characters", NameMaxLength))
	}

	switch {
	case strings.TrimSpace(user.Email) == "":
		verr.add("email", "Email is required")
	case !IsValidEmail(user.Email):
		verr.add("email", "Please provide a valid email")
	}

	switch {
	case user.DateOfBirth.IsZero():
		verr.add("dateOfBirth", "Date of birth is required")
	case domain.AgeAt(user.DateOfBirth, now) < MinimumAge:
		verr.add("dateOfBirth", fmt.Sprintf("You must be at least %d years old to register", MinimumAge))
	}
}

// ValidateNote verifica titulo y contenido de una nota.
func ValidateNote(note domain.Note) error {
	verr := &ValidationError{}

	title := strings.TrimSpace(note.Title)
	switch {
	case title == "":
		verr.add("title", "Note title is required")
	case utf8.RuneCountInString(title) > NoteTitleMaxLength:
		verr.add("title", fmt.Sprintf("Title cannot exceed %d characters", NoteTitleMaxLength))
	}

	switch {
	case note.Content == "":
		verr.add("content", "Note content is required")
	case utf8.RuneCountInString(note.Content) > NoteContentMaxLen:
		verr.add("content", fmt.Sprintf("Content cannot exceed %d characters", NoteContentMaxLen))
	}

	if note.UserID == "" {
		verr.add("userId", "User ID is required")
	}

	return verr.orNil()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
