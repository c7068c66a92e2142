package domain

import "time"

// User es el registro de identidad y credenciales de una cuenta.
// El hash de password y los campos de reset nunca se serializan.
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	DateOfBirth         time.Time  `json:"dateOfBirth"`
	PasswordHash        string     `json:"-"`
	IsEmailVerified     bool       `json:"isEmailVerified"`
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// HasResetToken indica si hay un reset pendiente (hash y expiracion presentes).
func (u User) HasResetToken() bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpiresAt != nil
}

// AgeAt devuelve la edad en años cumplidos a la fecha indicada.
func AgeAt(dateOfBirth, at time.Time) int {
	dob := dateOfBirth.UTC()
	at = at.UTC()
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	return age
}
