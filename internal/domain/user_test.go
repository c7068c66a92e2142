package domain

import (
	"testing"
	"time"
)

func TestAgeAt(t *testing.T) {
	at := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday today", time.Date(2012, time.June, 15, 0, 0, 0, 0, time.UTC), 13},
		{"birthday tomorrow", time.Date(2012, time.June, 16, 0, 0, 0, 0, time.UTC), 12},
		{"earlier month", time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC), 25},
		{"later month", time.Date(2000, time.December, 1, 0, 0, 0, 0, time.UTC), 24},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AgeAt(tc.dob, at); got != tc.want {
				t.Fatalf("expected age %d, got %d", tc.want, got)
			}
		})
	}
}

func TestUserHasResetToken(t *testing.T) {
	exp := time.Now().UTC().Add(time.Hour)
	if (User{ResetTokenHash: "h"}).HasResetToken() {
		t.Fatalf("expected false without expiry")
	}
	if (User{ResetTokenExpiresAt: &exp}).HasResetToken() {
		t.Fatalf("expected false without hash")
	}
	if !(User{ResetTokenHash: "h", ResetTokenExpiresAt: &exp}).HasResetToken() {
		t.Fatalf("expected true with both fields")
	}
}
