package models

import "time"

// SignupDraft keeps the progress of the multi-step registration so it can be
// resumed after a restart. Passwords are never stored.
type SignupDraft struct {
	CurrentStep int       `json:"current_step"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmptySignupDraft returns a draft at step one.
func EmptySignupDraft(defaultDateOfBirth time.Time, now time.Time) SignupDraft {
	return SignupDraft{
		CurrentStep: 1,
		DateOfBirth: defaultDateOfBirth,
		UpdatedAt:   now,
	}
}
