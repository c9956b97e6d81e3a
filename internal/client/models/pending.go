package models

import "time"

// PendingEmailVerification marks that a sign-up or sign-in is blocked on the
// user confirming their address. At most one exists at a time.
type PendingEmailVerification struct {
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	LastResendAt *time.Time `json:"last_resend_at,omitempty"`
}
