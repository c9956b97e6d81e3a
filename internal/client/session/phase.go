package session

import "github.com/dmitrijs2005/tinnitrack/internal/client/models"

// Phase is the single coarse-grained state of the session lifecycle.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseUnauthenticated
	PhaseAwaitingEmailVerification
	PhaseAuthenticatedNeedsOnboarding
	PhaseAuthenticatedReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAwaitingEmailVerification:
		return "awaiting_email_verification"
	case PhaseAuthenticatedNeedsOnboarding:
		return "authenticated_needs_onboarding"
	case PhaseAuthenticatedReady:
		return "authenticated_ready"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of everything the controller exposes.
// Profile is replaced wholesale on every refresh and never mutated, so the
// pointer may be shared.
type State struct {
	Phase   Phase
	Profile *models.Profile
	// PendingEmail mirrors the stored pending-verification record.
	PendingEmail string

	IsLoading                  bool
	ErrorMessage               string
	InfoMessage                string
	ShouldPresentPasswordReset bool
}

// Informational messages set by the controller.
const (
	InfoCheckEmail          = "Check your email to confirm your account."
	InfoEmailNotConfirmed   = "Your email address is not confirmed yet. Open the link we sent you, then sign in again."
	InfoPasswordResetSent   = "If the account exists, a reset email has been sent."
	InfoPasswordUpdated     = "Password updated."
	InfoVerificationSent    = "Verification email sent."
	InfoStillAwaitingVerify = "We are still waiting for you to confirm your email."
)
