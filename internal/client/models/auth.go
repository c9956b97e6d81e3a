package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the client's cached view of a valid remote session. The remote
// service stays authoritative.
type Session struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// SignUpMetadata carries the optional profile fields sent with a sign-up.
type SignUpMetadata struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
}

// SignUpResult tells whether a sign-up produced a session right away.
type SignUpResult int

const (
	SignUpSignedIn SignUpResult = iota
	SignUpAwaitingEmailVerification
)

func (r SignUpResult) String() string {
	switch r {
	case SignUpSignedIn:
		return "signed_in"
	case SignUpAwaitingEmailVerification:
		return "awaiting_email_verification"
	default:
		return "unknown"
	}
}

// CallbackResult is the outcome of resolving an auth deep link.
type CallbackResult int

const (
	CallbackNone CallbackResult = iota
	CallbackSignedIn
	CallbackPasswordRecovery
)

func (r CallbackResult) String() string {
	switch r {
	case CallbackNone:
		return "none"
	case CallbackSignedIn:
		return "signed_in"
	case CallbackPasswordRecovery:
		return "password_recovery"
	default:
		return "unknown"
	}
}

// AuthEvent names an auth-state change notification.
type AuthEvent string

const (
	AuthEventInitialSession   AuthEvent = "initial_session"
	AuthEventSignedIn         AuthEvent = "signed_in"
	AuthEventSignedOut        AuthEvent = "signed_out"
	AuthEventTokenRefreshed   AuthEvent = "token_refreshed"
	AuthEventUserUpdated      AuthEvent = "user_updated"
	AuthEventPasswordRecovery AuthEvent = "password_recovery"
	AuthEventUnknown          AuthEvent = "unknown"
)

// ParseAuthEvent maps a backend event name to an AuthEvent. Names are
// compared case-insensitively with underscores ignored.
func ParseAuthEvent(name string) AuthEvent {
	switch normalizeToken(name) {
	case "initialsession":
		return AuthEventInitialSession
	case "signedin":
		return AuthEventSignedIn
	case "signedout":
		return AuthEventSignedOut
	case "tokenrefreshed":
		return AuthEventTokenRefreshed
	case "userupdated":
		return AuthEventUserUpdated
	case "passwordrecovery":
		return AuthEventPasswordRecovery
	default:
		return AuthEventUnknown
	}
}

// AuthStateChange is one element of the auth-state stream.
type AuthStateChange struct {
	Event   AuthEvent
	Session *Session
}
