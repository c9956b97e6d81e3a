package client

import (
	"errors"
	"strings"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	ErrNoSession         = errors.New("no active session")
	ErrRemote            = errors.New("request failed")
)

// CallbackError reports an auth redirect that carried an error instead of
// credentials.
type CallbackError struct {
	Description string
}

func (e *CallbackError) Error() string {
	return e.Description
}

var emailNotConfirmedMarkers = []string{
	"email not confirmed",
	"email_not_confirmed",
	"email not verified",
}

// isEmailNotConfirmed classifies err without any I/O.
func isEmailNotConfirmed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmailNotConfirmed) {
		return true
	}
	return hasEmailNotConfirmedMarker(err.Error())
}

func hasEmailNotConfirmedMarker(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range emailNotConfirmedMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
