package cli

import (
	"fmt"

	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
)

// say writes one line to the user. Output may come from the REPL and from
// the callback server concurrently.
func (a *App) say(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// onState is the controller subscription. It only reports phase changes;
// messages are flushed by the command that caused them.
func (a *App) onState(s session.State) {
	a.phaseMu.Lock()
	changed := s.Phase != a.lastPhase
	a.lastPhase = s.Phase
	a.phaseMu.Unlock()

	if !changed || s.Phase == session.PhaseLoading {
		return
	}
	a.say(describePhase(s))
}

// flushMessages prints and dismisses the pending error and info messages.
func (a *App) flushMessages() {
	s := a.session.State()
	if s.ErrorMessage != "" {
		a.say("Error:", s.ErrorMessage)
		a.session.DismissError()
	}
	if s.InfoMessage != "" {
		a.say(s.InfoMessage)
		a.session.DismissInfo()
	}
	if s.ShouldPresentPasswordReset {
		a.say("Type 'newpassword' to choose a new password.")
	}
}

func describePhase(s session.State) string {
	switch s.Phase {
	case session.PhaseUnauthenticated:
		return "You are signed out. Commands: register, login, reset, url"
	case session.PhaseAwaitingEmailVerification:
		return fmt.Sprintf("Waiting for you to confirm %s. Commands: resend, check, different, url", s.PendingEmail)
	case session.PhaseAuthenticatedNeedsOnboarding:
		return "Signed in. Finish your profile with 'onboard'."
	case session.PhaseAuthenticatedReady:
		name := ""
		if s.Profile != nil {
			name = s.Profile.FirstName
		}
		if name == "" {
			return "Welcome! Commands: studies, enroll, profile, logout"
		}
		return fmt.Sprintf("Welcome, %s! Commands: studies, enroll, profile, logout", name)
	default:
		return "Loading..."
	}
}

// prompt is the status shown before each REPL line.
func (a *App) prompt() string {
	s := a.session.State()
	switch s.Phase {
	case session.PhaseAwaitingEmailVerification:
		return "verify " + s.PendingEmail
	case session.PhaseAuthenticatedNeedsOnboarding:
		return "onboarding"
	case session.PhaseAuthenticatedReady:
		return "ready"
	case session.PhaseLoading:
		return "loading"
	default:
		return "signed out"
	}
}
