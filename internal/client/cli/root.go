package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
)

var errWrongPhase = errors.New("that command is not available right now, type 'help'")

// Root runs the REPL on the app's input until the user exits.
func (a *App) Root(ctx context.Context) {
	a.say("Welcome to TinniTrack (type 'help' for commands)")
	a.say(describePhase(a.session.State()))
	runREPL(ctx, a, a.prompt, a.reader)
}

func (a *App) afterCommand() {
	a.flushMessages()
}

func (a *App) helpText() string {
	s := a.session.State()
	var cmds string
	switch s.Phase {
	case session.PhaseUnauthenticated:
		cmds = "register, login, reset, url <link>"
	case session.PhaseAwaitingEmailVerification:
		cmds = "resend, check, different, url <link>"
	case session.PhaseAuthenticatedNeedsOnboarding:
		cmds = "onboard, logout"
	case session.PhaseAuthenticatedReady:
		cmds = "studies, enroll <n|id>, profile, logout"
	default:
		cmds = "(loading)"
	}
	if s.ShouldPresentPasswordReset {
		cmds += ", newpassword"
	}
	return fmt.Sprintf("Available commands: %s, help, exit", cmds)
}

// requirePhase rejects commands that make no sense in the current phase.
func (a *App) requirePhase(phases ...session.Phase) error {
	current := a.session.State().Phase
	for _, p := range phases {
		if p == current {
			return nil
		}
	}
	return errWrongPhase
}
