package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
)

func (c *Controller) beginAction() {
	c.mutate(func(s *State) {
		s.IsLoading = true
		s.ErrorMessage = ""
	})
}

func (c *Controller) endAction() {
	c.mutate(func(s *State) { s.IsLoading = false })
}

// fail records err as the user-visible error. The phase is left alone.
func (c *Controller) fail(ctx context.Context, action string, err error) {
	c.log.Warn(ctx, "action failed", "action", action, "error", err)
	c.mutate(func(s *State) { s.ErrorMessage = err.Error() })
}

// runAction is the bracket shared by most user actions: mark loading, run
// action, and on success run after (if any) and refresh the phase. A failed
// action records its error and skips the refresh. Loading is cleared on
// every exit path.
func (c *Controller) runAction(ctx context.Context, name string, action func(ctx context.Context) error, after func(ctx context.Context)) {
	c.beginAction()
	defer c.endAction()

	if err := action(ctx); err != nil {
		c.fail(ctx, name, err)
		return
	}
	if after != nil {
		after(ctx)
	}
	c.RefreshPhase(ctx)
}

// SignIn signs in with a trimmed email. An "email not confirmed" rejection
// is not an error: it moves to PhaseAwaitingEmailVerification instead.
func (c *Controller) SignIn(ctx context.Context, email, password string) {
	email = models.NormalizeEmail(email)

	c.beginAction()
	defer c.endAction()

	err := c.auth.SignIn(ctx, email, password)
	switch {
	case err == nil:
		c.clearPending(ctx)
		c.RefreshPhase(ctx)
	case c.auth.IsEmailNotConfirmedError(err):
		c.log.Info(ctx, "sign-in blocked on email verification")
		c.savePending(ctx, email)
		c.mutate(func(s *State) {
			s.Phase = PhaseAwaitingEmailVerification
			s.InfoMessage = InfoEmailNotConfirmed
		})
	default:
		c.fail(ctx, "sign in", err)
	}
}

func (c *Controller) SignUp(ctx context.Context, email, password, firstName, lastName string, dateOfBirth time.Time) {
	email = models.NormalizeEmail(email)

	c.beginAction()
	defer c.endAction()

	meta := models.SignUpMetadata{
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: &dateOfBirth,
	}
	res, err := c.auth.SignUp(ctx, email, password, meta)
	if err != nil {
		c.fail(ctx, "sign up", err)
		return
	}

	switch res {
	case models.SignUpSignedIn:
		c.clearPending(ctx)
	case models.SignUpAwaitingEmailVerification:
		c.savePending(ctx, email)
		c.mutate(func(s *State) { s.InfoMessage = InfoCheckEmail })
	}
	c.RefreshPhase(ctx)
}

func (c *Controller) CompleteOnboarding(ctx context.Context, firstName, lastName string, dateOfBirth time.Time) {
	c.runAction(ctx, "complete onboarding", func(ctx context.Context) error {
		return c.profiles.CompleteOnboarding(ctx, firstName, lastName, dateOfBirth)
	}, nil)
}

// SignOut signs out remotely. The pending record is left to RefreshPhase.
func (c *Controller) SignOut(ctx context.Context) {
	c.runAction(ctx, "sign out", c.auth.SignOut, nil)
}

// RequestPasswordReset reports the same message whether or not the account
// exists.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) {
	email = models.NormalizeEmail(email)
	c.runAction(ctx, "request password reset", func(ctx context.Context) error {
		return c.auth.RequestPasswordReset(ctx, email, c.resetRedirect)
	}, func(context.Context) {
		c.mutate(func(s *State) { s.InfoMessage = InfoPasswordResetSent })
	})
}

func (c *Controller) SubmitNewPassword(ctx context.Context, newPassword string) {
	c.runAction(ctx, "update password", func(ctx context.Context) error {
		return c.auth.UpdatePassword(ctx, newPassword)
	}, func(context.Context) {
		c.mutate(func(s *State) {
			s.ShouldPresentPasswordReset = false
			s.InfoMessage = InfoPasswordUpdated
		})
	})
}

// ResendVerificationEmail does nothing when no verification is pending.
func (c *Controller) ResendVerificationEmail(ctx context.Context) {
	pending := c.loadPending(ctx)
	if pending == nil {
		return
	}

	c.runAction(ctx, "resend verification", func(ctx context.Context) error {
		return c.auth.ResendSignUpVerification(ctx, pending.Email, c.confirmRedirect)
	}, func(ctx context.Context) {
		c.touchPending(ctx, c.now())
		c.mutate(func(s *State) { s.InfoMessage = InfoVerificationSent })
	})
}

// CheckEmailVerificationStatus is the manual poll after the user says they
// confirmed their address.
func (c *Controller) CheckEmailVerificationStatus(ctx context.Context) {
	c.RefreshPhase(ctx)
	c.mutate(func(s *State) {
		if s.Phase == PhaseAwaitingEmailVerification {
			s.InfoMessage = InfoStillAwaitingVerify
		}
	})
}

// UseDifferentEmailForVerification abandons the pending verification
// without contacting the backend.
func (c *Controller) UseDifferentEmailForVerification(ctx context.Context) {
	if err := c.pending.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear pending verification", "error", err)
	}
	c.mutate(func(s *State) {
		s.PendingEmail = ""
		s.Phase = PhaseUnauthenticated
	})
}

// HandleIncomingURL resolves an auth redirect (email confirmation, password
// recovery) and recomputes the phase.
func (c *Controller) HandleIncomingURL(ctx context.Context, rawURL string) {
	res, err := c.auth.HandleAuthCallback(ctx, rawURL)
	if err != nil {
		c.fail(ctx, "handle callback", err)
		return
	}

	switch res {
	case models.CallbackPasswordRecovery:
		c.mutate(func(s *State) { s.ShouldPresentPasswordReset = true })
	case models.CallbackSignedIn:
		c.clearPending(ctx)
	}
	c.RefreshPhase(ctx)
}

func (c *Controller) DismissError() {
	c.mutate(func(s *State) { s.ErrorMessage = "" })
}

func (c *Controller) DismissInfo() {
	c.mutate(func(s *State) { s.InfoMessage = "" })
}
