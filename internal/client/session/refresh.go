package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
)

// Bootstrap derives the phase from scratch. It is safe to call repeatedly.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.RefreshPhase(ctx)
}

// RefreshPhase recomputes phase and profile from the current session, the
// pending verification record and the profile. Any failure lands on
// PhaseUnauthenticated. Concurrent calls are not fenced: the last one to
// finish wins.
func (c *Controller) RefreshPhase(ctx context.Context) {
	c.mutate(func(s *State) { s.Phase = PhaseLoading })

	sess, err := c.auth.CurrentSession(ctx)
	if err != nil {
		c.log.Warn(ctx, "session lookup failed", "error", err)
		c.mutate(func(s *State) {
			s.ErrorMessage = err.Error()
			s.Profile = nil
			s.Phase = PhaseUnauthenticated
		})
		return
	}

	if sess == nil {
		pending := c.loadPending(ctx)
		c.mutate(func(s *State) {
			s.Profile = nil
			if pending != nil {
				s.PendingEmail = pending.Email
				s.Phase = PhaseAwaitingEmailVerification
			} else {
				s.PendingEmail = ""
				s.Phase = PhaseUnauthenticated
			}
		})
		return
	}

	c.clearPending(ctx)

	profile, err := c.profiles.FetchMyProfile(ctx)
	if err != nil {
		c.log.Warn(ctx, "profile fetch failed", "error", err)
		c.mutate(func(s *State) {
			s.ErrorMessage = err.Error()
			s.Profile = nil
			s.Phase = PhaseUnauthenticated
		})
		return
	}

	c.mutate(func(s *State) {
		s.Profile = profile
		if profile.IsOnboardingComplete() {
			s.Phase = PhaseAuthenticatedReady
		} else {
			s.Phase = PhaseAuthenticatedNeedsOnboarding
		}
	})
}

// loadPending treats an unreadable store as holding no record.
func (c *Controller) loadPending(ctx context.Context) *models.PendingEmailVerification {
	p, err := c.pending.Load(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to load pending verification", "error", err)
		return nil
	}
	return p
}

func (c *Controller) savePending(ctx context.Context, email string) {
	p := models.PendingEmailVerification{Email: email, CreatedAt: c.now()}
	if err := c.pending.Save(ctx, p); err != nil {
		c.log.Warn(ctx, "failed to save pending verification", "error", err)
	}
	c.mutate(func(s *State) { s.PendingEmail = email })
}

func (c *Controller) clearPending(ctx context.Context) {
	if err := c.pending.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear pending verification", "error", err)
	}
	c.mutate(func(s *State) { s.PendingEmail = "" })
}

func (c *Controller) touchPending(ctx context.Context, at time.Time) {
	if err := c.pending.UpdateLastResend(ctx, at); err != nil {
		c.log.Warn(ctx, "failed to update pending verification", "error", err)
	}
}
