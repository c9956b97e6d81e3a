package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const minPasswordLength = 6

var errPasswordMismatch = errors.New("passwords do not match")

// defaultDateOfBirth pre-fills the sign-up form.
func (a *App) defaultDateOfBirth() time.Time {
	return time.Date(a.now().Year()-30, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Register walks through the three sign-up steps. Progress after each step is
// saved so an interrupted registration resumes where it stopped; the
// password is asked for last and never saved.
func (a *App) Register(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseUnauthenticated); err != nil {
		return err
	}

	draft, err := a.drafts.Load(ctx, a.defaultDateOfBirth())
	if err != nil {
		a.log.Warn(ctx, "load sign-up draft", "error", err)
		draft = models.EmptySignupDraft(a.defaultDateOfBirth(), a.now())
	}
	if draft.CurrentStep > 1 {
		a.say(fmt.Sprintf("Resuming registration at step %d of 3.", draft.CurrentStep))
	}

	if draft.CurrentStep <= 1 {
		if draft.Email, err = getTextDefault(a.reader, "Email", draft.Email, a.out); err != nil {
			return err
		}
		draft.CurrentStep = 2
		a.saveDraft(ctx, draft)
	}

	if draft.CurrentStep == 2 {
		if draft.FirstName, err = getTextDefault(a.reader, "First name", draft.FirstName, a.out); err != nil {
			return err
		}
		if draft.LastName, err = getTextDefault(a.reader, "Last name", draft.LastName, a.out); err != nil {
			return err
		}
		if draft.DateOfBirth, err = GetDate(a.reader, "Date of birth (YYYY-MM-DD)", draft.DateOfBirth, a.out); err != nil {
			return err
		}
		draft.CurrentStep = 3
		a.saveDraft(ctx, draft)
	}

	password, err := a.readNewPassword()
	if err != nil {
		return err
	}

	a.session.SignUp(ctx, draft.Email, password, draft.FirstName, draft.LastName, draft.DateOfBirth)

	if a.session.State().ErrorMessage == "" {
		if err := a.drafts.Clear(ctx); err != nil {
			a.log.Warn(ctx, "clear sign-up draft", "error", err)
		}
	}
	return nil
}

func (a *App) saveDraft(ctx context.Context, d models.SignupDraft) {
	if err := a.drafts.Save(ctx, d); err != nil {
		a.log.Warn(ctx, "save sign-up draft", "error", err)
	}
}

// readNewPassword asks for a password twice.
func (a *App) readNewPassword() (string, error) {
	pw, err := getPassword(a.out, "New password")
	if err != nil {
		return "", err
	}
	if len(pw) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	again, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", errPasswordMismatch
	}
	return pw, nil
}

func (a *App) Login(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseUnauthenticated, session.PhaseAwaitingEmailVerification); err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	a.session.SignIn(ctx, email, password)
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseUnauthenticated); err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email for the reset link", a.out)
	if err != nil {
		return err
	}
	a.session.RequestPasswordReset(ctx, email)
	return nil
}

// NewPassword is offered after a password-recovery link was opened.
func (a *App) NewPassword(ctx context.Context) error {
	if !a.session.State().ShouldPresentPasswordReset {
		return errWrongPhase
	}
	pw, err := a.readNewPassword()
	if err != nil {
		return err
	}
	a.session.SubmitNewPassword(ctx, pw)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseAuthenticatedNeedsOnboarding, session.PhaseAuthenticatedReady); err != nil {
		return err
	}
	a.session.SignOut(ctx)
	a.cardsMu.Lock()
	a.cards = nil
	a.cardsMu.Unlock()
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseAwaitingEmailVerification); err != nil {
		return err
	}
	a.session.ResendVerificationEmail(ctx)
	return nil
}

func (a *App) Check(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseAwaitingEmailVerification); err != nil {
		return err
	}
	a.session.CheckEmailVerificationStatus(ctx)
	return nil
}

func (a *App) UseDifferentEmail(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseAwaitingEmailVerification); err != nil {
		return err
	}
	a.session.UseDifferentEmailForVerification(ctx)
	return nil
}

// OpenURL handles a link pasted from a confirmation or recovery email.
func (a *App) OpenURL(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errEmptyInput
	}
	a.session.HandleIncomingURL(ctx, rawURL)
	return nil
}
