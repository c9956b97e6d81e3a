package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_FreshDraft(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseUnauthenticated)
	drafts := &fakeDrafts{}
	a.drafts = drafts

	stubTexts(t, "ann@example.org", "Ann", "Lee", "1990-05-04")
	stubPasswords(t, "secret1", "secret1")

	require.NoError(t, a.Register(context.Background()))

	dob := time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, []any{"ann@example.org", "secret1", "Ann", "Lee", dob}, fs.signUpArg)

	require.Len(t, drafts.saved, 2)
	assert.Equal(t, 2, drafts.saved[0].CurrentStep)
	assert.Equal(t, "ann@example.org", drafts.saved[0].Email)
	assert.Equal(t, 3, drafts.saved[1].CurrentStep)
	assert.Equal(t, dob, drafts.saved[1].DateOfBirth)
	assert.True(t, drafts.cleared)
}

func TestRegister_ResumesSavedStep(t *testing.T) {
	a, fs, out := newTestApp(session.PhaseUnauthenticated)
	dob := time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC)
	a.drafts = &fakeDrafts{draft: &models.SignupDraft{
		CurrentStep: 3, Email: "bo@example.org", FirstName: "Bo", LastName: "Ek", DateOfBirth: dob,
	}}

	prompts := stubTexts(t)
	stubPasswords(t, "hunter22", "hunter22")

	require.NoError(t, a.Register(context.Background()))

	assert.Empty(t, *prompts)
	assert.Contains(t, out.String(), "step 3")
	require.Equal(t, []any{"bo@example.org", "hunter22", "Bo", "Ek", dob}, fs.signUpArg)
}

func TestRegister_KeepsDraftWhenSignUpFails(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseUnauthenticated)
	drafts := &fakeDrafts{}
	a.drafts = drafts
	fs.onSignUp = func(s *session.State) { s.ErrorMessage = "email already registered" }

	stubTexts(t, "ann@example.org", "Ann", "Lee", "")
	stubPasswords(t, "secret1", "secret1")

	require.NoError(t, a.Register(context.Background()))
	assert.False(t, drafts.cleared)
	assert.Equal(t, a.defaultDateOfBirth(), drafts.saved[1].DateOfBirth)
}

func TestRegister_PasswordChecks(t *testing.T) {
	tests := []struct {
		name      string
		passwords []string
	}{
		{"mismatch", []string{"secret1", "secret2"}},
		{"too short", []string{"abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, fs, _ := newTestApp(session.PhaseUnauthenticated)
			drafts := &fakeDrafts{draft: &models.SignupDraft{CurrentStep: 3, Email: "x@y.z"}}
			a.drafts = drafts
			stubPasswords(t, tt.passwords...)

			require.Error(t, a.Register(context.Background()))
			assert.Empty(t, fs.Calls())
			assert.False(t, drafts.cleared)
		})
	}
}

func TestRegister_WrongPhase(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseAuthenticatedReady)
	require.ErrorIs(t, a.Register(context.Background()), errWrongPhase)
	assert.Empty(t, fs.Calls())
}

func TestLogin(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseUnauthenticated)
	stubTexts(t, "ann@example.org")
	stubPasswords(t, "pw")

	require.NoError(t, a.Login(context.Background()))
	require.Equal(t, []string{"signin:ann@example.org:pw"}, fs.Calls())
}

func TestResetPassword(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseUnauthenticated)
	stubTexts(t, "ann@example.org")

	require.NoError(t, a.ResetPassword(context.Background()))
	require.Equal(t, []string{"reset:ann@example.org"}, fs.Calls())
}

func TestNewPassword_OnlyAfterRecoveryLink(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseAuthenticatedReady)
	require.ErrorIs(t, a.NewPassword(context.Background()), errWrongPhase)

	fs.set(func(s *session.State) { s.ShouldPresentPasswordReset = true })
	stubPasswords(t, "brandnew", "brandnew")
	require.NoError(t, a.NewPassword(context.Background()))
	require.Equal(t, []string{"newpassword:brandnew"}, fs.Calls())
}

func TestVerificationCommands(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseAwaitingEmailVerification)
	ctx := context.Background()

	require.NoError(t, a.Resend(ctx))
	require.NoError(t, a.Check(ctx))
	require.NoError(t, a.UseDifferentEmail(ctx))
	require.Equal(t, []string{"resend", "check", "different"}, fs.Calls())

	fs.set(func(s *session.State) { s.Phase = session.PhaseUnauthenticated })
	require.ErrorIs(t, a.Resend(ctx), errWrongPhase)
}

func TestLogout_ForgetsCards(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseAuthenticatedReady)
	a.cards = []models.DashboardStudyCard{{}}

	require.NoError(t, a.Logout(context.Background()))
	assert.Equal(t, []string{"signout"}, fs.Calls())
	assert.Nil(t, a.cards)
}

func TestOpenURL(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseUnauthenticated)

	require.ErrorIs(t, a.OpenURL(context.Background(), "  "), errEmptyInput)
	require.NoError(t, a.OpenURL(context.Background(), " tinnitrack://auth/confirm?code=x "))
	require.Equal(t, []string{"url:tinnitrack://auth/confirm?code=x"}, fs.Calls())
}

func TestOnboard_PrefillsFromProfile(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseAuthenticatedNeedsOnboarding)
	dob := time.Date(1970, 7, 7, 0, 0, 0, 0, time.UTC)
	fs.state.Profile = &models.Profile{FirstName: "Ann", DateOfBirth: &dob}

	prompts := stubTexts(t, "", "Lee", "")

	require.NoError(t, a.Onboard(context.Background()))
	require.Equal(t, []string{"onboard:Ann:Lee:1970-07-07"}, fs.Calls())
	assert.Equal(t, "First name [Ann]", (*prompts)[0])
}

func TestOnboard_RequiresLastName(t *testing.T) {
	a, fs, _ := newTestApp(session.PhaseAuthenticatedNeedsOnboarding)
	stubTexts(t, "Ann", "")

	require.ErrorIs(t, a.Onboard(context.Background()), errEmptyInput)
	assert.Empty(t, fs.Calls())
}
