package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
	"github.com/dmitrijs2005/tinnitrack/internal/logging"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeSession struct {
	mu        sync.Mutex
	state     session.State
	calls     []string
	signUpArg []any
	onSignUp  func(s *session.State)
	observers []func(session.State)
}

func (f *fakeSession) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSession) set(fn func(s *session.State)) {
	f.mu.Lock()
	fn(&f.state)
	snap := f.state
	obs := append([]func(session.State){}, f.observers...)
	f.mu.Unlock()
	for _, o := range obs {
		o(snap)
	}
}

func (f *fakeSession) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Subscribe(fn func(session.State)) func() {
	f.mu.Lock()
	f.observers = append(f.observers, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeSession) Bootstrap(context.Context)    { f.record("bootstrap") }
func (f *fakeSession) RefreshPhase(context.Context) { f.record("refresh") }
func (f *fakeSession) SignIn(_ context.Context, email, password string) {
	f.record("signin:" + email + ":" + password)
}
func (f *fakeSession) SignUp(_ context.Context, email, password, first, last string, dob time.Time) {
	f.record("signup")
	f.mu.Lock()
	f.signUpArg = []any{email, password, first, last, dob}
	f.mu.Unlock()
	if f.onSignUp != nil {
		f.set(f.onSignUp)
	}
}
func (f *fakeSession) CompleteOnboarding(_ context.Context, first, last string, dob time.Time) {
	f.record("onboard:" + first + ":" + last + ":" + dob.Format(models.DateLayout))
}
func (f *fakeSession) SignOut(context.Context) { f.record("signout") }
func (f *fakeSession) RequestPasswordReset(_ context.Context, email string) {
	f.record("reset:" + email)
}
func (f *fakeSession) SubmitNewPassword(_ context.Context, pw string) { f.record("newpassword:" + pw) }
func (f *fakeSession) ResendVerificationEmail(context.Context)        { f.record("resend") }
func (f *fakeSession) CheckEmailVerificationStatus(context.Context)   { f.record("check") }
func (f *fakeSession) UseDifferentEmailForVerification(context.Context) {
	f.record("different")
}
func (f *fakeSession) HandleIncomingURL(_ context.Context, rawURL string) { f.record("url:" + rawURL) }
func (f *fakeSession) DismissError() {
	f.set(func(s *session.State) { s.ErrorMessage = "" })
}
func (f *fakeSession) DismissInfo() {
	f.set(func(s *session.State) { s.InfoMessage = "" })
}
func (f *fakeSession) Close() { f.record("close") }

type fakeStudies struct {
	cards    []models.DashboardStudyCard
	err      error
	enrolled []uuid.UUID
}

func (f *fakeStudies) Dashboard(context.Context) ([]models.DashboardStudyCard, error) {
	return f.cards, f.err
}

func (f *fakeStudies) Enroll(_ context.Context, id uuid.UUID) ([]models.DashboardStudyCard, error) {
	f.enrolled = append(f.enrolled, id)
	return f.cards, f.err
}

type fakeDrafts struct {
	draft   *models.SignupDraft
	saved   []models.SignupDraft
	cleared bool
}

func (f *fakeDrafts) Load(_ context.Context, def time.Time) (models.SignupDraft, error) {
	if f.draft == nil {
		return models.EmptySignupDraft(def, testNow), nil
	}
	return *f.draft, nil
}

func (f *fakeDrafts) Save(_ context.Context, d models.SignupDraft) error {
	f.saved = append(f.saved, d)
	return nil
}

func (f *fakeDrafts) Clear(context.Context) error {
	f.cleared = true
	return nil
}

// newTestApp builds an App over fakes; output is captured in the returned buffer.
func newTestApp(phase session.Phase) (*App, *fakeSession, *bytes.Buffer) {
	fs := &fakeSession{state: session.State{Phase: phase}}
	var out bytes.Buffer
	a := &App{
		session: fs,
		studies: &fakeStudies{},
		drafts:  &fakeDrafts{},
		log:     logging.Nop(),
		reader:  bufio.NewReader(strings.NewReader("")),
		out:     &out,
		now:     func() time.Time { return testNow },
	}
	return a, fs, &out
}

// stubTexts answers getSimpleText prompts from a queue, in order.
func stubTexts(t *testing.T, answers ...string) *[]string {
	t.Helper()
	var prompts []string
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
	return &prompts
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer, _ string) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}
