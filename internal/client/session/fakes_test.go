package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/google/uuid"
)

var errUnconfirmed = errors.New("Email not confirmed")

/*************
 * Fake auth gateway
 *************/

type fakeStream struct {
	ch     chan models.AuthStateChange
	closed bool
}

type fakeAuth struct {
	mu sync.Mutex

	session    *models.Session
	sessionErr error

	signInErr error
	// signInSession becomes the current session after a successful SignIn.
	signInSession *models.Session

	signUpResult models.SignUpResult
	signUpErr    error
	lastSignUp   models.SignUpMetadata
	lastEmail    string

	signOutErr error

	callbackResult models.CallbackResult
	callbackErr    error
	callbackURL    string

	resendErr      error
	resendEmail    string
	resendRedirect string

	resetErr      error
	resetEmail    string
	resetRedirect string

	updateErr   error
	newPassword string

	// beforeCurrentSession runs at the start of every CurrentSession call.
	beforeCurrentSession func()

	currentSessionCalls int
	streams             []*fakeStream
}

func signedIn() *models.Session {
	return &models.Session{UserID: uuid.New(), Email: "ann@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string, meta models.SignUpMetadata) (models.SignUpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEmail = email
	f.lastSignUp = meta
	if f.signUpErr != nil {
		return models.SignUpAwaitingEmailVerification, f.signUpErr
	}
	if f.signUpResult == models.SignUpSignedIn {
		f.session = signedIn()
	}
	return f.signUpResult, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEmail = email
	if f.signInErr != nil {
		return f.signInErr
	}
	if f.signInSession != nil {
		f.session = f.signInSession
	} else {
		f.session = signedIn()
	}
	return nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.session = nil
	return nil
}

func (f *fakeAuth) CurrentSession(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	hook := f.beforeCurrentSession
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentSessionCalls++
	return f.session, f.sessionErr
}

func (f *fakeAuth) AuthStateStream(ctx context.Context) <-chan models.AuthStateChange {
	s := &fakeStream{ch: make(chan models.AuthStateChange, 16)}
	f.mu.Lock()
	f.streams = append(f.streams, s)
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		s.closed = true
		close(s.ch)
	}()
	return s.ch
}

func (f *fakeAuth) ResendSignUpVerification(ctx context.Context, email, redirectURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resendEmail = email
	f.resendRedirect = redirectURL
	return f.resendErr
}

func (f *fakeAuth) IsEmailNotConfirmedError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "email not confirmed")
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetEmail = email
	f.resetRedirect = redirectURL
	return f.resetErr
}

func (f *fakeAuth) HandleAuthCallback(ctx context.Context, rawURL string) (models.CallbackResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbackURL = rawURL
	if f.callbackErr != nil {
		return models.CallbackNone, f.callbackErr
	}
	if f.callbackResult != models.CallbackNone {
		f.session = signedIn()
	}
	return f.callbackResult, nil
}

func (f *fakeAuth) UpdatePassword(ctx context.Context, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newPassword = newPassword
	return f.updateErr
}

func (f *fakeAuth) setSession(s *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = s
}

func (f *fakeAuth) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentSessionCalls
}

func (f *fakeAuth) streamCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.streams)
}

func (f *fakeAuth) streamClosed(i int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams[i].closed
}

// emit delivers ev on the newest open stream.
func (f *fakeAuth) emit(ev models.AuthStateChange) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return false
	}
	s := f.streams[len(f.streams)-1]
	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

/*************
 * Fake profile gateway
 *************/

type fakeProfiles struct {
	mu         sync.Mutex
	profile    *models.Profile
	fetchErr   error
	completeFn func(first, last string, dob time.Time) error
}

func (f *fakeProfiles) FetchMyProfile(ctx context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, f.fetchErr
}

func (f *fakeProfiles) CompleteOnboarding(ctx context.Context, first, last string, dob time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeFn != nil {
		return f.completeFn(first, last, dob)
	}
	now := time.Now()
	f.profile = &models.Profile{
		ID:                    uuid.New(),
		FirstName:             first,
		LastName:              last,
		DateOfBirth:           &dob,
		OnboardingCompletedAt: &now,
	}
	return nil
}

func completeProfile() *models.Profile {
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	done := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Profile{
		ID:                    uuid.New(),
		FirstName:             "Ann",
		LastName:              "Lee",
		DateOfBirth:           &dob,
		OnboardingCompletedAt: &done,
	}
}

/*************
 * Fake pending store
 *************/

type fakePending struct {
	mu      sync.Mutex
	record  *models.PendingEmailVerification
	loadErr error
	saveErr error
}

func (f *fakePending) Load(ctx context.Context) (*models.PendingEmailVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.record == nil {
		return nil, nil
	}
	cp := *f.record
	return &cp, nil
}

func (f *fakePending) Save(ctx context.Context, p models.PendingEmailVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.record = &p
	return nil
}

func (f *fakePending) UpdateLastResend(ctx context.Context, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.record != nil {
		f.record.LastResendAt = &at
	}
	return nil
}

func (f *fakePending) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record = nil
	return nil
}

func (f *fakePending) get() *models.PendingEmailVerification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.record == nil {
		return nil
	}
	cp := *f.record
	return &cp
}
