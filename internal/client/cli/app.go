package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/client"
	"github.com/dmitrijs2005/tinnitrack/internal/client/config"
	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/services"
	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
	"github.com/dmitrijs2005/tinnitrack/internal/logging"
	"github.com/google/uuid"
)

// sessionController is the part of *session.Controller the CLI drives.
type sessionController interface {
	State() session.State
	Subscribe(fn func(session.State)) func()
	Bootstrap(ctx context.Context)
	RefreshPhase(ctx context.Context)
	SignIn(ctx context.Context, email, password string)
	SignUp(ctx context.Context, email, password, firstName, lastName string, dateOfBirth time.Time)
	CompleteOnboarding(ctx context.Context, firstName, lastName string, dateOfBirth time.Time)
	SignOut(ctx context.Context)
	RequestPasswordReset(ctx context.Context, email string)
	SubmitNewPassword(ctx context.Context, newPassword string)
	ResendVerificationEmail(ctx context.Context)
	CheckEmailVerificationStatus(ctx context.Context)
	UseDifferentEmailForVerification(ctx context.Context)
	HandleIncomingURL(ctx context.Context, rawURL string)
	DismissError()
	DismissInfo()
	Close()
}

type studyDashboard interface {
	Dashboard(ctx context.Context) ([]models.DashboardStudyCard, error)
	Enroll(ctx context.Context, studyID uuid.UUID) ([]models.DashboardStudyCard, error)
}

type draftStore interface {
	Load(ctx context.Context, defaultDateOfBirth time.Time) (models.SignupDraft, error)
	Save(ctx context.Context, d models.SignupDraft) error
	Clear(ctx context.Context) error
}

type App struct {
	config   *config.Config
	session  sessionController
	studies  studyDashboard
	drafts   draftStore
	callback *CallbackServer
	log      logging.Logger
	input    io.Closer
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
	closers  []func() error

	outMu     sync.Mutex
	phaseMu   sync.Mutex
	lastPhase session.Phase

	cardsMu sync.Mutex
	cards   []models.DashboardStudyCard
}

// NewApp opens local storage, connects to the backend and builds the session
// controller. Nothing is started until Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	a := &App{
		config: c,
		log:    log,
		input:  os.Stdin,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		now:    time.Now,
	}

	repo, closeRepo, err := openRepository(ctx, c)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	apiClient, err := client.NewGRPCClient(client.GRPCClientConfig{
		Endpoint:           c.ServerEndpointAddr,
		ConfirmRedirectURL: c.EmailConfirmRedirect,
		RequestTimeout:     c.RequestTimeout,
	}, repo, log)
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("connect to %s: %w", c.ServerEndpointAddr, err)
	}
	a.closers = append(a.closers, apiClient.Close)

	a.session = session.New(apiClient, apiClient, services.NewPendingVerificationStore(repo),
		session.WithLogger(log),
		session.WithRedirects(c.PasswordResetRedirect, c.EmailConfirmRedirect),
		session.WithManualBootstrap(),
	)
	a.studies = services.NewStudyService(apiClient)
	a.drafts = services.NewSignupDraftStore(repo)
	a.callback = NewCallbackServer(c.CallbackAddr, a.handleRedirect, log)

	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run bootstraps the session, starts the callback server and the
// verification watcher, and blocks in the REPL until the user exits or ctx
// ends.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.close(); err != nil {
			a.log.Warn(ctx, "shutdown", "error", err)
		}
	}()
	defer a.session.Close()

	unsubscribe := a.session.Subscribe(a.onState)
	defer unsubscribe()

	if err := a.callback.Start(); err != nil {
		a.log.Warn(ctx, "auth callback server not started", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
			defer cancel()
			_ = a.callback.Shutdown(shutdownCtx)
		}()
	}

	a.session.Bootstrap(ctx)
	a.flushMessages()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go a.StartVerificationWatcher(watchCtx, a.config.VerificationPollInterval)

	// Unblocks the pending line read on interrupt.
	go func() {
		<-watchCtx.Done()
		if ctx.Err() != nil && a.input != nil {
			_ = a.input.Close()
		}
	}()

	a.Root(ctx)
	return nil
}

// StartVerificationWatcher re-checks the session every interval while an
// email verification is pending, so confirming in a browser on another
// device is noticed without user input.
func (a *App) StartVerificationWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.session.State().Phase != session.PhaseAwaitingEmailVerification {
				continue
			}
			a.session.RefreshPhase(ctx)
			a.flushMessages()
		case <-ctx.Done():
			return
		}
	}
}

// handleRedirect is invoked by the callback server for every auth redirect.
func (a *App) handleRedirect(ctx context.Context, rawURL string) {
	a.session.HandleIncomingURL(ctx, rawURL)
	a.flushMessages()
}
