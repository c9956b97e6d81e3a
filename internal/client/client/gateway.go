package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/google/uuid"
)

// AuthGateway is the remote authentication contract the session controller
// depends on.
type AuthGateway interface {
	SignUp(ctx context.Context, email, password string, meta models.SignUpMetadata) (models.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	// CurrentSession returns (nil, nil) when nobody is signed in.
	CurrentSession(ctx context.Context) (*models.Session, error)
	// AuthStateStream delivers auth-state changes until ctx ends, then
	// closes the channel. Every subscription starts with InitialSession.
	AuthStateStream(ctx context.Context) <-chan models.AuthStateChange
	ResendSignUpVerification(ctx context.Context, email, redirectURL string) error
	IsEmailNotConfirmedError(err error) bool
	// RequestPasswordReset must not reveal whether the account exists.
	RequestPasswordReset(ctx context.Context, email, redirectURL string) error
	HandleAuthCallback(ctx context.Context, rawURL string) (models.CallbackResult, error)
	UpdatePassword(ctx context.Context, newPassword string) error
}

// ProfileGateway reads and completes the signed-in participant's profile.
type ProfileGateway interface {
	// FetchMyProfile returns (nil, nil) when no profile row exists.
	FetchMyProfile(ctx context.Context) (*models.Profile, error)
	CompleteOnboarding(ctx context.Context, firstName, lastName string, dateOfBirth time.Time) error
}

// StudyGateway lists research studies and manages enrollments.
type StudyGateway interface {
	FetchStudies(ctx context.Context) ([]models.Study, error)
	FetchMyEnrollments(ctx context.Context) ([]models.StudyEnrollment, error)
	Enroll(ctx context.Context, studyID uuid.UUID) error
}
