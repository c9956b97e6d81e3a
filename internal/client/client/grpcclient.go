package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tinnitrack/internal/logging"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// AccessTokenHeaderName is the outgoing metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// tokenExpiredMessage is the status message the backend uses for an expired
// access token.
const tokenExpiredMessage = "token expired"

const (
	MethodSignUp             = "/tinnitrack.v1.Auth/SignUp"
	MethodSignIn             = "/tinnitrack.v1.Auth/SignIn"
	MethodSignOut            = "/tinnitrack.v1.Auth/SignOut"
	MethodRefreshToken       = "/tinnitrack.v1.Auth/RefreshToken"
	MethodGetUser            = "/tinnitrack.v1.Auth/GetUser"
	MethodExchangeCode       = "/tinnitrack.v1.Auth/ExchangeCode"
	MethodResend             = "/tinnitrack.v1.Auth/Resend"
	MethodRecoverPassword    = "/tinnitrack.v1.Auth/RecoverPassword"
	MethodUpdateUser         = "/tinnitrack.v1.Auth/UpdateUser"
	MethodGetMyProfile       = "/tinnitrack.v1.Profiles/GetMyProfile"
	MethodCompleteOnboarding = "/tinnitrack.v1.Profiles/CompleteOnboarding"
	MethodListStudies        = "/tinnitrack.v1.Studies/ListStudies"
	MethodListMyEnrollments  = "/tinnitrack.v1.Studies/ListMyEnrollments"
	MethodEnroll             = "/tinnitrack.v1.Studies/Enroll"
)

// GRPCClientConfig holds connection settings for GRPCClient.
type GRPCClientConfig struct {
	Endpoint string
	// ConfirmRedirectURL is sent with sign-ups so the confirmation link
	// returns to this client.
	ConfirmRedirectURL string
	// RequestTimeout bounds each RPC; zero means no extra deadline.
	RequestTimeout time.Duration
}

// GRPCClient talks to the TinniTrack backend. It implements AuthGateway,
// ProfileGateway and StudyGateway and keeps the session in a metadata
// repository so it survives restarts.
type GRPCClient struct {
	cfg    GRPCClientConfig
	conn   *grpc.ClientConn
	repo   metadata.Repository
	log    logging.Logger
	now    func() time.Time
	events *broadcaster

	mu      sync.Mutex
	session *storedSession
	loaded  bool

	// refreshMu serializes token refreshes; it is held across the refresh RPC.
	refreshMu sync.Mutex
}

var (
	_ AuthGateway    = (*GRPCClient)(nil)
	_ ProfileGateway = (*GRPCClient)(nil)
	_ StudyGateway   = (*GRPCClient)(nil)
)

func NewGRPCClient(cfg GRPCClientConfig, repo metadata.Repository, log logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	if log == nil {
		log = logging.Nop()
	}
	c := &GRPCClient{
		cfg:    cfg,
		repo:   repo,
		log:    log.With("component", "grpc_client"),
		now:    time.Now,
		events: newBroadcaster(),
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(cfg.Endpoint, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

// Close ends every auth-state stream and closes the connection.
func (c *GRPCClient) Close() error {
	c.events.close()
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := grpcmd.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = grpcmd.MD{}
	}
	md.Set(AccessTokenHeaderName, token)
	return grpcmd.NewOutgoingContext(ctx, md)
}

func hasAccessToken(ctx context.Context) bool {
	md, ok := grpcmd.FromOutgoingContext(ctx)
	return ok && len(md.Get(AccessTokenHeaderName)) > 0
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == tokenExpiredMessage
}

// accessTokenInterceptor attaches the stored access token and, when the
// backend reports it expired, refreshes the session once and retries.
// Calls that already carry a token are passed through untouched.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if hasAccessToken(ctx) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	token := c.accessToken(ctx)
	if token == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
	if err == nil || method == MethodRefreshToken || !isTokenExpired(err) {
		return err
	}

	if _, rerr := c.refresh(ctx, token); rerr != nil {
		return err
	}
	return invoker(withAccessToken(ctx, c.accessToken(ctx)), method, req, reply, cc, opts...)
}

func (c *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	if hasEmailNotConfirmedMarker(st.Message()) {
		return ErrEmailNotConfirmed
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("%w: %s", ErrRemote, st.Message())
	}
}

func (c *GRPCClient) call(ctx context.Context, method string, body map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return nil, c.mapError(err)
	}
	return resp, nil
}

// refresh exchanges the refresh token for a new session. stale is the access
// token the caller found unusable; if another goroutine already replaced it,
// the current session is returned without a second round-trip.
func (c *GRPCClient) refresh(ctx context.Context, stale string) (*storedSession, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	cur, err := c.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil || cur.RefreshToken == "" {
		return nil, ErrNoSession
	}
	if cur.AccessToken != stale {
		return cur, nil
	}

	resp, err := c.call(ctx, MethodRefreshToken, map[string]any{"refresh_token": cur.RefreshToken})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.log.Info(ctx, "refresh token rejected, clearing session")
			if derr := c.dropSession(ctx); derr != nil {
				c.log.Warn(ctx, "failed to clear session", "error", derr)
			}
			c.events.publish(models.AuthStateChange{Event: models.AuthEventSignedOut})
		}
		return nil, err
	}

	next, err := sessionFromResponse(resp)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, fmt.Errorf("%w: refresh returned no tokens", ErrRemote)
	}
	if err := c.storeSession(ctx, next); err != nil {
		return nil, err
	}

	c.log.Debug(ctx, "access token refreshed", "user_id", next.UserID, "expires_at", next.ExpiresAt)
	c.events.publish(models.AuthStateChange{Event: models.AuthEventTokenRefreshed, Session: next.toModel()})
	return next, nil
}

func (c *GRPCClient) signedIn(ctx context.Context, s *storedSession, event models.AuthEvent) error {
	if err := c.storeSession(ctx, s); err != nil {
		return err
	}
	c.events.publish(models.AuthStateChange{Event: event, Session: s.toModel()})
	return nil
}

func (c *GRPCClient) SignUp(ctx context.Context, email, password string, meta models.SignUpMetadata) (models.SignUpResult, error) {
	data := map[string]any{}
	if fn := strings.TrimSpace(meta.FirstName); fn != "" {
		data["first_name"] = fn
	}
	if ln := strings.TrimSpace(meta.LastName); ln != "" {
		data["last_name"] = ln
	}
	if meta.DateOfBirth != nil {
		data["date_of_birth"] = meta.DateOfBirth.Format(models.DateLayout)
	}

	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     data,
	}
	if c.cfg.ConfirmRedirectURL != "" {
		body["redirect_to"] = c.cfg.ConfirmRedirectURL
	}

	resp, err := c.call(ctx, MethodSignUp, body)
	if err != nil {
		return models.SignUpAwaitingEmailVerification, err
	}

	s, err := sessionFromResponse(resp)
	if err != nil {
		return models.SignUpAwaitingEmailVerification, err
	}
	if s == nil {
		return models.SignUpAwaitingEmailVerification, nil
	}
	if err := c.signedIn(ctx, s, models.AuthEventSignedIn); err != nil {
		return models.SignUpAwaitingEmailVerification, err
	}
	return models.SignUpSignedIn, nil
}

func (c *GRPCClient) SignIn(ctx context.Context, email, password string) error {
	resp, err := c.call(ctx, MethodSignIn, map[string]any{"email": email, "password": password})
	if err != nil {
		return err
	}

	s, err := sessionFromResponse(resp)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: sign-in returned no tokens", ErrRemote)
	}
	return c.signedIn(ctx, s, models.AuthEventSignedIn)
}

// SignOut always forgets the local session. A backend that no longer knows
// the session is not an error.
func (c *GRPCClient) SignOut(ctx context.Context) error {
	cur, err := c.loadSession(ctx)
	if err != nil {
		return err
	}

	var callErr error
	if cur != nil {
		_, callErr = c.call(ctx, MethodSignOut, map[string]any{})
	}

	if err := c.dropSession(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear session", "error", err)
	}
	c.events.publish(models.AuthStateChange{Event: models.AuthEventSignedOut})

	if callErr != nil && !errors.Is(callErr, ErrUnauthorized) {
		return callErr
	}
	return nil
}

func (c *GRPCClient) CurrentSession(ctx context.Context) (*models.Session, error) {
	s, err := c.currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.toModel(), nil
}

// currentSession returns the stored session, refreshing it when expired.
func (c *GRPCClient) currentSession(ctx context.Context) (*storedSession, error) {
	s, err := c.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil || !s.expired(c.now()) {
		return s, nil
	}

	s, err = c.refresh(ctx, s.AccessToken)
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *GRPCClient) AuthStateStream(ctx context.Context) <-chan models.AuthStateChange {
	initial := models.AuthStateChange{Event: models.AuthEventInitialSession}
	s, err := c.loadSession(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to load stored session", "error", err)
	} else {
		initial.Session = s.toModel()
	}
	return c.events.subscribe(ctx, initial)
}

func (c *GRPCClient) ResendSignUpVerification(ctx context.Context, email, redirectURL string) error {
	body := map[string]any{"type": "signup", "email": email}
	if redirectURL != "" {
		body["redirect_to"] = redirectURL
	}
	_, err := c.call(ctx, MethodResend, body)
	return err
}

func (c *GRPCClient) IsEmailNotConfirmedError(err error) bool {
	return isEmailNotConfirmed(err)
}

func (c *GRPCClient) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	body := map[string]any{"email": email}
	if redirectURL != "" {
		body["redirect_to"] = redirectURL
	}
	_, err := c.call(ctx, MethodRecoverPassword, body)
	return err
}

func (c *GRPCClient) HandleAuthCallback(ctx context.Context, rawURL string) (models.CallbackResult, error) {
	params, err := parseCallbackURL(rawURL)
	if err != nil {
		return models.CallbackNone, err
	}
	if desc := params.errorDescription(); desc != "" {
		return models.CallbackNone, &CallbackError{Description: desc}
	}

	var s *storedSession
	access, refresh := params.get("access_token"), params.get("refresh_token")
	code := params.get("code")

	switch {
	case access != "" && refresh != "":
		resp, err := c.call(withAccessToken(ctx, access), MethodGetUser, map[string]any{})
		if err != nil {
			return models.CallbackNone, err
		}
		s, err = newStoredSession(access, refresh)
		if err != nil {
			return models.CallbackNone, fmt.Errorf("%w: %v", ErrRemote, err)
		}
		if s.Email == "" {
			s.Email = strField(structField(resp, "user"), "email")
		}
	case code != "":
		resp, err := c.call(ctx, MethodExchangeCode, map[string]any{"code": code})
		if err != nil {
			return models.CallbackNone, err
		}
		s, err = sessionFromResponse(resp)
		if err != nil {
			return models.CallbackNone, err
		}
		if s == nil {
			return models.CallbackNone, fmt.Errorf("%w: code exchange returned no tokens", ErrRemote)
		}
	default:
		return models.CallbackNone, nil
	}

	if params.isRecovery() {
		if err := c.signedIn(ctx, s, models.AuthEventPasswordRecovery); err != nil {
			return models.CallbackNone, err
		}
		return models.CallbackPasswordRecovery, nil
	}
	if err := c.signedIn(ctx, s, models.AuthEventSignedIn); err != nil {
		return models.CallbackNone, err
	}
	return models.CallbackSignedIn, nil
}

func (c *GRPCClient) UpdatePassword(ctx context.Context, newPassword string) error {
	s, err := c.currentSession(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrNoSession
	}
	if _, err := c.call(ctx, MethodUpdateUser, map[string]any{"password": newPassword}); err != nil {
		return err
	}
	c.events.publish(models.AuthStateChange{Event: models.AuthEventUserUpdated, Session: s.toModel()})
	return nil
}

func (c *GRPCClient) FetchMyProfile(ctx context.Context) (*models.Profile, error) {
	s, err := c.currentSession(ctx)
	if err != nil || s == nil {
		return nil, err
	}

	resp, err := c.call(ctx, MethodGetMyProfile, map[string]any{"user_id": s.UserID.String()})
	if err != nil {
		return nil, err
	}
	row := structField(resp, "profile")
	if row == nil {
		return nil, nil
	}
	return decodeProfile(row)
}

func (c *GRPCClient) CompleteOnboarding(ctx context.Context, firstName, lastName string, dateOfBirth time.Time) error {
	s, err := c.currentSession(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrNoSession
	}

	_, err = c.call(ctx, MethodCompleteOnboarding, map[string]any{
		"user_id":                 s.UserID.String(),
		"first_name":              strings.TrimSpace(firstName),
		"last_name":               strings.TrimSpace(lastName),
		"date_of_birth":           dateOfBirth.Format(models.DateLayout),
		"onboarding_completed_at": formatTimestamp(c.now()),
	})
	return err
}

func (c *GRPCClient) FetchStudies(ctx context.Context) ([]models.Study, error) {
	resp, err := c.call(ctx, MethodListStudies, map[string]any{})
	if err != nil {
		return nil, err
	}

	rows := listField(resp, "studies")
	studies := make([]models.Study, 0, len(rows))
	for _, row := range rows {
		st, err := decodeStudy(row.GetStructValue())
		if err != nil {
			return nil, err
		}
		studies = append(studies, st)
	}
	return studies, nil
}

func (c *GRPCClient) FetchMyEnrollments(ctx context.Context) ([]models.StudyEnrollment, error) {
	s, err := c.currentSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return []models.StudyEnrollment{}, nil
	}

	resp, err := c.call(ctx, MethodListMyEnrollments, map[string]any{"user_id": s.UserID.String()})
	if err != nil {
		return nil, err
	}

	rows := listField(resp, "enrollments")
	enrollments := make([]models.StudyEnrollment, 0, len(rows))
	for _, row := range rows {
		e, err := decodeEnrollment(row.GetStructValue())
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, nil
}

func (c *GRPCClient) Enroll(ctx context.Context, studyID uuid.UUID) error {
	s, err := c.currentSession(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrNoSession
	}

	_, err = c.call(ctx, MethodEnroll, map[string]any{
		"user_id":     s.UserID.String(),
		"study_id":    studyID.String(),
		"status":      string(models.EnrollmentEnrolled),
		"enrolled_at": formatTimestamp(c.now()),
	})
	return err
}
