package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionKey = "auth_session_v1"

	// expiryLeeway refreshes access tokens slightly before they expire.
	expiryLeeway = 30 * time.Second
)

// storedSession is the persisted form of a signed-in session.
type storedSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// parseAccessToken reads the claims of an access token. The signature is not
// checked: the client has no key and the backend verifies every call.
func parseAccessToken(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

func newStoredSession(accessToken, refreshToken string) (*storedSession, error) {
	claims, err := parseAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("access token subject: %w", err)
	}

	s := &storedSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       userID,
		Email:        claims.Email,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

func (s *storedSession) expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(expiryLeeway).Before(s.ExpiresAt)
}

func (s *storedSession) toModel() *models.Session {
	if s == nil {
		return nil
	}
	return &models.Session{UserID: s.UserID, Email: s.Email, ExpiresAt: s.ExpiresAt}
}

// loadSession returns the cached session, reading the repository once.
func (c *GRPCClient) loadSession(ctx context.Context) (*storedSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.session, nil
	}

	raw, err := c.repo.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		var s storedSession
		if err := json.Unmarshal(raw, &s); err != nil {
			c.log.Warn(ctx, "discarding unreadable stored session", "error", err)
		} else {
			c.session = &s
		}
	}
	c.loaded = true
	return c.session, nil
}

func (c *GRPCClient) storeSession(ctx context.Context, s *storedSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.repo.Set(ctx, sessionKey, raw); err != nil {
		return err
	}
	c.session = s
	c.loaded = true
	return nil
}

func (c *GRPCClient) dropSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.loaded = true
	return c.repo.Delete(ctx, sessionKey)
}

func (c *GRPCClient) accessToken(ctx context.Context) string {
	s, err := c.loadSession(ctx)
	if err != nil || s == nil {
		return ""
	}
	return s.AccessToken
}
