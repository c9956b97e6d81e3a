package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/repositories/metadata"
)

// PendingVerificationKey is the metadata key holding the pending record.
const PendingVerificationKey = "email_verification_pending_v1"

// PendingVerificationStore persists the single "awaiting email verification"
// record.
//
// Contract:
//   - Load returns (nil, nil) when nothing is stored or the stored data is
//     unreadable.
//   - Save replaces any existing record.
//   - UpdateLastResend is a no-op when nothing is stored.
//   - Clear is idempotent.
type PendingVerificationStore interface {
	Load(ctx context.Context) (*models.PendingEmailVerification, error)
	Save(ctx context.Context, pending models.PendingEmailVerification) error
	UpdateLastResend(ctx context.Context, at time.Time) error
	Clear(ctx context.Context) error
}

type pendingVerificationStore struct {
	repo metadata.Repository
	key  string
}

// NewPendingVerificationStore returns a store over repo using
// PendingVerificationKey.
func NewPendingVerificationStore(repo metadata.Repository) PendingVerificationStore {
	return &pendingVerificationStore{repo: repo, key: PendingVerificationKey}
}

func decodePending(raw []byte) *models.PendingEmailVerification {
	if raw == nil {
		return nil
	}
	var p models.PendingEmailVerification
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}

func (s *pendingVerificationStore) Load(ctx context.Context) (*models.PendingEmailVerification, error) {
	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return decodePending(raw), nil
}

func (s *pendingVerificationStore) Save(ctx context.Context, pending models.PendingEmailVerification) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending verification: %w", err)
	}
	return s.repo.Set(ctx, s.key, raw)
}

func (s *pendingVerificationStore) UpdateLastResend(ctx context.Context, at time.Time) error {
	return s.repo.Update(ctx, s.key, func(current []byte) ([]byte, error) {
		p := decodePending(current)
		if p == nil {
			return nil, nil
		}
		p.LastResendAt = &at
		return json.Marshal(p)
	})
}

func (s *pendingVerificationStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.key)
}
