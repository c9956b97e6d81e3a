package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/repositories/metadata"
)

// SignupDraftKey is the metadata key holding the registration draft.
const SignupDraftKey = "signup_draft_v1"

// SignupDraftStore keeps an in-progress registration so it can be resumed.
type SignupDraftStore struct {
	repo metadata.Repository
	now  func() time.Time
}

func NewSignupDraftStore(repo metadata.Repository) *SignupDraftStore {
	return &SignupDraftStore{repo: repo, now: time.Now}
}

// Load returns the stored draft, or an empty draft at step one when nothing
// usable is stored.
func (s *SignupDraftStore) Load(ctx context.Context, defaultDateOfBirth time.Time) (models.SignupDraft, error) {
	empty := models.EmptySignupDraft(defaultDateOfBirth, s.now())

	raw, err := s.repo.Get(ctx, SignupDraftKey)
	if err != nil {
		return empty, err
	}
	if raw == nil {
		return empty, nil
	}

	var d models.SignupDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return empty, nil
	}
	if d.CurrentStep < 1 {
		d.CurrentStep = 1
	}
	return d, nil
}

// Save stores d, stamping UpdatedAt when it is unset.
func (s *SignupDraftStore) Save(ctx context.Context, d models.SignupDraft) error {
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = s.now()
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode signup draft: %w", err)
	}
	return s.repo.Set(ctx, SignupDraftKey, raw)
}

func (s *SignupDraftStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, SignupDraftKey)
}
