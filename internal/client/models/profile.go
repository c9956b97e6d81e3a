package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of calendar dates such as date of birth.
const DateLayout = "2006-01-02"

// Profile is a participant's identity and onboarding data.
type Profile struct {
	ID                    uuid.UUID
	ParticipantID         *int64
	FirstName             string
	LastName              string
	DateOfBirth           *time.Time
	Timezone              string
	CreatedAt             *time.Time
	OnboardingCompletedAt *time.Time
}

// IsOnboardingComplete reports whether onboarding was finished and all
// required fields are present. It is derived on every call, never stored.
func (p *Profile) IsOnboardingComplete() bool {
	if p == nil {
		return false
	}
	return p.OnboardingCompletedAt != nil &&
		!isBlank(p.FirstName) &&
		!isBlank(p.LastName) &&
		p.DateOfBirth != nil
}
