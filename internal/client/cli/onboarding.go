package cli

import (
	"context"

	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
)

// Onboard asks for the participant details required before studies open.
// Known values are offered as defaults.
func (a *App) Onboard(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseAuthenticatedNeedsOnboarding); err != nil {
		return err
	}

	p := a.session.State().Profile
	var first, last string
	dob := a.defaultDateOfBirth()
	if p != nil {
		first, last = p.FirstName, p.LastName
		if p.DateOfBirth != nil {
			dob = *p.DateOfBirth
		}
	}

	first, err := getTextDefault(a.reader, "First name", first, a.out)
	if err != nil {
		return err
	}
	last, err = getTextDefault(a.reader, "Last name", last, a.out)
	if err != nil {
		return err
	}
	dob, err = GetDate(a.reader, "Date of birth (YYYY-MM-DD)", dob, a.out)
	if err != nil {
		return err
	}

	a.session.CompleteOnboarding(ctx, first, last, dob)
	return nil
}
