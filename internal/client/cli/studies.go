package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/dmitrijs2005/tinnitrack/internal/client/session"
	"github.com/google/uuid"
)

var errUnknownStudy = errors.New("no such study, run 'studies' first")

// Studies loads the dashboard and prints one numbered card per study.
func (a *App) Studies(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseAuthenticatedReady); err != nil {
		return err
	}
	cards, err := a.studies.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("could not load studies: %w", err)
	}
	a.showCards(cards)
	return nil
}

// Enroll accepts either a card number from the last listing or a study ID.
func (a *App) Enroll(ctx context.Context, ref string) error {
	if err := a.requirePhase(session.PhaseAuthenticatedReady); err != nil {
		return err
	}
	id, err := a.resolveStudy(ref)
	if err != nil {
		return err
	}
	cards, err := a.studies.Enroll(ctx, id)
	if err != nil {
		return fmt.Errorf("could not enroll: %w", err)
	}
	a.say("Enrolled.")
	a.showCards(cards)
	return nil
}

func (a *App) resolveStudy(ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return uuid.Nil, errUnknownStudy
	}

	a.cardsMu.Lock()
	defer a.cardsMu.Unlock()
	if n < 1 || n > len(a.cards) {
		return uuid.Nil, errUnknownStudy
	}
	return a.cards[n-1].Study.ID, nil
}

func (a *App) showCards(cards []models.DashboardStudyCard) {
	a.cardsMu.Lock()
	a.cards = cards
	a.cardsMu.Unlock()

	if len(cards) == 0 {
		a.say("No studies yet.")
		return
	}
	for i, c := range cards {
		a.say(formatCard(i+1, c))
	}
}

func formatCard(n int, c models.DashboardStudyCard) string {
	line := fmt.Sprintf("%2d. [%s] %s  (%s)", n, c.BadgeText(), c.Study.Title, c.CallToActionText())
	if d := strings.TrimSpace(c.Study.Description); d != "" {
		line += "\n    " + d
	}
	return line
}

// Profile prints the participant's stored details.
func (a *App) Profile(ctx context.Context) error {
	if err := a.requirePhase(session.PhaseAuthenticatedNeedsOnboarding, session.PhaseAuthenticatedReady); err != nil {
		return err
	}
	p := a.session.State().Profile
	if p == nil {
		a.say("No profile yet.")
		return nil
	}
	a.say("Name:", strings.TrimSpace(p.FirstName+" "+p.LastName))
	if p.ParticipantID != nil {
		a.say("Participant:", *p.ParticipantID)
	}
	if p.DateOfBirth != nil {
		a.say("Born:", p.DateOfBirth.Format(models.DateLayout))
	}
	if p.Timezone != "" {
		a.say("Timezone:", p.Timezone)
	}
	return nil
}
