package services

import (
	"context"

	"github.com/dmitrijs2005/tinnitrack/internal/client/client"
	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StudyService builds the participant's studies dashboard.
type StudyService struct {
	gateway client.StudyGateway
}

func NewStudyService(gateway client.StudyGateway) *StudyService {
	return &StudyService{gateway: gateway}
}

// Dashboard loads studies and the participant's enrollments concurrently and
// pairs every study with its first matching enrollment. Study order is kept.
func (s *StudyService) Dashboard(ctx context.Context) ([]models.DashboardStudyCard, error) {
	var (
		studies     []models.Study
		enrollments []models.StudyEnrollment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		studies, err = s.gateway.FetchStudies(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		enrollments, err = s.gateway.FetchMyEnrollments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byStudy := make(map[uuid.UUID]models.StudyEnrollment, len(enrollments))
	for _, e := range enrollments {
		if _, seen := byStudy[e.StudyID]; !seen {
			byStudy[e.StudyID] = e
		}
	}

	cards := make([]models.DashboardStudyCard, 0, len(studies))
	for _, st := range studies {
		card := models.DashboardStudyCard{Study: st}
		if e, ok := byStudy[st.ID]; ok {
			card.Enrollment = &e
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Enroll enrolls the participant in studyID and returns the refreshed
// dashboard.
func (s *StudyService) Enroll(ctx context.Context, studyID uuid.UUID) ([]models.DashboardStudyCard, error) {
	if err := s.gateway.Enroll(ctx, studyID); err != nil {
		return nil, err
	}
	return s.Dashboard(ctx)
}
