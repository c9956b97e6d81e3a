package client

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

func strField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func structField(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

func listField(s *structpb.Struct, key string) []*structpb.Value {
	return s.GetFields()[key].GetListValue().GetValues()
}

func uuidField(s *structpb.Struct, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strField(s, key))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad %s: %v", ErrRemote, key, err)
	}
	return id, nil
}

func intField(s *structpb.Struct, key string) *int64 {
	v := s.GetFields()[key]
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return nil
	}
	n := int64(v.GetNumberValue())
	return &n
}

// timeField parses an RFC 3339 timestamp; missing or malformed values are nil.
func timeField(s *structpb.Struct, key string) *time.Time {
	raw := strField(s, key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &t
}

// dateField parses a calendar date, also accepting a full timestamp.
func dateField(s *structpb.Struct, key string) *time.Time {
	raw := strField(s, key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(models.DateLayout, raw); err == nil {
		return &t
	}
	return timeField(s, key)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeProfile(s *structpb.Struct) (*models.Profile, error) {
	id, err := uuidField(s, "id")
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:                    id,
		ParticipantID:         intField(s, "participant_id"),
		FirstName:             strField(s, "first_name"),
		LastName:              strField(s, "last_name"),
		DateOfBirth:           dateField(s, "date_of_birth"),
		Timezone:              strField(s, "timezone"),
		CreatedAt:             timeField(s, "created_at"),
		OnboardingCompletedAt: timeField(s, "onboarding_completed_at"),
	}, nil
}

func decodeStudy(s *structpb.Struct) (models.Study, error) {
	id, err := uuidField(s, "id")
	if err != nil {
		return models.Study{}, err
	}
	return models.Study{
		ID:          id,
		Slug:        strField(s, "slug"),
		Title:       strField(s, "title"),
		Description: strField(s, "description"),
		Status:      models.ParseRecruitmentStatus(strField(s, "status")),
		CreatedAt:   timeField(s, "created_at"),
	}, nil
}

func decodeEnrollment(s *structpb.Struct) (models.StudyEnrollment, error) {
	id, err := uuidField(s, "id")
	if err != nil {
		return models.StudyEnrollment{}, err
	}
	userID, err := uuidField(s, "user_id")
	if err != nil {
		return models.StudyEnrollment{}, err
	}
	studyID, err := uuidField(s, "study_id")
	if err != nil {
		return models.StudyEnrollment{}, err
	}
	return models.StudyEnrollment{
		ID:         id,
		UserID:     userID,
		StudyID:    studyID,
		Status:     models.ParseEnrollmentStatus(strField(s, "status")),
		EnrolledAt: timeField(s, "enrolled_at"),
		CreatedAt:  timeField(s, "created_at"),
	}, nil
}

// sessionFromResponse builds a session from a reply carrying access_token
// and refresh_token. It returns (nil, nil) when the reply has no tokens.
func sessionFromResponse(resp *structpb.Struct) (*storedSession, error) {
	access := strField(resp, "access_token")
	if access == "" {
		return nil, nil
	}
	refresh := strField(resp, "refresh_token")
	if refresh == "" {
		return nil, fmt.Errorf("%w: refresh token missing", ErrRemote)
	}
	s, err := newStoredSession(access, refresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	if s.Email == "" {
		s.Email = strField(structField(resp, "user"), "email")
	}
	return s, nil
}
