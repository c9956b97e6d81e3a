package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecruitmentStatus is a study's recruitment state. Unrecognized values keep
// their raw text.
type RecruitmentStatus string

const (
	RecruitmentRecruiting       RecruitmentStatus = "recruiting"
	RecruitmentRecruitingPaused RecruitmentStatus = "recruiting paused"
	RecruitmentClosed           RecruitmentStatus = "closed"
)

func ParseRecruitmentStatus(raw string) RecruitmentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "recruiting":
		return RecruitmentRecruiting
	case "recruiting paused":
		return RecruitmentRecruitingPaused
	case "closed":
		return RecruitmentClosed
	default:
		return RecruitmentStatus(raw)
	}
}

// EnrollmentStatus is the state of a participant's enrollment.
type EnrollmentStatus string

const (
	EnrollmentEnrolled     EnrollmentStatus = "enrolled"
	EnrollmentWithdrawn    EnrollmentStatus = "withdrawn"
	EnrollmentCompleted    EnrollmentStatus = "completed"
	EnrollmentScreenFailed EnrollmentStatus = "screen_failed"
)

func ParseEnrollmentStatus(raw string) EnrollmentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "enrolled":
		return EnrollmentEnrolled
	case "withdrawn":
		return EnrollmentWithdrawn
	case "completed":
		return EnrollmentCompleted
	case "screen_failed":
		return EnrollmentScreenFailed
	default:
		return EnrollmentStatus(raw)
	}
}

type Study struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Description string
	Status      RecruitmentStatus
	CreatedAt   *time.Time
}

type StudyEnrollment struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	StudyID    uuid.UUID
	Status     EnrollmentStatus
	EnrolledAt *time.Time
	CreatedAt  *time.Time
}

// DashboardStudyCard pairs a study with the participant's enrollment in it.
type DashboardStudyCard struct {
	Study      Study
	Enrollment *StudyEnrollment
}

func (c DashboardStudyCard) IsEnrolledActive() bool {
	return c.Enrollment != nil && c.Enrollment.Status == EnrollmentEnrolled
}

func (c DashboardStudyCard) BadgeText() string {
	if c.IsEnrolledActive() {
		return "ACTIVE"
	}
	switch c.Study.Status {
	case RecruitmentRecruiting:
		return "RECRUITING"
	case RecruitmentRecruitingPaused:
		return "PAUSED"
	case RecruitmentClosed:
		return "CLOSED"
	default:
		return strings.ToUpper(strings.TrimSpace(string(c.Study.Status)))
	}
}

func (c DashboardStudyCard) CallToActionText() string {
	if c.IsEnrolledActive() {
		return "Go to Tasks"
	}
	return "View Details"
}
