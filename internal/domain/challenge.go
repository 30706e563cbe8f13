package domain

import (
	"innovation-portal/internal/workflow"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Challenge struct {
	ID            uint64         `json:"id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	ThematicAreas pq.StringArray `gorm:"type:text[]" json:"thematic_areas"`
	Deadline      time.Time      `gorm:"not null" json:"deadline"`
	IsOpen        bool           `gorm:"not null;default:true" json:"is_open"`
	CreatedByID   uint64         `gorm:"not null" json:"created_by_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// AcceptsSubmissions reports whether new submissions may be created at now.
func (c *Challenge) AcceptsSubmissions(now time.Time) bool {
	return c.IsOpen && now.Before(c.Deadline)
}

type ChallengeSubmission struct {
	ID                    uint64                `json:"id"`
	Reference             string                `gorm:"type:uuid;uniqueIndex" json:"reference"`
	ChallengeID           uint64                `gorm:"not null;index" json:"challenge_id"`
	UserID                uint64                `gorm:"not null;index" json:"user_id"`
	Title                 string                `gorm:"size:255;not null" json:"title"`
	Summary               string                `gorm:"type:text" json:"summary"`
	Solution              string                `gorm:"type:text" json:"solution"`
	Status                workflow.Status       `gorm:"size:32;not null;default:draft;index" json:"status"`
	CurrentRevisionNumber uint                  `gorm:"not null;default:0" json:"current_revision_number"`
	SubmittedAt           *time.Time            `json:"submitted_at,omitempty"`
	Members               []CollaborationMember `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

func (s *ChallengeSubmission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.Reference == "" {
		s.Reference = uuid.New().String()
	}
	return
}

func (s *ChallengeSubmission) Subject() workflow.Subject {
	return workflow.Subject{
		ID:       s.ID,
		AuthorID: s.UserID,
		Status:   s.Status,
		Revision: s.CurrentRevisionNumber,
	}
}

// CollaborationMember is a team row on a challenge submission.
type CollaborationMember struct {
	ID           uint64 `json:"id"`
	SubmissionID uint64 `gorm:"not null;index" json:"-"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255" json:"email"`
	Role         string `gorm:"size:120" json:"role"`
}
