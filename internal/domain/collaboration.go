package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CollaborationPending  = "pending"
	CollaborationApproved = "approved"
	CollaborationRejected = "rejected"
)

// CollaborationRequest asks an idea's owner to let the requester join.
type CollaborationRequest struct {
	ID          uint64     `json:"id"`
	IdeaID      uint64     `gorm:"not null;index" json:"idea_id"`
	RequesterID uint64     `gorm:"not null;index" json:"requester_id"`
	Message     string     `gorm:"type:text" json:"message"`
	Status      string     `gorm:"size:16;not null;default:pending" json:"status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CollaborationProposal carries a full shadow copy of the idea content as
// the proposer wants it to be.
type CollaborationProposal struct {
	ID              uint64         `json:"id"`
	IdeaID          uint64         `gorm:"not null;index" json:"idea_id"`
	ProposerID      uint64         `gorm:"not null;index" json:"proposer_id"`
	Summary         string         `gorm:"type:text" json:"summary"`
	ProposedChanges datatypes.JSON `gorm:"type:jsonb;not null" json:"proposed_changes"`
	BaseRevision    uint           `gorm:"not null" json:"base_revision"`
	Status          string         `gorm:"size:16;not null;default:pending" json:"status"`
	RespondedAt     *time.Time     `json:"responded_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
