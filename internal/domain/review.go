package domain

import (
	"innovation-portal/internal/workflow"
	"time"
)

// Review rows are append-only. A reviewer files at most one review per
// subject, stage and round; the round is the subject's revision number when
// the review was filed.

type IdeaReview struct {
	ID               uint64            `json:"id"`
	IdeaID           uint64            `gorm:"not null;uniqueIndex:uk_idea_review,priority:1" json:"idea_id"`
	ReviewerID       uint64            `gorm:"not null;uniqueIndex:uk_idea_review,priority:2;index" json:"reviewer_id"`
	Stage            workflow.Stage    `gorm:"not null;uniqueIndex:uk_idea_review,priority:3" json:"stage"`
	Round            uint              `gorm:"not null;uniqueIndex:uk_idea_review,priority:4" json:"round"`
	Recommendation   workflow.Decision `gorm:"size:16;not null" json:"recommendation"`
	Comments         string            `gorm:"type:text" json:"comments"`
	FeasibilityScore *uint8            `json:"feasibility_score,omitempty"`
	ImpactScore      *uint8            `json:"impact_score,omitempty"`
	InnovationScore  *uint8            `json:"innovation_score,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type IdeaReviewDecision struct {
	ID               uint64            `json:"id"`
	IdeaID           uint64            `gorm:"not null;uniqueIndex:uk_idea_decision,priority:1" json:"idea_id"`
	DeciderID        uint64            `gorm:"not null" json:"decider_id"`
	Stage            workflow.Stage    `gorm:"not null;uniqueIndex:uk_idea_decision,priority:2" json:"stage"`
	Round            uint              `gorm:"not null;uniqueIndex:uk_idea_decision,priority:3" json:"round"`
	Decision         workflow.Decision `gorm:"size:16;not null" json:"decision"`
	CompiledComments string            `gorm:"type:text" json:"compiled_comments"`
	FromStatus       workflow.Status   `gorm:"size:32;not null" json:"from_status"`
	ToStatus         workflow.Status   `gorm:"size:32;not null" json:"to_status"`
	CreatedAt        time.Time         `json:"created_at"`
}

type ChallengeReview struct {
	ID               uint64            `json:"id"`
	SubmissionID     uint64            `gorm:"not null;uniqueIndex:uk_challenge_review,priority:1" json:"submission_id"`
	ReviewerID       uint64            `gorm:"not null;uniqueIndex:uk_challenge_review,priority:2;index" json:"reviewer_id"`
	Stage            workflow.Stage    `gorm:"not null;uniqueIndex:uk_challenge_review,priority:3" json:"stage"`
	Round            uint              `gorm:"not null;uniqueIndex:uk_challenge_review,priority:4" json:"round"`
	Recommendation   workflow.Decision `gorm:"size:16;not null" json:"recommendation"`
	Comments         string            `gorm:"type:text" json:"comments"`
	FeasibilityScore *uint8            `json:"feasibility_score,omitempty"`
	ImpactScore      *uint8            `json:"impact_score,omitempty"`
	InnovationScore  *uint8            `json:"innovation_score,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type ChallengeReviewDecision struct {
	ID               uint64            `json:"id"`
	SubmissionID     uint64            `gorm:"not null;uniqueIndex:uk_challenge_decision,priority:1" json:"submission_id"`
	DeciderID        uint64            `gorm:"not null" json:"decider_id"`
	Stage            workflow.Stage    `gorm:"not null;uniqueIndex:uk_challenge_decision,priority:2" json:"stage"`
	Round            uint              `gorm:"not null;uniqueIndex:uk_challenge_decision,priority:3" json:"round"`
	Decision         workflow.Decision `gorm:"size:16;not null" json:"decision"`
	CompiledComments string            `gorm:"type:text" json:"compiled_comments"`
	FromStatus       workflow.Status   `gorm:"size:32;not null" json:"from_status"`
	ToStatus         workflow.Status   `gorm:"size:32;not null" json:"to_status"`
	CreatedAt        time.Time         `json:"created_at"`
}
