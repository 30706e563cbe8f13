package review

import (
	"innovation-portal/internal/notification"
	"innovation-portal/internal/workflow"
	"time"
)

// Kind tells ideas apart from challenge submissions. Both share the
// workflow but keep their reviews and decisions in separate tables.
type Kind string

const (
	KindIdea      Kind = "idea"
	KindChallenge Kind = "challenge"
)

var Kinds = []Kind{KindIdea, KindChallenge}

type tables struct {
	subjects   string
	reviews    string
	decisions  string
	foreignKey string
	softDelete bool
}

var kindTables = map[Kind]tables{
	KindIdea: {
		subjects:   "ideas",
		reviews:    "idea_reviews",
		decisions:  "idea_review_decisions",
		foreignKey: "idea_id",
		softDelete: true,
	},
	KindChallenge: {
		subjects:   "challenge_submissions",
		reviews:    "challenge_reviews",
		decisions:  "challenge_review_decisions",
		foreignKey: "submission_id",
	},
}

func (k Kind) notificationSubject() string {
	if k == KindChallenge {
		return notification.SubjectSubmission
	}
	return notification.SubjectIdea
}

// Subject is the reviewable part of an idea or challenge submission.
type Subject struct {
	Kind     Kind            `json:"kind" gorm:"-"`
	ID       uint64          `json:"id"`
	AuthorID uint64          `json:"author_id"`
	Title    string          `json:"title"`
	Status   workflow.Status `json:"status"`
	Revision uint            `json:"revision"`
}

func (s *Subject) workflow() workflow.Subject {
	return workflow.Subject{ID: s.ID, AuthorID: s.AuthorID, Status: s.Status, Revision: s.Revision}
}

// Review is the read shape shared by idea and challenge reviews.
// ReviewerID is zeroed when the reader is the author.
type Review struct {
	ID               uint64            `json:"id"`
	SubjectID        uint64            `json:"subject_id"`
	ReviewerID       uint64            `json:"reviewer_id,omitempty"`
	Stage            workflow.Stage    `json:"stage"`
	Round            uint              `json:"round"`
	Recommendation   workflow.Decision `json:"recommendation"`
	Comments         string            `json:"comments"`
	FeasibilityScore *uint8            `json:"feasibility_score,omitempty"`
	ImpactScore      *uint8            `json:"impact_score,omitempty"`
	InnovationScore  *uint8            `json:"innovation_score,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type Decision struct {
	ID               uint64            `json:"id"`
	SubjectID        uint64            `json:"subject_id"`
	DeciderID        uint64            `json:"decider_id"`
	Stage            workflow.Stage    `json:"stage"`
	Round            uint              `json:"round"`
	Decision         workflow.Decision `json:"decision"`
	CompiledComments string            `json:"compiled_comments"`
	FromStatus       workflow.Status   `json:"from_status"`
	ToStatus         workflow.Status   `json:"to_status"`
	CreatedAt        time.Time         `json:"created_at"`
}
