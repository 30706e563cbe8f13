package domain

import (
	"innovation-portal/internal/workflow"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Idea is a staff submission that goes through the two-stage review.
type Idea struct {
	ID                    uint64          `json:"id"`
	Reference             string          `gorm:"type:uuid;uniqueIndex" json:"reference"`
	UserID                uint64          `gorm:"not null;index" json:"user_id"`
	Title                 string          `gorm:"size:255;not null" json:"title"`
	ThematicArea          string          `gorm:"size:120;index" json:"thematic_area"`
	ProblemStatement      string          `gorm:"type:text" json:"problem_statement"`
	ProposedSolution      string          `gorm:"type:text" json:"proposed_solution"`
	ExpectedImpact        string          `gorm:"type:text" json:"expected_impact"`
	ImplementationPlan    string          `gorm:"type:text" json:"implementation_plan"`
	Keywords              pq.StringArray  `gorm:"type:text[]" json:"keywords"`
	Status                workflow.Status `gorm:"size:32;not null;default:draft;index" json:"status"`
	CurrentRevisionNumber uint            `gorm:"not null;default:0" json:"current_revision_number"`
	Attachment            []byte          `json:"-"`
	AttachmentName        string          `gorm:"size:255" json:"attachment_name,omitempty"`
	AttachmentMime        string          `gorm:"size:127" json:"attachment_mime,omitempty"`
	SubmittedAt           *time.Time      `json:"submitted_at,omitempty"`
	TeamMembers           []TeamMember    `gorm:"constraint:OnDelete:CASCADE" json:"team_members,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public reference.
func (i *Idea) BeforeCreate(tx *gorm.DB) (err error) {
	if i.Reference == "" {
		i.Reference = uuid.New().String()
	}
	return
}

func (i *Idea) Subject() workflow.Subject {
	return workflow.Subject{
		ID:       i.ID,
		AuthorID: i.UserID,
		Status:   i.Status,
		Revision: i.CurrentRevisionNumber,
	}
}

// IdeaContent is the editable part of an idea. Versions and collaboration
// proposals store it as JSON.
type IdeaContent struct {
	Title              string   `json:"title"`
	ThematicArea       string   `json:"thematic_area"`
	ProblemStatement   string   `json:"problem_statement"`
	ProposedSolution   string   `json:"proposed_solution"`
	ExpectedImpact     string   `json:"expected_impact"`
	ImplementationPlan string   `json:"implementation_plan"`
	Keywords           []string `json:"keywords"`
}

func (i *Idea) Content() IdeaContent {
	keywords := make([]string, len(i.Keywords))
	copy(keywords, i.Keywords)
	return IdeaContent{
		Title:              i.Title,
		ThematicArea:       i.ThematicArea,
		ProblemStatement:   i.ProblemStatement,
		ProposedSolution:   i.ProposedSolution,
		ExpectedImpact:     i.ExpectedImpact,
		ImplementationPlan: i.ImplementationPlan,
		Keywords:           keywords,
	}
}

func (i *Idea) ApplyContent(c IdeaContent) {
	i.Title = c.Title
	i.ThematicArea = c.ThematicArea
	i.ProblemStatement = c.ProblemStatement
	i.ProposedSolution = c.ProposedSolution
	i.ExpectedImpact = c.ExpectedImpact
	i.ImplementationPlan = c.ImplementationPlan
	i.Keywords = pq.StringArray(c.Keywords)
}

type TeamMember struct {
	ID     uint64 `json:"id"`
	IdeaID uint64 `gorm:"not null;index" json:"-"`
	Name   string `gorm:"size:255;not null" json:"name"`
	Email  string `gorm:"size:255" json:"email"`
	Role   string `gorm:"size:120" json:"role"`
}

// Comment on an idea. Deleting overwrites the content and keeps the row.
type Comment struct {
	ID        uint64    `json:"id"`
	IdeaID    uint64    `gorm:"not null;index" json:"idea_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Author    *User     `gorm:"foreignKey:UserID" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const DeletedCommentContent = "[deleted]"

type IdeaLike struct {
	ID        uint64    `json:"id"`
	IdeaID    uint64    `gorm:"not null;uniqueIndex:uk_idea_like_user,priority:1" json:"idea_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_idea_like_user,priority:2" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IdeaVersion is a snapshot of an idea's content at a revision.
type IdeaVersion struct {
	ID          uint64          `json:"id"`
	IdeaID      uint64          `gorm:"not null;index" json:"idea_id"`
	Version     uint            `gorm:"not null" json:"version"`
	Status      workflow.Status `gorm:"size:32;not null" json:"status"`
	Snapshot    datatypes.JSON  `gorm:"type:jsonb;not null" json:"snapshot"`
	CreatedByID uint64          `gorm:"not null" json:"created_by_id"`
	Reason      string          `gorm:"size:64" json:"reason"`
	CreatedAt   time.Time       `json:"created_at"`
}
