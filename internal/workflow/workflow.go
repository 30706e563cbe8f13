// Package workflow holds the review state machine shared by ideas and
// challenge submissions. It has no storage or transport dependencies: callers
// load a Subject, ask the package whether an actor may act on it and which
// status comes next, then persist the result.
package workflow

import "errors"

type Status string

const (
	StatusDraft        Status = "draft"
	StatusStage1Review Status = "stage_1_review"
	StatusStage1Revise Status = "stage_1_revise"
	StatusStage2Review Status = "stage_2_review"
	StatusStage2Revise Status = "stage_2_revise"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusDraft,
	StatusStage1Review,
	StatusStage1Revise,
	StatusStage2Review,
	StatusStage2Revise,
	StatusApproved,
	StatusRejected,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// InReview reports whether reviewers may currently act on s.
func (s Status) InReview() bool {
	return s == StatusStage1Review || s == StatusStage2Review
}

// Editable reports whether the author may change the submission's content.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusStage1Revise || s == StatusStage2Revise
}

type Stage uint8

const (
	StageNone Stage = 0
	Stage1    Stage = 1
	Stage2    Stage = 2
)

// StageOf maps review and revise statuses to their stage.
func StageOf(s Status) Stage {
	switch s {
	case StatusStage1Review, StatusStage1Revise:
		return Stage1
	case StatusStage2Review, StatusStage2Revise:
		return Stage2
	}
	return StageNone
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionRevise  Decision = "revise"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionRevise || d == DecisionReject
}

var (
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrNotInReview       = errors.New("submission is not under review")
	ErrSelfReview        = errors.New("authors cannot review or decide on their own submission")
	ErrForbidden         = errors.New("missing permission for this action")
	ErrNotEnoughReviews  = errors.New("not enough reviews for a decision")
	ErrNotEditable       = errors.New("submission cannot be edited in its current status")
	ErrNotAuthor         = errors.New("only the author can perform this action")
	// ErrStaleStatus is returned by stores when a conditional status update
	// matched no row because another request moved the subject first.
	ErrStaleStatus = errors.New("submission status changed, reload and retry")
)

// Subject is the workflow-relevant view of an idea or challenge submission.
type Subject struct {
	ID       uint64
	AuthorID uint64
	Status   Status
	Revision uint
}

// Stage returns the stage the subject is in, StageNone outside review.
func (s Subject) Stage() Stage {
	return StageOf(s.Status)
}

var submitTable = map[Status]Status{
	StatusDraft:        StatusStage1Review,
	StatusStage1Revise: StatusStage1Review,
	StatusStage2Revise: StatusStage2Review,
}

var decisionTable = map[Status]map[Decision]Status{
	StatusStage1Review: {
		DecisionApprove: StatusStage2Review,
		DecisionRevise:  StatusStage1Revise,
		DecisionReject:  StatusRejected,
	},
	StatusStage2Review: {
		DecisionApprove: StatusApproved,
		DecisionRevise:  StatusStage2Revise,
		DecisionReject:  StatusRejected,
	},
}

// Submit returns the status a submission enters when its author submits it.
func Submit(current Status) (Status, error) {
	next, ok := submitTable[current]
	if !ok {
		return current, ErrInvalidTransition
	}
	return next, nil
}

// Apply returns the status produced by a Deputy Director decision.
func Apply(current Status, d Decision) (Status, error) {
	row, ok := decisionTable[current]
	if !ok {
		return current, ErrInvalidTransition
	}
	next, ok := row[d]
	if !ok {
		return current, ErrInvalidTransition
	}
	return next, nil
}

// Transition is one row of the table exposed to clients and the admin CLI.
// Trigger is "submit" or a decision value.
type Transition struct {
	From    Status `json:"from"`
	Trigger string `json:"trigger"`
	To      Status `json:"to"`
	Actor   string `json:"actor"`
}

// Transitions returns the full table in workflow order.
func Transitions() []Transition {
	out := make([]Transition, 0, len(submitTable)+6)
	for _, from := range Statuses {
		if to, ok := submitTable[from]; ok {
			out = append(out, Transition{From: from, Trigger: "submit", To: to, Actor: "author"})
		}
		if row, ok := decisionTable[from]; ok {
			for _, d := range []Decision{DecisionApprove, DecisionRevise, DecisionReject} {
				out = append(out, Transition{From: from, Trigger: string(d), To: row[d], Actor: string(RoleDeputyDirector)})
			}
		}
	}
	return out
}
