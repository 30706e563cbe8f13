// Package notification turns workflow events into per-user notifications.
// Delivery runs on the worker pool: rows are stored, pushed to the user's
// redis channel for live streams, and optionally posted to a webhook.
package notification

import (
	"fmt"
	"innovation-portal/internal/workflow"
	"time"
)

type Kind string

const (
	KindSubmitted             Kind = "submission.submitted"
	KindDecisionRecorded      Kind = "decision.recorded"
	KindCollaborationRequest  Kind = "collaboration.requested"
	KindCollaborationResponse Kind = "collaboration.responded"
	KindProposalCreated       Kind = "proposal.created"
	KindProposalResponse      Kind = "proposal.responded"
)

// Subject types carried by events.
const (
	SubjectIdea       = "idea"
	SubjectSubmission = "submission"
)

type Event struct {
	ID          string                 `json:"id"`
	Kind        Kind                   `json:"kind"`
	ActorID     uint64                 `json:"actor_id"`
	SubjectType string                 `json:"subject_type"`
	SubjectID   uint64                 `json:"subject_id"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`

	// Recipients are user ids. RecipientRoles are expanded to every active
	// holder except the actor at delivery time.
	Recipients     []uint64        `json:"-"`
	RecipientRoles []workflow.Role `json:"-"`
}

// Notifier is what the domain services depend on.
type Notifier interface {
	Notify(e Event)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) {}

// Submitted tells the author and the reviewers of the next stage that a
// subject entered review.
func Submitted(subjectType string, subjectID, authorID uint64, title string, to workflow.Status) Event {
	return Event{
		Kind:           KindSubmitted,
		ActorID:        authorID,
		SubjectType:    subjectType,
		SubjectID:      subjectID,
		Title:          fmt.Sprintf("%q is awaiting review", title),
		Body:           fmt.Sprintf("Status is now %s.", to),
		Payload:        map[string]interface{}{"status": to},
		Recipients:     []uint64{authorID},
		RecipientRoles: []workflow.Role{workflow.ReviewerRole(workflow.StageOf(to))},
	}
}

// DecisionRecorded tells the author about a Deputy Director decision.
func DecisionRecorded(subjectType string, subjectID, authorID, deciderID uint64, title string, d workflow.Decision, from, to workflow.Status) Event {
	e := Event{
		Kind:        KindDecisionRecorded,
		ActorID:     deciderID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Title:       fmt.Sprintf("Decision on %q: %s", title, d),
		Body:        fmt.Sprintf("Status moved from %s to %s.", from, to),
		Payload:     map[string]interface{}{"decision": d, "from": from, "to": to},
		Recipients:  []uint64{authorID},
	}
	if to == workflow.StatusStage2Review {
		e.RecipientRoles = []workflow.Role{workflow.RoleBoard}
	}
	return e
}

func CollaborationRequested(ideaID, ownerID, requesterID, requestID uint64, title string) Event {
	return Event{
		Kind:        KindCollaborationRequest,
		ActorID:     requesterID,
		SubjectType: SubjectIdea,
		SubjectID:   ideaID,
		Title:       fmt.Sprintf("New collaboration request on %q", title),
		Payload:     map[string]interface{}{"request_id": requestID},
		Recipients:  []uint64{ownerID},
	}
}

func CollaborationResponded(ideaID, ownerID, requesterID, requestID uint64, title, status string) Event {
	return Event{
		Kind:        KindCollaborationResponse,
		ActorID:     ownerID,
		SubjectType: SubjectIdea,
		SubjectID:   ideaID,
		Title:       fmt.Sprintf("Your collaboration request on %q was %s", title, status),
		Payload:     map[string]interface{}{"request_id": requestID, "status": status},
		Recipients:  []uint64{requesterID},
	}
}

func ProposalCreated(ideaID, ownerID, proposerID, proposalID uint64, title string) Event {
	return Event{
		Kind:        KindProposalCreated,
		ActorID:     proposerID,
		SubjectType: SubjectIdea,
		SubjectID:   ideaID,
		Title:       fmt.Sprintf("New change proposal on %q", title),
		Payload:     map[string]interface{}{"proposal_id": proposalID},
		Recipients:  []uint64{ownerID},
	}
}

func ProposalResponded(ideaID, ownerID, proposerID, proposalID uint64, title, status string) Event {
	return Event{
		Kind:        KindProposalResponse,
		ActorID:     ownerID,
		SubjectType: SubjectIdea,
		SubjectID:   ideaID,
		Title:       fmt.Sprintf("Your proposal on %q was %s", title, status),
		Payload:     map[string]interface{}{"proposal_id": proposalID, "status": status},
		Recipients:  []uint64{proposerID},
	}
}
