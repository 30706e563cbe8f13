package collaboration

import (
	"context"
	"encoding/json"
	defError "errors"
	"fmt"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/idea"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/workflow"
	"innovation-portal/redis"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service interface {
	RequestToJoin(ctx context.Context, actor workflow.Actor, ideaID uint64, message string) (*domain.CollaborationRequest, error)
	ListRequests(ctx context.Context, actor workflow.Actor, ideaID uint64) ([]domain.CollaborationRequest, error)
	RespondToRequest(ctx context.Context, actor workflow.Actor, requestID uint64, approve bool) (*domain.CollaborationRequest, error)

	Propose(ctx context.Context, actor workflow.Actor, ideaID uint64, input ProposalInput) (*ProposalView, error)
	ListProposals(ctx context.Context, actor workflow.Actor, ideaID uint64) ([]ProposalView, error)
	RespondToProposal(ctx context.Context, actor workflow.Actor, proposalID uint64, accept bool) (*ProposalView, error)
}

type ProposalInput struct {
	Summary string
	Changes domain.IdeaContent
}

// ProposalView decodes the stored changes for clients.
type ProposalView struct {
	domain.CollaborationProposal
	Changes domain.IdeaContent `json:"proposed_changes"`
}

type DefaultService struct {
	repository CollaborationRepository
	ideas      idea.IdeaRepository
	cache      *redis.Cache
	notifier   notification.Notifier
	now        func() time.Time
}

func NewService(repository CollaborationRepository, ideas idea.IdeaRepository, cache *redis.Cache, notifier notification.Notifier) Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &DefaultService{
		repository: repository,
		ideas:      ideas,
		cache:      cache,
		notifier:   notifier,
		now:        time.Now,
	}
}

// ProposalVersionReason labels the snapshot written when a proposal is
// accepted.
func ProposalVersionReason(proposalID uint64) string {
	return fmt.Sprintf("proposal:%d", proposalID)
}

// RequestToJoin asks the idea's owner for collaborator access. The owner
// cannot ask, and a requester has at most one open request per idea.
func (s *DefaultService) RequestToJoin(ctx context.Context, actor workflow.Actor, ideaID uint64, message string) (*domain.CollaborationRequest, error) {
	target, err := s.findIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if target.UserID == actor.ID {
		return nil, errors.Conflict("You already own this idea", nil)
	}
	if !workflow.CanView(actor, target.Subject(), false) {
		return nil, errors.NotFound("Idea not found", nil)
	}

	existing, err := s.repository.FindOpenRequest(ctx, ideaID, actor.ID)
	if err != nil && !defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == domain.CollaborationApproved {
			return nil, errors.Conflict("You are already a collaborator", nil)
		}
		return nil, errors.Conflict("You already have a pending request", nil)
	}

	request := &domain.CollaborationRequest{
		IdeaID:      ideaID,
		RequesterID: actor.ID,
		Message:     strings.TrimSpace(message),
	}
	if err := s.repository.CreateRequest(ctx, request); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("You already have a pending request", err)
		}
		return nil, err
	}

	s.notifier.Notify(notification.CollaborationRequested(ideaID, target.UserID, actor.ID, request.ID, target.Title))
	return request, nil
}

// ListRequests shows the owner every request. Anyone else only sees their
// own.
func (s *DefaultService) ListRequests(ctx context.Context, actor workflow.Actor, ideaID uint64) ([]domain.CollaborationRequest, error) {
	target, err := s.findIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	var requests []domain.CollaborationRequest
	if target.UserID == actor.ID || actor.HasRole(workflow.RoleAdmin) {
		requests, err = s.repository.ListRequests(ctx, ideaID)
	} else {
		requests, err = s.repository.ListRequestsBy(ctx, ideaID, actor.ID)
	}
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []domain.CollaborationRequest{}
	}
	return requests, nil
}

func (s *DefaultService) RespondToRequest(ctx context.Context, actor workflow.Actor, requestID uint64, approve bool) (*domain.CollaborationRequest, error) {
	request, err := s.repository.FindRequest(ctx, requestID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Collaboration request not found", err)
		}
		return nil, err
	}
	target, err := s.findIdea(ctx, request.IdeaID)
	if err != nil {
		return nil, err
	}
	if target.UserID != actor.ID {
		return nil, errors.Forbidden("Only the idea owner can respond", nil)
	}
	if request.Status != domain.CollaborationPending {
		return nil, errors.Conflict("Request was already answered", nil)
	}

	status := domain.CollaborationRejected
	if approve {
		status = domain.CollaborationApproved
	}
	now := s.now()
	if err := s.repository.RespondRequest(ctx, request.ID, status, now); err != nil {
		return nil, staleConflict(err)
	}
	request.Status = status
	request.RespondedAt = &now

	s.notifier.Notify(notification.CollaborationResponded(target.ID, target.UserID, request.RequesterID, request.ID, target.Title, status))
	return request, nil
}

// Propose stores a full copy of the idea content as the collaborator wants
// it. Only approved collaborators can propose, and only while the owner could
// edit the idea.
func (s *DefaultService) Propose(ctx context.Context, actor workflow.Actor, ideaID uint64, input ProposalInput) (*ProposalView, error) {
	target, err := s.findIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	collaborator, err := s.ideas.IsCollaborator(ctx, ideaID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !collaborator {
		if workflow.CanView(actor, target.Subject(), false) {
			return nil, errors.Forbidden("Only approved collaborators can propose changes", nil)
		}
		return nil, errors.NotFound("Idea not found", nil)
	}
	if !target.Status.Editable() {
		return nil, errors.FromWorkflow(workflow.ErrNotEditable)
	}

	changes := idea.Normalize(input.Changes)
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, err
	}
	proposal := &domain.CollaborationProposal{
		IdeaID:          ideaID,
		ProposerID:      actor.ID,
		Summary:         strings.TrimSpace(input.Summary),
		ProposedChanges: datatypes.JSON(raw),
		BaseRevision:    target.CurrentRevisionNumber,
	}
	if err := s.repository.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}

	s.notifier.Notify(notification.ProposalCreated(ideaID, target.UserID, actor.ID, proposal.ID, target.Title))
	return &ProposalView{CollaborationProposal: *proposal, Changes: changes}, nil
}

func (s *DefaultService) ListProposals(ctx context.Context, actor workflow.Actor, ideaID uint64) ([]ProposalView, error) {
	target, err := s.findIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if target.UserID != actor.ID && !actor.Can(workflow.PermViewAll) {
		collaborator, err := s.ideas.IsCollaborator(ctx, ideaID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !collaborator {
			return nil, errors.NotFound("Idea not found", nil)
		}
	}

	proposals, err := s.repository.ListProposals(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	views := make([]ProposalView, 0, len(proposals))
	for _, p := range proposals {
		view, err := toView(p)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// RespondToProposal lets the owner accept or reject a pending proposal.
// Accepting applies the changes, bumps the revision and snapshots a version;
// a proposal made against an older revision is refused.
func (s *DefaultService) RespondToProposal(ctx context.Context, actor workflow.Actor, proposalID uint64, accept bool) (*ProposalView, error) {
	proposal, err := s.repository.FindProposal(ctx, proposalID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Proposal not found", err)
		}
		return nil, err
	}
	target, err := s.findIdea(ctx, proposal.IdeaID)
	if err != nil {
		return nil, err
	}
	if target.UserID != actor.ID {
		return nil, errors.Forbidden("Only the idea owner can respond", nil)
	}
	if proposal.Status != domain.CollaborationPending {
		return nil, errors.Conflict("Proposal was already answered", nil)
	}
	view, err := toView(*proposal)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !accept {
		if err := s.repository.RejectProposal(ctx, proposal.ID, now); err != nil {
			return nil, staleConflict(err)
		}
	} else {
		if !target.Status.Editable() {
			return nil, errors.FromWorkflow(workflow.ErrNotEditable)
		}
		if target.CurrentRevisionNumber != proposal.BaseRevision {
			return nil, errors.Conflict("Idea changed since this proposal was made", nil)
		}

		target.ApplyContent(view.Changes)
		target.CurrentRevisionNumber++
		version, err := idea.NewVersion(target, actor.ID, ProposalVersionReason(proposal.ID))
		if err != nil {
			return nil, err
		}
		if err := s.repository.AcceptProposal(ctx, proposal, target, version, now); err != nil {
			return nil, staleConflict(err)
		}
		idea.InvalidateLists(ctx, s.cache, target.UserID, false)
	}

	view.Status = domain.CollaborationRejected
	if accept {
		view.Status = domain.CollaborationApproved
	}
	view.RespondedAt = &now

	s.notifier.Notify(notification.ProposalResponded(target.ID, target.UserID, proposal.ProposerID, proposal.ID, target.Title, view.Status))
	return view, nil
}

func (s *DefaultService) findIdea(ctx context.Context, id uint64) (*domain.Idea, error) {
	found, err := s.ideas.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Idea not found", err)
		}
		return nil, err
	}
	return found, nil
}

func toView(p domain.CollaborationProposal) (*ProposalView, error) {
	view := &ProposalView{CollaborationProposal: p}
	if len(p.ProposedChanges) > 0 {
		if err := json.Unmarshal(p.ProposedChanges, &view.Changes); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func staleConflict(err error) error {
	if defError.Is(err, ErrStale) {
		return errors.Conflict("Record changed, reload and retry", err)
	}
	return err
}
