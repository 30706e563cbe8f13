package collaboration

import (
	"context"
	"errors"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/workflow"
	"time"

	"gorm.io/gorm"
)

// ErrStale is returned when the request, proposal or idea changed between
// reading and writing.
var ErrStale = errors.New("collaboration record changed, reload and retry")

type CollaborationRepository interface {
	CreateRequest(ctx context.Context, request *domain.CollaborationRequest) error
	FindRequest(ctx context.Context, id uint64) (*domain.CollaborationRequest, error)
	FindOpenRequest(ctx context.Context, ideaID, requesterID uint64) (*domain.CollaborationRequest, error)
	ListRequests(ctx context.Context, ideaID uint64) ([]domain.CollaborationRequest, error)
	ListRequestsBy(ctx context.Context, ideaID, requesterID uint64) ([]domain.CollaborationRequest, error)
	RespondRequest(ctx context.Context, id uint64, status string, at time.Time) error

	CreateProposal(ctx context.Context, proposal *domain.CollaborationProposal) error
	FindProposal(ctx context.Context, id uint64) (*domain.CollaborationProposal, error)
	ListProposals(ctx context.Context, ideaID uint64) ([]domain.CollaborationProposal, error)
	RejectProposal(ctx context.Context, id uint64, at time.Time) error
	AcceptProposal(ctx context.Context, proposal *domain.CollaborationProposal, idea *domain.Idea, version *domain.IdeaVersion, at time.Time) error
}

type CollaborationRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CollaborationRepository {
	return &CollaborationRepositoryImpl{db: db}
}

func (r *CollaborationRepositoryImpl) CreateRequest(ctx context.Context, request *domain.CollaborationRequest) error {
	request.Status = domain.CollaborationPending
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *CollaborationRepositoryImpl) FindRequest(ctx context.Context, id uint64) (*domain.CollaborationRequest, error) {
	var request domain.CollaborationRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindOpenRequest returns the requester's pending or approved request on the
// idea. A rejected request does not block asking again.
func (r *CollaborationRepositoryImpl) FindOpenRequest(ctx context.Context, ideaID, requesterID uint64) (*domain.CollaborationRequest, error) {
	var request domain.CollaborationRequest
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND requester_id = ? AND status IN ?", ideaID, requesterID,
			[]string{domain.CollaborationPending, domain.CollaborationApproved}).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *CollaborationRepositoryImpl) ListRequests(ctx context.Context, ideaID uint64) ([]domain.CollaborationRequest, error) {
	var requests []domain.CollaborationRequest
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *CollaborationRepositoryImpl) ListRequestsBy(ctx context.Context, ideaID, requesterID uint64) ([]domain.CollaborationRequest, error) {
	var requests []domain.CollaborationRequest
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND requester_id = ?", ideaID, requesterID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

// RespondRequest settles a pending request. Already settled requests yield
// ErrStale.
func (r *CollaborationRepositoryImpl) RespondRequest(ctx context.Context, id uint64, status string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.CollaborationRequest{}).
		Where("id = ? AND status = ?", id, domain.CollaborationPending).
		Updates(map[string]interface{}{"status": status, "responded_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *CollaborationRepositoryImpl) CreateProposal(ctx context.Context, proposal *domain.CollaborationProposal) error {
	proposal.Status = domain.CollaborationPending
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *CollaborationRepositoryImpl) FindProposal(ctx context.Context, id uint64) (*domain.CollaborationProposal, error) {
	var proposal domain.CollaborationProposal
	if err := r.db.WithContext(ctx).First(&proposal, id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *CollaborationRepositoryImpl) ListProposals(ctx context.Context, ideaID uint64) ([]domain.CollaborationProposal, error) {
	var proposals []domain.CollaborationProposal
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at DESC, id DESC").
		Find(&proposals).Error
	return proposals, err
}

func (r *CollaborationRepositoryImpl) RejectProposal(ctx context.Context, id uint64, at time.Time) error {
	return settleProposal(r.db.WithContext(ctx), id, domain.CollaborationRejected, at)
}

// AcceptProposal writes the proposed content onto the idea, stores the
// version and settles the proposal in one transaction. The idea must still
// be editable and at the proposal's base revision.
func (r *CollaborationRepositoryImpl) AcceptProposal(ctx context.Context, proposal *domain.CollaborationProposal, idea *domain.Idea, version *domain.IdeaVersion, at time.Time) error {
	editable := []workflow.Status{workflow.StatusDraft, workflow.StatusStage1Revise, workflow.StatusStage2Revise}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Idea{}).
			Where("id = ? AND current_revision_number = ? AND status IN ?", idea.ID, proposal.BaseRevision, editable).
			Updates(map[string]interface{}{
				"title":                   idea.Title,
				"thematic_area":           idea.ThematicArea,
				"problem_statement":       idea.ProblemStatement,
				"proposed_solution":       idea.ProposedSolution,
				"expected_impact":         idea.ExpectedImpact,
				"implementation_plan":     idea.ImplementationPlan,
				"keywords":                idea.Keywords,
				"current_revision_number": idea.CurrentRevisionNumber,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}
		if err := tx.Create(version).Error; err != nil {
			return err
		}
		return settleProposal(tx, proposal.ID, domain.CollaborationApproved, at)
	})
}

func settleProposal(db *gorm.DB, id uint64, status string, at time.Time) error {
	res := db.Model(&domain.CollaborationProposal{}).
		Where("id = ? AND status = ?", id, domain.CollaborationPending).
		Updates(map[string]interface{}{"status": status, "responded_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
