package idea

import (
	"context"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/workflow"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdeaRepository interface {
	Create(ctx context.Context, idea *domain.Idea) error
	FindByID(ctx context.Context, id uint64) (*domain.Idea, error)
	Update(ctx context.Context, idea *domain.Idea, from workflow.Status) error
	Delete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]domain.Idea, int64, error)
	ListByStatus(ctx context.Context, status workflow.Status, offset, limit int) ([]domain.Idea, int64, error)
	Submit(ctx context.Context, idea *domain.Idea, from workflow.Status, version *domain.IdeaVersion) error
	SetAttachment(ctx context.Context, id uint64, from workflow.Status, name, mime string, data []byte) error
	FindAttachment(ctx context.Context, id uint64) (*domain.Idea, error)
	ListVersions(ctx context.Context, ideaID uint64) ([]domain.IdeaVersion, error)
	IsCollaborator(ctx context.Context, ideaID, userID uint64) (bool, error)

	CreateComment(ctx context.Context, comment *domain.Comment) error
	ListComments(ctx context.Context, ideaID uint64) ([]domain.Comment, error)
	FindComment(ctx context.Context, ideaID, commentID uint64) (*domain.Comment, error)
	MarkCommentDeleted(ctx context.Context, commentID uint64) error

	ToggleLike(ctx context.Context, ideaID, userID uint64) (bool, error)
	CountLikes(ctx context.Context, ideaID uint64) (int64, error)
	HasLiked(ctx context.Context, ideaID, userID uint64) (bool, error)
}

type IdeaRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) IdeaRepository {
	return &IdeaRepositoryImpl{db: db}
}

func (r *IdeaRepositoryImpl) Create(ctx context.Context, idea *domain.Idea) error {
	idea.Status = workflow.StatusDraft
	idea.CurrentRevisionNumber = 0
	return r.db.WithContext(ctx).Create(idea).Error
}

// FindByID loads the idea and its team without the attachment bytes.
func (r *IdeaRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Idea, error) {
	var idea domain.Idea
	err := r.db.WithContext(ctx).
		Omit("attachment").
		Preload("TeamMembers").
		First(&idea, id).Error
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// Update writes the editable content and replaces the team wholesale. The
// write only lands while the idea is still in from.
func (r *IdeaRepositoryImpl) Update(ctx context.Context, idea *domain.Idea, from workflow.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Idea{ID: idea.ID}).
			Where("status = ?", from).
			Select("title", "thematic_area", "problem_statement", "proposed_solution",
				"expected_impact", "implementation_plan", "keywords").
			Updates(idea)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrStaleStatus
		}

		if err := tx.Where("idea_id = ?", idea.ID).Delete(&domain.TeamMember{}).Error; err != nil {
			return err
		}
		for i := range idea.TeamMembers {
			idea.TeamMembers[i].ID = 0
			idea.TeamMembers[i].IdeaID = idea.ID
		}
		if len(idea.TeamMembers) > 0 {
			return tx.Create(&idea.TeamMembers).Error
		}
		return nil
	})
}

func (r *IdeaRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Idea{}, id).Error
}

func (r *IdeaRepositoryImpl) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]domain.Idea, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), offset, limit)
}

func (r *IdeaRepositoryImpl) ListByStatus(ctx context.Context, status workflow.Status, offset, limit int) ([]domain.Idea, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", status), offset, limit)
}

func (r *IdeaRepositoryImpl) list(ctx context.Context, q *gorm.DB, offset, limit int) ([]domain.Idea, int64, error) {
	var (
		ideas []domain.Idea
		total int64
	)
	if err := q.Session(&gorm.Session{}).Model(&domain.Idea{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Omit("attachment").
		Order("updated_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&ideas).Error
	return ideas, total, err
}

// Submit moves the idea only if it is still in from, and stores the version
// snapshot in the same transaction.
func (r *IdeaRepositoryImpl) Submit(ctx context.Context, idea *domain.Idea, from workflow.Status, version *domain.IdeaVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Idea{}).
			Where("id = ? AND status = ?", idea.ID, from).
			Updates(map[string]interface{}{
				"status":                  idea.Status,
				"current_revision_number": idea.CurrentRevisionNumber,
				"submitted_at":            idea.SubmittedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrStaleStatus
		}
		return tx.Create(version).Error
	})
}

func (r *IdeaRepositoryImpl) SetAttachment(ctx context.Context, id uint64, from workflow.Status, name, mime string, data []byte) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Idea{ID: id}).
		Where("status = ?", from).
		Updates(map[string]interface{}{
			"attachment":      data,
			"attachment_name": name,
			"attachment_mime": mime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return workflow.ErrStaleStatus
	}
	return nil
}

func (r *IdeaRepositoryImpl) FindAttachment(ctx context.Context, id uint64) (*domain.Idea, error) {
	var idea domain.Idea
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "status", "current_revision_number", "attachment", "attachment_name", "attachment_mime").
		First(&idea, id).Error
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

func (r *IdeaRepositoryImpl) ListVersions(ctx context.Context, ideaID uint64) ([]domain.IdeaVersion, error) {
	var versions []domain.IdeaVersion
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("version ASC, id ASC").
		Find(&versions).Error
	return versions, err
}

func (r *IdeaRepositoryImpl) IsCollaborator(ctx context.Context, ideaID, userID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.CollaborationRequest{}).
		Where("idea_id = ? AND requester_id = ? AND status = ?", ideaID, userID, domain.CollaborationApproved).
		Count(&n).Error
	return n > 0, err
}

func (r *IdeaRepositoryImpl) CreateComment(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *IdeaRepositoryImpl) ListComments(ctx context.Context, ideaID uint64) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("idea_id = ?", ideaID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *IdeaRepositoryImpl) FindComment(ctx context.Context, ideaID, commentID uint64) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		First(&comment, commentID).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *IdeaRepositoryImpl) MarkCommentDeleted(ctx context.Context, commentID uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Comment{ID: commentID}).
		Updates(map[string]interface{}{
			"content":    domain.DeletedCommentContent,
			"is_deleted": true,
			"updated_at": time.Now(),
		}).Error
}

// ToggleLike removes the user's like or adds one, reporting the new state.
// The unique index settles concurrent double-likes.
func (r *IdeaRepositoryImpl) ToggleLike(ctx context.Context, ideaID, userID uint64) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("idea_id = ? AND user_id = ?", ideaID, userID).Delete(&domain.IdeaLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.IdeaLike{IdeaID: ideaID, UserID: userID}).Error
	})
	return liked, err
}

func (r *IdeaRepositoryImpl) CountLikes(ctx context.Context, ideaID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.IdeaLike{}).Where("idea_id = ?", ideaID).Count(&n).Error
	return n, err
}

func (r *IdeaRepositoryImpl) HasLiked(ctx context.Context, ideaID, userID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.IdeaLike{}).
		Where("idea_id = ? AND user_id = ?", ideaID, userID).
		Count(&n).Error
	return n > 0, err
}
