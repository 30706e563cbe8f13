package challenge

import (
	"context"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/workflow"

	"gorm.io/gorm"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *domain.Challenge) error
	FindByID(ctx context.Context, id uint64) (*domain.Challenge, error)
	Update(ctx context.Context, challenge *domain.Challenge) error
	Close(ctx context.Context, id uint64) error
	List(ctx context.Context, openOnly bool, offset, limit int) ([]domain.Challenge, int64, error)

	CreateSubmission(ctx context.Context, submission *domain.ChallengeSubmission) error
	FindSubmission(ctx context.Context, id uint64) (*domain.ChallengeSubmission, error)
	UpdateSubmission(ctx context.Context, submission *domain.ChallengeSubmission, from workflow.Status) error
	ListSubmissions(ctx context.Context, challengeID uint64, offset, limit int) ([]domain.ChallengeSubmission, int64, error)
	ListSubmissionsByUser(ctx context.Context, userID uint64) ([]domain.ChallengeSubmission, error)
	SubmitSubmission(ctx context.Context, submission *domain.ChallengeSubmission, from workflow.Status) error
}

type ChallengeRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ChallengeRepository {
	return &ChallengeRepositoryImpl{db: db}
}

func (r *ChallengeRepositoryImpl) Create(ctx context.Context, challenge *domain.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *ChallengeRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Challenge, error) {
	var challenge domain.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepositoryImpl) Update(ctx context.Context, challenge *domain.Challenge) error {
	return r.db.WithContext(ctx).
		Model(&domain.Challenge{ID: challenge.ID}).
		Select("title", "description", "thematic_areas", "deadline").
		Updates(challenge).Error
}

func (r *ChallengeRepositoryImpl) Close(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Challenge{ID: id}).
		Update("is_open", false).Error
}

func (r *ChallengeRepositoryImpl) List(ctx context.Context, openOnly bool, offset, limit int) ([]domain.Challenge, int64, error) {
	var (
		challenges []domain.Challenge
		total      int64
	)
	q := r.db.WithContext(ctx).Model(&domain.Challenge{})
	if openOnly {
		q = q.Where("is_open = ? AND deadline > NOW()", true)
	}
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("deadline ASC, id ASC").Offset(offset).Limit(limit).Find(&challenges).Error
	return challenges, total, err
}

func (r *ChallengeRepositoryImpl) CreateSubmission(ctx context.Context, submission *domain.ChallengeSubmission) error {
	submission.Status = workflow.StatusDraft
	submission.CurrentRevisionNumber = 0
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *ChallengeRepositoryImpl) FindSubmission(ctx context.Context, id uint64) (*domain.ChallengeSubmission, error) {
	var submission domain.ChallengeSubmission
	err := r.db.WithContext(ctx).Preload("Members").First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpdateSubmission writes the content and replaces the members wholesale,
// provided the submission is still in from.
func (r *ChallengeRepositoryImpl) UpdateSubmission(ctx context.Context, submission *domain.ChallengeSubmission, from workflow.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.ChallengeSubmission{ID: submission.ID}).
			Where("status = ?", from).
			Select("title", "summary", "solution").
			Updates(submission)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrStaleStatus
		}

		if err := tx.Where("submission_id = ?", submission.ID).Delete(&domain.CollaborationMember{}).Error; err != nil {
			return err
		}
		for i := range submission.Members {
			submission.Members[i].ID = 0
			submission.Members[i].SubmissionID = submission.ID
		}
		if len(submission.Members) > 0 {
			return tx.Create(&submission.Members).Error
		}
		return nil
	})
}

func (r *ChallengeRepositoryImpl) ListSubmissions(ctx context.Context, challengeID uint64, offset, limit int) ([]domain.ChallengeSubmission, int64, error) {
	var (
		submissions []domain.ChallengeSubmission
		total       int64
	)
	q := r.db.WithContext(ctx).Model(&domain.ChallengeSubmission{}).Where("challenge_id = ?", challengeID)
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Members").Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&submissions).Error
	return submissions, total, err
}

func (r *ChallengeRepositoryImpl) ListSubmissionsByUser(ctx context.Context, userID uint64) ([]domain.ChallengeSubmission, error) {
	var submissions []domain.ChallengeSubmission
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *ChallengeRepositoryImpl) SubmitSubmission(ctx context.Context, submission *domain.ChallengeSubmission, from workflow.Status) error {
	res := r.db.WithContext(ctx).
		Model(&domain.ChallengeSubmission{}).
		Where("id = ? AND status = ?", submission.ID, from).
		Updates(map[string]interface{}{
			"status":                  submission.Status,
			"current_revision_number": submission.CurrentRevisionNumber,
			"submitted_at":            submission.SubmittedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return workflow.ErrStaleStatus
	}
	return nil
}
