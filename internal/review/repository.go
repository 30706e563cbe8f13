package review

import (
	"context"
	"fmt"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/idea"
	"innovation-portal/internal/workflow"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	FindSubject(ctx context.Context, kind Kind, id uint64) (*Subject, error)
	IsCollaborator(ctx context.Context, kind Kind, id, userID uint64) (bool, error)

	CreateReview(ctx context.Context, kind Kind, review *Review) error
	CountReviews(ctx context.Context, kind Kind, id uint64, stage workflow.Stage, round uint) (int64, error)
	ListReviews(ctx context.Context, kind Kind, id uint64) ([]Review, error)

	Decide(ctx context.Context, kind Kind, decision *Decision) error
	ListDecisions(ctx context.Context, kind Kind, id uint64) ([]Decision, error)

	ReviewQueue(ctx context.Context, kind Kind, stage workflow.Stage, reviewerID uint64) ([]Subject, error)
	DecisionQueue(ctx context.Context, kind Kind, deciderID uint64, minReviews int) ([]Subject, error)
}

type ReviewRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ReviewRepository {
	return &ReviewRepositoryImpl{db: db}
}

const subjectColumns = "s.id, s.user_id AS author_id, s.title, s.status, s.current_revision_number AS revision"

// stage of the row's current review status, for correlated subqueries
const currentStage = "CASE s.status WHEN '" + string(workflow.StatusStage1Review) + "' THEN 1 ELSE 2 END"

func (r *ReviewRepositoryImpl) subjects(ctx context.Context, kind Kind) *gorm.DB {
	t := kindTables[kind]
	q := r.db.WithContext(ctx).Table(t.subjects + " AS s").Select(subjectColumns)
	if t.softDelete {
		q = q.Where("s.deleted_at IS NULL")
	}
	return q
}

func (r *ReviewRepositoryImpl) FindSubject(ctx context.Context, kind Kind, id uint64) (*Subject, error) {
	var subject Subject
	res := r.subjects(ctx, kind).Where("s.id = ?", id).Limit(1).Scan(&subject)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	subject.Kind = kind
	return &subject, nil
}

// IsCollaborator is always false for challenge submissions, which have no
// collaboration requests.
func (r *ReviewRepositoryImpl) IsCollaborator(ctx context.Context, kind Kind, id, userID uint64) (bool, error) {
	if kind != KindIdea {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.CollaborationRequest{}).
		Where("idea_id = ? AND requester_id = ? AND status = ?", id, userID, domain.CollaborationApproved).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepositoryImpl) CreateReview(ctx context.Context, kind Kind, review *Review) error {
	db := r.db.WithContext(ctx)
	switch kind {
	case KindIdea:
		row := domain.IdeaReview{
			IdeaID:           review.SubjectID,
			ReviewerID:       review.ReviewerID,
			Stage:            review.Stage,
			Round:            review.Round,
			Recommendation:   review.Recommendation,
			Comments:         review.Comments,
			FeasibilityScore: review.FeasibilityScore,
			ImpactScore:      review.ImpactScore,
			InnovationScore:  review.InnovationScore,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		review.ID, review.CreatedAt = row.ID, row.CreatedAt
	case KindChallenge:
		row := domain.ChallengeReview{
			SubmissionID:     review.SubjectID,
			ReviewerID:       review.ReviewerID,
			Stage:            review.Stage,
			Round:            review.Round,
			Recommendation:   review.Recommendation,
			Comments:         review.Comments,
			FeasibilityScore: review.FeasibilityScore,
			ImpactScore:      review.ImpactScore,
			InnovationScore:  review.InnovationScore,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		review.ID, review.CreatedAt = row.ID, row.CreatedAt
	default:
		return fmt.Errorf("unknown review kind %q", kind)
	}
	return nil
}

func (r *ReviewRepositoryImpl) CountReviews(ctx context.Context, kind Kind, id uint64, stage workflow.Stage, round uint) (int64, error) {
	t := kindTables[kind]
	var n int64
	err := r.db.WithContext(ctx).
		Table(t.reviews).
		Where(t.foreignKey+" = ? AND stage = ? AND round = ?", id, stage, round).
		Count(&n).Error
	return n, err
}

func (r *ReviewRepositoryImpl) ListReviews(ctx context.Context, kind Kind, id uint64) ([]Review, error) {
	t := kindTables[kind]
	var reviews []Review
	err := r.db.WithContext(ctx).
		Table(t.reviews).
		Select("*, "+t.foreignKey+" AS subject_id").
		Where(t.foreignKey+" = ?", id).
		Order("round ASC, stage ASC, created_at ASC, id ASC").
		Scan(&reviews).Error
	return reviews, err
}

// Decide stores the decision and moves the subject from FromStatus to
// ToStatus in one transaction. Ideas also get a version snapshot. A subject
// that already left FromStatus yields workflow.ErrStaleStatus.
func (r *ReviewRepositoryImpl) Decide(ctx context.Context, kind Kind, decision *Decision) error {
	t := kindTables[kind]
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createDecision(tx, kind, decision); err != nil {
			return err
		}

		res := tx.Table(t.subjects).
			Where("id = ? AND status = ?", decision.SubjectID, decision.FromStatus).
			Updates(map[string]interface{}{"status": decision.ToStatus, "updated_at": decision.CreatedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrStaleStatus
		}

		if kind != KindIdea {
			return nil
		}
		var row domain.Idea
		if err := tx.Omit("attachment").First(&row, decision.SubjectID).Error; err != nil {
			return err
		}
		version, err := idea.NewVersion(&row, decision.DeciderID, VersionReason(decision.Decision))
		if err != nil {
			return err
		}
		return tx.Create(version).Error
	})
}

// VersionReason labels the snapshot written with a decision.
func VersionReason(d workflow.Decision) string {
	return "decision:" + string(d)
}

func createDecision(tx *gorm.DB, kind Kind, decision *Decision) error {
	switch kind {
	case KindIdea:
		row := domain.IdeaReviewDecision{
			IdeaID:           decision.SubjectID,
			DeciderID:        decision.DeciderID,
			Stage:            decision.Stage,
			Round:            decision.Round,
			Decision:         decision.Decision,
			CompiledComments: decision.CompiledComments,
			FromStatus:       decision.FromStatus,
			ToStatus:         decision.ToStatus,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		decision.ID, decision.CreatedAt = row.ID, row.CreatedAt
	case KindChallenge:
		row := domain.ChallengeReviewDecision{
			SubmissionID:     decision.SubjectID,
			DeciderID:        decision.DeciderID,
			Stage:            decision.Stage,
			Round:            decision.Round,
			Decision:         decision.Decision,
			CompiledComments: decision.CompiledComments,
			FromStatus:       decision.FromStatus,
			ToStatus:         decision.ToStatus,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		decision.ID, decision.CreatedAt = row.ID, row.CreatedAt
	default:
		return fmt.Errorf("unknown review kind %q", kind)
	}
	return nil
}

func (r *ReviewRepositoryImpl) ListDecisions(ctx context.Context, kind Kind, id uint64) ([]Decision, error) {
	t := kindTables[kind]
	var decisions []Decision
	err := r.db.WithContext(ctx).
		Table(t.decisions).
		Select("*, "+t.foreignKey+" AS subject_id").
		Where(t.foreignKey+" = ?", id).
		Order("created_at ASC, id ASC").
		Scan(&decisions).Error
	return decisions, err
}

// ReviewQueue lists subjects in the stage's review status that the reviewer
// neither authored nor reviewed in the current round.
func (r *ReviewRepositoryImpl) ReviewQueue(ctx context.Context, kind Kind, stage workflow.Stage, reviewerID uint64) ([]Subject, error) {
	var subjects []Subject
	err := reviewQueueQuery(r.subjects(ctx, kind), kind, stage, reviewerID).Scan(&subjects).Error
	return withKind(subjects, kind), err
}

// DecisionQueue lists subjects in review with at least minReviews reviews
// and no decision in the current round.
func (r *ReviewRepositoryImpl) DecisionQueue(ctx context.Context, kind Kind, deciderID uint64, minReviews int) ([]Subject, error) {
	var subjects []Subject
	err := decisionQueueQuery(r.subjects(ctx, kind), kind, deciderID, minReviews).Scan(&subjects).Error
	return withKind(subjects, kind), err
}

// reviewQueueQuery keeps a subject when:
//   - its status is the stage's review status and someone else wrote it
//   - the reviewer has no review row for (stage, current revision)
//
// A review from an earlier round does not hide a resubmitted subject.
func reviewQueueQuery(q *gorm.DB, kind Kind, stage workflow.Stage, reviewerID uint64) *gorm.DB {
	t := kindTables[kind]
	status := workflow.StatusStage1Review
	if stage == workflow.Stage2 {
		status = workflow.StatusStage2Review
	}

	return q.
		Where("s.status = ? AND s.user_id <> ?", status, reviewerID).
		Where(fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s r WHERE r.%s = s.id AND r.reviewer_id = ? AND r.stage = ? AND r.round = s.current_revision_number)",
			t.reviews, t.foreignKey), reviewerID, stage).
		Order("s.submitted_at ASC, s.id ASC")
}

// decisionQueueQuery keeps a subject when:
//   - it is in stage_1_review or stage_2_review and the decider did not write it
//   - reviews for its current stage and revision number at least minReviews
//   - no decision exists yet for that stage and revision
//
// Both subqueries derive the stage from the row's own status, so stage 1
// reviews never count toward a stage 2 decision.
func decisionQueueQuery(q *gorm.DB, kind Kind, deciderID uint64, minReviews int) *gorm.DB {
	t := kindTables[kind]
	return q.
		Where("s.status IN ? AND s.user_id <> ?", []workflow.Status{workflow.StatusStage1Review, workflow.StatusStage2Review}, deciderID).
		Where(fmt.Sprintf(
			"(SELECT COUNT(*) FROM %s r WHERE r.%s = s.id AND r.stage = %s AND r.round = s.current_revision_number) >= ?",
			t.reviews, t.foreignKey, currentStage), minReviews).
		Where(fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s d WHERE d.%s = s.id AND d.stage = %s AND d.round = s.current_revision_number)",
			t.decisions, t.foreignKey, currentStage)).
		Order("s.submitted_at ASC, s.id ASC")
}

func withKind(subjects []Subject, kind Kind) []Subject {
	for i := range subjects {
		subjects[i].Kind = kind
	}
	return subjects
}
