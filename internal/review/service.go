package review

import (
	"context"
	defError "errors"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/idea"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/workflow"
	"innovation-portal/redis"
	"strings"

	"gorm.io/gorm"
)

type Service interface {
	SubmitReview(ctx context.Context, actor workflow.Actor, kind Kind, id uint64, input ReviewInput) (*Review, error)
	ListReviews(ctx context.Context, actor workflow.Actor, kind Kind, id uint64) ([]Review, error)
	Decide(ctx context.Context, actor workflow.Actor, kind Kind, id uint64, input DecisionInput) (*Decision, error)
	ListDecisions(ctx context.Context, actor workflow.Actor, kind Kind, id uint64) ([]Decision, error)
	Queue(ctx context.Context, actor workflow.Actor) (*Queue, error)
}

type ReviewInput struct {
	Recommendation   workflow.Decision
	Comments         string
	FeasibilityScore *uint8
	ImpactScore      *uint8
	InnovationScore  *uint8
}

type DecisionInput struct {
	Decision         workflow.Decision
	CompiledComments string
}

// Queue is what is waiting on the actor: subjects to review and, for the
// Deputy Director, subjects ready for a decision.
type Queue struct {
	Reviews   []Subject `json:"reviews"`
	Decisions []Subject `json:"decisions"`
}

type DefaultService struct {
	repository ReviewRepository
	cache      *redis.Cache
	notifier   notification.Notifier
	minReviews int
}

func NewService(repository ReviewRepository, cache *redis.Cache, notifier notification.Notifier, minReviews int) Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	if minReviews < 1 {
		minReviews = 1
	}
	return &DefaultService{
		repository: repository,
		cache:      cache,
		notifier:   notifier,
		minReviews: minReviews,
	}
}

// SubmitReview files the actor's recommendation for the subject's current
// stage and round.
func (s *DefaultService) SubmitReview(ctx context.Context, actor workflow.Actor, kind Kind, id uint64, input ReviewInput) (*Review, error) {
	subject, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.CanReview(actor, subject.workflow()); err != nil {
		return nil, errors.FromWorkflow(err)
	}

	review := &Review{
		SubjectID:        subject.ID,
		ReviewerID:       actor.ID,
		Stage:            subject.workflow().Stage(),
		Round:            subject.Revision,
		Recommendation:   input.Recommendation,
		Comments:         strings.TrimSpace(input.Comments),
		FeasibilityScore: input.FeasibilityScore,
		ImpactScore:      input.ImpactScore,
		InnovationScore:  input.InnovationScore,
	}
	if err := s.repository.CreateReview(ctx, kind, review); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("You already reviewed this round", err)
		}
		return nil, err
	}
	return review, nil
}

// ListReviews returns every review to reviewers and the Deputy Director.
// Authors only see rounds that were decided, without reviewer identity, even
// when they also hold a reviewer role.
func (s *DefaultService) ListReviews(ctx context.Context, actor workflow.Actor, kind Kind, id uint64) ([]Review, error) {
	subject, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repository.ListReviews(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []Review{}
	}

	if actor.ID != subject.AuthorID {
		if isStaff(actor) {
			return reviews, nil
		}
		visible, err := s.canView(ctx, actor, subject)
		if err != nil {
			return nil, err
		}
		if !visible {
			return nil, errors.NotFound("Submission not found", nil)
		}
		return nil, errors.Forbidden("Reviews are only visible to reviewers and the author", nil)
	}

	decisions, err := s.repository.ListDecisions(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	decided := make(map[roundKey]bool, len(decisions))
	for _, d := range decisions {
		decided[roundKey{d.Stage, d.Round}] = true
	}

	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if !decided[roundKey{r.Stage, r.Round}] {
			continue
		}
		r.ReviewerID = 0
		out = append(out, r)
	}
	return out, nil
}

type roundKey struct {
	stage workflow.Stage
	round uint
}

// Decide records the Deputy Director's compiled decision for the current
// round and moves the subject along the transition table.
func (s *DefaultService) Decide(ctx context.Context, actor workflow.Actor, kind Kind, id uint64, input DecisionInput) (*Decision, error) {
	subject, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	ws := subject.workflow()

	count, err := s.repository.CountReviews(ctx, kind, id, ws.Stage(), ws.Revision)
	if err != nil {
		return nil, err
	}
	if err := workflow.CanDecide(actor, ws, count, s.minReviews); err != nil {
		return nil, errors.FromWorkflow(err)
	}
	next, err := workflow.Apply(ws.Status, input.Decision)
	if err != nil {
		return nil, errors.FromWorkflow(err)
	}

	decision := &Decision{
		SubjectID:        subject.ID,
		DeciderID:        actor.ID,
		Stage:            ws.Stage(),
		Round:            ws.Revision,
		Decision:         input.Decision,
		CompiledComments: strings.TrimSpace(input.CompiledComments),
		FromStatus:       ws.Status,
		ToStatus:         next,
	}
	if err := s.repository.Decide(ctx, kind, decision); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("This round was already decided", err)
		}
		return nil, errors.FromWorkflow(err)
	}

	if kind == KindIdea {
		idea.InvalidateLists(ctx, s.cache, subject.AuthorID, next == workflow.StatusApproved)
	}
	s.notifier.Notify(notification.DecisionRecorded(
		kind.notificationSubject(), subject.ID, subject.AuthorID, actor.ID,
		subject.Title, input.Decision, ws.Status, next,
	))
	return decision, nil
}

func (s *DefaultService) ListDecisions(ctx context.Context, actor workflow.Actor, kind Kind, id uint64) ([]Decision, error) {
	subject, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	visible, err := s.canView(ctx, actor, subject)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errors.NotFound("Submission not found", nil)
	}

	decisions, err := s.repository.ListDecisions(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if decisions == nil {
		decisions = []Decision{}
	}
	return decisions, nil
}

func (s *DefaultService) Queue(ctx context.Context, actor workflow.Actor) (*Queue, error) {
	queue := &Queue{Reviews: []Subject{}, Decisions: []Subject{}}

	for _, stage := range []workflow.Stage{workflow.Stage1, workflow.Stage2} {
		if !actor.Can(workflow.ReviewPermission(stage)) {
			continue
		}
		for _, kind := range Kinds {
			subjects, err := s.repository.ReviewQueue(ctx, kind, stage, actor.ID)
			if err != nil {
				return nil, err
			}
			queue.Reviews = append(queue.Reviews, subjects...)
		}
	}

	if actor.Can(workflow.PermRecordDecision) {
		for _, kind := range Kinds {
			subjects, err := s.repository.DecisionQueue(ctx, kind, actor.ID, s.minReviews)
			if err != nil {
				return nil, err
			}
			queue.Decisions = append(queue.Decisions, subjects...)
		}
	}
	return queue, nil
}

func (s *DefaultService) find(ctx context.Context, kind Kind, id uint64) (*Subject, error) {
	if _, ok := kindTables[kind]; !ok {
		return nil, errors.NotFound("Unknown submission kind", nil)
	}
	subject, err := s.repository.FindSubject(ctx, kind, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Submission not found", err)
		}
		return nil, err
	}
	return subject, nil
}

func (s *DefaultService) canView(ctx context.Context, actor workflow.Actor, subject *Subject) (bool, error) {
	if workflow.CanView(actor, subject.workflow(), false) {
		return true, nil
	}
	return s.repository.IsCollaborator(ctx, subject.Kind, subject.ID, actor.ID)
}

func isStaff(actor workflow.Actor) bool {
	return actor.Can(workflow.PermReviewStage1) ||
		actor.Can(workflow.PermReviewStage2) ||
		actor.Can(workflow.PermRecordDecision)
}
