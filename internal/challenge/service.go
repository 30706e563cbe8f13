package challenge

import (
	"context"
	defError "errors"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/utils"
	"innovation-portal/internal/workflow"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Service interface {
	CreateChallenge(ctx context.Context, actor workflow.Actor, input ChallengeInput) (*domain.Challenge, error)
	UpdateChallenge(ctx context.Context, actor workflow.Actor, id uint64, input ChallengeInput) (*domain.Challenge, error)
	CloseChallenge(ctx context.Context, actor workflow.Actor, id uint64) (*domain.Challenge, error)
	ShowChallenge(ctx context.Context, id uint64) (*domain.Challenge, error)
	ListChallenges(ctx context.Context, openOnly bool, page, pageSize int) (*ChallengePage, error)

	CreateSubmission(ctx context.Context, actor workflow.Actor, challengeID uint64, input SubmissionInput) (*domain.ChallengeSubmission, error)
	UpdateSubmission(ctx context.Context, actor workflow.Actor, id uint64, input SubmissionInput) (*domain.ChallengeSubmission, error)
	ShowSubmission(ctx context.Context, actor workflow.Actor, id uint64) (*domain.ChallengeSubmission, error)
	ListSubmissions(ctx context.Context, actor workflow.Actor, challengeID uint64, page, pageSize int) (*SubmissionPage, error)
	ListMySubmissions(ctx context.Context, actor workflow.Actor) ([]domain.ChallengeSubmission, error)
	Submit(ctx context.Context, actor workflow.Actor, id uint64) (*domain.ChallengeSubmission, error)
}

type ChallengeInput struct {
	Title         string
	Description   string
	ThematicAreas []string
	Deadline      time.Time
}

type SubmissionInput struct {
	Title    string
	Summary  string
	Solution string
	Members  []domain.CollaborationMember
}

type ChallengePage struct {
	Data []domain.Challenge `json:"data"`
	Meta utils.PageMeta     `json:"meta"`
}

type SubmissionPage struct {
	Data []domain.ChallengeSubmission `json:"data"`
	Meta utils.PageMeta               `json:"meta"`
}

type DefaultService struct {
	repository ChallengeRepository
	notifier   notification.Notifier
	now        func() time.Time
}

func NewService(repository ChallengeRepository, notifier notification.Notifier) Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &DefaultService{repository: repository, notifier: notifier, now: time.Now}
}

func (s *DefaultService) CreateChallenge(ctx context.Context, actor workflow.Actor, input ChallengeInput) (*domain.Challenge, error) {
	if !actor.Can(workflow.PermManageChallenge) {
		return nil, errors.Forbidden("You can't manage challenges", nil)
	}
	if !input.Deadline.After(s.now()) {
		return nil, errors.UnprocessableEntity("Deadline must be in the future", nil)
	}

	challenge := &domain.Challenge{
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		ThematicAreas: pq.StringArray(trimAll(input.ThematicAreas)),
		Deadline:      input.Deadline,
		IsOpen:        true,
		CreatedByID:   actor.ID,
	}
	if err := s.repository.Create(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *DefaultService) UpdateChallenge(ctx context.Context, actor workflow.Actor, id uint64, input ChallengeInput) (*domain.Challenge, error) {
	if !actor.Can(workflow.PermManageChallenge) {
		return nil, errors.Forbidden("You can't manage challenges", nil)
	}
	challenge, err := s.findChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	challenge.Title = strings.TrimSpace(input.Title)
	challenge.Description = input.Description
	challenge.ThematicAreas = pq.StringArray(trimAll(input.ThematicAreas))
	challenge.Deadline = input.Deadline
	if err := s.repository.Update(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// CloseChallenge stops new submissions. Submissions already in review
// continue through the workflow.
func (s *DefaultService) CloseChallenge(ctx context.Context, actor workflow.Actor, id uint64) (*domain.Challenge, error) {
	if !actor.Can(workflow.PermManageChallenge) {
		return nil, errors.Forbidden("You can't manage challenges", nil)
	}
	challenge, err := s.findChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if !challenge.IsOpen {
		return challenge, nil
	}
	if err := s.repository.Close(ctx, id); err != nil {
		return nil, err
	}
	challenge.IsOpen = false
	return challenge, nil
}

func (s *DefaultService) ShowChallenge(ctx context.Context, id uint64) (*domain.Challenge, error) {
	return s.findChallenge(ctx, id)
}

func (s *DefaultService) ListChallenges(ctx context.Context, openOnly bool, page, pageSize int) (*ChallengePage, error) {
	challenges, total, err := s.repository.List(ctx, openOnly, utils.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, err
	}
	if challenges == nil {
		challenges = []domain.Challenge{}
	}
	return &ChallengePage{Data: challenges, Meta: utils.NewPageMeta(total, page, pageSize)}, nil
}

func (s *DefaultService) CreateSubmission(ctx context.Context, actor workflow.Actor, challengeID uint64, input SubmissionInput) (*domain.ChallengeSubmission, error) {
	if !actor.Can(workflow.PermCreateIdea) {
		return nil, errors.Forbidden("You can't submit to challenges", nil)
	}
	challenge, err := s.findChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.AcceptsSubmissions(s.now()) {
		return nil, errors.Conflict("Challenge is closed for submissions", nil)
	}

	submission := &domain.ChallengeSubmission{
		ChallengeID: challengeID,
		UserID:      actor.ID,
		Title:       strings.TrimSpace(input.Title),
		Summary:     input.Summary,
		Solution:    input.Solution,
		Members:     input.Members,
	}
	if err := s.repository.CreateSubmission(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *DefaultService) UpdateSubmission(ctx context.Context, actor workflow.Actor, id uint64, input SubmissionInput) (*domain.ChallengeSubmission, error) {
	submission, err := s.findSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.CanEdit(actor, submission.Subject()); err != nil {
		return nil, errors.FromWorkflow(err)
	}

	submission.Title = strings.TrimSpace(input.Title)
	submission.Summary = input.Summary
	submission.Solution = input.Solution
	submission.Members = input.Members
	if err := s.repository.UpdateSubmission(ctx, submission, submission.Status); err != nil {
		return nil, errors.FromWorkflow(err)
	}
	return submission, nil
}

func (s *DefaultService) ShowSubmission(ctx context.Context, actor workflow.Actor, id uint64) (*domain.ChallengeSubmission, error) {
	submission, err := s.findSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.CanView(actor, submission.Subject(), false) {
		return nil, errors.NotFound("Submission not found", nil)
	}
	return submission, nil
}

// ListSubmissions is for managers and reviewers; authors use ListMySubmissions.
func (s *DefaultService) ListSubmissions(ctx context.Context, actor workflow.Actor, challengeID uint64, page, pageSize int) (*SubmissionPage, error) {
	if !actor.Can(workflow.PermViewAll) {
		return nil, errors.Forbidden("You can't list challenge submissions", nil)
	}
	if _, err := s.findChallenge(ctx, challengeID); err != nil {
		return nil, err
	}

	submissions, total, err := s.repository.ListSubmissions(ctx, challengeID, utils.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, err
	}
	if submissions == nil {
		submissions = []domain.ChallengeSubmission{}
	}
	return &SubmissionPage{Data: submissions, Meta: utils.NewPageMeta(total, page, pageSize)}, nil
}

func (s *DefaultService) ListMySubmissions(ctx context.Context, actor workflow.Actor) ([]domain.ChallengeSubmission, error) {
	submissions, err := s.repository.ListSubmissionsByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if submissions == nil {
		submissions = []domain.ChallengeSubmission{}
	}
	return submissions, nil
}

// Submit enters review. A draft may only be submitted while the challenge
// accepts submissions; revised submissions may always be resubmitted.
func (s *DefaultService) Submit(ctx context.Context, actor workflow.Actor, id uint64) (*domain.ChallengeSubmission, error) {
	submission, err := s.findSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := workflow.CanSubmit(actor, submission.Subject())
	if err != nil {
		return nil, errors.FromWorkflow(err)
	}
	if strings.TrimSpace(submission.Summary) == "" || strings.TrimSpace(submission.Solution) == "" {
		return nil, errors.UnprocessableEntity("Summary and solution are required before submitting", nil)
	}

	now := s.now()
	if submission.Status == workflow.StatusDraft {
		challenge, err := s.findChallenge(ctx, submission.ChallengeID)
		if err != nil {
			return nil, err
		}
		if !challenge.AcceptsSubmissions(now) {
			return nil, errors.Conflict("Challenge is closed for submissions", nil)
		}
	}

	from := submission.Status
	submission.Status = next
	submission.CurrentRevisionNumber++
	submission.SubmittedAt = &now
	if err := s.repository.SubmitSubmission(ctx, submission, from); err != nil {
		return nil, errors.FromWorkflow(err)
	}

	s.notifier.Notify(notification.Submitted(notification.SubjectSubmission, submission.ID, submission.UserID, submission.Title, next))
	return submission, nil
}

func (s *DefaultService) findChallenge(ctx context.Context, id uint64) (*domain.Challenge, error) {
	challenge, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Challenge not found", err)
		}
		return nil, err
	}
	return challenge, nil
}

func (s *DefaultService) findSubmission(ctx context.Context, id uint64) (*domain.ChallengeSubmission, error) {
	submission, err := s.repository.FindSubmission(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Submission not found", err)
		}
		return nil, err
	}
	return submission, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
