package challenge

import (
	"context"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/workflow"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, challenge *domain.Challenge) error {
	return m.Called(ctx, challenge).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Challenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, challenge *domain.Challenge) error {
	return m.Called(ctx, challenge).Error(0)
}

func (m *MockRepository) Close(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) List(ctx context.Context, openOnly bool, offset, limit int) ([]domain.Challenge, int64, error) {
	args := m.Called(ctx, openOnly, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Challenge), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CreateSubmission(ctx context.Context, submission *domain.ChallengeSubmission) error {
	return m.Called(ctx, submission).Error(0)
}

func (m *MockRepository) FindSubmission(ctx context.Context, id uint64) (*domain.ChallengeSubmission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChallengeSubmission), args.Error(1)
}

func (m *MockRepository) UpdateSubmission(ctx context.Context, submission *domain.ChallengeSubmission, from workflow.Status) error {
	return m.Called(ctx, submission, from).Error(0)
}

func (m *MockRepository) ListSubmissions(ctx context.Context, challengeID uint64, offset, limit int) ([]domain.ChallengeSubmission, int64, error) {
	args := m.Called(ctx, challengeID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ChallengeSubmission), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListSubmissionsByUser(ctx context.Context, userID uint64) ([]domain.ChallengeSubmission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChallengeSubmission), args.Error(1)
}

func (m *MockRepository) SubmitSubmission(ctx context.Context, submission *domain.ChallengeSubmission, from workflow.Status) error {
	return m.Called(ctx, submission, from).Error(0)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recordingNotifier) Notify(e notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}
