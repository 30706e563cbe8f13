package review

import (
	"context"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/workflow"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindSubject(ctx context.Context, kind Kind, id uint64) (*Subject, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subject), args.Error(1)
}

func (m *MockRepository) IsCollaborator(ctx context.Context, kind Kind, id, userID uint64) (bool, error) {
	args := m.Called(ctx, kind, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CreateReview(ctx context.Context, kind Kind, review *Review) error {
	return m.Called(ctx, kind, review).Error(0)
}

func (m *MockRepository) CountReviews(ctx context.Context, kind Kind, id uint64, stage workflow.Stage, round uint) (int64, error) {
	args := m.Called(ctx, kind, id, stage, round)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListReviews(ctx context.Context, kind Kind, id uint64) ([]Review, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Review), args.Error(1)
}

func (m *MockRepository) Decide(ctx context.Context, kind Kind, decision *Decision) error {
	return m.Called(ctx, kind, decision).Error(0)
}

func (m *MockRepository) ListDecisions(ctx context.Context, kind Kind, id uint64) ([]Decision, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Decision), args.Error(1)
}

func (m *MockRepository) ReviewQueue(ctx context.Context, kind Kind, stage workflow.Stage, reviewerID uint64) ([]Subject, error) {
	args := m.Called(ctx, kind, stage, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Subject), args.Error(1)
}

func (m *MockRepository) DecisionQueue(ctx context.Context, kind Kind, deciderID uint64, minReviews int) ([]Subject, error) {
	args := m.Called(ctx, kind, deciderID, minReviews)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Subject), args.Error(1)
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
