package collaboration

import (
	"context"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/idea"
	"innovation-portal/internal/notification"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRequest(ctx context.Context, request *domain.CollaborationRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *MockRepository) FindRequest(ctx context.Context, id uint64) (*domain.CollaborationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollaborationRequest), args.Error(1)
}

func (m *MockRepository) FindOpenRequest(ctx context.Context, ideaID, requesterID uint64) (*domain.CollaborationRequest, error) {
	args := m.Called(ctx, ideaID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollaborationRequest), args.Error(1)
}

func (m *MockRepository) ListRequests(ctx context.Context, ideaID uint64) ([]domain.CollaborationRequest, error) {
	args := m.Called(ctx, ideaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollaborationRequest), args.Error(1)
}

func (m *MockRepository) ListRequestsBy(ctx context.Context, ideaID, requesterID uint64) ([]domain.CollaborationRequest, error) {
	args := m.Called(ctx, ideaID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollaborationRequest), args.Error(1)
}

func (m *MockRepository) RespondRequest(ctx context.Context, id uint64, status string, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *MockRepository) CreateProposal(ctx context.Context, proposal *domain.CollaborationProposal) error {
	return m.Called(ctx, proposal).Error(0)
}

func (m *MockRepository) FindProposal(ctx context.Context, id uint64) (*domain.CollaborationProposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollaborationProposal), args.Error(1)
}

func (m *MockRepository) ListProposals(ctx context.Context, ideaID uint64) ([]domain.CollaborationProposal, error) {
	args := m.Called(ctx, ideaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollaborationProposal), args.Error(1)
}

func (m *MockRepository) RejectProposal(ctx context.Context, id uint64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockRepository) AcceptProposal(ctx context.Context, proposal *domain.CollaborationProposal, idea *domain.Idea, version *domain.IdeaVersion, at time.Time) error {
	return m.Called(ctx, proposal, idea, version, at).Error(0)
}

// MockIdeas stubs the two idea lookups this package needs. Any other call
// panics through the nil embedded interface.
type MockIdeas struct {
	idea.IdeaRepository
	mock.Mock
}

func (m *MockIdeas) FindByID(ctx context.Context, id uint64) (*domain.Idea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Idea), args.Error(1)
}

func (m *MockIdeas) IsCollaborator(ctx context.Context, ideaID, userID uint64) (bool, error) {
	args := m.Called(ctx, ideaID, userID)
	return args.Bool(0), args.Error(1)
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
