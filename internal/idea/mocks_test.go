package idea

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

func (m *MockRepository) Create(ctx context.Context, idea *domain.Idea) error {
	return m.Called(ctx, idea).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Idea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Idea), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, idea *domain.Idea, from workflow.Status) error {
	return m.Called(ctx, idea, from).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]domain.Idea, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Idea), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListByStatus(ctx context.Context, status workflow.Status, offset, limit int) ([]domain.Idea, int64, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Idea), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Submit(ctx context.Context, idea *domain.Idea, from workflow.Status, version *domain.IdeaVersion) error {
	return m.Called(ctx, idea, from, version).Error(0)
}

func (m *MockRepository) SetAttachment(ctx context.Context, id uint64, from workflow.Status, name, mime string, data []byte) error {
	return m.Called(ctx, id, from, name, mime, data).Error(0)
}

func (m *MockRepository) FindAttachment(ctx context.Context, id uint64) (*domain.Idea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Idea), args.Error(1)
}

func (m *MockRepository) ListVersions(ctx context.Context, ideaID uint64) ([]domain.IdeaVersion, error) {
	args := m.Called(ctx, ideaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IdeaVersion), args.Error(1)
}

func (m *MockRepository) IsCollaborator(ctx context.Context, ideaID, userID uint64) (bool, error) {
	args := m.Called(ctx, ideaID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockRepository) ListComments(ctx context.Context, ideaID uint64) ([]domain.Comment, error) {
	args := m.Called(ctx, ideaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockRepository) FindComment(ctx context.Context, ideaID, commentID uint64) (*domain.Comment, error) {
	args := m.Called(ctx, ideaID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockRepository) MarkCommentDeleted(ctx context.Context, commentID uint64) error {
	return m.Called(ctx, commentID).Error(0)
}

func (m *MockRepository) ToggleLike(ctx context.Context, ideaID, userID uint64) (bool, error) {
	args := m.Called(ctx, ideaID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CountLikes(ctx context.Context, ideaID uint64) (int64, error) {
	args := m.Called(ctx, ideaID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) HasLiked(ctx context.Context, ideaID, userID uint64) (bool, error) {
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

func (r *recordingNotifier) Events() []notification.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Event(nil), r.events...)
}
