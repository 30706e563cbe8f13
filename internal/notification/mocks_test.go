package notification

import (
	"context"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/utils"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateBatch(ctx context.Context, rows []domain.Notification) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, userID, id uint64, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, id, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UserIDsWithRoles(ctx context.Context, roles []string) ([]uint64, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Notification, utils.PageMeta, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, utils.PageMeta{}, 0, args.Error(3)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(utils.PageMeta), args.Get(2).(int64), args.Error(3)
}

func (m *MockService) MarkRead(ctx context.Context, userID, id uint64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
