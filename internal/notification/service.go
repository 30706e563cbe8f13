package notification

import (
	"context"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/utils"
	"time"
)

type Service interface {
	List(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Notification, utils.PageMeta, int64, error)
	MarkRead(ctx context.Context, userID, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
}

type DefaultService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &DefaultService{repo: repo}
}

// List returns a page of the user's notifications and their unread count.
func (s *DefaultService) List(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Notification, utils.PageMeta, int64, error) {
	rows, total, err := s.repo.ListByUser(ctx, userID, utils.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, utils.PageMeta{}, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, utils.PageMeta{}, 0, err
	}
	if rows == nil {
		rows = []domain.Notification{}
	}
	return rows, utils.NewPageMeta(total, page, pageSize), unread, nil
}

func (s *DefaultService) MarkRead(ctx context.Context, userID, id uint64) error {
	n, err := s.repo.MarkRead(ctx, userID, id, time.Now())
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("Notification not found", nil)
	}
	return nil
}

func (s *DefaultService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, time.Now())
}
