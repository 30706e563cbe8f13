package notification

import (
	"context"
	"innovation-portal/internal/domain"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateBatch(ctx context.Context, rows []domain.Notification) error
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID, id uint64, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error)
	UserIDsWithRoles(ctx context.Context, roles []string) ([]uint64, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateBatch(ctx context.Context, rows []domain.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// ListByUser returns the newest notifications first.
func (r *RepositoryImpl) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]domain.Notification, int64, error) {
	var (
		rows  []domain.Notification
		total int64
	)
	q := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (r *RepositoryImpl) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&n).Error
	return n, err
}

func (r *RepositoryImpl) MarkRead(ctx context.Context, userID, id uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Where("read_at IS NULL").
		Update("read_at", at)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// already read rows still count as found
		var n int64
		err := r.db.WithContext(ctx).Model(&domain.Notification{}).
			Where("id = ? AND user_id = ?", id, userID).Count(&n).Error
		return n, err
	}
	return res.RowsAffected, nil
}

func (r *RepositoryImpl) MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *RepositoryImpl) UserIDsWithRoles(ctx context.Context, roles []string) ([]uint64, error) {
	var ids []uint64
	if len(roles) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Distinct("users.id").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name IN ? AND users.is_active = ?", roles, true).
		Pluck("users.id", &ids).Error
	return ids, err
}
