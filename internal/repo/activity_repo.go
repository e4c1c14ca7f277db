package repo

import (
	"context"
	"time"

	"github.com/dushixiang/lumen/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewActivityRepo(db *gorm.DB) *ActivityRepo {
	return &ActivityRepo{
		Repository: orz.NewRepository[models.ActivityEvent, string](db),
	}
}

type ActivityRepo struct {
	orz.Repository[models.ActivityEvent, string]
}

// FindRecent 获取最近的审计事件（按时间倒序）
func (r ActivityRepo) FindRecent(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	var events []models.ActivityEvent
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// DeleteBefore 清理早于保留窗口的事件，返回删除条数
func (r ActivityRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.GetDB(ctx)
	result := db.Table(r.GetTableName()).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityEvent{})
	return result.RowsAffected, result.Error
}
