package repo

import (
	"context"

	"github.com/dushixiang/lumen/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewSignalRepo(db *gorm.DB) *SignalRepo {
	return &SignalRepo{
		Repository: orz.NewRepository[models.Signal, string](db),
	}
}

type SignalRepo struct {
	orz.Repository[models.Signal, string]
}

// FindPageOrderBySignalTime 按信号时间倒序分页拉取，用于启动时批量装载账本
func (r SignalRepo) FindPageOrderBySignalTime(ctx context.Context, offset, limit int) ([]models.Signal, error) {
	var signals []models.Signal
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("signal_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&signals).Error
	return signals, err
}

// CountAll 统计信号总数
func (r SignalRepo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).Count(&count).Error
	return count, err
}

// Upsert 按主键保存，存在则更新
func (r SignalRepo) Upsert(ctx context.Context, signal *models.Signal) error {
	return r.GetDB(ctx).Save(signal).Error
}
