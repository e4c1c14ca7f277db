package repo

import (
	"context"

	"github.com/dushixiang/lumen/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewChannelRepo(db *gorm.DB) *ChannelRepo {
	return &ChannelRepo{
		Repository: orz.NewRepository[models.Channel, string](db),
	}
}

type ChannelRepo struct {
	orz.Repository[models.Channel, string]
}

// FindAllOrderByName 获取全部频道配置（按名称排序）
func (r ChannelRepo) FindAllOrderByName(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("channel_name ASC").
		Find(&channels).Error
	return channels, err
}

// FindActive 获取启用中的频道配置
func (r ChannelRepo) FindActive(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("is_active = ?", true).
		Order("channel_name ASC").
		Find(&channels).Error
	return channels, err
}

// FindByChannelKey 按频道唯一键查找
func (r ChannelRepo) FindByChannelKey(ctx context.Context, key string) (m models.Channel, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("channel_key = ?", key).
		First(&m).Error
	return m, err
}

// ExistsByChannelKey 频道唯一键是否已存在
func (r ChannelRepo) ExistsByChannelKey(ctx context.Context, key string) (bool, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("channel_key = ?", key).
		Count(&count).Error
	return count > 0, err
}

// UpdateActive 更新频道启停状态
func (r ChannelRepo) UpdateActive(ctx context.Context, id string, active bool) error {
	return r.GetDB(ctx).Table(r.GetTableName()).
		Where("id = ?", id).
		Update("is_active", active).Error
}
