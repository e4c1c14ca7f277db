package service

import (
	"context"
	"testing"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newChannelService(t *testing.T) (*ChannelService, *ActivityService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	conf := &config.Config{}
	conf.Normalize()
	logger := zap.NewNop()
	activityService := NewActivityService(db, conf, logger)
	notifyService := NewNotifyService(logger, conf, nil)
	return NewChannelService(db, conf, logger, activityService, notifyService), activityService, db
}

func TestChannelCreateRecordsActivity(t *testing.T) {
	s, activityService, _ := newChannelService(t)
	ctx := context.Background()

	channel, err := s.Create(ctx, ChannelRequest{
		ChannelKey:   "gold-signals",
		ChannelName:  "Gold Signals",
		RiskPerTrade: 0.02,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, channel.ID)
	assert.True(t, channel.IsActive)

	views, err := activityService.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.EventChannelCreated, views[0].EventType)
	assert.Equal(t, "Gold Signals", views[0].Subject)
	// 创建事件渲染为 nil -> 初始值
	require.NotEmpty(t, views[0].Changes)
	for _, change := range views[0].Changes {
		assert.Nil(t, change.Old)
	}
}

func TestChannelCreateDuplicateKey(t *testing.T) {
	s, _, _ := newChannelService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, ChannelRequest{ChannelKey: "k1", ChannelName: "A"})
	require.NoError(t, err)

	_, err = s.Create(ctx, ChannelRequest{ChannelKey: "k1", ChannelName: "B"})
	assert.ErrorIs(t, err, xe.ErrChannelKeyExists)
}

func TestChannelUpdateClassifiesChanges(t *testing.T) {
	s, activityService, _ := newChannelService(t)
	ctx := context.Background()

	channel, err := s.Create(ctx, ChannelRequest{
		ChannelKey:   "k1",
		ChannelName:  "Alpha",
		RiskPerTrade: 0.02,
	})
	require.NoError(t, err)

	updated, err := s.Update(ctx, channel.ID, ChannelRequest{
		ChannelName:   "Alpha VIP",
		RiskPerTrade:  0.03,
		FinalTPPolicy: &models.FinalTPPolicy{Kind: models.TPPolicyRR, RRRatio: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpha VIP", updated.ChannelName)
	assert.Equal(t, 0.03, updated.RiskPerTrade)

	views, err := activityService.Recent(ctx)
	require.NoError(t, err)

	types := make(map[string]bool)
	for _, v := range views {
		types[v.EventType] = true
	}
	assert.True(t, types[models.EventTelegramNameChanged])
	assert.True(t, types[models.EventSettingsUpdated])
	assert.True(t, types[models.EventPolicyUpdated])
}

func TestChannelToggle(t *testing.T) {
	s, activityService, _ := newChannelService(t)
	ctx := context.Background()

	channel, err := s.Create(ctx, ChannelRequest{ChannelKey: "k1", ChannelName: "Alpha"})
	require.NoError(t, err)

	require.NoError(t, s.Toggle(ctx, channel.ID, false))
	got, err := s.Get(ctx, channel.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// 状态没变时不记录事件
	require.NoError(t, s.Toggle(ctx, channel.ID, false))

	views, err := activityService.Recent(ctx)
	require.NoError(t, err)
	var disabled int
	for _, v := range views {
		if v.EventType == models.EventChannelDisabled {
			disabled++
		}
	}
	assert.Equal(t, 1, disabled)
}

func TestChannelDelete(t *testing.T) {
	s, activityService, _ := newChannelService(t)
	ctx := context.Background()

	channel, err := s.Create(ctx, ChannelRequest{ChannelKey: "k1", ChannelName: "Alpha"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, channel.ID))

	_, err = s.Get(ctx, channel.ID)
	assert.ErrorIs(t, err, xe.ErrChannelNotFound)

	views, err := activityService.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.EventChannelDeleted, views[0].EventType)
}

func TestChannelGetNotFound(t *testing.T) {
	s, _, _ := newChannelService(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, xe.ErrChannelNotFound)
}
