package service

import (
	"context"
	"testing"
	"time"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/feed"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubFeed struct {
	ch     chan feed.Notification
	status feed.Status
}

func newStubFeed() *stubFeed {
	return &stubFeed{ch: make(chan feed.Notification, 16), status: feed.StatusConnected}
}

func (f *stubFeed) Run(ctx context.Context)                 { <-ctx.Done() }
func (f *stubFeed) Notifications() <-chan feed.Notification { return f.ch }
func (f *stubFeed) Status() feed.Status                     { return f.status }

func newLedgerService(t *testing.T) (*LedgerService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	conf := &config.Config{}
	conf.Normalize()
	logger := zap.NewNop()
	activityService := NewActivityService(db, conf, logger)
	notifyService := NewNotifyService(logger, conf, nil)
	return NewLedgerService(db, conf, logger, newStubFeed(), activityService, notifyService), db
}

func seedSignal(t *testing.T, db *gorm.DB, id string, at time.Time) {
	t.Helper()
	require.NoError(t, repo.NewSignalRepo(db).Create(context.Background(), &models.Signal{
		ID:          id,
		ChannelID:   "c1",
		ChannelName: "Alpha",
		Status:      models.StatusActive,
		SignalTime:  at,
	}))
}

func TestLedgerResyncLoadsNewestFirst(t *testing.T) {
	s, db := newLedgerService(t)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedSignal(t, db, "old", base)
	seedSignal(t, db, "mid", base.Add(time.Hour))
	seedSignal(t, db, "new", base.Add(2*time.Hour))

	require.NoError(t, s.Resync(context.Background()))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "new", snapshot[0].ID)
	assert.Equal(t, "old", snapshot[2].ID)
	assert.Equal(t, uint64(1), s.Generation())
}

func TestLedgerHandleTradeUpdateInsertPersists(t *testing.T) {
	s, db := newLedgerService(t)
	ctx := context.Background()
	require.NoError(t, s.Resync(ctx))
	gen := s.Generation()

	s.handleTradeUpdate(ctx, feed.Notification{
		Type:      feed.TypeTradeUpdate,
		Operation: "INSERT",
		Data:      []byte(`{"id":"t1","channel_id":"c1","channel_name":"Alpha","status":"active","signal_time":"2026-05-01T08:00:00Z"}`),
	})

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "t1", snapshot[0].ID)
	assert.Greater(t, s.Generation(), gen)

	// 入账的同时落库，重启后对账还能看到
	persisted, err := repo.NewSignalRepo(db).FindById(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", persisted.ChannelName)
}

func TestLedgerHandleTradeUpdateDelete(t *testing.T) {
	s, db := newLedgerService(t)
	ctx := context.Background()
	seedSignal(t, db, "t1", time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, s.Resync(ctx))
	require.Equal(t, 1, len(s.Snapshot()))

	s.handleTradeUpdate(ctx, feed.Notification{
		Type:      feed.TypeTradeUpdate,
		Operation: "DELETE",
		Data:      []byte(`{"id":"t1"}`),
	})

	assert.Empty(t, s.Snapshot())
	_, err := repo.NewSignalRepo(db).FindById(ctx, "t1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLedgerHandleTradeUpdateMalformedDropped(t *testing.T) {
	s, _ := newLedgerService(t)
	ctx := context.Background()
	require.NoError(t, s.Resync(ctx))
	gen := s.Generation()

	// 缺少ID的事件丢弃，不影响账本
	s.handleTradeUpdate(ctx, feed.Notification{
		Type:      feed.TypeTradeUpdate,
		Operation: "INSERT",
		Data:      []byte(`{"symbol":"XAUUSD"}`),
	})

	assert.Empty(t, s.Snapshot())
	assert.Equal(t, gen, s.Generation())
}

func TestLedgerHandleChannelUpdateRecordsActivity(t *testing.T) {
	db := testDB(t)
	conf := &config.Config{}
	conf.Normalize()
	logger := zap.NewNop()
	activityService := NewActivityService(db, conf, logger)
	notifyService := NewNotifyService(logger, conf, nil)
	s := NewLedgerService(db, conf, logger, newStubFeed(), activityService, notifyService)
	ctx := context.Background()

	s.handleChannelUpdate(ctx, feed.Notification{
		Type:      feed.TypeChannelUpdate,
		Operation: "INSERT",
		Data:      []byte(`{"channel_name":"Alpha","is_active":true}`),
	})
	s.handleChannelUpdate(ctx, feed.Notification{
		Type:      feed.TypeChannelUpdate,
		Operation: "UPDATE",
		Previous:  []byte(`{"channel_name":"Alpha","is_active":true,"risk_per_trade":0.01}`),
		Data:      []byte(`{"channel_name":"Alpha Prime","is_active":false,"risk_per_trade":0.02}`),
	})

	views, err := activityService.Recent(ctx)
	require.NoError(t, err)

	var types []string
	for _, v := range views {
		types = append(types, v.EventType)
	}
	assert.Contains(t, types, models.EventChannelCreated)
	assert.Contains(t, types, models.EventTelegramNameChanged)
	assert.Contains(t, types, models.EventChannelDisabled)
	assert.Contains(t, types, models.EventSettingsUpdated)
	assert.Equal(t, uint64(2), s.Generation())
}
