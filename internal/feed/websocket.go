package feed

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval   = 30 * time.Second
	readTimeout    = 90 * time.Second
	writeTimeout   = 10 * time.Second
	reconnectDelay = 5 * time.Second
)

// WebsocketFeed 基于websocket的变更通知订阅，断线后固定间隔重连
type WebsocketFeed struct {
	endpoint string
	logger   *zap.Logger

	notifications chan Notification
	status        atomic.Value
	writeMu       sync.Mutex // 心跳协程和读循环都会写连接
}

var _ Feed = (*WebsocketFeed)(nil)

func NewWebsocketFeed(endpoint string, logger *zap.Logger) *WebsocketFeed {
	f := &WebsocketFeed{
		endpoint:      endpoint,
		logger:        logger,
		notifications: make(chan Notification, 256),
	}
	f.status.Store(StatusConnecting)
	return f
}

func (f *WebsocketFeed) Notifications() <-chan Notification {
	return f.notifications
}

func (f *WebsocketFeed) Status() Status {
	return f.status.Load().(Status)
}

// Run 维持订阅直到 ctx 取消。连接失败或中断时记录日志并重连，
// 不向上冒泡错误，仪表盘靠定时对账兜底。
func (f *WebsocketFeed) Run(ctx context.Context) {
	defer close(f.notifications)

	for {
		f.status.Store(StatusConnecting)
		if err := f.connectAndRead(ctx); err != nil {
			f.status.Store(StatusError)
			f.logger.Warn("数据源连接中断", zap.String("endpoint", f.endpoint), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *WebsocketFeed) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.status.Store(StatusConnected)
	f.logger.Info("数据源已连接", zap.String("endpoint", f.endpoint))

	// 空闲超时由应用层心跳续期，避免半开连接悬挂
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

	done := make(chan struct{})
	defer close(done)
	go f.keepalive(ctx, conn, done)

	for {
		var n Notification
		if err := conn.ReadJSON(&n); err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch n.Type {
		case TypePing:
			f.writeJSON(conn, Notification{Type: TypePong})
		case TypePong:
			// 心跳应答，忽略
		case TypeTradeUpdate, TypeChannelUpdate:
			select {
			case f.notifications <- n:
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			f.logger.Debug("忽略未知通知类型", zap.String("type", n.Type))
		}
	}
}

func (f *WebsocketFeed) keepalive(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			f.writeJSON(conn, Notification{Type: TypePing})
		}
	}
}

func (f *WebsocketFeed) writeJSON(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		f.logger.Debug("心跳发送失败", zap.Error(err))
	}
}
