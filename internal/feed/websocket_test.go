package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func wsServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketFeedDeliversNotifications(t *testing.T) {
	endpoint := wsServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(Notification{
			Type:      TypeTradeUpdate,
			Operation: "INSERT",
			Data:      []byte(`{"id":"t1"}`),
		})
		// 心跳和未知类型消息都不该出现在通知通道里
		_ = conn.WriteJSON(Notification{Type: TypePong})
		_ = conn.WriteJSON(Notification{Type: "noise"})
		_ = conn.WriteJSON(Notification{
			Type:      TypeChannelUpdate,
			Operation: "UPDATE",
			Data:      []byte(`{"id":"c1"}`),
		})
		time.Sleep(100 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := NewWebsocketFeed(endpoint, zap.NewNop())
	go f.Run(ctx)

	var got []Notification
	timeout := time.After(3 * time.Second)
	for len(got) < 2 {
		select {
		case n := <-f.Notifications():
			got = append(got, n)
		case <-timeout:
			t.Fatalf("通知超时，已收到 %d 条", len(got))
		}
	}

	assert.Equal(t, TypeTradeUpdate, got[0].Type)
	assert.Equal(t, "INSERT", got[0].Operation)
	assert.JSONEq(t, `{"id":"t1"}`, string(got[0].Data))
	assert.Equal(t, TypeChannelUpdate, got[1].Type)
	assert.Equal(t, StatusConnected, f.Status())
}

func TestWebsocketFeedRepliesPing(t *testing.T) {
	gotPong := make(chan struct{})
	endpoint := wsServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(Notification{Type: TypePing})
		var n Notification
		for {
			if err := conn.ReadJSON(&n); err != nil {
				return
			}
			if n.Type == TypePong {
				close(gotPong)
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := NewWebsocketFeed(endpoint, zap.NewNop())
	go f.Run(ctx)

	select {
	case <-gotPong:
	case <-time.After(3 * time.Second):
		t.Fatal("等待心跳应答超时")
	}
}

func TestWebsocketFeedClosesChannelOnCancel(t *testing.T) {
	endpoint := wsServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	f := NewWebsocketFeed(endpoint, zap.NewNop())

	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("取消后Run未退出")
	}

	_, open := <-f.Notifications()
	require.False(t, open)
}

func TestWebsocketFeedStartsConnecting(t *testing.T) {
	f := NewWebsocketFeed("ws://127.0.0.1:1/ws", zap.NewNop())
	assert.Equal(t, StatusConnecting, f.Status())
}
