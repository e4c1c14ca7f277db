package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInsert(t *testing.T) {
	data := json.RawMessage(`{
		"id": "t1",
		"channel_id": "ch-1",
		"channel_name": "Gold Signals",
		"symbol": "XAUUSD",
		"side": "BUY",
		"order_type": "LIMIT",
		"status": "pending",
		"entry_price": 2650.5,
		"sl_price": 2640,
		"signal_time": "2025-01-02T10:00:00Z"
	}`)

	ev, err := Normalize("INSERT", data, nil)
	require.NoError(t, err)

	assert.Equal(t, KindInsert, ev.Kind)
	assert.Equal(t, "t1", ev.ID)
	require.NotNil(t, ev.Record)
	assert.Equal(t, "buy", ev.Record.Side)
	assert.Equal(t, "limit", ev.Record.OrderType)
	assert.Equal(t, 2650.5, ev.Record.EntryPrice)
	assert.Equal(t, "Gold Signals", ev.Record.ChannelName)
	assert.False(t, ev.Record.SignalTime.IsZero())
}

func TestNormalizeToleratesMissingOptionalFields(t *testing.T) {
	ev, err := Normalize("insert", json.RawMessage(`{"id":"t2"}`), nil)
	require.NoError(t, err)

	require.NotNil(t, ev.Record)
	assert.Equal(t, 0.0, ev.Record.ProfitLoss)
	assert.Empty(t, ev.Record.Outcome)
	assert.Nil(t, ev.Record.CloseTime)
	assert.Nil(t, ev.Record.FillTime)
}

func TestNormalizeRejectsMissingID(t *testing.T) {
	_, err := Normalize("UPDATE", json.RawMessage(`{"symbol":"XAUUSD"}`), nil)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestNormalizeRejectsUnknownKind(t *testing.T) {
	_, err := Normalize("UPSERT", json.RawMessage(`{"id":"t1"}`), nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNormalizeUpdateCarriesPrevious(t *testing.T) {
	data := json.RawMessage(`{"id":"t1","status":"closed","trade_outcome":"profit"}`)
	prev := json.RawMessage(`{"id":"t1","status":"active"}`)

	ev, err := Normalize("UPDATE", data, prev)
	require.NoError(t, err)

	require.NotNil(t, ev.Previous)
	assert.Equal(t, "active", ev.Previous.Status)
	assert.Equal(t, "profit", ev.Record.Outcome)
}

func TestNormalizeDeleteOnlyNeedsID(t *testing.T) {
	ev, err := Normalize("DELETE", json.RawMessage(`{"id":"t1"}`), nil)
	require.NoError(t, err)

	assert.Equal(t, KindDelete, ev.Kind)
	assert.Equal(t, "t1", ev.ID)
	assert.Nil(t, ev.Record)
}

func TestNormalizeNestedChannelAndAliases(t *testing.T) {
	data := json.RawMessage(`{
		"trade_id": "t3",
		"channel": {"id": "ch-2", "name": "XAUUSD Pro"},
		"broker_symbol": "XAUUSD.m",
		"signal_received_at": "2025-03-01T08:30:00Z",
		"execution_time": "2025-03-01T08:31:00Z"
	}`)

	ev, err := Normalize("INSERT", data, nil)
	require.NoError(t, err)

	assert.Equal(t, "t3", ev.ID)
	assert.Equal(t, "ch-2", ev.Record.ChannelID)
	assert.Equal(t, "XAUUSD Pro", ev.Record.ChannelName)
	assert.Equal(t, "XAUUSD.m", ev.Record.Symbol)
	require.NotNil(t, ev.Record.FillTime)
}
