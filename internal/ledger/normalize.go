package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dushixiang/lumen/internal/models"
	"github.com/spf13/cast"
)

var (
	// ErrMissingID 事件载荷缺少记录ID，整个事件作废
	ErrMissingID = errors.New("mutation payload missing record id")
	// ErrUnknownKind 无法识别的变更类型
	ErrUnknownKind = errors.New("unknown mutation kind")
)

// Normalize 把变更通知的松散载荷转换为统一的 MutationEvent。
// 不同来源的载荷字段并不稳定，缺失的可选字段按零值处理，绝不 panic；
// 只有缺少ID才会拒绝事件。
func Normalize(operation string, data, previous json.RawMessage) (MutationEvent, error) {
	kind, err := parseKind(operation)
	if err != nil {
		return MutationEvent{}, err
	}

	record, err := decodeSignal(data)
	if err != nil {
		return MutationEvent{}, fmt.Errorf("decode %s payload: %w", kind, err)
	}

	ev := MutationEvent{
		Kind:   kind,
		ID:     record.ID,
		Record: record,
	}

	// DELETE 只需要ID，旧记录载荷只在 UPDATE 时有参考价值
	if kind == KindUpdate && len(previous) > 0 {
		if prev, err := decodeSignal(previous); err == nil {
			ev.Previous = prev
		}
	}
	if kind == KindDelete {
		ev.Record = nil
	}
	return ev, nil
}

func parseKind(operation string) (Kind, error) {
	switch Kind(strings.ToUpper(operation)) {
	case KindInsert:
		return KindInsert, nil
	case KindUpdate:
		return KindUpdate, nil
	case KindDelete:
		return KindDelete, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, operation)
	}
}

// decodeSignal 宽容地解析一条交易记录载荷
func decodeSignal(data json.RawMessage) (*models.Signal, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	id := cast.ToString(firstOf(m, "id", "trade_id"))
	if id == "" {
		return nil, ErrMissingID
	}

	s := &models.Signal{
		ID:             id,
		ChannelID:      cast.ToString(firstOf(m, "channel_id")),
		ChannelName:    cast.ToString(firstOf(m, "channel_name")),
		Symbol:         cast.ToString(firstOf(m, "symbol", "broker_symbol")),
		Side:           strings.ToLower(cast.ToString(firstOf(m, "side"))),
		OrderType:      strings.ToLower(cast.ToString(firstOf(m, "order_type"))),
		Status:         strings.ToLower(cast.ToString(firstOf(m, "status"))),
		Outcome:        strings.ToLower(cast.ToString(firstOf(m, "trade_outcome", "outcome"))),
		EntryPrice:     cast.ToFloat64(firstOf(m, "entry_price", "effective_entry_price")),
		FillPrice:      cast.ToFloat64(firstOf(m, "fill_price")),
		SLPrice:        cast.ToFloat64(firstOf(m, "sl_price", "adjusted_sl_price")),
		TPPrice:        cast.ToFloat64(firstOf(m, "tp_price", "final_tp_price")),
		ClosePrice:     cast.ToFloat64(firstOf(m, "close_price")),
		LotSize:        cast.ToFloat64(firstOf(m, "lot_size")),
		ProfitLoss:     cast.ToFloat64(firstOf(m, "profit_loss")),
		ProfitLossPips: cast.ToFloat64(firstOf(m, "profit_loss_pips")),
		RiskFreeMoved:  cast.ToBool(firstOf(m, "riskfree_moved")),
		BlockReason:    cast.ToString(firstOf(m, "block_reason")),
		SignalTime:     toTime(firstOf(m, "signal_time", "signal_received_at")),
	}

	// 部分来源将频道信息嵌套在 channel 对象里
	if ch, ok := m["channel"].(map[string]any); ok {
		if s.ChannelID == "" {
			s.ChannelID = cast.ToString(ch["id"])
		}
		if s.ChannelName == "" {
			s.ChannelName = cast.ToString(firstOf(ch, "channel_name", "name"))
		}
	}

	if t := toTime(firstOf(m, "fill_time", "execution_time")); !t.IsZero() {
		s.FillTime = &t
	}
	if t := toTime(firstOf(m, "close_time")); !t.IsZero() {
		s.CloseTime = &t
	}
	return s, nil
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toTime(v any) time.Time {
	if v == nil {
		return time.Time{}
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}
	}
	return t
}
