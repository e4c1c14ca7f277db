package activity

import (
	"encoding/json"
	"sort"

	"github.com/dushixiang/lumen/internal/models"
)

// FieldChange 渲染后的单个字段变更，Old/New 保留原始JSON值
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Changes 把审计事件的载荷渲染为字段变更列表。
// 载荷来自机器人和控制台，格式不受本服务控制，
// 无法识别或格式损坏时退回通用渲染，绝不panic。
func Changes(ev *models.ActivityEvent) []FieldChange {
	payload := decodePayload(ev.Payload)

	switch ev.EventType {
	case models.EventChannelCreated:
		return createdChanges(payload)
	case models.EventChannelDeleted:
		return deletedChanges(payload)
	case models.EventChannelEnabled:
		return []FieldChange{{Field: "is_active", Old: false, New: true}}
	case models.EventChannelDisabled:
		return []FieldChange{{Field: "is_active", Old: true, New: false}}
	case models.EventTelegramNameChanged:
		return renameChanges(payload)
	case models.EventChannelUpdated, models.EventPolicyUpdated, models.EventSettingsUpdated:
		return nestedChanges(payload)
	default:
		// 未来新增的事件类型只展示类型名和主体，不猜测载荷含义
		return nil
	}
}

func decodePayload(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// createdChanges 创建事件的载荷是初始配置，每个字段渲染为 nil -> 初始值
func createdChanges(payload map[string]any) []FieldChange {
	out := make([]FieldChange, 0, len(payload))
	for _, field := range sortedKeys(payload) {
		out = append(out, FieldChange{Field: field, Old: nil, New: payload[field]})
	}
	return out
}

// deletedChanges 删除事件渲染为 最终值 -> nil
func deletedChanges(payload map[string]any) []FieldChange {
	out := make([]FieldChange, 0, len(payload))
	for _, field := range sortedKeys(payload) {
		out = append(out, FieldChange{Field: field, Old: payload[field], New: nil})
	}
	return out
}

// renameChanges 频道改名事件的载荷是扁平的 old_name/new_name
func renameChanges(payload map[string]any) []FieldChange {
	oldName, okOld := payload["old_name"]
	newName, okNew := payload["new_name"]
	if !okOld && !okNew {
		return genericChanges(payload)
	}
	return []FieldChange{{Field: "channel_name", Old: oldName, New: newName}}
}

// nestedChanges 更新类事件的载荷是 字段 -> {old, new} 的嵌套对象，
// 值不是嵌套对象的字段退回通用渲染
func nestedChanges(payload map[string]any) []FieldChange {
	out := make([]FieldChange, 0, len(payload))
	for _, field := range sortedKeys(payload) {
		pair, ok := payload[field].(map[string]any)
		if !ok {
			out = append(out, FieldChange{Field: field, New: payload[field]})
			continue
		}
		out = append(out, FieldChange{Field: field, Old: pair["old"], New: pair["new"]})
	}
	return out
}

// genericChanges 载荷格式不符合约定时的兜底渲染，把字段原样列出
func genericChanges(payload map[string]any) []FieldChange {
	out := make([]FieldChange, 0, len(payload))
	for _, field := range sortedKeys(payload) {
		out = append(out, FieldChange{Field: field, New: payload[field]})
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
