package ledger

import (
	"github.com/dushixiang/lumen/internal/models"
)

// Kind 变更事件类型
type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// MutationEvent 归一化后的变更事件。Record 为事件携带的完整记录，
// DELETE 事件只保证 ID 有值；Previous 仅 UPDATE 事件可能携带。
type MutationEvent struct {
	Kind     Kind
	ID       string
	Record   *models.Signal
	Previous *models.Signal
}
