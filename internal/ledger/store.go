package ledger

import (
	"sync"

	"github.com/dushixiang/lumen/internal/models"
)

// Store 会话期的交易记录台账。按ID去重，维持"最新插入在前"的顺序，
// 由变更事件驱动，只在内存中存活，不承担持久化职责。
type Store struct {
	mu      sync.RWMutex
	records []models.Signal
	index   map[string]int // id -> records 下标
}

// NewStore 创建空台账
func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// Reset 用一次全量加载的结果替换台账内容，记录顺序原样保留（调用方保证最新在前）。
// ID重复的记录只保留第一条。
func (s *Store) Reset(records []models.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
	s.index = make(map[string]int, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, ok := s.index[r.ID]; ok {
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
}

// Apply 应用一条归一化变更事件，返回台账内容是否发生变化。
// 事件要么完整生效要么完全不生效，不存在半应用状态。
func (s *Store) Apply(ev MutationEvent) bool {
	switch ev.Kind {
	case KindInsert:
		if ev.Record == nil {
			return false
		}
		return s.insert(*ev.Record)
	case KindUpdate:
		if ev.Record == nil {
			return false
		}
		return s.update(*ev.Record)
	case KindDelete:
		return s.delete(ev.ID)
	default:
		return false
	}
}

// insert 新纪录放在最前面；ID已存在时不做任何事（幂等）
func (s *Store) insert(record models.Signal) bool {
	if record.ID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[record.ID]; ok {
		return false
	}
	s.prepend(record)
	return true
}

// update 原位整体替换已有记录（最后写入者胜出）；记录不存在时等同插入
func (s *Store) update(record models.Signal) bool {
	if record.ID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[record.ID]; ok {
		s.records[i] = record
		return true
	}
	s.prepend(record)
	return true
}

// delete 删除记录，不存在时为 no-op
func (s *Store) delete(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	for k, v := range s.index {
		if v > i {
			s.index[k] = v - 1
		}
	}
	return true
}

func (s *Store) prepend(record models.Signal) {
	s.records = append([]models.Signal{record}, s.records...)
	for k := range s.index {
		s.index[k]++
	}
	s.index[record.ID] = 0
}

// Snapshot 返回当前记录序列的副本，调用方可以在后续变更进行时安全读取
func (s *Store) Snapshot() []models.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Signal, len(s.records))
	copy(out, s.records)
	return out
}

// Get 按ID查找记录
func (s *Store) Get(id string) (models.Signal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Signal{}, false
	}
	return s.records[i], true
}

// Len 当前记录数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
