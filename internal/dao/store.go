package dao

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"mygame/roulette/model"
)

const (
	InitialCapacity = 13
	MaxLoadFactor   = 0.67
)

// SlotState 槽位状态
type SlotState uint8

const (
	SlotEmpty     SlotState = iota // 从未使用，探测在此终止
	SlotTombstone                  // 已删除，探测继续越过
	SlotOccupied
)

// Slot 哈希表中的一个槽位
type Slot struct {
	State  SlotState
	Record *model.Record
}

// CredentialMatcher 比较存储的凭证和输入的凭证
type CredentialMatcher func(stored, given string) bool

// RecordStore 按用户名索引的开放寻址哈希表（线性探测 + 惰性删除）
type RecordStore struct {
	table []Slot
	size  int
	match CredentialMatcher
}

type Option func(*RecordStore)

// WithCapacity 初始数组长度，非正数忽略
func WithCapacity(n int) Option {
	return func(s *RecordStore) {
		if n > 0 {
			s.table = make([]Slot, n)
		}
	}
}

// WithCredentialMatcher 替换默认的明文比较
func WithCredentialMatcher(m CredentialMatcher) Option {
	return func(s *RecordStore) {
		if m != nil {
			s.match = m
		}
	}
}

func NewRecordStore(opts ...Option) *RecordStore {
	s := &RecordStore{
		table: make([]Slot, InitialCapacity),
		match: func(stored, given string) bool { return stored == given },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put 写入一条记录（存储的是副本）。
// 已存在同名记录时原地覆盖并返回旧 id 和 true；否则插入，返回 "" 和 false。
// 存档按空格分隔，id 和凭证不能为空也不能含空白字符。
func (s *RecordStore) Put(r *model.Record) (string, bool, error) {
	if r == nil || !validField(r.ID) || !validField(r.Credential) {
		return "", false, fmt.Errorf("put record: %w", model.ErrInvalidArgument)
	}

	// 1. 先检查负载因子，超限则扩容到 2n+1
	if float64(s.size+1)/float64(len(s.table)) > MaxLoadFactor {
		if err := s.Resize(2*len(s.table) + 1); err != nil {
			return "", false, err
		}
	}

	// 2. 线性探测，记住遇到的第一个墓碑
	n := len(s.table)
	idx := indexFor(r.ID, n)
	tomb := -1
	for seen := 0; seen < s.size; idx = (idx + 1) % n {
		slot := &s.table[idx]
		if slot.State == SlotEmpty {
			break
		}
		if slot.State == SlotTombstone {
			if tomb < 0 {
				tomb = idx
			}
			continue
		}
		if slot.Record.ID == r.ID {
			prev := slot.Record.ID
			slot.Record = r.Clone()
			return prev, true, nil
		}
		seen++
	}

	// 3. 不存在：优先复用墓碑，否则落在探测停下的位置。
	// 探测链上最后一条存活记录之后的槽位不会是 Occupied。
	target := tomb
	if target < 0 {
		target = idx
	}
	s.table[target] = Slot{State: SlotOccupied, Record: r.Clone()}
	s.size++
	return "", false, nil
}

// Remove 把槽位标记为墓碑，返回被删除的 id
func (s *RecordStore) Remove(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("remove record: %w", model.ErrInvalidArgument)
	}
	idx, ok := s.find(id)
	if !ok {
		return "", fmt.Errorf("remove %q: %w", id, model.ErrNotFound)
	}
	s.table[idx] = Slot{State: SlotTombstone}
	s.size--
	return id, nil
}

// Lookup 返回存储中的记录本身，调用方的 Win/Lose 直接生效
func (s *RecordStore) Lookup(id string) (*model.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("lookup record: %w", model.ErrInvalidArgument)
	}
	idx, ok := s.find(id)
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", id, model.ErrNotFound)
	}
	return s.table[idx].Record, nil
}

// CheckCredentials 校验凭证；账号不存在时返回 ErrNotFound
func (s *RecordStore) CheckCredentials(id, credential string) (bool, error) {
	r, err := s.Lookup(id)
	if err != nil {
		return false, err
	}
	return s.match(r.Credential, credential), nil
}

// Resize 把存活记录重新散列到新数组，墓碑丢弃
func (s *RecordStore) Resize(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("resize to %d: %w", capacity, model.ErrInvalidArgument)
	}
	if capacity < s.size {
		return fmt.Errorf("resize to %d with %d live records: %w", capacity, s.size, model.ErrCapacityViolation)
	}

	table := make([]Slot, capacity)
	for _, slot := range s.table {
		if slot.State != SlotOccupied {
			continue
		}
		idx := indexFor(slot.Record.ID, capacity)
		for table[idx].State != SlotEmpty {
			idx = (idx + 1) % capacity
		}
		table[idx] = slot
	}
	s.table = table
	return nil
}

// Clear 丢弃整个底层数组，O(1)
func (s *RecordStore) Clear() {
	s.table = make([]Slot, InitialCapacity)
	s.size = 0
}

// Size 存活记录数（不含墓碑）
func (s *RecordStore) Size() int {
	return s.size
}

func (s *RecordStore) Capacity() int {
	return len(s.table)
}

// Slots 底层数组快照，记录为副本
func (s *RecordStore) Slots() []Slot {
	out := make([]Slot, len(s.table))
	for i, slot := range s.table {
		out[i].State = slot.State
		if slot.State == SlotOccupied {
			out[i].Record = slot.Record.Clone()
		}
	}
	return out
}

// Records 按槽位顺序返回所有存活记录的副本
func (s *RecordStore) Records() []*model.Record {
	out := make([]*model.Record, 0, s.size)
	for _, slot := range s.table {
		if slot.State == SlotOccupied {
			out = append(out, slot.Record.Clone())
		}
	}
	return out
}

// find 与 Put 相同的探测顺序，只读；最多检查 size 个存活槽位
func (s *RecordStore) find(id string) (int, bool) {
	n := len(s.table)
	idx := indexFor(id, n)
	for seen := 0; seen < s.size; idx = (idx + 1) % n {
		slot := &s.table[idx]
		switch slot.State {
		case SlotEmpty:
			return -1, false
		case SlotOccupied:
			if slot.Record.ID == id {
				return idx, true
			}
			seen++
		}
	}
	return -1, false
}

func validField(s string) bool {
	return s != "" && !strings.ContainsFunc(s, unicode.IsSpace)
}

func indexFor(id string, capacity int) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(capacity))
}
