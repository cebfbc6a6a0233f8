// Package rank 胜率排行榜：下标从 1 开始的数组二叉最大堆。
//
// 堆中保存的都是记录的副本，与 RecordStore 不共享指针，
// 之后对存储中记录的修改不会影响已经生成的排行。
// 胜率相同的记录之间顺序不做保证。
package rank

import (
	"fmt"
	"io"

	"mygame/roulette/model"
)

const InitialCapacity = 13

// Leaderboard 按 WinRate 排序的最大堆，heap[0] 不使用
type Leaderboard struct {
	heap []*model.Record
	size int
}

func New() *Leaderboard {
	return &Leaderboard{heap: make([]*model.Record, InitialCapacity)}
}

// NewFrom 用 Build 从一组记录建堆
func NewFrom(records []*model.Record) (*Leaderboard, error) {
	lb := New()
	if err := lb.Build(records); err != nil {
		return nil, err
	}
	return lb, nil
}

// Build 用记录副本自底向上建堆，替换原有内容；nil 元素跳过，nil 切片报错
func (lb *Leaderboard) Build(records []*model.Record) error {
	if records == nil {
		return fmt.Errorf("build leaderboard: %w", model.ErrInvalidArgument)
	}

	heap := make([]*model.Record, 2*len(records)+1)
	size := 0
	for _, r := range records {
		if r == nil {
			continue
		}
		size++
		heap[size] = r.Clone()
	}
	lb.heap = heap
	lb.size = size

	for i := lb.size / 2; i >= 1; i-- {
		lb.downHeap(i)
	}
	return nil
}

// Add 插入一条记录的副本
func (lb *Leaderboard) Add(r *model.Record) error {
	if r == nil {
		return fmt.Errorf("add to leaderboard: %w", model.ErrInvalidArgument)
	}
	lb.push(r.Clone())
	return nil
}

// RemoveMax 弹出胜率最高的记录
func (lb *Leaderboard) RemoveMax() (*model.Record, error) {
	if lb.size == 0 {
		return nil, fmt.Errorf("remove max: %w", model.ErrNotFound)
	}
	top := lb.heap[1]
	lb.heap[1] = lb.heap[lb.size]
	lb.heap[lb.size] = nil
	lb.size--
	lb.downHeap(1)
	return top, nil
}

// PeekMax 返回堆顶的副本，不修改堆
func (lb *Leaderboard) PeekMax() (*model.Record, error) {
	if lb.size == 0 {
		return nil, fmt.Errorf("peek max: %w", model.ErrNotFound)
	}
	return lb.heap[1].Clone(), nil
}

// TopN 按胜率降序返回前 n 名的副本，弹出的记录全部放回，堆不变
func (lb *Leaderboard) TopN(n int) ([]*model.Record, error) {
	if n < 0 {
		return nil, fmt.Errorf("top %d: %w", n, model.ErrInvalidArgument)
	}

	// 逐个弹出，再按原对象放回；不能按值去重，否则同胜率的账号会丢
	removed := make([]*model.Record, 0, min(n, lb.size))
	for len(removed) < n && lb.size > 0 {
		r, _ := lb.RemoveMax()
		removed = append(removed, r)
	}

	out := make([]*model.Record, len(removed))
	for i, r := range removed {
		out[i] = r.Clone()
		lb.push(r)
	}
	return out, nil
}

func (lb *Leaderboard) IsEmpty() bool {
	return lb.size == 0
}

func (lb *Leaderboard) Size() int {
	return lb.size
}

// Cap 底层数组长度（含未使用的 0 号位）
func (lb *Leaderboard) Cap() int {
	return len(lb.heap)
}

func (lb *Leaderboard) Clear() {
	lb.heap = make([]*model.Record, InitialCapacity)
	lb.size = 0
}

// Print 输出前 n 名，格式与原游戏结束时的排行榜一致
func (lb *Leaderboard) Print(w io.Writer, n int) error {
	top, err := lb.TopN(n)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "----------------------------------\nLeaderboard:"); err != nil {
		return err
	}
	for i, r := range top {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, r); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, "----------------------------------")
	return err
}

func (lb *Leaderboard) push(r *model.Record) {
	// 只剩 0 号位以外全满时容量翻倍
	if lb.size == len(lb.heap)-1 {
		heap := make([]*model.Record, 2*len(lb.heap))
		copy(heap, lb.heap)
		lb.heap = heap
	}
	lb.size++
	lb.heap[lb.size] = r
	lb.upHeap(lb.size)
}

func (lb *Leaderboard) upHeap(i int) {
	for i > 1 {
		parent := i / 2
		if lb.heap[i].WinRate() <= lb.heap[parent].WinRate() {
			return
		}
		lb.heap[i], lb.heap[parent] = lb.heap[parent], lb.heap[i]
		i = parent
	}
}

// downHeap 右孩子只有在同时大于左孩子和父节点时才被选中，
// 否则拿左孩子和父节点比较
func (lb *Leaderboard) downHeap(i int) {
	for {
		left, right := 2*i, 2*i+1
		if left > lb.size {
			return
		}
		parent := lb.heap[i].WinRate()

		if right <= lb.size && lb.heap[right].WinRate() > lb.heap[left].WinRate() {
			if lb.heap[right].WinRate() <= parent {
				return
			}
			lb.heap[i], lb.heap[right] = lb.heap[right], lb.heap[i]
			i = right
			continue
		}

		if lb.heap[left].WinRate() <= parent {
			return
		}
		lb.heap[i], lb.heap[left] = lb.heap[left], lb.heap[i]
		i = left
	}
}
