package rxgo

import (
	"container/heap"
	"sync"
	"time"
)

// ============================================================================
// 虚拟时间调度器 - Virtual Time Scheduler
// ============================================================================

// virtualItem 按虚拟时间排队的任务
type virtualItem struct {
	due    time.Time
	seq    uint64
	state  any
	action Action
	cancel *SingleAssignmentDisposable
}

type virtualQueue []*virtualItem

func (q virtualQueue) Len() int { return len(q) }

func (q virtualQueue) Less(i, j int) bool {
	if !q[i].due.Equal(q[j].due) {
		return q[i].due.Before(q[j].due)
	}
	return q[i].seq < q[j].seq
}

func (q virtualQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *virtualQueue) Push(x any) { *q = append(*q, x.(*virtualItem)) }

func (q *virtualQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// VirtualTimeScheduler 手动推进时间的调度器，用于测试基于时间的操作符
//
// 任务只在AdvanceTimeBy、AdvanceTimeTo或Start中执行，执行时时钟等于任务的到期时间。
// 同一时刻到期的任务按调度顺序执行。
type VirtualTimeScheduler struct {
	mu         sync.Mutex
	clock      time.Time
	queue      virtualQueue
	seq        uint64
	isDisposed bool
}

// NewVirtualTimeScheduler 创建虚拟时间调度器，时钟从start开始
func NewVirtualTimeScheduler(start time.Time) *VirtualTimeScheduler {
	return &VirtualTimeScheduler{clock: start}
}

// Now 当前虚拟时间
func (s *VirtualTimeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Schedule 在当前虚拟时间调度任务
func (s *VirtualTimeScheduler) Schedule(state any, action Action) Disposable {
	return s.ScheduleRelative(state, 0, action)
}

// ScheduleRelative 在当前虚拟时间之后dueTime调度任务
func (s *VirtualTimeScheduler) ScheduleRelative(state any, dueTime time.Duration, action Action) Disposable {
	if dueTime < 0 {
		dueTime = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isDisposed {
		return NopDisposable
	}

	s.seq++
	item := &virtualItem{
		due:    s.clock.Add(dueTime),
		seq:    s.seq,
		state:  state,
		action: action,
		cancel: NewSingleAssignmentDisposable(),
	}
	heap.Push(&s.queue, item)
	return item.cancel
}

// SchedulePeriodic 周期执行任务
func (s *VirtualTimeScheduler) SchedulePeriodic(state any, startAfter, period time.Duration, action func(state any) any) Disposable {
	return schedulePeriodicRecursive(s, state, startAfter, period, action)
}

// AdvanceTimeBy 推进时间
func (s *VirtualTimeScheduler) AdvanceTimeBy(duration time.Duration) {
	s.AdvanceTimeTo(s.Now().Add(duration))
}

// AdvanceTimeTo 推进时间到指定时刻，执行所有在此之前到期的任务
//
// 目标时刻早于当前时钟时只执行已经到期的任务。
func (s *VirtualTimeScheduler) AdvanceTimeTo(target time.Time) {
	for {
		item := s.next(target, true)
		if item == nil {
			break
		}
		s.run(item)
	}

	s.mu.Lock()
	if target.After(s.clock) {
		s.clock = target
	}
	s.mu.Unlock()
}

// Start 执行所有排队任务直到队列为空，时钟随任务前进
func (s *VirtualTimeScheduler) Start() {
	for {
		item := s.next(time.Time{}, false)
		if item == nil {
			return
		}
		s.run(item)
	}
}

// Pending 尚未执行且未被取消的任务数量
func (s *VirtualTimeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.queue {
		if !item.cancel.IsDisposed() {
			n++
		}
	}
	return n
}

// Dispose 丢弃所有任务，之后的调度都被忽略
func (s *VirtualTimeScheduler) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isDisposed = true
	s.queue = nil
}

// next 取出下一个到期的任务并把时钟推进到它的到期时间，已取消的任务被跳过
func (s *VirtualTimeScheduler) next(limit time.Time, bounded bool) *virtualItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.queue) > 0 {
		head := s.queue[0]
		if bounded && head.due.After(limit) {
			return nil
		}
		heap.Pop(&s.queue)
		if head.cancel.IsDisposed() {
			continue
		}
		if head.due.After(s.clock) {
			s.clock = head.due
		}
		return head
	}
	return nil
}

// run 在锁外执行任务，任务可以继续调度
func (s *VirtualTimeScheduler) run(item *virtualItem) {
	item.cancel.SetDisposable(item.action(item.state))
}
