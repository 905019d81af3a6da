package rxgo

import (
	"sync"
)

// ============================================================================
// 当前线程调度器 - Current Thread Scheduler
// ============================================================================

// trampolineItem 排队中的任务
type trampolineItem struct {
	state  any
	action Action
	cancel *SingleAssignmentDisposable
}

// CurrentThreadScheduler 在调用方goroutine中按顺序执行任务（trampoline）
//
// 某个goroutine上第一次Schedule会立即执行任务，然后循环执行该任务期间
// 在同一goroutine上调度的任务。嵌套调度只入队不递归，栈深度保持有界。
type CurrentThreadScheduler struct {
	queues sync.Map // goroutine id -> *queue[*trampolineItem]
}

// NewCurrentThreadScheduler 创建当前线程调度器
func NewCurrentThreadScheduler() *CurrentThreadScheduler {
	return &CurrentThreadScheduler{}
}

// CurrentThread 当前线程调度器实例
var CurrentThread = NewCurrentThreadScheduler()

// IsScheduleRequired 当前goroutine上是否没有正在执行的trampoline
func (s *CurrentThreadScheduler) IsScheduleRequired() bool {
	_, running := s.queues.Load(goroutineID())
	return !running
}

// Schedule 在当前goroutine中调度任务
func (s *CurrentThreadScheduler) Schedule(state any, action Action) Disposable {
	gid := goroutineID()

	if q, running := s.queues.Load(gid); running {
		item := &trampolineItem{
			state:  state,
			action: action,
			cancel: NewSingleAssignmentDisposable(),
		}
		q.(*queue[*trampolineItem]).Enqueue(item)
		return item.cancel
	}

	q := newQueue[*trampolineItem](16)
	s.queues.Store(gid, q)
	defer s.queues.Delete(gid)

	disposable := action(state)

	for {
		item, ok := q.Dequeue()
		if !ok {
			break
		}
		if item.cancel.IsDisposed() {
			continue
		}
		item.cancel.SetDisposable(item.action(item.state))
	}

	return disposable
}
