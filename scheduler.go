// Scheduler implementations for RxGo
// 调度器系统：goroutine调度器、递归调度与周期调度的通用实现
package rxgo

import (
	"sync"
	"time"
)

// ============================================================================
// goroutine调度器 - Goroutine Scheduler
// ============================================================================

// GoroutineScheduler 为每个任务创建新的goroutine，延迟任务使用time.AfterFunc
type GoroutineScheduler struct{}

// NewGoroutineScheduler 创建goroutine调度器
func NewGoroutineScheduler() *GoroutineScheduler {
	return &GoroutineScheduler{}
}

// Default 默认的并发调度器
var Default Scheduler = NewGoroutineScheduler()

// Now 当前时间
func (s *GoroutineScheduler) Now() time.Time {
	return time.Now()
}

// Schedule 在新goroutine中执行任务
func (s *GoroutineScheduler) Schedule(state any, action Action) Disposable {
	cancel := NewSingleAssignmentDisposable()

	go func() {
		if cancel.IsDisposed() {
			return
		}
		cancel.SetDisposable(action(state))
	}()

	return cancel
}

// ScheduleRelative 延迟dueTime后在定时器goroutine中执行任务
func (s *GoroutineScheduler) ScheduleRelative(state any, dueTime time.Duration, action Action) Disposable {
	if dueTime <= 0 {
		return s.Schedule(state, action)
	}

	cancel := NewSingleAssignmentDisposable()
	timer := time.AfterFunc(dueTime, func() {
		if cancel.IsDisposed() {
			return
		}
		cancel.SetDisposable(action(state))
	})

	return ComposeDisposables(cancel, NewDisposable(func() {
		timer.Stop()
	}))
}

// SchedulePeriodic 周期执行任务
func (s *GoroutineScheduler) SchedulePeriodic(state any, startAfter, period time.Duration, action func(state any) any) Disposable {
	if period <= 0 {
		fatalError("SchedulePeriodic: period must be positive, got %v", period)
	}

	done := make(chan struct{})
	var once sync.Once

	go func() {
		start := time.NewTimer(startAfter)
		defer start.Stop()

		select {
		case <-done:
			return
		case <-start.C:
		}

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			default:
			}

			state = action(state)

			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return NewDisposable(func() {
		once.Do(func() { close(done) })
	})
}

// ============================================================================
// 递归调度
// ============================================================================

// recursiveScheduler 记录递归调度中尚未执行的任务
type recursiveScheduler[S any] struct {
	mu        sync.Mutex
	scheduler ImmediateScheduler
	action    func(state S, recurse func(S))
	group     *CompositeDisposable
}

// ScheduleRecursive 递归调度任务
//
// action通过recurse请求下一次调度。配合CurrentThreadScheduler使用时，
// 递归调度被放入队列中循环执行，栈深度与递归次数无关。
func ScheduleRecursive[S any](scheduler ImmediateScheduler, state S, action func(state S, recurse func(S))) Disposable {
	r := &recursiveScheduler[S]{
		scheduler: scheduler,
		action:    action,
		group:     NewCompositeDisposable(),
	}
	r.schedule(state)
	return r.group
}

func (r *recursiveScheduler[S]) schedule(state S) {
	var (
		isAdded bool
		isDone  bool
		key     DisposeKey
	)

	scheduled := r.scheduler.Schedule(state, func(s any) Disposable {
		r.mu.Lock()
		if isAdded {
			r.group.Remove(key)
		} else {
			isDone = true
		}
		r.mu.Unlock()

		if r.group.IsDisposed() {
			return NopDisposable
		}
		r.action(s.(S), r.schedule)
		return NopDisposable
	})

	r.mu.Lock()
	if !isDone {
		key, isAdded = r.group.Add(scheduled)
	}
	r.mu.Unlock()
}

// ============================================================================
// 周期调度的通用实现
// ============================================================================

// schedulePeriodicRecursive 通过反复的延迟调度实现周期任务
func schedulePeriodicRecursive(scheduler Scheduler, state any, startAfter, period time.Duration, action func(state any) any) Disposable {
	if period <= 0 {
		fatalError("SchedulePeriodic: period must be positive, got %v", period)
	}

	cancel := NewSerialDisposable()

	var tick Action
	tick = func(s any) Disposable {
		if cancel.IsDisposed() {
			return NopDisposable
		}
		next := action(s)
		cancel.SetDisposable(scheduler.ScheduleRelative(next, period, tick))
		return NopDisposable
	}

	cancel.SetDisposable(scheduler.ScheduleRelative(state, startAfter, tick))
	return cancel
}
