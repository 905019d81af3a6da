package rxgo

import (
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/tomb.v2"
)

// ============================================================================
// 串行调度器 - Serial Scheduler
// ============================================================================

// SerialScheduler 在一个专用goroutine上按FIFO顺序执行所有任务
//
// 在该goroutine上调用Schedule并且没有排队任务时直接执行，否则入队。
type SerialScheduler struct {
	name    string
	t       tomb.Tomb
	mu      sync.Mutex
	cond    *sync.Cond
	queue   *queue[func()]
	pending atomic.Int64
	gid     atomic.Int64
	started chan struct{}
}

// NewSerialScheduler 创建串行调度器并启动它的goroutine
func NewSerialScheduler(name string) *SerialScheduler {
	s := &SerialScheduler{
		name:    name,
		queue:   newQueue[func()](64),
		started: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	s.t.Go(s.loop)
	<-s.started
	return s
}

// MainScheduler 进程级的串行调度器，第一次使用时启动
var MainScheduler = sync.OnceValue(func() *SerialScheduler {
	return NewSerialScheduler("main")
})

// ConcurrentMainScheduler 基于MainScheduler的ConcurrentSerialScheduler
var ConcurrentMainScheduler = sync.OnceValue(func() *ConcurrentSerialScheduler {
	return NewConcurrentSerialScheduler(MainScheduler())
})

func (s *SerialScheduler) loop() error {
	s.gid.Store(goroutineID())
	close(s.started)
	Logger().Debug().Str("scheduler", s.name).Msg("rxgo: serial scheduler started")
	defer Logger().Debug().Str("scheduler", s.name).Msg("rxgo: serial scheduler stopped")

	for {
		s.mu.Lock()
		for s.queue.Len() == 0 && s.t.Alive() {
			s.cond.Wait()
		}
		if !s.t.Alive() {
			s.mu.Unlock()
			return nil
		}
		work, _ := s.queue.Dequeue()
		s.pending.Add(-1)
		s.mu.Unlock()

		work()
	}
}

// Name 调度器名称
func (s *SerialScheduler) Name() string {
	return s.name
}

// IsCurrent 当前代码是否运行在该调度器的goroutine上
func (s *SerialScheduler) IsCurrent() bool {
	return s.gid.Load() == goroutineID()
}

// Now 当前时间
func (s *SerialScheduler) Now() time.Time {
	return time.Now()
}

// Schedule 调度任务
func (s *SerialScheduler) Schedule(state any, action Action) Disposable {
	if s.pending.Load() == 0 && s.IsCurrent() {
		return action(state)
	}
	return s.enqueueAction(state, action)
}

// ScheduleRelative 延迟dueTime后在调度器goroutine上执行任务
func (s *SerialScheduler) ScheduleRelative(state any, dueTime time.Duration, action Action) Disposable {
	if dueTime <= 0 {
		return s.enqueueAction(state, action)
	}

	cancel := NewSingleAssignmentDisposable()
	timer := time.AfterFunc(dueTime, func() {
		s.enqueue(func() {
			if cancel.IsDisposed() {
				return
			}
			cancel.SetDisposable(action(state))
		})
	})

	return ComposeDisposables(cancel, NewDisposable(func() {
		timer.Stop()
	}))
}

// SchedulePeriodic 周期执行任务
func (s *SerialScheduler) SchedulePeriodic(state any, startAfter, period time.Duration, action func(state any) any) Disposable {
	return schedulePeriodicRecursive(s, state, startAfter, period, action)
}

// Stop 停止调度器，队列中尚未执行的任务被丢弃
//
// 在调度器自己的goroutine上调用时不等待goroutine退出。
func (s *SerialScheduler) Stop() error {
	s.t.Kill(nil)
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.IsCurrent() {
		return nil
	}
	return s.t.Wait()
}

func (s *SerialScheduler) enqueueAction(state any, action Action) Disposable {
	cancel := NewSingleAssignmentDisposable()
	if !s.enqueue(func() {
		if cancel.IsDisposed() {
			return
		}
		cancel.SetDisposable(action(state))
	}) {
		return NopDisposable
	}
	return cancel
}

func (s *SerialScheduler) enqueue(work func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.t.Alive() {
		Logger().Warn().Str("scheduler", s.name).Err(ErrSchedulerStopped).Msg("rxgo: work dropped")
		return false
	}
	s.queue.Enqueue(work)
	s.pending.Add(1)
	s.cond.Signal()
	return true
}

// ============================================================================
// 并发串行调度器 - Concurrent Serial Scheduler
// ============================================================================

// ConcurrentSerialScheduler 已经在串行调度器goroutine上时直接执行任务，否则入队
type ConcurrentSerialScheduler struct {
	serial *SerialScheduler
}

// NewConcurrentSerialScheduler 创建并发串行调度器
func NewConcurrentSerialScheduler(serial *SerialScheduler) *ConcurrentSerialScheduler {
	return &ConcurrentSerialScheduler{serial: serial}
}

// Now 当前时间
func (s *ConcurrentSerialScheduler) Now() time.Time {
	return s.serial.Now()
}

// Schedule 调度任务
func (s *ConcurrentSerialScheduler) Schedule(state any, action Action) Disposable {
	if s.serial.IsCurrent() {
		return action(state)
	}
	return s.serial.enqueueAction(state, action)
}

// ScheduleRelative 延迟执行任务
func (s *ConcurrentSerialScheduler) ScheduleRelative(state any, dueTime time.Duration, action Action) Disposable {
	return s.serial.ScheduleRelative(state, dueTime, action)
}

// SchedulePeriodic 周期执行任务
func (s *ConcurrentSerialScheduler) SchedulePeriodic(state any, startAfter, period time.Duration, action func(state any) any) Disposable {
	return s.serial.SchedulePeriodic(state, startAfter, period, action)
}
