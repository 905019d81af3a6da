// Scheduler tests for RxGo
// 调度器测试：trampoline、goroutine、串行、虚拟时间、递归与周期调度
package rxgo

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// CurrentThreadScheduler
// ============================================================================

func TestCurrentThreadScheduler(t *testing.T) {
	t.Run("嵌套调度按顺序执行", func(t *testing.T) {
		s := NewCurrentThreadScheduler()
		var order []string

		s.Schedule(nil, func(any) Disposable {
			order = append(order, "outer-start")
			s.Schedule(nil, func(any) Disposable {
				order = append(order, "inner-1")
				s.Schedule(nil, func(any) Disposable {
					order = append(order, "inner-3")
					return NopDisposable
				})
				return NopDisposable
			})
			s.Schedule(nil, func(any) Disposable {
				order = append(order, "inner-2")
				return NopDisposable
			})
			order = append(order, "outer-end")
			return NopDisposable
		})

		assert.Equal(t, []string{"outer-start", "outer-end", "inner-1", "inner-2", "inner-3"}, order)
		assert.True(t, s.IsScheduleRequired())
	})

	t.Run("取消排队的任务", func(t *testing.T) {
		s := NewCurrentThreadScheduler()
		ran := false

		s.Schedule(nil, func(any) Disposable {
			assert.False(t, s.IsScheduleRequired())
			d := s.Schedule(nil, func(any) Disposable {
				ran = true
				return NopDisposable
			})
			d.Dispose()
			return NopDisposable
		})

		assert.False(t, ran)
	})

	t.Run("不同goroutine互不影响", func(t *testing.T) {
		s := NewCurrentThreadScheduler()
		var wg sync.WaitGroup
		var total atomic.Int32

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Schedule(nil, func(any) Disposable {
					for j := 0; j < 10; j++ {
						s.Schedule(nil, func(any) Disposable {
							total.Add(1)
							return NopDisposable
						})
					}
					return NopDisposable
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(80), total.Load())
	})
}

// ============================================================================
// GoroutineScheduler
// ============================================================================

func TestGoroutineScheduler(t *testing.T) {
	s := NewGoroutineScheduler()

	t.Run("Schedule", func(t *testing.T) {
		done := make(chan any, 1)
		s.Schedule(42, func(state any) Disposable {
			done <- state
			return NopDisposable
		})

		select {
		case v := <-done:
			assert.Equal(t, 42, v)
		case <-time.After(time.Second):
			t.Fatal("action did not run")
		}
	})

	t.Run("ScheduleRelative取消", func(t *testing.T) {
		var ran atomic.Bool
		d := s.ScheduleRelative(nil, 50*time.Millisecond, func(any) Disposable {
			ran.Store(true)
			return NopDisposable
		})
		d.Dispose()

		time.Sleep(100 * time.Millisecond)
		assert.False(t, ran.Load())
	})

	t.Run("SchedulePeriodic传递状态", func(t *testing.T) {
		states := make(chan int, 16)
		d := s.SchedulePeriodic(0, 0, 5*time.Millisecond, func(state any) any {
			n := state.(int)
			states <- n
			return n + 1
		})

		for want := 0; want < 3; want++ {
			select {
			case got := <-states:
				assert.Equal(t, want, got)
			case <-time.After(time.Second):
				t.Fatal("periodic action did not run")
			}
		}
		d.Dispose()
	})

	t.Run("周期必须为正", func(t *testing.T) {
		assert.Panics(t, func() {
			s.SchedulePeriodic(nil, 0, 0, func(state any) any { return state })
		})
	})
}

// ============================================================================
// SerialScheduler
// ============================================================================

func TestSerialScheduler(t *testing.T) {
	s := NewSerialScheduler("test")
	defer s.Stop()

	t.Run("FIFO顺序", func(t *testing.T) {
		var mu sync.Mutex
		var order []int
		done := make(chan struct{})

		for i := 0; i < 100; i++ {
			s.Schedule(i, func(state any) Disposable {
				mu.Lock()
				order = append(order, state.(int))
				mu.Unlock()
				if state.(int) == 99 {
					close(done)
				}
				return NopDisposable
			})
		}

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("serial scheduler did not drain")
		}

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, order, 100)
		for i, v := range order {
			assert.Equal(t, i, v)
		}
	})

	t.Run("在调度器goroutine上直接执行", func(t *testing.T) {
		done := make(chan []string, 1)

		s.Schedule(nil, func(any) Disposable {
			var order []string
			assert.True(t, s.IsCurrent())
			s.Schedule(nil, func(any) Disposable {
				order = append(order, "inline")
				return NopDisposable
			})
			order = append(order, "after")
			done <- order
			return NopDisposable
		})

		select {
		case order := <-done:
			assert.Equal(t, []string{"inline", "after"}, order)
		case <-time.After(time.Second):
			t.Fatal("action did not run")
		}
		assert.False(t, s.IsCurrent())
	})

	t.Run("停止后拒绝任务", func(t *testing.T) {
		stopped := NewSerialScheduler("stopped")
		require.NoError(t, stopped.Stop())

		ran := false
		d := stopped.Schedule(nil, func(any) Disposable {
			ran = true
			return NopDisposable
		})
		assert.Equal(t, NopDisposable, d)
		assert.False(t, ran)
	})
}

func TestConcurrentSerialScheduler(t *testing.T) {
	serial := NewSerialScheduler("concurrent")
	defer serial.Stop()
	s := NewConcurrentSerialScheduler(serial)

	done := make(chan []string, 1)
	s.Schedule(nil, func(any) Disposable {
		var order []string
		serial.ScheduleRelative(nil, 0, func(any) Disposable {
			order = append(order, "queued")
			return NopDisposable
		})
		// 串行调度器有排队任务时入队，并发串行调度器直接执行
		serial.Schedule(nil, func(any) Disposable {
			order = append(order, "serial")
			done <- order
			return NopDisposable
		})
		s.Schedule(nil, func(any) Disposable {
			order = append(order, "inline")
			return NopDisposable
		})
		return NopDisposable
	})

	select {
	case order := <-done:
		assert.Equal(t, []string{"inline", "queued", "serial"}, order)
	case <-time.After(time.Second):
		t.Fatal("serial scheduler did not run")
	}
}

func TestMainScheduler(t *testing.T) {
	assert.Same(t, MainScheduler(), MainScheduler())
	assert.Equal(t, "main", MainScheduler().Name())

	done := make(chan bool, 1)
	ConcurrentMainScheduler().Schedule(nil, func(any) Disposable {
		done <- MainScheduler().IsCurrent()
		return NopDisposable
	})

	select {
	case current := <-done:
		assert.True(t, current)
	case <-time.After(time.Second):
		t.Fatal("main scheduler did not run")
	}
}

// ============================================================================
// VirtualTimeScheduler
// ============================================================================

func TestVirtualTimeScheduler(t *testing.T) {
	t.Run("按到期时间执行", func(t *testing.T) {
		s := NewVirtualTimeScheduler(epoch)
		var order []string
		var at []time.Duration

		record := func(name string) Action {
			return func(any) Disposable {
				order = append(order, name)
				at = append(at, s.Now().Sub(epoch))
				return NopDisposable
			}
		}

		s.ScheduleRelative(nil, 30*time.Millisecond, record("c"))
		s.ScheduleRelative(nil, 10*time.Millisecond, record("a"))
		s.ScheduleRelative(nil, 10*time.Millisecond, record("b"))
		s.Schedule(nil, record("now"))

		s.AdvanceTimeBy(20 * time.Millisecond)
		assert.Equal(t, []string{"now", "a", "b"}, order)
		assert.Equal(t, epoch.Add(20*time.Millisecond), s.Now())
		assert.Equal(t, 1, s.Pending())

		s.Start()
		assert.Equal(t, []string{"now", "a", "b", "c"}, order)
		assert.Equal(t, []time.Duration{0, 10 * time.Millisecond, 10 * time.Millisecond, 30 * time.Millisecond}, at)
	})

	t.Run("取消的任务被跳过", func(t *testing.T) {
		s := NewVirtualTimeScheduler(epoch)
		ran := false
		d := s.ScheduleRelative(nil, time.Second, func(any) Disposable {
			ran = true
			return NopDisposable
		})
		d.Dispose()

		assert.Equal(t, 0, s.Pending())
		s.AdvanceTimeBy(2 * time.Second)
		assert.False(t, ran)
	})

	t.Run("任务中继续调度", func(t *testing.T) {
		s := NewVirtualTimeScheduler(epoch)
		var ticks []time.Duration

		var tick Action
		tick = func(state any) Disposable {
			ticks = append(ticks, s.Now().Sub(epoch))
			if n := state.(int); n < 3 {
				s.ScheduleRelative(n+1, time.Second, tick)
			}
			return NopDisposable
		}
		s.ScheduleRelative(1, time.Second, tick)

		s.AdvanceTimeTo(epoch.Add(10 * time.Second))
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, ticks)
		assert.Equal(t, epoch.Add(10*time.Second), s.Now())
	})

	t.Run("周期调度", func(t *testing.T) {
		s := NewVirtualTimeScheduler(epoch)
		var states []int

		d := s.SchedulePeriodic(0, time.Second, time.Second, func(state any) any {
			states = append(states, state.(int))
			return state.(int) + 1
		})

		s.AdvanceTimeBy(3500 * time.Millisecond)
		d.Dispose()
		s.AdvanceTimeBy(10 * time.Second)

		assert.Equal(t, []int{0, 1, 2}, states)
	})

	t.Run("释放后忽略调度", func(t *testing.T) {
		s := NewVirtualTimeScheduler(epoch)
		s.Dispose()
		assert.Equal(t, NopDisposable, s.Schedule(nil, func(any) Disposable { return NopDisposable }))
		assert.Equal(t, 0, s.Pending())
	})
}

// ============================================================================
// 递归调度
// ============================================================================

func TestScheduleRecursive(t *testing.T) {
	t.Run("trampoline上深度递归", func(t *testing.T) {
		count := 0
		ScheduleRecursive(NewCurrentThreadScheduler(), 0, func(n int, recurse func(int)) {
			count++
			if n < 100000 {
				recurse(n + 1)
			}
		})
		assert.Equal(t, 100001, count)
	})

	t.Run("释放后停止递归", func(t *testing.T) {
		s := NewVirtualTimeScheduler(epoch)
		count := 0
		d := ScheduleRecursive(delayedScheduler{s, time.Second}, 0, func(n int, recurse func(int)) {
			count++
			recurse(n + 1)
		})

		s.AdvanceTimeBy(time.Second)
		require.Equal(t, 1, count)
		assert.Equal(t, 1, s.Pending())

		d.Dispose()
		s.Start()
		assert.Equal(t, 1, count)
	})
}

// delayedScheduler 把每次调度都延迟delay
type delayedScheduler struct {
	scheduler Scheduler
	delay     time.Duration
}

func (d delayedScheduler) Schedule(state any, action Action) Disposable {
	return d.scheduler.ScheduleRelative(state, d.delay, action)
}
