// Package rxgo provides reactive programming primitives for Go
// 基于泛型的响应式编程核心：Observable/Observer契约、Producer/Sink执行模型、
// Disposable资源生命周期以及可插拔的调度器
package rxgo

import (
	"time"
)

// ============================================================================
// 生命周期管理
// ============================================================================

// Disposable 可释放资源的接口
//
// Dispose 必须是幂等的，并且可以在任意goroutine中调用。
type Disposable interface {
	// Dispose 释放资源
	Dispose()
}

// Cancelable 可以查询释放状态的Disposable
type Cancelable interface {
	Disposable
	// IsDisposed 检查是否已释放
	IsDisposed() bool
}

// ============================================================================
// Observer / Observable 核心接口
// ============================================================================

// Observer 观察者接口，接收Next/Error/Completed事件
type Observer[T any] interface {
	// On 接收一个事件
	On(event Event[T])
}

// Observable 可观察序列的核心接口
//
// Observable是冷的：订阅之前不会发射任何事件，每一次订阅都是独立的投递会话。
type Observable[T any] interface {
	// Subscribe 订阅观察者，返回用于取消订阅的Disposable
	Subscribe(observer Observer[T]) Disposable
}

// ============================================================================
// 调度器接口
// ============================================================================

// Action 调度器执行的动作，返回动作自身持有的资源
type Action func(state any) Disposable

// ImmediateScheduler 只支持立即调度的调度器
type ImmediateScheduler interface {
	// Schedule 调度一个任务
	Schedule(state any, action Action) Disposable
}

// Scheduler 调度器接口，控制任务执行时机和方式
type Scheduler interface {
	ImmediateScheduler

	// Now 调度器的当前时间
	Now() time.Time

	// ScheduleRelative 延迟dueTime后执行任务
	ScheduleRelative(state any, dueTime time.Duration, action Action) Disposable

	// SchedulePeriodic 在startAfter之后按period周期执行任务，
	// 每次执行的返回值作为下一次执行的状态
	SchedulePeriodic(state any, startAfter, period time.Duration, action func(state any) any) Disposable
}

// ============================================================================
// 通用约束
// ============================================================================

// Integer 整数类型约束，用于Range
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}
