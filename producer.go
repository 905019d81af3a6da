// Producer implementation for RxGo
// Producer把"准备订阅"与"运行Sink"分开，返回组合后的Disposable
package rxgo

import (
	"sync/atomic"
)

// Runner 构造Sink并把它连接到上游
//
// sink负责Sink内部状态的清理，subscription负责上游订阅的清理，
// 两者由Producer组合成一个Disposable返回给调用方。
type Runner[T any] interface {
	Run(observer Observer[T], cancel Cancelable) (sink Disposable, subscription Disposable)
}

// RunnerFunc 函数形式的Runner
type RunnerFunc[T any] func(observer Observer[T], cancel Cancelable) (sink Disposable, subscription Disposable)

// Run 运行Sink
func (f RunnerFunc[T]) Run(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
	return f(observer, cancel)
}

// Producer 基于Runner的Observable
type Producer[T any] struct {
	runner Runner[T]
}

// NewProducer 创建Producer
func NewProducer[T any](runner Runner[T]) *Producer[T] {
	return &Producer[T]{runner: runner}
}

// Subscribe 订阅观察者
func (p *Producer[T]) Subscribe(observer Observer[T]) Disposable {
	disposer := &sinkDisposer{}
	sink, subscription := p.runner.Run(observer, disposer)
	disposer.setSinkAndSubscription(sink, subscription)
	return disposer
}

// ============================================================================
// sinkDisposer
// ============================================================================

// sinkDisposer 订阅级别的取消句柄
//
// Sink可能在Run返回之前就因为终止事件而释放自己，此时sink与subscription
// 在赋值时立即被释放。
type sinkDisposer struct {
	state        atomic.Int32
	sink         Disposable
	subscription Disposable
}

func (d *sinkDisposer) setSinkAndSubscription(sink, subscription Disposable) {
	d.sink = sink
	d.subscription = subscription

	prev := d.state.Or(stateAssigned)
	if prev&stateAssigned != 0 {
		fatalError("Producer: sink and subscription have already been set")
	}
	if prev&stateDisposed != 0 {
		d.disposeAll()
	}
}

// Dispose 释放Sink和上游订阅
func (d *sinkDisposer) Dispose() {
	prev := d.state.Or(stateDisposed)
	if prev&stateDisposed != 0 {
		return
	}
	if prev&stateAssigned != 0 {
		d.disposeAll()
	}
}

func (d *sinkDisposer) disposeAll() {
	sink, subscription := d.sink, d.subscription
	d.sink, d.subscription = nil, nil
	if sink != nil {
		sink.Dispose()
	}
	if subscription != nil {
		subscription.Dispose()
	}
}

// IsDisposed 检查是否已释放
func (d *sinkDisposer) IsDisposed() bool {
	return d.state.Load()&stateDisposed != 0
}
