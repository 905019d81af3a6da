// Utility operators for RxGo
// 工具操作符实现，包含Using, SubscribeOn
package rxgo

// ============================================================================
// Using 资源绑定
// ============================================================================

// Using 创建与订阅生命周期绑定的资源
//
// resourceFactory在每次订阅时调用，observableFactory用资源构造内部序列。
// 内部序列终止或订阅被取消时资源被释放，并且只释放一次。
// 任一工厂返回错误时序列以该错误终止，已经创建的资源同样会被释放。
func Using[T any, R Disposable](resourceFactory func() (R, error), observableFactory func(resource R) (Observable[T], error)) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &anonymousSink[T]{}
		sink.Init(observer, cancel)
		return sink, runUsing(sink, resourceFactory, observableFactory)
	}))
}

func runUsing[T any, R Disposable](sink Observer[T], resourceFactory func() (R, error), observableFactory func(R) (Observable[T], error)) Disposable {
	resource, err := resourceFactory()
	if err != nil {
		return Throw[T](err).Subscribe(sink)
	}

	source, err := observableFactory(resource)
	if err != nil {
		source = Throw[T](err)
	}

	return ComposeDisposables(source.Subscribe(sink), resource)
}

// ============================================================================
// SubscribeOn
// ============================================================================

// SubscribeOn 在scheduler上执行订阅
func SubscribeOn[T any](source Observable[T], scheduler ImmediateScheduler) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &anonymousSink[T]{}
		sink.Init(observer, cancel)

		subscription := NewSerialDisposable()
		scheduled := NewSingleAssignmentDisposable()
		subscription.SetDisposable(scheduled)

		scheduled.SetDisposable(scheduler.Schedule(nil, func(any) Disposable {
			subscription.SetDisposable(source.Subscribe(sink))
			return NopDisposable
		}))

		return sink, subscription
	}))
}
