package rxgo

// InfallibleEvent 不会出错的序列中的事件：Next(T) | Completed
type InfallibleEvent[T any] struct {
	Completed bool
	Value     T
}

// InfallibleNext 创建包含值的事件
func InfallibleNext[T any](value T) InfallibleEvent[T] {
	return InfallibleEvent[T]{Value: value}
}

// InfallibleCompleted 创建完成事件
func InfallibleCompleted[T any]() InfallibleEvent[T] {
	return InfallibleEvent[T]{Completed: true}
}

// Event 转换为普通事件
func (e InfallibleEvent[T]) Event() Event[T] {
	if e.Completed {
		return CompletedEvent[T]()
	}
	return NextEvent(e.Value)
}

// Infallible 保证不会发射Error事件的Observable
type Infallible[T any] struct {
	source Observable[T]
}

// Subscribe 订阅观察者
func (i Infallible[T]) Subscribe(observer Observer[T]) Disposable {
	return i.source.Subscribe(observer)
}

// AsObservable 转换为普通Observable
func (i Infallible[T]) AsObservable() Observable[T] {
	return i.source
}

// CreateInfallible 从只能发射Next和Completed的subscribe函数创建Infallible
func CreateInfallible[T any](subscribe func(emit func(InfallibleEvent[T])) Disposable) Infallible[T] {
	return Infallible[T]{
		source: Create(func(observer Observer[T]) Disposable {
			return subscribe(func(event InfallibleEvent[T]) {
				observer.On(event.Event())
			})
		}),
	}
}

// AsInfallible 源出错时发射fallback然后完成
func AsInfallible[T any](source Observable[T], fallback T) Infallible[T] {
	return Infallible[T]{
		source: NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
			sink := &anonymousSink[T]{}
			sink.Init(observer, cancel)
			return sink, source.Subscribe(ObserverFunc[T](func(event Event[T]) {
				if event.Kind == KindError {
					Logger().Debug().Err(event.Err).Msg("rxgo: error replaced by fallback value")
					sink.On(NextEvent(fallback))
					sink.On(CompletedEvent[T]())
					return
				}
				sink.On(event)
			}))
		})),
	}
}

// SubscribeInfallible 使用回调函数订阅Infallible
func SubscribeInfallible[T any](source Infallible[T], onNext func(T), onCompleted func()) Disposable {
	return source.Subscribe(NewObserver(onNext, nil, onCompleted))
}
