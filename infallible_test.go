package rxgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfallible(t *testing.T) {
	t.Run("CreateInfallible", func(t *testing.T) {
		source := CreateInfallible(func(emit func(InfallibleEvent[string])) Disposable {
			emit(InfallibleNext("a"))
			emit(InfallibleNext("b"))
			emit(InfallibleCompleted[string]())
			return NopDisposable
		})

		var values []string
		completed := false
		SubscribeInfallible(source,
			func(v string) { values = append(values, v) },
			func() { completed = true },
		)

		assert.Equal(t, []string{"a", "b"}, values)
		assert.True(t, completed)
	})

	t.Run("错误替换为默认值", func(t *testing.T) {
		source := AsInfallible(Throw[int](errTest), -1)

		rec := newRecorder[int]()
		source.Subscribe(rec)
		assert.Equal(t, []Event[int]{NextEvent(-1), CompletedEvent[int]()}, rec.Events())
	})

	t.Run("正常序列原样转发", func(t *testing.T) {
		rec := newRecorder[[]int]()
		ToArray(AsInfallible(Just(1, 2), 0).AsObservable()).Subscribe(rec)
		assert.Equal(t, [][]int{{1, 2}}, rec.Values())
		assert.True(t, rec.Completed())
	})

	t.Run("事件转换", func(t *testing.T) {
		assert.Equal(t, NextEvent(3), InfallibleNext(3).Event())
		assert.Equal(t, CompletedEvent[int](), InfallibleCompleted[int]().Event())
	})
}
