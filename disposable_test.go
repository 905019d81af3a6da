// Disposable tests for RxGo
// 资源释放原语测试
package rxgo

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDisposable(t *testing.T) {
	t.Run("只执行一次", func(t *testing.T) {
		var calls atomic.Int32
		d := NewDisposable(func() { calls.Add(1) })

		assert.False(t, d.IsDisposed())
		d.Dispose()
		d.Dispose()
		assert.True(t, d.IsDisposed())
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("并发释放", func(t *testing.T) {
		var calls atomic.Int32
		d := NewDisposable(func() { calls.Add(1) })

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.Dispose()
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("nil动作", func(t *testing.T) {
		d := NewDisposable(nil)
		d.Dispose()
		assert.True(t, d.IsDisposed())
	})
}

func TestComposeDisposables(t *testing.T) {
	var order []int
	d := ComposeDisposables(
		NewDisposable(func() { order = append(order, 1) }),
		nil,
		NewDisposable(func() { order = append(order, 2) }),
	)

	d.Dispose()
	d.Dispose()
	assert.Equal(t, []int{1, 2}, order)
	assert.True(t, d.IsDisposed())
}

func TestSingleAssignmentDisposable(t *testing.T) {
	t.Run("先赋值后释放", func(t *testing.T) {
		inner := NewBooleanDisposable()
		d := NewSingleAssignmentDisposable()
		d.SetDisposable(inner)

		assert.False(t, inner.IsDisposed())
		d.Dispose()
		assert.True(t, inner.IsDisposed())
		assert.True(t, d.IsDisposed())
	})

	t.Run("先释放后赋值", func(t *testing.T) {
		inner := NewBooleanDisposable()
		d := NewSingleAssignmentDisposable()
		d.Dispose()
		d.SetDisposable(inner)

		assert.True(t, inner.IsDisposed())
	})

	t.Run("重复赋值panic", func(t *testing.T) {
		d := NewSingleAssignmentDisposable()
		d.SetDisposable(NopDisposable)
		assert.Panics(t, func() {
			d.SetDisposable(NopDisposable)
		})
	})

	t.Run("重复赋值保留第一次的值", func(t *testing.T) {
		first := NewBooleanDisposable()
		second := NewBooleanDisposable()
		d := NewSingleAssignmentDisposable()
		d.SetDisposable(first)
		assert.Panics(t, func() { d.SetDisposable(second) })

		d.Dispose()
		assert.True(t, first.IsDisposed())
		assert.False(t, second.IsDisposed())
	})

	t.Run("赋值与释放竞争", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			inner := NewBooleanDisposable()
			d := NewSingleAssignmentDisposable()

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				d.SetDisposable(inner)
			}()
			go func() {
				defer wg.Done()
				d.Dispose()
			}()
			wg.Wait()

			assert.True(t, inner.IsDisposed())
		}
	})
}

func TestSerialDisposable(t *testing.T) {
	first := NewBooleanDisposable()
	second := NewBooleanDisposable()
	third := NewBooleanDisposable()

	d := NewSerialDisposable()
	d.SetDisposable(first)
	d.SetDisposable(second)

	assert.True(t, first.IsDisposed())
	assert.False(t, second.IsDisposed())
	assert.Equal(t, Disposable(second), d.Disposable())

	d.Dispose()
	assert.True(t, second.IsDisposed())

	d.SetDisposable(third)
	assert.True(t, third.IsDisposed())
	assert.Nil(t, d.Disposable())
}

func TestCompositeDisposable(t *testing.T) {
	t.Run("增删成员", func(t *testing.T) {
		a := NewBooleanDisposable()
		b := NewBooleanDisposable()

		cd := NewCompositeDisposable(a)
		key, ok := cd.Add(b)
		assert.True(t, ok)
		assert.Equal(t, 2, cd.Count())

		removed := cd.Remove(key)
		assert.Equal(t, Disposable(b), removed)
		assert.False(t, b.IsDisposed())
		assert.Equal(t, 1, cd.Count())

		cd.Dispose()
		assert.True(t, a.IsDisposed())
		assert.False(t, b.IsDisposed())
		assert.Equal(t, 0, cd.Count())
	})

	t.Run("释放后添加", func(t *testing.T) {
		cd := NewCompositeDisposable()
		cd.Dispose()

		late := NewBooleanDisposable()
		_, ok := cd.Add(late)
		assert.False(t, ok)
		assert.True(t, late.IsDisposed())
	})

	t.Run("移除未知key", func(t *testing.T) {
		cd := NewCompositeDisposable()
		assert.Nil(t, cd.Remove(DisposeKey(42)))
	})
}
