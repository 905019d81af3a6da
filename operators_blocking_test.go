// Blocking operator tests for RxGo
// 阻塞操作符测试
package rxgo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockingToSlice(t *testing.T) {
	ctx := context.Background()

	values, err := BlockingToSlice(ctx, Range(1, 4, nil))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, values)

	values, err = BlockingToSlice(ctx, Empty[int]())
	require.NoError(t, err)
	assert.Equal(t, []int{}, values)

	_, err = BlockingToSlice(ctx, Throw[int](errTest))
	assert.ErrorIs(t, err, errTest)

	async, err := BlockingToSlice(ctx, SubscribeOn(Just("a", "b"), Default))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, async)
}

func TestBlockingContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	cleanup := NewBooleanDisposable()
	source := Create(func(Observer[int]) Disposable { return cleanup })

	_, err := BlockingToSlice(ctx, source)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, cleanup.IsDisposed())
}

func TestBlockingFirstAndLast(t *testing.T) {
	ctx := context.Background()

	first, err := BlockingFirst(ctx, Just(3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, 3, first)

	last, err := BlockingLast(ctx, Just(3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, last)

	_, err = BlockingFirst(ctx, Empty[int]())
	assert.ErrorIs(t, err, ErrNoElements)

	_, err = BlockingLast(ctx, Empty[int]())
	assert.ErrorIs(t, err, ErrNoElements)

	_, err = BlockingLast(ctx, Throw[int](errTest))
	assert.ErrorIs(t, err, errTest)

	// 取到第一个值后取消订阅
	subject := NewPublishSubject[int]()
	go func() {
		for !subject.HasObservers() {
			time.Sleep(time.Millisecond)
		}
		subject.OnNext(9)
	}()
	first, err = BlockingFirst[int](ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, 9, first)
	assert.False(t, subject.HasObservers())
}

func TestBlockingForEach(t *testing.T) {
	sum := 0
	err := BlockingForEach(context.Background(), Range(1, 10, nil), func(v int) {
		sum += v
	})
	require.NoError(t, err)
	assert.Equal(t, 55, sum)
}
