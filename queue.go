package rxgo

// queue 基于环形缓冲区的FIFO队列，容量不足时自动扩容
//
// queue不是并发安全的，由持有者负责加锁。
type queue[T any] struct {
	items []T
	head  int
	count int
}

// newQueue 创建指定初始容量的队列
func newQueue[T any](capacity int) *queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &queue[T]{items: make([]T, capacity)}
}

// Len 队列中的元素数量
func (q *queue[T]) Len() int {
	return q.count
}

// Enqueue 入队
func (q *queue[T]) Enqueue(item T) {
	if q.count == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.count)%len(q.items)] = item
	q.count++
}

// Dequeue 出队
func (q *queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return item, true
}

// Peek 查看队首元素
func (q *queue[T]) Peek() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

func (q *queue[T]) grow() {
	items := make([]T, len(q.items)*2)
	for i := 0; i < q.count; i++ {
		items[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = items
	q.head = 0
}
