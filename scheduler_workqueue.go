package rxgo

import (
	"container/heap"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"gopkg.in/tomb.v2"
)

// ============================================================================
// 优先级
// ============================================================================

// QueuePriority 任务优先级
type QueuePriority int

const (
	PriorityVeryLow  QueuePriority = -8
	PriorityLow      QueuePriority = -4
	PriorityNormal   QueuePriority = 0
	PriorityHigh     QueuePriority = 4
	PriorityVeryHigh QueuePriority = 8
)

func (p QueuePriority) String() string {
	switch p {
	case PriorityVeryLow:
		return "very_low"
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityVeryHigh:
		return "very_high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParseQueuePriority 解析优先级名称
func ParseQueuePriority(name string) (QueuePriority, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "very_low", "verylow":
		return PriorityVeryLow, nil
	case "low":
		return PriorityLow, nil
	case "", "normal":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "very_high", "veryhigh":
		return PriorityVeryHigh, nil
	default:
		return PriorityNormal, NewConfigError(KeyPriority, name, "unknown priority")
	}
}

// ============================================================================
// 工作队列接口
// ============================================================================

// Operation 提交给工作队列的任务
type Operation struct {
	Priority QueuePriority
	Run      func()

	seq uint64
}

// WorkQueue 外部配置的工作队列
type WorkQueue interface {
	// AddOperation 提交任务，队列已停止时返回错误
	AddOperation(op *Operation) error
}

// ============================================================================
// 工作队列调度器 - Work Queue Scheduler
// ============================================================================

// WorkQueueScheduler 把任务委托给WorkQueue执行，并为任务标记优先级
type WorkQueueScheduler struct {
	queue    WorkQueue
	priority QueuePriority
}

// NewWorkQueueScheduler 创建工作队列调度器
func NewWorkQueueScheduler(queue WorkQueue, priority QueuePriority) *WorkQueueScheduler {
	return &WorkQueueScheduler{queue: queue, priority: priority}
}

// Priority 新任务的优先级
func (s *WorkQueueScheduler) Priority() QueuePriority {
	return s.priority
}

// Schedule 提交任务，任务开始之前被取消则不会执行
func (s *WorkQueueScheduler) Schedule(state any, action Action) Disposable {
	cancel := NewSingleAssignmentDisposable()

	op := &Operation{
		Priority: s.priority,
		Run: func() {
			if cancel.IsDisposed() {
				return
			}
			cancel.SetDisposable(action(state))
		},
	}

	if err := s.queue.AddOperation(op); err != nil {
		Logger().Warn().Err(err).Stringer("priority", s.priority).Msg("rxgo: work queue rejected operation")
		return NopDisposable
	}
	return cancel
}

// ============================================================================
// 优先级工作队列
// ============================================================================

// operationHeap 高优先级优先，同优先级按提交顺序
type operationHeap []*Operation

func (h operationHeap) Len() int { return len(h) }

func (h operationHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h operationHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *operationHeap) Push(x any) { *h = append(*h, x.(*Operation)) }

func (h *operationHeap) Pop() any {
	old := *h
	n := len(old)
	op := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return op
}

// PriorityWorkQueue 有界的优先级工作队列，由固定数量的worker执行
type PriorityWorkQueue struct {
	t        tomb.Tomb
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    operationHeap
	capacity int
	seq      uint64
	limiter  *rate.Limiter
	workers  map[int64]struct{}
}

// NewPriorityWorkQueue 创建工作队列并启动worker
func NewPriorityWorkQueue(options ...Option) *PriorityWorkQueue {
	config := newConfig(options...)

	q := &PriorityWorkQueue{
		capacity: config.WorkQueueCapacity,
		workers:  make(map[int64]struct{}, config.WorkQueueWorkers),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	if config.RateLimit > 0 {
		q.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}

	for i := 0; i < config.WorkQueueWorkers; i++ {
		q.t.Go(q.worker)
	}

	Logger().Debug().
		Int("workers", config.WorkQueueWorkers).
		Int("capacity", config.WorkQueueCapacity).
		Float64("rate_limit", config.RateLimit).
		Msg("rxgo: priority work queue started")

	return q
}

// NewWorkQueueSchedulerFromConfig 根据配置创建工作队列及其调度器
func NewWorkQueueSchedulerFromConfig(config *Config) (*WorkQueueScheduler, *PriorityWorkQueue) {
	q := NewPriorityWorkQueue(WithConfig(config))
	priority := PriorityNormal
	if config != nil {
		priority = config.DefaultPriority
	}
	return NewWorkQueueScheduler(q, priority), q
}

// AddOperation 提交任务，队列满时阻塞直到有空位或队列停止
//
// 在worker上运行的任务提交新任务时不阻塞，允许暂时超出容量，
// 否则所有worker都可能等待彼此腾出空位。
func (q *PriorityWorkQueue) AddOperation(op *Operation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		if _, onWorker := q.workers[goroutineID()]; !onWorker {
			for len(q.items) >= q.capacity && q.t.Alive() {
				q.notFull.Wait()
			}
		}
	}
	if !q.t.Alive() {
		return ErrSchedulerStopped
	}

	q.seq++
	op.seq = q.seq
	heap.Push(&q.items, op)
	q.notEmpty.Signal()
	return nil
}

// Len 排队中的任务数量
func (q *PriorityWorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Stop 停止所有worker并丢弃尚未开始的任务
func (q *PriorityWorkQueue) Stop() error {
	q.t.Kill(nil)
	q.mu.Lock()
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	dropped := len(q.items)
	q.items = nil
	q.mu.Unlock()

	if dropped > 0 {
		Logger().Debug().Int("dropped", dropped).Msg("rxgo: priority work queue stopped with pending operations")
	}
	return q.t.Wait()
}

func (q *PriorityWorkQueue) worker() error {
	ctx := q.t.Context(nil)

	q.mu.Lock()
	q.workers[goroutineID()] = struct{}{}
	q.mu.Unlock()

	for {
		// 先取得令牌再出队，停止时尚未出队的任务都计入丢弃数量
		if q.limiter != nil {
			if err := q.limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		q.mu.Lock()
		for len(q.items) == 0 && q.t.Alive() {
			q.notEmpty.Wait()
		}
		if !q.t.Alive() {
			q.mu.Unlock()
			return nil
		}
		op := heap.Pop(&q.items).(*Operation)
		q.notFull.Signal()
		q.mu.Unlock()

		q.execute(op)
	}
}

// execute 执行任务，任务panic只记录日志，worker继续运行
func (q *PriorityWorkQueue) execute(op *Operation) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error().
				Interface("panic", r).
				Stringer("priority", op.Priority).
				Msg("rxgo: operation panicked")
		}
	}()
	op.Run()
}
