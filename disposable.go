// Disposable implementations for RxGo
// 资源释放原语：匿名、组合、单次赋值、串行替换
package rxgo

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// 空Disposable
// ============================================================================

type nopDisposable struct{}

func (nopDisposable) Dispose() {}

// NopDisposable 不持有任何资源的Disposable
var NopDisposable Disposable = nopDisposable{}

// ============================================================================
// 匿名Disposable
// ============================================================================

// anonymousDisposable 基于动作的可释放资源
type anonymousDisposable struct {
	disposed atomic.Bool
	action   atomic.Pointer[func()]
}

// NewDisposable 创建基于动作的可释放资源
//
// 第一次Dispose时执行action，执行后释放对action的引用。
func NewDisposable(action func()) Cancelable {
	d := &anonymousDisposable{}
	if action != nil {
		d.action.Store(&action)
	}
	return d
}

// Dispose 释放资源
func (d *anonymousDisposable) Dispose() {
	if d.disposed.Swap(true) {
		return
	}
	if action := d.action.Swap(nil); action != nil {
		(*action)()
	}
}

// IsDisposed 检查是否已释放
func (d *anonymousDisposable) IsDisposed() bool {
	return d.disposed.Load()
}

// ============================================================================
// BooleanDisposable
// ============================================================================

// BooleanDisposable 只记录释放状态
type BooleanDisposable struct {
	disposed atomic.Bool
}

// NewBooleanDisposable 创建BooleanDisposable
func NewBooleanDisposable() *BooleanDisposable {
	return &BooleanDisposable{}
}

// Dispose 标记为已释放
func (d *BooleanDisposable) Dispose() {
	d.disposed.Store(true)
}

// IsDisposed 检查是否已释放
func (d *BooleanDisposable) IsDisposed() bool {
	return d.disposed.Load()
}

// ============================================================================
// 固定组合
// ============================================================================

// groupDisposable 固定成员的组合Disposable
type groupDisposable struct {
	disposed atomic.Bool
	items    []Disposable
}

// ComposeDisposables 将多个Disposable组合为一个
//
// 释放时按参数顺序释放所有成员，nil成员被忽略。
func ComposeDisposables(disposables ...Disposable) Cancelable {
	items := make([]Disposable, 0, len(disposables))
	for _, d := range disposables {
		if d != nil {
			items = append(items, d)
		}
	}
	return &groupDisposable{items: items}
}

// Dispose 释放所有成员
func (g *groupDisposable) Dispose() {
	if g.disposed.Swap(true) {
		return
	}
	items := g.items
	g.items = nil
	for _, d := range items {
		d.Dispose()
	}
}

// IsDisposed 检查是否已释放
func (g *groupDisposable) IsDisposed() bool {
	return g.disposed.Load()
}

// ============================================================================
// SingleAssignmentDisposable
// ============================================================================

const (
	stateDisposed int32 = 1 << iota
	stateAssigned
)

// SingleAssignmentDisposable 只能赋值一次的Disposable
//
// 如果在赋值之前已经被释放，赋值时会立即释放传入的Disposable。
type SingleAssignmentDisposable struct {
	state atomic.Int32
	inner atomic.Pointer[Disposable]
}

// NewSingleAssignmentDisposable 创建SingleAssignmentDisposable
func NewSingleAssignmentDisposable() *SingleAssignmentDisposable {
	return &SingleAssignmentDisposable{}
}

// SetDisposable 设置内部Disposable，重复设置会panic并保留第一次设置的值
func (d *SingleAssignmentDisposable) SetDisposable(inner Disposable) {
	if inner == nil {
		inner = NopDisposable
	}
	if d.state.Load()&stateAssigned != 0 || !d.inner.CompareAndSwap(nil, &inner) {
		fatalError("SingleAssignmentDisposable: disposable has already been assigned")
	}

	prev := d.state.Or(stateAssigned)
	if prev&stateDisposed != 0 {
		d.disposeInner()
	}
}

// Dispose 释放内部Disposable
func (d *SingleAssignmentDisposable) Dispose() {
	prev := d.state.Or(stateDisposed)
	if prev&stateDisposed != 0 {
		return
	}
	if prev&stateAssigned != 0 {
		d.disposeInner()
	}
}

func (d *SingleAssignmentDisposable) disposeInner() {
	if inner := d.inner.Swap(nil); inner != nil {
		(*inner).Dispose()
	}
}

// IsDisposed 检查是否已释放
func (d *SingleAssignmentDisposable) IsDisposed() bool {
	return d.state.Load()&stateDisposed != 0
}

// ============================================================================
// SerialDisposable
// ============================================================================

// SerialDisposable 可以反复替换内部Disposable，替换时释放旧值
type SerialDisposable struct {
	mu       sync.Mutex
	current  Disposable
	disposed bool
}

// NewSerialDisposable 创建SerialDisposable
func NewSerialDisposable() *SerialDisposable {
	return &SerialDisposable{}
}

// Disposable 返回当前的内部Disposable
func (d *SerialDisposable) Disposable() Disposable {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// SetDisposable 替换内部Disposable
//
// 已释放时传入的Disposable会被立即释放。
func (d *SerialDisposable) SetDisposable(next Disposable) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		if next != nil {
			next.Dispose()
		}
		return
	}
	prev := d.current
	d.current = next
	d.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

// Dispose 释放当前内部Disposable，之后的赋值都会被立即释放
func (d *SerialDisposable) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	current := d.current
	d.current = nil
	d.mu.Unlock()

	if current != nil {
		current.Dispose()
	}
}

// IsDisposed 检查是否已释放
func (d *SerialDisposable) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

// ============================================================================
// CompositeDisposable 组合式资源管理器
// ============================================================================

// DisposeKey 用于从CompositeDisposable中移除成员
type DisposeKey uint64

type compositeEntry struct {
	key        DisposeKey
	disposable Disposable
}

// CompositeDisposable 可动态增删成员的组合式资源管理器
type CompositeDisposable struct {
	mu        sync.Mutex
	disposed  bool
	nextKey   DisposeKey
	resources []compositeEntry
}

// NewCompositeDisposable 创建组合式资源管理器
func NewCompositeDisposable(disposables ...Disposable) *CompositeDisposable {
	cd := &CompositeDisposable{
		resources: make([]compositeEntry, 0, len(disposables)),
	}
	for _, d := range disposables {
		cd.Add(d)
	}
	return cd
}

// Add 添加可释放资源
//
// 如果已经释放，传入的资源会被立即释放，并返回false。
func (cd *CompositeDisposable) Add(disposable Disposable) (DisposeKey, bool) {
	if disposable == nil {
		return 0, false
	}

	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		disposable.Dispose()
		return 0, false
	}
	cd.nextKey++
	key := cd.nextKey
	cd.resources = append(cd.resources, compositeEntry{key: key, disposable: disposable})
	cd.mu.Unlock()

	return key, true
}

// Remove 移除成员但不释放它，返回被移除的成员
func (cd *CompositeDisposable) Remove(key DisposeKey) Disposable {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	for i, entry := range cd.resources {
		if entry.key == key {
			cd.resources = append(cd.resources[:i], cd.resources[i+1:]...)
			return entry.disposable
		}
	}
	return nil
}

// Count 当前成员数量
func (cd *CompositeDisposable) Count() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return len(cd.resources)
}

// Dispose 释放所有资源
func (cd *CompositeDisposable) Dispose() {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return
	}
	cd.disposed = true
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	for _, entry := range resources {
		entry.disposable.Dispose()
	}
}

// IsDisposed 检查是否已释放
func (cd *CompositeDisposable) IsDisposed() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.disposed
}
