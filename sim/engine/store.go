package engine

import (
	"container/heap"
	"fmt"
	"strings"
)

type storeItem[T any] struct {
	item T
	key  int64
}

// itemHeap orders items by less (when set), then by key.
type itemHeap[T any] struct {
	items []storeItem[T]
	less  func(a, b T) bool
}

func (h *itemHeap[T]) Len() int { return len(h.items) }

func (h *itemHeap[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less != nil {
		if h.less(a.item, b.item) {
			return true
		}
		if h.less(b.item, a.item) {
			return false
		}
	}
	return a.key < b.key
}

func (h *itemHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *itemHeap[T]) Push(x any) { h.items = append(h.items, x.(storeItem[T])) }

func (h *itemHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	var zero storeItem[T]
	old[n-1] = zero
	h.items = old[:n-1]
	return it
}

// Store is a queue processes can block on.
// A FIFO store hands items out in insertion order; a priority store hands out
// the smallest item under less, breaking ties by insertion order.
// Put never blocks. Waiting getters are served in the order they called Get.
type Store[T any] struct {
	eng      *Engine
	name     string
	heap     itemHeap[T]
	backKey  int64
	frontKey int64
	getters  []*Event
}

// NewStore creates a FIFO store.
func NewStore[T any](e *Engine, name string) *Store[T] {
	return &Store[T]{eng: e, name: name}
}

// NewPriorityStore creates a store ordered by less.
func NewPriorityStore[T any](e *Engine, name string, less func(a, b T) bool) *Store[T] {
	if less == nil {
		panic("NewPriorityStore: less must not be nil")
	}
	return &Store[T]{eng: e, name: name, heap: itemHeap[T]{less: less}}
}

// Name returns the label given at construction.
func (s *Store[T]) Name() string {
	return s.name
}

// Len returns the number of queued items. Items handed to a getter are not counted.
func (s *Store[T]) Len() int {
	return s.heap.Len()
}

// Peek returns the item the next Get would receive.
func (s *Store[T]) Peek() (T, bool) {
	if s.heap.Len() == 0 {
		var zero T
		return zero, false
	}
	return s.heap.items[0].item, true
}

// Put enqueues item at the back of its ordering class. Waiting getters are
// served when the put is processed at the current instant.
func (s *Store[T]) Put(item T) {
	s.backKey++
	heap.Push(&s.heap, storeItem[T]{item: item, key: s.backKey})
	s.eng.schedule(0, s.serveGetters)
}

// PutFront enqueues item ahead of every queued item that compares equal to it.
// Used for preemption: evicted work is re-observed before equal-ranked work.
func (s *Store[T]) PutFront(item T) {
	s.frontKey--
	heap.Push(&s.heap, storeItem[T]{item: item, key: s.frontKey})
	s.eng.schedule(0, s.serveGetters)
}

// Get returns an event resolved with the next item. If an item is queued and
// no earlier getter is waiting, the item is taken immediately.
func (s *Store[T]) Get() *Event {
	ev := s.eng.NewEvent(s.name + ".get")
	s.getters = append(s.getters, ev)
	s.serveGetters()
	return ev
}

func (s *Store[T]) serveGetters() {
	for len(s.getters) > 0 && s.heap.Len() > 0 {
		g := s.getters[0]
		s.getters[0] = nil
		s.getters = s.getters[1:]
		it := heap.Pop(&s.heap).(storeItem[T])
		g.Succeed(it.item)
	}
}

func (s *Store[T]) String() string {
	var sb strings.Builder
	sb.WriteString(s.name)
	sb.WriteString("[")
	for i, it := range s.heap.items {
		sb.WriteString(fmt.Sprint(it.item))
		if i < len(s.heap.items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Item extracts the typed value an event returned by Store.Get was resolved with.
func Item[T any](ev *Event) T {
	v, ok := ev.Value().(T)
	if !ok {
		panic(fmt.Sprintf("engine: event %q carries %T", ev.name, ev.Value()))
	}
	return v
}
