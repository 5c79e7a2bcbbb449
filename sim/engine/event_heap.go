package engine

import "container/heap"

// entry is a single scheduled callback on the virtual timeline.
type entry struct {
	at        float64
	seq       uint64
	fn        func()
	cancelled bool
}

// entryHeap implements a priority queue with deterministic ordering.
// Ordering: timestamp → scheduling sequence.
type entryHeap struct {
	entries []*entry
}

// Len implements heap.Interface
func (h *entryHeap) Len() int {
	return len(h.entries)
}

// Less implements heap.Interface with deterministic ordering
func (h *entryHeap) Less(i, j int) bool {
	ei, ej := h.entries[i], h.entries[j]

	// Primary: timestamp (lower first)
	if ei.at != ej.at {
		return ei.at < ej.at
	}

	// Secondary: scheduling order, so equal-time entries run FIFO
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (h *entryHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

// Push implements heap.Interface
func (h *entryHeap) Push(x interface{}) {
	h.entries = append(h.entries, x.(*entry))
}

// Pop implements heap.Interface
func (h *entryHeap) Pop() interface{} {
	old := h.entries
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.entries = old[0 : n-1]
	return item
}

func (h *entryHeap) schedule(e *entry) {
	heap.Push(h, e)
}

func (h *entryHeap) popNext() *entry {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*entry)
}

func (h *entryHeap) peek() *entry {
	if h.Len() == 0 {
		return nil
	}
	return h.entries[0]
}
