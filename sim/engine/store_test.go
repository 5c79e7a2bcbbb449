package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetBeforePut_BlocksUntilItemArrives(t *testing.T) {
	// GIVEN a getter waiting on an empty store
	e := New()
	s := NewStore[string](e, "q")
	var got string
	var at float64
	s.Get().Then(func(ev *Event) {
		got = Item[string](ev)
		at = e.Now()
		e.Stop()
	})

	// WHEN an item is put at t=7
	e.Timeout(7).Then(func(*Event) { s.Put("A") })
	require.NoError(t, e.Run())

	// THEN the getter resumes at t=7 with the item
	assert.Equal(t, "A", got)
	assert.Equal(t, 7.0, at)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Put_ItemVisibleUntilPutIsProcessed(t *testing.T) {
	// GIVEN a waiting getter
	e := New()
	s := NewStore[int](e, "q")
	s.Get()

	// WHEN an item is put
	e.Timeout(1).Then(func(*Event) {
		s.Put(1)
		// THEN the item is still queued within the same callback
		assert.Equal(t, 1, s.Len())
		head, ok := s.Peek()
		assert.True(t, ok)
		assert.Equal(t, 1, head)
	})
	e.Timeout(2).Then(func(*Event) {
		// AND handed over once the put was processed
		assert.Equal(t, 0, s.Len())
		e.Stop()
	})
	require.NoError(t, e.Run())
}

func TestStore_FIFO_PreservesInsertionOrder(t *testing.T) {
	e := New()
	s := NewStore[int](e, "q")
	for i := 1; i <= 3; i++ {
		s.Put(i)
	}
	var got []int
	var take func()
	take = func() {
		s.Get().Then(func(ev *Event) {
			got = append(got, Item[int](ev))
			if len(got) == 3 {
				e.Stop()
				return
			}
			take()
		})
	}
	take()

	require.NoError(t, e.Run())
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestStore_Getters_ServedInCallOrder(t *testing.T) {
	e := New()
	s := NewStore[string](e, "q")
	var order []string
	s.Get().Then(func(ev *Event) { order = append(order, "g1:"+Item[string](ev)) })
	s.Get().Then(func(ev *Event) { order = append(order, "g2:"+Item[string](ev)) })
	s.Put("A")
	s.Put("B")
	e.Timeout(1).Then(func(*Event) { e.Stop() })

	require.NoError(t, e.Run())
	assert.Equal(t, []string{"g1:A", "g2:B"}, order)
}

func TestPriorityStore_OrdersByLess_TiesByInsertion(t *testing.T) {
	// GIVEN a priority store over (priority, label) pairs
	type item struct {
		prio  int
		label string
	}
	e := New()
	s := NewPriorityStore(e, "pq", func(a, b item) bool { return a.prio < b.prio })
	s.Put(item{2, "a"})
	s.Put(item{1, "b"})
	s.Put(item{2, "c"})
	s.Put(item{1, "d"})

	// WHEN drained
	var got []string
	for s.Len() > 0 {
		s.Get().Then(func(ev *Event) { got = append(got, Item[item](ev).label) })
	}
	e.Timeout(1).Then(func(*Event) { e.Stop() })
	require.NoError(t, e.Run())

	// THEN smaller priority first, equal priorities FIFO
	assert.Equal(t, []string{"b", "d", "a", "c"}, got)
}

func TestPriorityStore_PutFront_AheadOfEqualPriority(t *testing.T) {
	e := New()
	s := NewPriorityStore(e, "pq", func(a, b [2]int) bool { return a[0] < b[0] })
	s.Put([2]int{1, 10})
	s.Put([2]int{0, 20})
	s.PutFront([2]int{1, 30})

	head, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, [2]int{0, 20}, head, "a strictly smaller item still wins")

	var got [][2]int
	for s.Len() > 0 {
		s.Get().Then(func(ev *Event) { got = append(got, Item[[2]int](ev)) })
	}
	e.Timeout(1).Then(func(*Event) { e.Stop() })
	require.NoError(t, e.Run())
	assert.Equal(t, [][2]int{{0, 20}, {1, 30}, {1, 10}}, got)
}

func TestStore_PutFront_FIFO_InsertsAtFront(t *testing.T) {
	e := New()
	s := NewStore[string](e, "q")
	s.Put("A")
	s.Put("B")
	s.PutFront("X")

	head, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "X", head)
	assert.Equal(t, 3, s.Len())
}

func TestStore_Peek_Empty(t *testing.T) {
	s := NewStore[int](New(), "q")
	_, ok := s.Peek()
	assert.False(t, ok)
}

func TestNewPriorityStore_NilLess_Panics(t *testing.T) {
	assert.Panics(t, func() { NewPriorityStore[int](New(), "pq", nil) })
}
