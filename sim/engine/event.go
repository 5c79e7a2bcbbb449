package engine

import "fmt"

type eventState int

const (
	statePending eventState = iota
	stateTriggered
	stateProcessed
)

type callback struct {
	fn   func(*Event)
	dead bool
}

// Event is a one-shot condition processes can wait on.
// Once triggered, its callbacks run when the engine reaches it on the timeline.
type Event struct {
	eng       *Engine
	name      string
	state     eventState
	value     any
	callbacks []*callback
}

// NewEvent creates a pending event.
func (e *Engine) NewEvent(name string) *Event {
	return &Event{eng: e, name: name}
}

// Name returns the label given at construction.
func (ev *Event) Name() string {
	return ev.name
}

// Triggered reports whether the event has been resolved (its callbacks may still be queued).
func (ev *Event) Triggered() bool {
	return ev.state != statePending
}

// Processed reports whether the event's callbacks have run.
func (ev *Event) Processed() bool {
	return ev.state == stateProcessed
}

// Value returns the value the event was resolved with.
func (ev *Event) Value() any {
	return ev.value
}

// Succeed resolves the event with value and schedules its callbacks at the current instant.
// Resolving an event twice panics.
func (ev *Event) Succeed(value any) {
	if ev.state != statePending {
		panic(fmt.Sprintf("engine: event %q resolved twice", ev.name))
	}
	ev.state = stateTriggered
	ev.value = value
	ev.eng.schedule(0, ev.process)
}

// Then registers fn to run when the event is processed.
// If the event was already processed, fn is scheduled at the current instant.
func (ev *Event) Then(fn func(*Event)) {
	ev.then(fn)
}

func (ev *Event) then(fn func(*Event)) *callback {
	cb := &callback{fn: fn}
	if ev.state == stateProcessed {
		ev.eng.schedule(0, func() { fn(ev) })
		return cb
	}
	live := ev.callbacks[:0]
	for _, c := range ev.callbacks {
		if !c.dead {
			live = append(live, c)
		}
	}
	ev.callbacks = append(live, cb)
	return cb
}

// fire resolves and processes the event in one step; used by timeouts.
func (ev *Event) fire(value any) {
	ev.state = stateTriggered
	ev.value = value
	ev.process()
}

func (ev *Event) process() {
	ev.state = stateProcessed
	cbs := ev.callbacks
	ev.callbacks = nil
	for _, cb := range cbs {
		if !cb.dead {
			cb.fn(ev)
		}
	}
}

// Timeout returns an event processed delay time units from now.
// A negative, NaN or infinite delay panics.
func (e *Engine) Timeout(delay float64) *Event {
	ev := e.NewEvent("timeout")
	e.schedule(delay, func() { ev.fire(nil) })
	return ev
}

// AnyOf returns an event resolved with whichever of evs is processed first.
// The losing events stay pending and can still be inspected afterwards.
func (e *Engine) AnyOf(evs ...*Event) *Event {
	cond := e.NewEvent("any_of")
	for _, ev := range evs {
		if ev.Processed() {
			cond.Succeed(ev)
			return cond
		}
	}
	cbs := make([]*callback, 0, len(evs))
	for _, ev := range evs {
		cbs = append(cbs, ev.then(func(winner *Event) {
			if cond.Triggered() {
				return
			}
			for _, cb := range cbs {
				cb.dead = true
			}
			cond.Succeed(winner)
		}))
	}
	return cond
}
