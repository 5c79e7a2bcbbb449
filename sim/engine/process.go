package engine

import "fmt"

// Interrupt is the value a Process's Done event resolves with when the
// activity was cut short. Normal completion resolves with nil.
type Interrupt struct {
	Cause string
	At    float64
}

func (i *Interrupt) String() string {
	return fmt.Sprintf("interrupt(%s at %.1f)", i.Cause, i.At)
}

// Process is a timed activity another party may interrupt, such as a core
// servicing a request. The engine only reports the outcome; the owner decides
// how much work remains.
type Process struct {
	eng     *Engine
	done    *Event
	timer   *entry
	started float64
}

// Start begins an activity lasting duration.
func (e *Engine) Start(duration float64, name string) *Process {
	p := &Process{eng: e, done: e.NewEvent(name), started: e.now}
	p.timer = e.schedule(duration, func() { p.done.fire(nil) })
	return p
}

// Done is resolved with nil on completion or with *Interrupt when interrupted.
func (p *Process) Done() *Event {
	return p.done
}

// Elapsed returns how long the activity has been running.
func (p *Process) Elapsed() float64 {
	return p.eng.now - p.started
}

// Interrupted reports whether the activity ended through Interrupt.
func (p *Process) Interrupted() bool {
	_, ok := p.done.value.(*Interrupt)
	return ok
}

// Interrupt cancels the pending completion and resolves Done with an *Interrupt.
// Interrupting an activity that already finished panics.
func (p *Process) Interrupt(cause string) {
	if p.done.Triggered() {
		panic(fmt.Sprintf("engine: cannot interrupt %q, it already finished", p.done.name))
	}
	p.timer.cancelled = true
	p.done.Succeed(&Interrupt{Cause: cause, At: p.eng.now})
}
