package war

import (
	"fmt"

	"github.com/hexaflex/arena/memory"
)

// Reason classifies how a war ended.
type Reason int

// Known end reasons.
const (
	SingleWinner Reason = iota // Fewer than two warriors remain.
	RoundCap                   // The round cap was reached.
	Aborted                    // The war was stopped from outside.
)

func (r Reason) String() string {
	switch r {
	case SingleWinner:
		return "single-winner"
	case RoundCap:
		return "round-cap"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Listener observes a war. Callbacks run on the war's goroutine, in the
// order listeners were added.
type Listener interface {
	OnWarStart(w *War)
	OnRound(round int)
	OnWarriorBirth(w *Warrior)
	OnWarriorDeath(w *Warrior, reason error)
	OnWarEnd(result Result)
	OnMemoryWrite(addr memory.Address)
}

// BaseListener implements Listener with no-ops. Embed it to override only
// the callbacks of interest.
type BaseListener struct{}

func (BaseListener) OnWarStart(*War) {}
func (BaseListener) OnRound(int) {}
func (BaseListener) OnWarriorBirth(*Warrior) {}
func (BaseListener) OnWarriorDeath(*Warrior, error) {}
func (BaseListener) OnWarEnd(Result) {}
func (BaseListener) OnMemoryWrite(memory.Address) {}

// multicaster delivers events to an ordered list of listeners. Listeners
// added while an event is being delivered are queued and attached once
// delivery has finished, so they never see the event in flight.
type multicaster struct {
	listeners []Listener
	pending   []Listener
	depth     int
}

// Add attaches l, or queues it when called from inside a callback.
func (m *multicaster) Add(l Listener) {
	if m.depth > 0 {
		m.pending = append(m.pending, l)
		return
	}
	m.listeners = append(m.listeners, l)
}

// Len returns the number of attached listeners.
func (m *multicaster) Len() int {
	return len(m.listeners)
}

// each calls f for every attached listener.
func (m *multicaster) each(f func(Listener)) {
	m.depth++
	for _, l := range m.listeners {
		f(l)
	}
	m.depth--

	if m.depth == 0 && len(m.pending) > 0 {
		m.listeners = append(m.listeners, m.pending...)
		m.pending = m.pending[:0]
	}
}
