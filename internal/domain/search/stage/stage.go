// Package stage models the results page lifecycle as a forward-only state machine.
package stage

import "fmt"

// State is a results page lifecycle state.
type State string

// States of the results page.
const (
	Init      State = "init"
	Loading   State = "loading"
	Error     State = "error"
	Displayed State = "displayed"
	Redirect  State = "redirect"
)

// transitions lists the only allowed moves. There is no path back to Loading: no retries.
var transitions = map[State][]State{
	Init:    {Loading, Redirect},
	Loading: {Error, Displayed},
	Error:   {Redirect},
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Machine tracks the current state and the path taken.
type Machine struct {
	current State
	history []State
}

// New returns a machine in Init.
func New() *Machine {
	return &Machine{current: Init, history: []State{Init}}
}

// Current returns the current state.
func (m *Machine) Current() State { return m.current }

// History returns every state visited, Init first.
func (m *Machine) History() []State { return m.history }

// To moves to next or returns an error if the move is not allowed.
func (m *Machine) To(next State) error {
	for _, allowed := range transitions[m.current] {
		if allowed == next {
			m.current = next
			m.history = append(m.history, next)
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", m.current, next)
}
