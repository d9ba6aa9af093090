package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/farxc/dre_warehouse/internal/store"
)

var ErrInvalidTransition = errors.New("invalid run state transition")

// State is the lifecycle position of a pipeline run.
type State string

const (
	StateCreated State = "CREATED"
	StateRunning State = store.StatusRunning
	StateSuccess State = store.StatusSuccess
	StateWarning State = store.StatusWarning
	StateFailed  State = store.StatusFailed
)

var transitions = map[State][]State{
	StateCreated: {StateRunning, StateFailed},
	StateRunning: {StateSuccess, StateWarning, StateFailed},
}

func (s State) Terminal() bool {
	return s == StateSuccess || s == StateWarning || s == StateFailed
}

type runState struct {
	current State
}

func newRunState() *runState {
	return &runState{current: StateCreated}
}

func (r *runState) transition(to State) error {
	if !slices.Contains(transitions[r.current], to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.current, to)
	}
	r.current = to
	return nil
}
