package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBudgetExhausted is returned once every model call of a turn is spent.
var ErrBudgetExhausted = errors.New("model call budget exhausted")

// CallBudget counts the model calls of one turn across the supervisor and
// its specialists. A zero limit never runs out.
type CallBudget struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewCallBudget returns a budget of limit calls.
func NewCallBudget(limit int) *CallBudget {
	return &CallBudget{limit: limit}
}

// Spend records one call and fails when it exceeds the limit.
func (b *CallBudget) Spend() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.used++
	if b.limit > 0 && b.used > b.limit {
		return fmt.Errorf("%w: limit is %d calls per turn", ErrBudgetExhausted, b.limit)
	}

	return nil
}

// Used returns the number of recorded calls.
func (b *CallBudget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.used
}

// Left returns the calls still available, or -1 without a limit.
func (b *CallBudget) Left() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limit == 0 {
		return -1
	}

	return max(0, b.limit-b.used)
}
