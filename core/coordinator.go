package core

import "sync"

// Coordinator serializes every membership check-then-act section. Group
// creation pre-checks affiliations across arbitrary users, so a single
// critical section covers all groups rather than locking per group; join,
// leave and update share it so no reader can observe a half-applied
// membership transition. Task creation also takes the section while it
// reads the creator's affiliation, making the join/leave race deterministic.
type Coordinator struct {
	mu sync.Mutex
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Atomically runs fn while holding the membership section. fn is expected
// to do all of its validation before any mutation, and to mutate inside a
// single database transaction.
func (c *Coordinator) Atomically(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}
