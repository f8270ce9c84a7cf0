package crg

import (
	"github.com/sarchlab/socgen/timing"
)

// ResetSynchronizer is an asynchronous-assert, synchronous-release reset
// synchronizer built from two flops on the destination clock. The reset it
// drives follows the async input immediately when asserted and drops two
// clock edges after the input is released.
type ResetSynchronizer struct {
	name    string
	asyncIn func() bool

	meta bool
	out  bool
}

// NewResetSynchronizer creates a synchronizer that powers up in reset.
func NewResetSynchronizer(name string, asyncIn func() bool) *ResetSynchronizer {
	return &ResetSynchronizer{
		name:    name,
		asyncIn: asyncIn,
		meta:    true,
		out:     true,
	}
}

// Name returns the name of the reset signal.
func (s *ResetSynchronizer) Name() string {
	return s.name
}

// Width returns 1.
func (s *ResetSynchronizer) Width() int {
	return 1
}

// Get returns 1 while the reset is asserted.
func (s *ResetSynchronizer) Get() uint64 {
	if s.Asserted() {
		return 1
	}

	return 0
}

// Asserted tells if the synchronized reset is asserted.
func (s *ResetSynchronizer) Asserted() bool {
	return s.asyncIn() || s.out
}

// Tick clocks the two flops.
func (s *ResetSynchronizer) Tick(_ timing.VTimeInCycle) {
	if s.asyncIn() {
		s.meta = true
		s.out = true

		return
	}

	s.out = s.meta
	s.meta = false
}
