// Package hdl holds the named, fixed-width signals that tie the composed
// components together.
package hdl

import "fmt"

// Probe is a read-only view of a signal. Observers are handed probes so that
// they cannot drive what they watch.
type Probe interface {
	Name() string
	Width() int
	Get() uint64
}

// Signal is a named value of a fixed bit width. Writes are truncated to the
// width.
type Signal struct {
	name  string
	width int
	reset uint64
	value uint64
}

// NewSignal creates a signal that resets to 0.
func NewSignal(name string, width int) *Signal {
	return NewSignalWithReset(name, width, 0)
}

// NewSignalWithReset creates a signal that starts at, and resets to, the
// given value.
func NewSignalWithReset(name string, width int, reset uint64) *Signal {
	if width <= 0 || width > 64 {
		panic(fmt.Sprintf("signal %s: width %d out of range [1, 64]", name, width))
	}

	s := &Signal{name: name, width: width}
	s.reset = reset & s.mask()
	s.value = s.reset

	return s
}

// Name returns the name of the signal.
func (s *Signal) Name() string {
	return s.name
}

// Width returns the number of bits of the signal.
func (s *Signal) Width() int {
	return s.width
}

// Get returns the current value.
func (s *Signal) Get() uint64 {
	return s.value
}

// Set drives a new value.
func (s *Signal) Set(v uint64) {
	s.value = v & s.mask()
}

// Bool returns whether any bit is set.
func (s *Signal) Bool() bool {
	return s.value != 0
}

// SetBool drives 1 or 0.
func (s *Signal) SetBool(b bool) {
	if b {
		s.Set(1)
		return
	}

	s.Set(0)
}

// ResetValue returns the value the signal takes on reset.
func (s *Signal) ResetValue() uint64 {
	return s.reset
}

// Reset restores the reset value.
func (s *Signal) Reset() {
	s.value = s.reset
}

// Max returns the largest value the signal can hold.
func (s *Signal) Max() uint64 {
	return s.mask()
}

func (s *Signal) mask() uint64 {
	if s.width == 64 {
		return ^uint64(0)
	}

	return (uint64(1) << s.width) - 1
}

var _ Probe = (*Signal)(nil)
