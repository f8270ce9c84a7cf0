package crg

import (
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/timing"
)

// Domain is a clock domain driven by one PLL output.
type Domain struct {
	name   string
	freq   timing.FreqInHz
	phase  timing.PhaseInDeg
	mode   ResetMode
	divide int

	clock *timing.Clock
	sync  *ResetSynchronizer
	lock  hdl.Probe
}

// Name returns the name of the domain.
func (d *Domain) Name() string {
	return d.name
}

// Freq returns the clock frequency.
func (d *Domain) Freq() timing.FreqInHz {
	return d.freq
}

// Phase returns the clock phase.
func (d *Domain) Phase() timing.PhaseInDeg {
	return d.phase
}

// Divide returns the PLL output divider that produces the clock.
func (d *Domain) Divide() int {
	return d.divide
}

// ResetMode returns how the domain reset is derived.
func (d *Domain) ResetMode() ResetMode {
	return d.mode
}

// ResetLess tells if the domain has no reset signal.
func (d *Domain) ResetLess() bool {
	return d.mode == ResetNone
}

// Clock returns the domain clock. Components of the domain attach to it.
func (d *Domain) Clock() *timing.Clock {
	return d.clock
}

// FreqDomain returns the timing domain of the clock.
func (d *Domain) FreqDomain() *timing.FreqDomain {
	return d.clock.Domain()
}

// Reset returns the synchronized reset, or nil for a resetless domain.
func (d *Domain) Reset() hdl.Probe {
	if d.sync == nil {
		return nil
	}

	return d.sync
}

// InReset tells if the domain reset is asserted. Resetless domains are in
// reset only in the sense that their clock is stopped until lock.
func (d *Domain) InReset() bool {
	if d.sync == nil {
		return false
	}

	return d.sync.Asserted()
}

// Active tells if the logic of the domain is running: the PLL is locked and,
// for a domain with a reset, the reset has been released.
func (d *Domain) Active() bool {
	if d.lock.Get() == 0 {
		return false
	}

	if d.sync == nil {
		return true
	}

	return !d.sync.Asserted()
}
