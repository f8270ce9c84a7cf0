package crg

import (
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/timing"
)

// PLL reports lock a fixed number of reference cycles after power-on. Once
// locked it stays locked.
type PLL struct {
	lock   *hdl.Signal
	delay  uint64
	seen   uint64
	onLock func(now timing.VTimeInCycle)
}

func newPLL(name string, delay int, onLock func(timing.VTimeInCycle)) *PLL {
	return &PLL{
		lock:   hdl.NewSignal(name+".locked", 1),
		delay:  uint64(delay),
		onLock: onLock,
	}
}

// Locked tells if the PLL has locked.
func (p *PLL) Locked() bool {
	return p.lock.Bool()
}

// Lock returns the lock status signal.
func (p *PLL) Lock() hdl.Probe {
	return p.lock
}

// Tick counts one reference edge.
func (p *PLL) Tick(now timing.VTimeInCycle) {
	if p.lock.Bool() {
		return
	}

	p.seen++
	if p.seen < p.delay {
		return
	}

	p.lock.SetBool(true)
	if p.onLock != nil {
		p.onLock(now)
	}
}
