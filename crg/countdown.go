package crg

import (
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/timing"
)

// Countdown holds the delay-calibration primitive in reset for a fixed
// number of edges of its domain. It runs once and never re-arms.
type Countdown struct {
	counter *hdl.Signal
	active  *hdl.Signal
	onDone  func(now timing.VTimeInCycle)
}

func newCountdown(
	name string,
	width int,
	init uint64,
	onDone func(timing.VTimeInCycle),
) *Countdown {
	c := &Countdown{
		counter: hdl.NewSignalWithReset(name+".counter", width, init),
		active:  hdl.NewSignalWithReset(name+".active", 1, 1),
		onDone:  onDone,
	}
	c.active.SetBool(init != 0)

	return c
}

// Value returns the current counter value.
func (c *Countdown) Value() uint64 {
	return c.counter.Get()
}

// Active tells if the calibration primitive is still held in reset.
func (c *Countdown) Active() bool {
	return c.active.Bool()
}

// ActiveSignal returns the calibration-active output.
func (c *Countdown) ActiveSignal() hdl.Probe {
	return c.active
}

// Counter returns the counter register.
func (c *Countdown) Counter() hdl.Probe {
	return c.counter
}

// Tick decrements the counter while it is non-zero.
func (c *Countdown) Tick(now timing.VTimeInCycle) {
	v := c.counter.Get()
	if v == 0 {
		return
	}

	v--
	c.counter.Set(v)

	if v != 0 {
		return
	}

	c.active.SetBool(false)
	if c.onDone != nil {
		c.onDone(now)
	}
}
