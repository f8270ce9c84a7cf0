// Package crg models the clock and reset generator: a PLL that derives the
// SoC clock domains from the board oscillator, the reset synchronizers of
// those domains and the delay-calibration countdown.
package crg

import (
	"fmt"

	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/instrumentation/hooking"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/timing"
)

// Hook positions raised by the generator.
var (
	HookPosLockAcquired   = &hooking.HookPos{Name: "CRGLockAcquired"}
	HookPosDomainActive   = &hooking.HookPos{Name: "CRGDomainActive"}
	HookPosCalibrationEnd = &hooking.HookPos{Name: "CRGCalibrationDone"}
)

// Comp is the clock and reset generator.
type Comp struct {
	*hooking.HookableBase

	name   string
	spec   Spec
	engine timing.EventScheduler

	refClock *timing.Clock
	pll      *PLL

	resetPin       *hdl.Signal
	resetActiveLow bool

	domains   []*Domain
	byName    map[string]*Domain
	countdown *Countdown
}

// Generate builds the generator with the given constants, fed by the board
// oscillator and reset button.
func Generate(
	engine timing.EventScheduler,
	registry *timing.FrequencyRegistry,
	spec Spec,
	refClk *platform.Resource,
	refRst *platform.Resource,
) *Comp {
	return MakeBuilder().
		WithEngine(engine).
		WithFreqRegistry(registry).
		WithSpec(spec).
		WithRefClock(refClk).
		WithRefReset(refRst).
		Build("crg")
}

// Name returns the name of the generator.
func (c *Comp) Name() string {
	return c.name
}

// Spec returns the constants the generator was built with.
func (c *Comp) Spec() Spec {
	return c.spec
}

// Domains returns the clock domains in PLL output order.
func (c *Comp) Domains() []*Domain {
	return c.domains
}

// Domain returns the domain with the given name.
func (c *Comp) Domain(name string) (*Domain, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// MustDomain returns the domain with the given name and panics if there is
// no such domain.
func (c *Comp) MustDomain(name string) *Domain {
	d, ok := c.byName[name]
	if !ok {
		panic(fmt.Sprintf("crg %s has no domain %s", c.name, name))
	}

	return d
}

// Locked tells if the PLL has locked.
func (c *Comp) Locked() bool {
	return c.pll.Locked()
}

// LockSignal returns the lock status signal.
func (c *Comp) LockSignal() hdl.Probe {
	return c.pll.Lock()
}

// RefClock returns the clock of the board oscillator.
func (c *Comp) RefClock() *timing.Clock {
	return c.refClock
}

// Countdown returns the delay-calibration countdown.
func (c *Comp) Countdown() *Countdown {
	return c.countdown
}

// CalibrationActive returns the signal that holds the delay-calibration
// primitive in reset.
func (c *Comp) CalibrationActive() hdl.Probe {
	return c.countdown.ActiveSignal()
}

// ResetPin returns the board reset pin. Drive it to model button presses.
func (c *Comp) ResetPin() *hdl.Signal {
	return c.resetPin
}

// ResetRequested tells if the external reset request is asserted, taking
// the pin polarity into account.
func (c *Comp) ResetRequested() bool {
	if c.resetActiveLow {
		return !c.resetPin.Bool()
	}

	return c.resetPin.Bool()
}

// SetResetRequest drives the reset pin so that the request reads as given.
func (c *Comp) SetResetRequest(request bool) {
	c.resetPin.SetBool(request != c.resetActiveLow)
}

// Start starts the reference clock and every domain clock.
func (c *Comp) Start() {
	c.refClock.Start()
	for _, d := range c.domains {
		d.clock.Start()
	}
}

func (c *Comp) resetInput(mode ResetMode) func() bool {
	switch mode {
	case ResetOnRequest:
		return func() bool { return !c.pll.Locked() || c.ResetRequested() }
	case ResetOnRelease:
		return func() bool { return !c.pll.Locked() || !c.ResetRequested() }
	default:
		panic(fmt.Sprintf("reset mode %s has no synchronizer", mode))
	}
}

func (c *Comp) lockAcquired(now timing.VTimeInCycle) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosLockAcquired,
		Item:   c.pll,
		Detail: now,
	})

	for _, d := range c.domains {
		if d.ResetLess() {
			c.domainActive(d, now)
		}
	}
}

func (c *Comp) domainActive(d *Domain, now timing.VTimeInCycle) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosDomainActive,
		Item:   d,
		Detail: now,
	})
}

func (c *Comp) calibrationDone(now timing.VTimeInCycle) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosCalibrationEnd,
		Item:   c.countdown,
		Detail: now,
	})
}

// releaseWatcher raises the domain-active hook when a synchronized reset
// drops.
type releaseWatcher struct {
	comp   *Comp
	domain *Domain
	sync   *ResetSynchronizer
}

func (w *releaseWatcher) Tick(now timing.VTimeInCycle) {
	before := w.sync.Asserted()
	w.sync.Tick(now)

	if before && !w.sync.Asserted() {
		w.comp.domainActive(w.domain, now)
	}
}
