package crg

import (
	"fmt"

	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/instrumentation/hooking"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/timing"
)

// Builder can build clock and reset generators.
type Builder struct {
	engine   timing.EventScheduler
	registry *timing.FrequencyRegistry
	spec     Spec
	refClk   *platform.Resource
	refRst   *platform.Resource
	hooks    []hooking.Hook
}

// MakeBuilder creates a builder with the default spec.
func MakeBuilder() Builder {
	return Builder{
		spec: Defaults(),
	}
}

// WithEngine sets the engine the clocks schedule their edges on.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithFreqRegistry sets the registry the clock domains are registered in.
func (b Builder) WithFreqRegistry(registry *timing.FrequencyRegistry) Builder {
	b.registry = registry
	return b
}

// WithSpec sets the generator constants.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithRefClock sets the board oscillator resource.
func (b Builder) WithRefClock(r *platform.Resource) Builder {
	b.refClk = r
	return b
}

// WithRefReset sets the board reset button resource.
func (b Builder) WithRefReset(r *platform.Resource) Builder {
	b.refRst = r
	return b
}

// WithHook adds a hook to the generator.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// Build creates the generator. It panics if the Spec is invalid or a
// dependency is missing.
func (b Builder) Build(name string) *Comp {
	b.mustBeValid()

	c := &Comp{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		spec:         b.spec,
		engine:       b.engine,
		byName:       make(map[string]*Domain),
	}

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	c.resetActiveLow = b.refRst.Inverted
	var pinIdle uint64
	if c.resetActiveLow {
		pinIdle = 1
	}
	c.resetPin = hdl.NewSignalWithReset(b.refRst.Name, 1, pinIdle)

	c.pll = newPLL(name+".pll", b.spec.LockDelay, c.lockAcquired)
	c.refClock = timing.NewSecondaryClock(
		b.refClk.Name, b.engine, b.mustRegister(b.spec.RefFreq, 0))
	c.refClock.Attach(c.pll)

	for _, o := range b.spec.Outputs {
		if o.Disabled {
			continue
		}

		c.addDomain(b.buildDomain(c, name, o))
	}

	b.buildCountdown(c, name)

	return c
}

func (b Builder) mustBeValid() {
	if err := b.spec.Validate(); err != nil {
		panic(err)
	}

	if b.engine == nil {
		panic("crg: engine is not set")
	}

	if b.registry == nil {
		panic("crg: frequency registry is not set")
	}

	if b.refClk == nil || b.refRst == nil {
		panic("crg: reference clock and reset resources are required")
	}
}

func (b Builder) mustRegister(
	freq timing.FreqInHz,
	phase timing.PhaseInDeg,
) *timing.FreqDomain {
	domain, err := b.registry.RegisterClock(freq, phase)
	if err != nil {
		panic(fmt.Sprintf("crg: cannot register %s/%d: %v", freq, phase, err))
	}

	return domain
}

func (b Builder) buildDomain(c *Comp, name string, o Output) *Domain {
	freq := b.spec.OutputFreq(o)
	clockName := fmt.Sprintf("%s.%s", name, o.Name)

	d := &Domain{
		name:   o.Name,
		freq:   freq,
		phase:  o.Phase,
		mode:   o.Reset,
		divide: o.Divide,
		lock:   c.pll.Lock(),
		clock: timing.NewClock(
			clockName, b.engine, b.mustRegister(freq, o.Phase)),
	}
	d.clock.SetGate(c.pll.Locked)

	if o.Reset != ResetNone {
		d.sync = NewResetSynchronizer(clockName+".rst", c.resetInput(o.Reset))
		d.clock.Attach(&releaseWatcher{comp: c, domain: d, sync: d.sync})
	}

	return d
}

func (c *Comp) addDomain(d *Domain) {
	c.domains = append(c.domains, d)
	c.byName[d.name] = d
}

func (b Builder) buildCountdown(c *Comp, name string) {
	c.countdown = newCountdown(
		name+".calibration",
		b.spec.CountdownWidth,
		b.spec.CountdownInit,
		c.calibrationDone,
	)

	c.MustDomain(b.spec.CountdownDomain).clock.Attach(c.countdown)
}
