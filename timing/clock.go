package timing

import (
	"fmt"

	"github.com/sarchlab/socgen/instrumentation/hooking"
)

// HookPosClockEdge fires after a clock delivered an edge to its tickers.
var HookPosClockEdge = &hooking.HookPos{Name: "ClockEdge"}

// A Ticker is an element that updates its state on the edges of one clock.
type Ticker interface {
	Tick(now VTimeInCycle)
}

// TickerFunc adapts a function into a Ticker.
type TickerFunc func(now VTimeInCycle)

// Tick calls f(now).
func (f TickerFunc) Tick(now VTimeInCycle) {
	f(now)
}

// TickEvent is delivered to a Clock at every edge of its domain.
type TickEvent struct {
	Clock *Clock
}

// Clock is a free-running clock bound to one frequency domain. Once started
// it schedules itself on every edge and forwards the edge to the attached
// tickers, in attach order. A gated clock keeps running but only forwards
// edges while its gate is open.
type Clock struct {
	*hooking.HookableBase

	name      string
	domain    *FreqDomain
	engine    EventScheduler
	secondary bool
	gate      func() bool

	tickers   []Ticker
	delivered uint64
	started   bool
}

// NewClock creates a clock whose edges are primary events.
func NewClock(name string, engine EventScheduler, domain *FreqDomain) *Clock {
	if domain == nil {
		panic(fmt.Sprintf("clock %s has no frequency domain", name))
	}

	return &Clock{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		domain:       domain,
		engine:       engine,
	}
}

// NewSecondaryClock creates a clock whose edges are processed after all
// primary events at the same instant. Bookkeeping that other domains sample
// on coincident edges should run on a secondary clock.
func NewSecondaryClock(
	name string,
	engine EventScheduler,
	domain *FreqDomain,
) *Clock {
	c := NewClock(name, engine, domain)
	c.secondary = true

	return c
}

// Name returns the name of the clock.
func (c *Clock) Name() string {
	return c.name
}

// Domain returns the frequency domain of the clock.
func (c *Clock) Domain() *FreqDomain {
	return c.domain
}

// SetGate installs a gate. Edges are forwarded only while gate returns true.
func (c *Clock) SetGate(gate func() bool) {
	c.gate = gate
}

// Enabled tells whether the gate currently lets edges through.
func (c *Clock) Enabled() bool {
	return c.gate == nil || c.gate()
}

// Attach adds a ticker that is updated on every delivered edge.
func (c *Clock) Attach(t Ticker) {
	c.tickers = append(c.tickers, t)
}

// Delivered returns the number of edges forwarded to the tickers so far.
func (c *Clock) Delivered() uint64 {
	return c.delivered
}

// Start schedules the first edge at or after the current time. Starting a
// running clock has no effect.
func (c *Clock) Start() {
	if c.started {
		return
	}

	c.started = true
	c.scheduleAt(c.domain.ThisTick(c.engine.CurrentTime()))
}

func (c *Clock) scheduleAt(t VTimeInCycle) {
	c.engine.Schedule(ScheduledEvent{
		Event:       &TickEvent{Clock: c},
		Time:        t,
		Handler:     c,
		IsSecondary: c.secondary,
	})
}

// Handle processes the clock's own tick events.
func (c *Clock) Handle(event any) error {
	switch e := event.(type) {
	case *TickEvent:
		if e.Clock != c {
			return fmt.Errorf("clock %s received tick of %s", c.name, e.Clock.name)
		}
		c.edge()
	default:
		return fmt.Errorf("clock %s: unknown event type: %T", c.name, event)
	}

	return nil
}

func (c *Clock) edge() {
	now := c.engine.CurrentTime()

	if c.Enabled() {
		c.delivered++
		for _, t := range c.tickers {
			t.Tick(now)
		}

		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosClockEdge,
			Item:   c,
			Detail: c.delivered,
		})
	}

	c.scheduleAt(c.domain.NextTick(now))
}
