package crg

import (
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/instrumentation/hooking"
	"github.com/sarchlab/socgen/timing"
)

// TraceEntry is one observed change of a bring-up signal.
type TraceEntry struct {
	Cycle  uint64
	TimeNS float64
	Signal string
	Value  uint64
}

// Trace records every change of the lock, the domain resets and the
// calibration signal. Attach it to the engine; it samples after each event.
type Trace struct {
	registry *timing.FrequencyRegistry
	probes   []hdl.Probe
	last     []uint64
	entries  []TraceEntry
}

// NewTrace creates a trace of the bring-up signals of a generator. The
// initial values are recorded at cycle 0.
func NewTrace(c *Comp, registry *timing.FrequencyRegistry) *Trace {
	t := &Trace{registry: registry}

	t.probes = append(t.probes, c.LockSignal())
	for _, d := range c.Domains() {
		if r := d.Reset(); r != nil {
			t.probes = append(t.probes, r)
		}
	}
	t.probes = append(t.probes, c.CalibrationActive())

	t.last = make([]uint64, len(t.probes))
	for i, p := range t.probes {
		t.last[i] = p.Get()
		t.record(0, p, t.last[i])
	}

	return t
}

// Func samples the signals after every dispatched event.
func (t *Trace) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(*timing.ScheduledEvent)
	if !ok {
		return
	}

	t.Sample(evt.Time)
}

// Sample records the signals that changed since the last sample.
func (t *Trace) Sample(now timing.VTimeInCycle) {
	for i, p := range t.probes {
		v := p.Get()
		if v == t.last[i] {
			continue
		}

		t.last[i] = v
		t.record(now, p, v)
	}
}

func (t *Trace) record(now timing.VTimeInCycle, p hdl.Probe, v uint64) {
	t.entries = append(t.entries, TraceEntry{
		Cycle:  uint64(now),
		TimeNS: float64(t.registry.CyclesToSeconds(now)) * 1e9,
		Signal: p.Name(),
		Value:  v,
	})
}

// Entries returns the recorded changes in time order.
func (t *Trace) Entries() []TraceEntry {
	return t.entries
}

// FirstChange returns the first entry after cycle 0 of the named signal.
func (t *Trace) FirstChange(signal string) (TraceEntry, bool) {
	for _, e := range t.entries {
		if e.Signal == signal && e.Cycle > 0 {
			return e, true
		}
	}

	return TraceEntry{}, false
}
