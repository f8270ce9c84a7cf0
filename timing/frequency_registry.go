package timing

import (
	"fmt"
	"math"
)

type clockKey struct {
	freq  FreqInHz
	phase PhaseInDeg
}

// FrequencyRegistry coordinates multiple clock domains by deriving a single
// cycle resolution that preserves deterministic ordering. Phase-shifted
// clocks raise the resolution so that their edges land on whole global
// cycles.
type FrequencyRegistry struct {
	global  FreqInHz
	domains map[clockKey]*FreqDomain
	order   []*FreqDomain
}

// NewFrequencyRegistry builds an empty registry ready to accept clock domains.
func NewFrequencyRegistry() *FrequencyRegistry {
	return &FrequencyRegistry{
		domains: make(map[clockKey]*FreqDomain),
	}
}

// RegisterFrequency adds a clock domain with zero phase and returns its
// descriptor.
func (r *FrequencyRegistry) RegisterFrequency(
	freq FreqInHz,
) (*FreqDomain, error) {
	return r.RegisterClock(freq, 0)
}

// RegisterClock adds a clock domain with the given phase offset. Registering
// the same frequency and phase twice returns the same domain.
func (r *FrequencyRegistry) RegisterClock(
	freq FreqInHz,
	phase PhaseInDeg,
) (*FreqDomain, error) {
	if freq == 0 {
		return nil, ErrZeroFrequency
	}

	if phase >= 360 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhase, phase)
	}

	key := clockKey{freq: freq, phase: phase}
	if domain, exists := r.domains[key]; exists {
		return domain, nil
	}

	required, err := requiredResolution(freq, phase)
	if err != nil {
		return nil, err
	}

	if r.global == 0 {
		r.global = required
	} else {
		newGlobal, err := lcmFreq(r.global, required)
		if err != nil {
			return nil, err
		}
		r.global = newGlobal
	}

	domain := &FreqDomain{
		freq:     freq,
		phase:    phase,
		registry: r,
	}
	r.domains[key] = domain
	r.order = append(r.order, domain)

	return domain, nil
}

// Resolution returns the global cycle frequency. Every registered domain
// ticks on a whole number of global cycles.
func (r *FrequencyRegistry) Resolution() FreqInHz {
	return r.global
}

// Domains returns the registered domains in registration order.
func (r *FrequencyRegistry) Domains() []*FreqDomain {
	return r.order
}

// CyclesToSeconds converts global cycles into seconds.
func (r *FrequencyRegistry) CyclesToSeconds(cycles VTimeInCycle) VTimeInSec {
	if r.global == 0 {
		return 0
	}

	return VTimeInSec(float64(cycles) / float64(r.global))
}

// SecondsToCycles converts seconds into global cycles. The duration must
// land on a global cycle boundary.
func (r *FrequencyRegistry) SecondsToCycles(
	sec VTimeInSec,
) (VTimeInCycle, error) {
	if r.global == 0 {
		return 0, ErrNoFrequencyDomains
	}

	if sec < 0 {
		return 0, fmt.Errorf(
			"timing: negative durations are not supported: %.12g",
			sec,
		)
	}

	scaled := float64(sec) * float64(r.global)
	rounded := math.Round(scaled)
	tickDuration := 1.0 / float64(r.global)
	if math.Abs(scaled-rounded) > cycleAlignmentTolerance(scaled) {
		return 0, fmt.Errorf(
			"%w: duration %.12g s exceeds cycle %.12g s",
			ErrTickPrecisionLoss,
			sec,
			tickDuration,
		)
	}

	if rounded < 0 || rounded > float64(math.MaxUint64) {
		return 0, ErrTickOverflow
	}

	return VTimeInCycle(rounded), nil
}

func (r *FrequencyRegistry) cycleStride(freq FreqInHz) (VTimeInCycle, bool) {
	if r.global == 0 || r.global%freq != 0 {
		return 0, false
	}

	return VTimeInCycle(r.global / freq), true
}

// requiredResolution is the smallest global frequency that puts every edge
// of a clock with the given phase on a whole cycle.
func requiredResolution(freq FreqInHz, phase PhaseInDeg) (FreqInHz, error) {
	steps := uint64(phaseSteps(phase))
	if uint64(freq) > math.MaxUint64/steps {
		return 0, ErrFrequencyOverflow
	}

	return FreqInHz(uint64(freq) * steps), nil
}

func phaseSteps(phase PhaseInDeg) PhaseInDeg {
	if phase == 0 {
		return 1
	}

	return 360 / gcdPhase(phase, 360)
}

func gcdPhase(a, b PhaseInDeg) PhaseInDeg {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// FreqDomain represents a registered clock domain. It exposes helpers to
// align global cycle counts with the domain's own edges.
type FreqDomain struct {
	freq     FreqInHz
	phase    PhaseInDeg
	registry *FrequencyRegistry
}

// FrequencyHz returns the frequency associated with the domain.
func (d *FreqDomain) FrequencyHz() FreqInHz {
	if d == nil {
		return 0
	}

	return d.freq
}

// Phase returns the phase offset of the domain.
func (d *FreqDomain) Phase() PhaseInDeg {
	if d == nil {
		return 0
	}

	return d.phase
}

// Stride returns the number of global cycles contained in a single cycle of
// this domain.
func (d *FreqDomain) Stride() VTimeInCycle {
	return d.stride()
}

// Offset returns the global cycle of the first edge of this domain.
func (d *FreqDomain) Offset() VTimeInCycle {
	stride := d.stride()
	if stride == 0 || d.phase == 0 {
		return 0
	}

	g := gcdPhase(d.phase, 360)
	steps := VTimeInCycle(360 / g)

	return (stride / steps) * VTimeInCycle(d.phase/g)
}

// ThisTick aligns the provided global cycle to the earliest domain edge that
// is not earlier than the input.
func (d *FreqDomain) ThisTick(now VTimeInCycle) VTimeInCycle {
	stride := d.stride()
	if stride == 0 {
		return 0
	}

	offset := d.Offset()
	if now <= offset {
		return offset
	}

	tick, ok := roundUpToStride(now-offset, stride)
	if !ok {
		return maxCycleValue
	}

	tick, ok = addCycles(tick, offset)
	if !ok {
		return maxCycleValue
	}

	return tick
}

// NextTick advances to the next domain edge strictly after the provided
// cycle count.
func (d *FreqDomain) NextTick(now VTimeInCycle) VTimeInCycle {
	if d.stride() == 0 {
		return 0
	}

	next, ok := addCycles(now, 1)
	if !ok {
		return maxCycleValue
	}

	return d.ThisTick(next)
}

// NTicksLater advances the provided cycle count by the specified number of
// domain ticks.
func (d *FreqDomain) NTicksLater(now, ticks VTimeInCycle) VTimeInCycle {
	stride := d.stride()
	if stride == 0 {
		return 0
	}

	if ticks == 0 {
		return d.ThisTick(now)
	}

	offset, ok := mulCycles(ticks, stride)
	if !ok {
		return maxCycleValue
	}

	future, ok := addCycles(now, offset)
	if !ok {
		return maxCycleValue
	}

	return d.ThisTick(future)
}

// TickIndex returns how many edges of this domain happened at or before the
// given global cycle.
func (d *FreqDomain) TickIndex(now VTimeInCycle) uint64 {
	stride := d.stride()
	offset := d.Offset()
	if stride == 0 || now < offset {
		return 0
	}

	return uint64((now-offset)/stride) + 1
}

func (d *FreqDomain) stride() VTimeInCycle {
	if d == nil || d.registry == nil {
		return 0
	}

	stride, ok := d.registry.cycleStride(d.freq)
	if !ok {
		return 0
	}

	return stride
}
