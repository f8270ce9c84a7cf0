// Package timing provides the clock-domain arithmetic and the discrete-event
// engine that the clock and reset network runs on.
package timing

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// FreqInHz defines frequency in the unit of Hertz (cycles per second).
type FreqInHz uint64

const (
	Hz  = FreqInHz(1)
	KHz = FreqInHz(1000 * Hz)
	MHz = FreqInHz(1000 * KHz)
	GHz = FreqInHz(1000 * MHz)
)

// String prints the frequency with the largest unit that keeps it integral.
func (f FreqInHz) String() string {
	switch {
	case f != 0 && f%GHz == 0:
		return fmt.Sprintf("%dGHz", f/GHz)
	case f != 0 && f%MHz == 0:
		return fmt.Sprintf("%dMHz", f/MHz)
	case f != 0 && f%KHz == 0:
		return fmt.Sprintf("%dkHz", f/KHz)
	default:
		return fmt.Sprintf("%dHz", uint64(f))
	}
}

// PeriodInNS returns the length of one cycle in nanoseconds.
func (f FreqInHz) PeriodInNS() float64 {
	if f == 0 {
		panic("frequency cannot be 0")
	}

	return 1e9 / float64(f)
}

// PhaseInDeg is a clock phase offset in whole degrees, in [0, 360).
type PhaseInDeg uint16

// VTimeInCycle is the canonical time quantum used by the engine. All
// timestamps are expressed as multiples of the global resolution to keep
// ordering deterministic across domains.
type VTimeInCycle uint64

// VTimeInSec is a time expressed in seconds.
type VTimeInSec float64

var (
	// ErrZeroFrequency indicates that a domain attempted to register a clock
	// with a zero frequency, which is not meaningful.
	ErrZeroFrequency = errors.New("timing: frequency must be greater than zero")

	// ErrInvalidPhase indicates a phase outside [0, 360).
	ErrInvalidPhase = errors.New("timing: phase must be in [0, 360)")

	// ErrFrequencyOverflow indicates that the derived global frequency exceeds
	// what can be represented in a uint64.
	ErrFrequencyOverflow = errors.New("timing: global frequency overflow")

	// ErrNoFrequencyDomains indicates that no domains have been registered yet
	// so conversions between cycles and seconds cannot be performed.
	ErrNoFrequencyDomains = errors.New("timing: no frequency domains registered")

	// ErrTickPrecisionLoss indicates that a conversion from seconds to cycles
	// would require precision beyond the selected cycle resolution.
	ErrTickPrecisionLoss = errors.New("timing: duration is not aligned with cycle resolution")

	// ErrTickOverflow indicates that the computed number of cycles exceeds the
	// representable range of VTimeInCycle (uint64).
	ErrTickOverflow = errors.New("timing: cycle value overflow")

	// ErrNegativeDuration is returned when a duration below zero is converted.
	ErrNegativeDuration = errors.New("timing: negative duration")
)

// CeilCycles converts a duration in nanoseconds into the smallest number of
// cycles of freq that is not shorter than the duration.
func CeilCycles(ns float64, freq FreqInHz) (uint64, error) {
	if freq == 0 {
		return 0, ErrZeroFrequency
	}

	if ns < 0 || math.IsNaN(ns) {
		return 0, fmt.Errorf("%w: %g ns", ErrNegativeDuration, ns)
	}

	scaled := ns * float64(freq) / 1e9
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) <= cycleAlignmentTolerance(scaled) {
		scaled = rounded
	}

	cycles := math.Ceil(scaled)
	if cycles > float64(math.MaxUint64) {
		return 0, ErrTickOverflow
	}

	return uint64(cycles), nil
}

const maxCycleValue = VTimeInCycle(math.MaxUint64)

func roundUpToStride(value, stride VTimeInCycle) (VTimeInCycle, bool) {
	if stride == 0 {
		return 0, true
	}

	remainder := value % stride
	if remainder == 0 {
		return value, true
	}

	delta := stride - remainder

	return addCycles(value, delta)
}

func addCycles(a, b VTimeInCycle) (VTimeInCycle, bool) {
	if uint64(a) > math.MaxUint64-uint64(b) {
		return maxCycleValue, false
	}

	return a + b, true
}

func mulCycles(a, b VTimeInCycle) (VTimeInCycle, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 {
		return maxCycleValue, false
	}

	return VTimeInCycle(lo), true
}

func cycleAlignmentTolerance(value float64) float64 {
	// The tolerance scales with the magnitude of the value to absorb
	// floating-point rounding noise.
	const ulpFactor = 1e-9

	v := math.Abs(value)
	if v < 1 {
		return ulpFactor
	}

	return v * ulpFactor
}

func lcmFreq(a, b FreqInHz) (FreqInHz, error) {
	g := gcdFreq(a, b)
	if g == 0 {
		return 0, ErrZeroFrequency
	}

	quotient := uint64(a / g)
	if quotient > math.MaxUint64/uint64(b) {
		return 0, ErrFrequencyOverflow
	}

	return FreqInHz(quotient * uint64(b)), nil
}

func gcdFreq(a, b FreqInHz) FreqInHz {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}
