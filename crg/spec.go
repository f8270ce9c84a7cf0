package crg

import (
	"errors"
	"fmt"

	"github.com/sarchlab/socgen/timing"
)

// ErrInvalidSpec is wrapped by every Validate failure.
var ErrInvalidSpec = errors.New("crg: invalid spec")

// ResetMode selects how a domain's reset follows the lock and the external
// reset request.
type ResetMode int

const (
	// ResetNone marks a resetless domain. Its clock is gated by lock.
	ResetNone ResetMode = iota

	// ResetOnRequest holds the domain in reset while lock is low or the
	// external reset request is asserted.
	ResetOnRequest

	// ResetOnRelease holds the domain in reset while lock is low or the
	// external reset request is de-asserted.
	ResetOnRelease
)

func (m ResetMode) String() string {
	switch m {
	case ResetNone:
		return "none"
	case ResetOnRequest:
		return "on-request"
	case ResetOnRelease:
		return "on-release"
	default:
		return fmt.Sprintf("ResetMode(%d)", int(m))
	}
}

// Output is one PLL output.
type Output struct {
	Name     string
	Divide   int
	Phase    timing.PhaseInDeg
	Reset    ResetMode
	Disabled bool
}

// Spec holds the constants of the clock and reset generator.
type Spec struct {
	RefFreq  timing.FreqInHz
	Multiply int
	DivClk   int
	VCOMin   timing.FreqInHz
	VCOMax   timing.FreqInHz

	// LockDelay is the number of reference cycles before the PLL reports
	// lock.
	LockDelay int

	Outputs []Output

	CountdownDomain string
	CountdownWidth  int
	CountdownInit   uint64
}

// Defaults returns the Arty generator: a 1600 MHz VCO fed by the 100 MHz
// board oscillator.
func Defaults() Spec {
	return Spec{
		RefFreq:   100 * timing.MHz,
		Multiply:  16,
		DivClk:    1,
		VCOMin:    800 * timing.MHz,
		VCOMax:    1600 * timing.MHz,
		LockDelay: 32,
		Outputs: []Output{
			{Name: "sys", Divide: 16, Reset: ResetOnRequest},
			{Name: "sys4x", Divide: 4, Reset: ResetNone},
			{Name: "sys4x_dqs", Divide: 4, Phase: 90, Reset: ResetNone},
			{Name: "clk200", Divide: 8, Reset: ResetOnRelease},
			{Name: "clkout4", Divide: 4, Disabled: true},
		},
		CountdownDomain: "clk200",
		CountdownWidth:  4,
		CountdownInit:   15,
	}
}

// VCO returns the internal operating frequency of the PLL.
func (s Spec) VCO() timing.FreqInHz {
	if s.DivClk <= 0 {
		return 0
	}

	return s.RefFreq * timing.FreqInHz(s.Multiply) / timing.FreqInHz(s.DivClk)
}

// OutputFreq returns the frequency of an output.
func (s Spec) OutputFreq(o Output) timing.FreqInHz {
	if o.Divide <= 0 {
		return 0
	}

	return s.VCO() / timing.FreqInHz(o.Divide)
}

// Validate checks that the Spec can be built.
func (s Spec) Validate() error {
	if s.RefFreq == 0 {
		return fmt.Errorf("%w: reference frequency is 0", ErrInvalidSpec)
	}

	if s.Multiply <= 0 || s.DivClk <= 0 {
		return fmt.Errorf("%w: multiply %d, divide %d",
			ErrInvalidSpec, s.Multiply, s.DivClk)
	}

	if (s.RefFreq*timing.FreqInHz(s.Multiply))%timing.FreqInHz(s.DivClk) != 0 {
		return fmt.Errorf("%w: input divider %d does not divide %s x %d",
			ErrInvalidSpec, s.DivClk, s.RefFreq, s.Multiply)
	}

	vco := s.VCO()
	if vco < s.VCOMin || vco > s.VCOMax {
		return fmt.Errorf("%w: VCO %s outside [%s, %s]",
			ErrInvalidSpec, vco, s.VCOMin, s.VCOMax)
	}

	if s.LockDelay <= 0 {
		return fmt.Errorf("%w: lock delay must be positive", ErrInvalidSpec)
	}

	if err := s.validateOutputs(vco); err != nil {
		return err
	}

	return s.validateCountdown()
}

func (s Spec) validateOutputs(vco timing.FreqInHz) error {
	names := make(map[string]bool)

	for i, o := range s.Outputs {
		if o.Name == "" {
			return fmt.Errorf("%w: output %d has no name", ErrInvalidSpec, i)
		}

		if names[o.Name] {
			return fmt.Errorf("%w: duplicate output %s", ErrInvalidSpec, o.Name)
		}
		names[o.Name] = true

		if o.Divide <= 0 || vco%timing.FreqInHz(o.Divide) != 0 {
			return fmt.Errorf("%w: output %s: divide %d does not divide VCO %s",
				ErrInvalidSpec, o.Name, o.Divide, vco)
		}

		if o.Phase >= 360 {
			return fmt.Errorf("%w: output %s: phase %d",
				ErrInvalidSpec, o.Name, o.Phase)
		}

		if o.Reset < ResetNone || o.Reset > ResetOnRelease {
			return fmt.Errorf("%w: output %s: reset mode %d",
				ErrInvalidSpec, o.Name, o.Reset)
		}
	}

	return nil
}

func (s Spec) validateCountdown() error {
	if s.CountdownWidth <= 0 || s.CountdownWidth > 64 {
		return fmt.Errorf("%w: countdown width %d", ErrInvalidSpec, s.CountdownWidth)
	}

	if s.CountdownWidth < 64 && s.CountdownInit >= 1<<uint(s.CountdownWidth) {
		return fmt.Errorf("%w: countdown value %d does not fit %d bits",
			ErrInvalidSpec, s.CountdownInit, s.CountdownWidth)
	}

	for _, o := range s.Outputs {
		if o.Name == s.CountdownDomain && !o.Disabled {
			return nil
		}
	}

	return fmt.Errorf("%w: countdown domain %q is not an enabled output",
		ErrInvalidSpec, s.CountdownDomain)
}
