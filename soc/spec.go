package soc

import (
	"errors"
	"fmt"

	"github.com/sarchlab/socgen/crg"
	"github.com/sarchlab/socgen/csr"
	"github.com/sarchlab/socgen/debugtap"
	"github.com/sarchlab/socgen/periph"
	"github.com/sarchlab/socgen/sdram"
)

// ErrInvalidSpec is wrapped by every Validate failure.
var ErrInvalidSpec = errors.New("soc: invalid spec")

// DebugTapSpec configures the logic analyzer on the DFI.
type DebugTapSpec struct {
	Enabled bool
	Depth   int
	Phases  debugtap.PhaseTable
}

// Spec holds everything that shapes the composed SoC.
type Spec struct {
	Name       string
	Identifier string

	CRG     crg.Spec
	SysName string

	Memory           sdram.Module
	Ratio            string
	ControllerScheme string
	MainRAMBase      uint64

	CSR          csr.Config
	InheritedCSR map[string]int
	CSRMap       map[string]int

	BusDataWidth int
	UARTBaud     uint64

	DeviceDNA  uint64
	XADC       periph.Readings
	XADCPeriod uint64

	DebugTap DebugTapSpec
}

// DefaultSpec returns the Arty DDR3 SoC: a 100 MHz system clock, the
// MT41K128M16 at ratio 1:4 behind a minicon controller, and a UART bridge
// at 115200 baud as the only bus master.
func DefaultSpec() Spec {
	return Spec{
		Name:       "arty_ddr3",
		Identifier: "LiteX SoC on Arty",

		CRG:     crg.Defaults(),
		SysName: "sys",

		Memory:           sdram.MT41K128M16(),
		Ratio:            "1:4",
		ControllerScheme: sdram.SchemeMinicon,
		MainRAMBase:      0x40000000,

		CSR: csr.DefaultConfig(),
		InheritedCSR: map[string]int{
			"crg":            0,
			"uart_phy":       1,
			"uart":           2,
			"identifier_mem": 3,
			"timer0":         4,
			"buttons":        5,
			"leds":           6,
			"sdram":          8,
			"l2_cache":       9,
		},
		CSRMap: map[string]int{
			"ddrphy":   17,
			"dna":      18,
			"xadc":     19,
			"analyzer": 20,
		},

		BusDataWidth: 32,
		UARTBaud:     115200,

		DeviceDNA:  0x0123456789abcde,
		XADC:       periph.NominalReadings(),
		XADCPeriod: 1024,

		DebugTap: DebugTapSpec{
			Enabled: false,
			Depth:   1024,
			Phases:  debugtap.DefaultPhaseTable(),
		},
	}
}

// Validate checks that the Spec can be built.
func (s Spec) Validate() error {
	if err := s.CRG.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if err := s.Memory.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if _, err := sdram.ParseRatio(s.Ratio); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if !s.hasOutput(s.SysName) {
		return fmt.Errorf("%w: no clock output named %q", ErrInvalidSpec, s.SysName)
	}

	if s.UARTBaud == 0 {
		return fmt.Errorf("%w: uart baud rate is 0", ErrInvalidSpec)
	}

	if s.BusDataWidth <= 0 || s.BusDataWidth%8 != 0 {
		return fmt.Errorf("%w: bus data width %d", ErrInvalidSpec, s.BusDataWidth)
	}

	if s.XADCPeriod == 0 {
		return fmt.Errorf("%w: xadc conversion period is 0", ErrInvalidSpec)
	}

	if s.DebugTap.Enabled && s.DebugTap.Depth <= 0 {
		return fmt.Errorf("%w: debug tap depth %d", ErrInvalidSpec, s.DebugTap.Depth)
	}

	return nil
}

func (s Spec) hasOutput(name string) bool {
	for _, o := range s.CRG.Outputs {
		if o.Name == name && !o.Disabled {
			return true
		}
	}

	return false
}
