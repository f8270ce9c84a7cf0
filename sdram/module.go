// Package sdram describes SDRAM devices and resolves their timings for a
// given controller clock.
package sdram

import (
	"errors"
	"fmt"
	"math/bits"
)

// MemType identifies the device class.
type MemType string

// Supported device classes.
const (
	SDR   MemType = "SDR"
	DDR   MemType = "DDR"
	LPDDR MemType = "LPDDR"
	DDR2  MemType = "DDR2"
	DDR3  MemType = "DDR3"
)

// ErrInvalidModule is wrapped by every module validation failure.
var ErrInvalidModule = errors.New("sdram: invalid module")

// Module holds the geometry and the datasheet timings of one memory device.
// Timings are in nanoseconds unless the field name says otherwise.
type Module struct {
	Name    string
	MemType MemType

	NumBanks  int
	NumRows   int
	NumCols   int
	DataWidth int // DQ bits of the device

	TRP   float64 // row precharge
	TRCD  float64 // row to column delay
	TWR   float64 // write recovery
	TREFI float64 // refresh interval
	TRFC  float64 // refresh cycle time

	// TWTRCycles is the write-to-read turnaround. The datasheet gives it in
	// clock cycles.
	TWTRCycles int
}

// MT41K128M16 is the 256 MB DDR3L device (-125 speed grade) fitted to the
// Arty board.
func MT41K128M16() Module {
	return Module{
		Name:       "MT41K128M16",
		MemType:    DDR3,
		NumBanks:   8,
		NumRows:    16384,
		NumCols:    1024,
		DataWidth:  16,
		TRP:        13.75,
		TRCD:       13.75,
		TWR:        15,
		TWTRCycles: 8,
		TREFI:      64 * 1000 * 1000 / 8192.0,
		TRFC:       160,
	}
}

// Validate checks that the geometry counts are powers of two and that no
// timing is negative.
func (m Module) Validate() error {
	switch m.MemType {
	case SDR, DDR, LPDDR, DDR2, DDR3:
	default:
		return fmt.Errorf("%w: unknown memory type %q", ErrInvalidModule, m.MemType)
	}

	geometry := []struct {
		name  string
		value int
	}{
		{"bank count", m.NumBanks},
		{"row count", m.NumRows},
		{"column count", m.NumCols},
		{"data width", m.DataWidth},
	}
	for _, g := range geometry {
		if !isPowerOfTwo(g.value) {
			return fmt.Errorf("%w: %s %d is not a power of two",
				ErrInvalidModule, g.name, g.value)
		}
	}

	timings := []struct {
		name  string
		value float64
	}{
		{"tRP", m.TRP},
		{"tRCD", m.TRCD},
		{"tWR", m.TWR},
		{"tREFI", m.TREFI},
		{"tRFC", m.TRFC},
		{"tWTR", float64(m.TWTRCycles)},
	}
	for _, t := range timings {
		if t.value < 0 {
			return fmt.Errorf("%w: %s is negative (%g)",
				ErrInvalidModule, t.name, t.value)
		}
	}

	if m.TREFI <= m.TRFC {
		return fmt.Errorf("%w: tREFI (%g ns) must exceed tRFC (%g ns)",
			ErrInvalidModule, m.TREFI, m.TRFC)
	}

	return nil
}

// MustValidate panics when the module is malformed. Module tables are vetted
// constants, so a failure here is an authoring bug.
func (m Module) MustValidate() {
	if err := m.Validate(); err != nil {
		panic(err)
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func log2(n int) int {
	return bits.TrailingZeros(uint(n))
}
