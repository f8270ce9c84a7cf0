package sdram

import (
	"fmt"

	"github.com/sarchlab/socgen/timing"
)

// GeomSettings are the address bit widths of a device.
type GeomSettings struct {
	BankBits int
	RowBits  int
	ColBits  int
}

// AddressBits is the width of the multiplexed DFI address bus.
func (g GeomSettings) AddressBits() int {
	return max(g.RowBits, g.ColBits)
}

// TimingSettings are the device timings in controller clock cycles.
type TimingSettings struct {
	TRP   int
	TRCD  int
	TWR   int
	TWTR  int
	TREFI int
	TRFC  int
}

// Settings is the fully resolved description handed to the PHY and to the
// controller.
type Settings struct {
	Module  string
	MemType MemType
	ClkFreq timing.FreqInHz
	Ratio   Ratio

	Geom      GeomSettings
	Timing    TimingSettings
	DataWidth int
}

// CapacityBytes returns banks x rows x columns x data width in bytes.
func (s Settings) CapacityBytes() uint64 {
	words := uint64(1) << (s.Geom.BankBits + s.Geom.RowBits + s.Geom.ColBits)
	return words * uint64(s.DataWidth) / 8
}

// Resolve turns the module into cycle counts at clkFreq. Every duration is
// rounded up so the controller never schedules faster than the device allows.
// Resolve panics if the module, the ratio or the frequency is invalid.
func (m Module) Resolve(clkFreq timing.FreqInHz, ratio Ratio) Settings {
	m.MustValidate()

	if err := ratio.Validate(); err != nil {
		panic(err)
	}

	if clkFreq == 0 {
		panic(fmt.Errorf("%w: clock frequency is zero", ErrInvalidModule))
	}

	return Settings{
		Module:  m.Name,
		MemType: m.MemType,
		ClkFreq: clkFreq,
		Ratio:   ratio,
		Geom: GeomSettings{
			BankBits: log2(m.NumBanks),
			RowBits:  log2(m.NumRows),
			ColBits:  log2(m.NumCols),
		},
		Timing: TimingSettings{
			TRP:   mustCycles("tRP", m.TRP, clkFreq),
			TRCD:  mustCycles("tRCD", m.TRCD, clkFreq),
			TWR:   mustCycles("tWR", m.TWR, clkFreq),
			TWTR:  m.TWTRCycles,
			TREFI: mustCycles("tREFI", m.TREFI, clkFreq),
			TRFC:  mustCycles("tRFC", m.TRFC, clkFreq),
		},
		DataWidth: m.DataWidth,
	}
}

func mustCycles(name string, ns float64, freq timing.FreqInHz) int {
	cycles, err := timing.CeilCycles(ns, freq)
	if err != nil {
		panic(fmt.Errorf("%w: %s: %w", ErrInvalidModule, name, err))
	}

	return int(cycles)
}
