package ddrphy

import (
	"errors"
	"fmt"

	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/sdram"
)

// ErrPadMismatch is returned when the memory pads do not fit the module
// geometry.
var ErrPadMismatch = errors.New("ddram pads do not match the module")

// Settings describes the physical layer to the memory controller.
type Settings struct {
	MemType      sdram.MemType
	DQWidth      int
	DFIDataBits  int
	NPhases      int
	RdPhase      int
	WrPhase      int
	RdCmdPhase   int
	WrCmdPhase   int
	CL           int
	CWL          int
	ReadLatency  int
	WriteLatency int
}

// A7Settings returns the settings of the 7-series DDR3 PHY for a memory of
// the given DQ width.
func A7Settings(dqWidth int) Settings {
	return Settings{
		MemType:      sdram.DDR3,
		DQWidth:      dqWidth,
		DFIDataBits:  2 * dqWidth,
		NPhases:      4,
		RdPhase:      0,
		WrPhase:      2,
		RdCmdPhase:   1,
		WrCmdPhase:   0,
		CL:           7,
		CWL:          5,
		ReadLatency:  6,
		WriteLatency: 2,
	}
}

// CheckPads verifies that the memory pads can carry a module of the given
// geometry and data width.
func CheckPads(pads *platform.Resource, geom sdram.GeomSettings, dqWidth int) error {
	if pads == nil {
		return fmt.Errorf("%w: no pads", ErrPadMismatch)
	}

	checks := []struct {
		sub  string
		want int
		min  bool
	}{
		{"a", geom.AddressBits(), true},
		{"ba", geom.BankBits, false},
		{"dq", dqWidth, false},
		{"dm", dqWidth / 8, false},
		{"dqs_p", dqWidth / 8, false},
		{"dqs_n", dqWidth / 8, false},
		{"ras_n", 1, false},
		{"cas_n", 1, false},
		{"we_n", 1, false},
		{"clk_p", 1, false},
		{"clk_n", 1, false},
		{"cke", 1, false},
		{"odt", 1, false},
		{"reset_n", 1, false},
	}

	for _, c := range checks {
		got := pads.Width(c.sub)
		if got == c.want || c.min && got > c.want {
			continue
		}

		return fmt.Errorf("%w: %s has %d pins, want %d",
			ErrPadMismatch, c.sub, got, c.want)
	}

	return nil
}
