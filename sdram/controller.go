package sdram

import (
	"errors"
	"fmt"

	"github.com/sarchlab/socgen/csr"
)

// ErrUnknownScheme is returned for an arbitration scheme the controller
// does not implement.
var ErrUnknownScheme = errors.New("unknown sdram controller scheme")

// Supported controller arbitration schemes.
const (
	SchemeMinicon  = "minicon"
	SchemeLasmicon = "lasmicon"
)

// Controller is the memory controller bound to a PHY. Its register bank is
// the software DFI injector used to initialize the device.
type Controller struct {
	scheme   string
	settings Settings
	phases   int
}

// NewController creates a controller that schedules accesses with the given
// scheme over a PHY with the given number of DFI phases.
func NewController(scheme string, settings Settings, phases int) (*Controller, error) {
	switch scheme {
	case SchemeMinicon, SchemeLasmicon:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}

	if phases != settings.Ratio.NumPhases() {
		return nil, fmt.Errorf("sdram: ratio %s needs %d phases, PHY has %d",
			settings.Ratio, settings.Ratio.NumPhases(), phases)
	}

	return &Controller{scheme: scheme, settings: settings, phases: phases}, nil
}

// Scheme returns the arbitration scheme.
func (c *Controller) Scheme() string {
	return c.scheme
}

// Settings returns the resolved module settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Registers lists the DFI injector registers: a control register and, per
// phase, a command with its address, bank and data.
func (c *Controller) Registers() []csr.Register {
	dataBits := 2 * c.settings.DataWidth
	regs := []csr.Register{
		{Name: "dfii_control", Width: 4, Mode: csr.ReadWrite, Reset: 1},
	}

	for p := 0; p < c.phases; p++ {
		prefix := fmt.Sprintf("dfii_pi%d_", p)
		regs = append(regs,
			csr.Register{Name: prefix + "command", Width: 6, Mode: csr.ReadWrite},
			csr.Register{Name: prefix + "command_issue", Width: 1, Mode: csr.ReadWrite},
			csr.Register{Name: prefix + "address", Width: c.settings.Geom.AddressBits(), Mode: csr.ReadWrite},
			csr.Register{Name: prefix + "baddress", Width: c.settings.Geom.BankBits, Mode: csr.ReadWrite},
			csr.Register{Name: prefix + "wrdata", Width: dataBits, Mode: csr.ReadWrite},
			csr.Register{Name: prefix + "rddata", Width: dataBits, Mode: csr.ReadOnly},
		)
	}

	return regs
}
