package ddrphy

import (
	"fmt"

	"github.com/sarchlab/socgen/crg"
	"github.com/sarchlab/socgen/dfi"
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/sdram"
	"github.com/sarchlab/socgen/timing"
)

// Builder can build A7DDRPHYs.
type Builder struct {
	pads        *platform.Resource
	geom        sdram.GeomSettings
	dqWidth     int
	crg         *crg.Comp
	refDomain   string
	sysDomain   string
	sys4xDomain string
	dqsDomain   string
}

// MakeBuilder creates a builder bound to the default domain names.
func MakeBuilder() Builder {
	return Builder{
		dqWidth:     16,
		refDomain:   "clk200",
		sysDomain:   "sys",
		sys4xDomain: "sys4x",
		dqsDomain:   "sys4x_dqs",
	}
}

// WithPads sets the memory pins.
func (b Builder) WithPads(pads *platform.Resource) Builder {
	b.pads = pads
	return b
}

// WithGeometry sets the address geometry of the memory.
func (b Builder) WithGeometry(geom sdram.GeomSettings) Builder {
	b.geom = geom
	return b
}

// WithDQWidth sets the memory data width.
func (b Builder) WithDQWidth(w int) Builder {
	b.dqWidth = w
	return b
}

// WithCRG sets the clock and reset generator that feeds the PHY.
func (b Builder) WithCRG(c *crg.Comp) Builder {
	b.crg = c
	return b
}

// Build creates the PHY. It panics if the pads do not fit the geometry or
// the generator lacks one of the PHY domains.
func (b Builder) Build(name string) *Comp {
	if b.crg == nil {
		panic("ddrphy: clock and reset generator is not set")
	}

	if err := CheckPads(b.pads, b.geom, b.dqWidth); err != nil {
		panic(err)
	}

	settings := A7Settings(b.dqWidth)

	c := &Comp{
		name:     name,
		settings: settings,
		pads:     b.pads,
		dfi: dfi.NewInterface(name+"_dfi",
			b.geom.AddressBits(), b.geom.BankBits,
			settings.DFIDataBits, settings.NPhases),
		sys:      b.crg.MustDomain(b.sysDomain),
		sys4x:    b.crg.MustDomain(b.sys4xDomain),
		sys4xDQS: b.crg.MustDomain(b.dqsDomain),
		delayCtrl: &DelayCtrl{
			rst:   b.crg.CalibrationActive(),
			ready: hdl.NewSignal(name+"_idelayctrl_rdy", 1),
		},
		wrLatched: make([]uint64, settings.NPhases),
	}

	if !c.sys4x.ResetLess() || !c.sys4xDQS.ResetLess() {
		panic(fmt.Sprintf("ddrphy %s: serializer domains must be resetless", name))
	}

	for i := 0; i < settings.ReadLatency; i++ {
		c.readPipe = append(c.readPipe, make([]bool, settings.NPhases))
	}

	b.crg.MustDomain(b.refDomain).Clock().Attach(c.delayCtrl)
	c.sys.Clock().Attach(timing.TickerFunc(c.tickSys))
	c.sys4x.Clock().Attach(timing.TickerFunc(c.tickSerDes))
	c.sys4xDQS.Clock().Attach(timing.TickerFunc(c.tickDQS))

	return c
}
