// Package ddrphy models the 7-series DDR3 physical-layer controller at the
// level the rest of the SoC sees it: its DFI port, the clock domains it runs
// on and its delay-calibration primitive.
package ddrphy

import (
	"github.com/sarchlab/socgen/crg"
	"github.com/sarchlab/socgen/csr"
	"github.com/sarchlab/socgen/dfi"
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/timing"
)

// DelayCtrl is the delay-calibration primitive. It reports ready on the
// first reference edge that sees its reset released.
type DelayCtrl struct {
	rst   hdl.Probe
	ready *hdl.Signal
}

// Ready tells if the delay lines are calibrated.
func (d *DelayCtrl) Ready() bool {
	return d.ready.Bool()
}

// ReadySignal returns the ready output.
func (d *DelayCtrl) ReadySignal() hdl.Probe {
	return d.ready
}

// Tick samples the reset on a reference clock edge.
func (d *DelayCtrl) Tick(_ timing.VTimeInCycle) {
	d.ready.SetBool(d.rst.Get() == 0)
}

// Comp is an A7DDRPHY.
type Comp struct {
	name     string
	settings Settings
	pads     *platform.Resource
	dfi      *dfi.Interface

	sys      *crg.Domain
	sys4x    *crg.Domain
	sys4xDQS *crg.Domain

	delayCtrl *DelayCtrl

	readPipe  [][]bool
	wrLatched []uint64

	serdesBeats uint64
	dqsEdges    uint64
	sysCycles   uint64
}

// Name returns the name of the PHY.
func (c *Comp) Name() string {
	return c.name
}

// Settings returns the PHY settings.
func (c *Comp) Settings() Settings {
	return c.settings
}

// DFI returns the controller-side interface.
func (c *Comp) DFI() *dfi.Interface {
	return c.dfi
}

// Pads returns the memory pins the PHY drives.
func (c *Comp) Pads() *platform.Resource {
	return c.pads
}

// DelayCtrl returns the delay-calibration primitive.
func (c *Comp) DelayCtrl() *DelayCtrl {
	return c.delayCtrl
}

// Ready tells if the PHY passes traffic: its sys domain is out of reset and
// the delay lines are calibrated.
func (c *Comp) Ready() bool {
	return c.sys.Active() && c.delayCtrl.Ready()
}

// SerDesBeats returns the number of sys4x edges the serializers saw.
func (c *Comp) SerDesBeats() uint64 {
	return c.serdesBeats
}

// DQSEdges returns the number of sys4x_dqs edges the strobe outputs saw.
func (c *Comp) DQSEdges() uint64 {
	return c.dqsEdges
}

// ActiveCycles returns the number of sys cycles the PHY was ready.
func (c *Comp) ActiveCycles() uint64 {
	return c.sysCycles
}

// Registers lists the delay-tuning registers of the PHY.
func (c *Comp) Registers() []csr.Register {
	return []csr.Register{
		{Name: "dly_sel", Width: c.settings.DQWidth / 8, Mode: csr.ReadWrite},
		{Name: "rdly_dq_rst", Width: 1, Mode: csr.ReadWrite},
		{Name: "rdly_dq_inc", Width: 1, Mode: csr.ReadWrite},
		{Name: "rdly_dq_bitslip", Width: 1, Mode: csr.ReadWrite},
	}
}

// tickSys returns read data to the controller ReadLatency cycles after it
// was requested, looping back the last data written on the same phase.
func (c *Comp) tickSys(_ timing.VTimeInCycle) {
	if !c.Ready() {
		c.clearReadPath()
		return
	}

	c.sysCycles++

	issued := make([]bool, c.dfi.NumPhases())
	for i, p := range c.dfi.Phases() {
		if p.Signal(dfi.WrDataEn).Bool() {
			c.wrLatched[i] = p.Signal(dfi.WrData).Get()
		}
		issued[i] = p.Signal(dfi.RdDataEn).Bool()
	}

	c.readPipe = append(c.readPipe, issued)
	returned := c.readPipe[0]
	c.readPipe = c.readPipe[1:]

	for i, p := range c.dfi.Phases() {
		p.Signal(dfi.RdDataValid).SetBool(returned[i])
		if returned[i] {
			p.Signal(dfi.RdData).Set(c.wrLatched[i])
		} else {
			p.Signal(dfi.RdData).Set(0)
		}
	}
}

func (c *Comp) clearReadPath() {
	for i := range c.readPipe {
		c.readPipe[i] = make([]bool, c.dfi.NumPhases())
	}

	for _, p := range c.dfi.Phases() {
		p.Signal(dfi.RdDataValid).Reset()
		p.Signal(dfi.RdData).Reset()
	}
}

func (c *Comp) tickSerDes(_ timing.VTimeInCycle) {
	c.serdesBeats++
}

func (c *Comp) tickDQS(_ timing.VTimeInCycle) {
	c.dqsEdges++
}
