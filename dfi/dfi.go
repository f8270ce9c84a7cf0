// Package dfi describes the command and data interface between a memory
// controller and its physical-layer controller.
package dfi

import (
	"fmt"

	"github.com/sarchlab/socgen/hdl"
)

// Direction tells which side drives a signal.
type Direction int

const (
	// ControllerToPHY signals are driven by the memory controller.
	ControllerToPHY Direction = iota

	// PHYToController signals are driven by the physical layer.
	PHYToController
)

// Signal names of one phase, in interface order.
const (
	Address     = "address"
	Bank        = "bank"
	CasN        = "cas_n"
	CsN         = "cs_n"
	RasN        = "ras_n"
	WeN         = "we_n"
	CKE         = "cke"
	ODT         = "odt"
	ResetN      = "reset_n"
	WrData      = "wrdata"
	WrDataEn    = "wrdata_en"
	WrDataMask  = "wrdata_mask"
	RdDataEn    = "rddata_en"
	RdData      = "rddata"
	RdDataValid = "rddata_valid"
)

// SignalDesc describes one signal of a phase.
type SignalDesc struct {
	Name      string
	Width     int
	Direction Direction
	Reset     uint64
}

// PhaseLayout returns the signals of one phase.
func PhaseLayout(addressBits, bankBits, dataBits int) []SignalDesc {
	return []SignalDesc{
		{Address, addressBits, ControllerToPHY, 0},
		{Bank, bankBits, ControllerToPHY, 0},
		{CasN, 1, ControllerToPHY, 1},
		{CsN, 1, ControllerToPHY, 1},
		{RasN, 1, ControllerToPHY, 1},
		{WeN, 1, ControllerToPHY, 1},
		{CKE, 1, ControllerToPHY, 0},
		{ODT, 1, ControllerToPHY, 0},
		{ResetN, 1, ControllerToPHY, 0},
		{WrData, dataBits, ControllerToPHY, 0},
		{WrDataEn, 1, ControllerToPHY, 0},
		{WrDataMask, dataBits / 8, ControllerToPHY, 0},
		{RdDataEn, 1, ControllerToPHY, 0},
		{RdData, dataBits, PHYToController, 0},
		{RdDataValid, 1, PHYToController, 0},
	}
}

// Phase is the set of signals exchanged in one slot of a controller cycle.
type Phase struct {
	index   int
	layout  []SignalDesc
	signals []*hdl.Signal
	byName  map[string]*hdl.Signal
}

// Index returns the position of the phase in the controller cycle.
func (p *Phase) Index() int {
	return p.index
}

// Signals returns the signals of the phase in interface order.
func (p *Phase) Signals() []*hdl.Signal {
	return p.signals
}

// Layout returns the signal descriptions in interface order.
func (p *Phase) Layout() []SignalDesc {
	return p.layout
}

// Signal returns the named signal. It panics if the phase has no such
// signal.
func (p *Phase) Signal(name string) *hdl.Signal {
	s, ok := p.byName[name]
	if !ok {
		panic(fmt.Sprintf("dfi phase %d has no signal %s", p.index, name))
	}

	return s
}

// Reset returns every signal to its reset value.
func (p *Phase) Reset() {
	for _, s := range p.signals {
		s.Reset()
	}
}

// Interface is a multi-phase DFI bus.
type Interface struct {
	addressBits int
	bankBits    int
	dataBits    int
	phases      []*Phase
}

// NewInterface creates an interface with the given widths and number of
// phases. Signal names are prefixed with the given name.
func NewInterface(
	name string,
	addressBits, bankBits, dataBits, numPhases int,
) *Interface {
	if numPhases <= 0 {
		panic("dfi: the interface needs at least one phase")
	}

	if dataBits <= 0 || dataBits%8 != 0 {
		panic(fmt.Sprintf("dfi: data width %d is not a multiple of 8", dataBits))
	}

	i := &Interface{
		addressBits: addressBits,
		bankBits:    bankBits,
		dataBits:    dataBits,
	}

	layout := PhaseLayout(addressBits, bankBits, dataBits)
	for n := 0; n < numPhases; n++ {
		p := &Phase{
			index:  n,
			layout: layout,
			byName: make(map[string]*hdl.Signal),
		}

		for _, d := range layout {
			s := hdl.NewSignalWithReset(
				fmt.Sprintf("%s_p%d_%s", name, n, d.Name), d.Width, d.Reset)
			p.signals = append(p.signals, s)
			p.byName[d.Name] = s
		}

		i.phases = append(i.phases, p)
	}

	return i
}

// Phases returns the phases in order.
func (i *Interface) Phases() []*Phase {
	return i.phases
}

// Phase returns phase n.
func (i *Interface) Phase(n int) *Phase {
	return i.phases[n]
}

// NumPhases returns the number of phases.
func (i *Interface) NumPhases() int {
	return len(i.phases)
}

// AddressBits returns the address width.
func (i *Interface) AddressBits() int {
	return i.addressBits
}

// BankBits returns the bank address width.
func (i *Interface) BankBits() int {
	return i.bankBits
}

// DataBits returns the data width of one phase.
func (i *Interface) DataBits() int {
	return i.dataBits
}

// Reset returns every signal of every phase to its reset value.
func (i *Interface) Reset() {
	for _, p := range i.phases {
		p.Reset()
	}
}
