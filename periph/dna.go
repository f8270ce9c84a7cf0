// Package periph holds the on-die peripherals of the SoC: the device DNA
// reader and the XADC monitor.
package periph

import (
	"fmt"

	"github.com/sarchlab/socgen/csr"
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/timing"
)

// DNAWidth is the number of bits of the device identifier.
const DNAWidth = 57

// DNA shifts the device identifier out of the DNA port, one bit per sys
// cycle, after the domain leaves reset.
type DNA struct {
	id      uint64
	value   *hdl.Signal
	shifted int
	active  func() bool
}

// NewDNA creates a reader for a device with the given identifier. The
// reader samples on the clock and only runs while active returns true.
func NewDNA(id uint64, clock *timing.Clock, active func() bool) *DNA {
	d := &DNA{
		id:     id & (1<<DNAWidth - 1),
		value:  hdl.NewSignal("dna_id", DNAWidth),
		active: active,
	}
	clock.Attach(d)

	return d
}

// Tick shifts one identifier bit in, MSB first.
func (d *DNA) Tick(_ timing.VTimeInCycle) {
	if d.Done() || !d.active() {
		return
	}

	bit := (d.id >> (DNAWidth - 1 - d.shifted)) & 1
	d.value.Set(d.value.Get()<<1 | bit)
	d.shifted++
}

// Done tells if the whole identifier has been read.
func (d *DNA) Done() bool {
	return d.shifted == DNAWidth
}

// ID returns the identifier read so far.
func (d *DNA) ID() uint64 {
	return d.value.Get()
}

// String prints the identifier in hexadecimal.
func (d *DNA) String() string {
	return fmt.Sprintf("0x%015x", d.ID())
}

// Registers lists the DNA register.
func (d *DNA) Registers() []csr.Register {
	return []csr.Register{
		{Name: "id", Width: DNAWidth, Mode: csr.ReadOnly},
	}
}
