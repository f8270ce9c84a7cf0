// Package debugtap captures internal signals of the memory interface for
// offline inspection. A disabled tap is never built.
package debugtap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/socgen/dfi"
	"github.com/sarchlab/socgen/hdl"
)

// ErrUnknownPhase is returned when the phase table names a phase the
// interface does not have.
var ErrUnknownPhase = errors.New("debugtap: unknown dfi phase")

// PhaseTable tells which DFI phases are observed.
type PhaseTable map[int]bool

// DefaultPhaseTable observes phases 0 and 1 and leaves 2 and 3 out.
func DefaultPhaseTable() PhaseTable {
	return PhaseTable{0: true, 1: true, 2: false, 3: false}
}

// Enabled returns the enabled phases in ascending order.
func (t PhaseTable) Enabled() []int {
	var phases []int

	for p, on := range t {
		if on {
			phases = append(phases, p)
		}
	}

	sort.Ints(phases)

	return phases
}

// SignalList returns the observed signals: for each enabled phase, in
// phase order, every signal of the phase in interface order.
func SignalList(i *dfi.Interface, table PhaseTable) ([]hdl.Probe, error) {
	var probes []hdl.Probe

	for _, n := range table.Enabled() {
		if n < 0 || n >= i.NumPhases() {
			return nil, fmt.Errorf("%w: %d of %d", ErrUnknownPhase, n, i.NumPhases())
		}

		for _, s := range i.Phase(n).Signals() {
			probes = append(probes, s)
		}
	}

	return probes, nil
}
