package soc

import (
	"sort"

	"github.com/sarchlab/socgen/bus"
	"github.com/sarchlab/socgen/crg"
	"github.com/sarchlab/socgen/csr"
	"github.com/sarchlab/socgen/ddrphy"
	"github.com/sarchlab/socgen/debugtap"
	"github.com/sarchlab/socgen/periph"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/sdram"
	"github.com/sarchlab/socgen/timing"
)

// Spec returns the settings the SoC was composed from.
func (s *SoC) Spec() Spec { return s.spec }

// Platform returns the board.
func (s *SoC) Platform() *platform.Platform { return s.platform }

// Engine returns the engine the SoC runs on.
func (s *SoC) Engine() *timing.SerialEngine { return s.engine }

// FreqRegistry returns the registry of the clock domains.
func (s *SoC) FreqRegistry() *timing.FrequencyRegistry { return s.registry }

// CRG returns the clock and reset generator.
func (s *SoC) CRG() *crg.Comp { return s.crg }

// Trace returns the bring-up trace.
func (s *SoC) Trace() *crg.Trace { return s.trace }

// MemorySettings returns the memory module resolved at the sys clock.
func (s *SoC) MemorySettings() sdram.Settings { return s.settings }

// PHY returns the DDR3 physical layer.
func (s *SoC) PHY() *ddrphy.Comp { return s.phy }

// Controller returns the memory controller.
func (s *SoC) Controller() *sdram.Controller { return s.controller }

// Bus returns the interconnect.
func (s *SoC) Bus() *bus.Interconnect { return s.bus }

// Bridge returns the UART bridge.
func (s *SoC) Bridge() *bus.UARTBridge { return s.bridge }

// CSRMap returns the register map.
func (s *SoC) CSRMap() *csr.Map { return s.csr }

// DNA returns the device DNA reader.
func (s *SoC) DNA() *periph.DNA { return s.dna }

// XADC returns the sensor monitor.
func (s *SoC) XADC() *periph.XADC { return s.xadc }

// Analyzer returns the debug tap, or nil when it is disabled.
func (s *SoC) Analyzer() *debugtap.Analyzer { return s.analyzer }

// Run starts the clocks on the first call and advances the model by the
// given number of sys cycles.
func (s *SoC) Run(sysCycles uint64) error {
	if !s.started {
		s.crg.Start()
		s.started = true
	}

	domain := s.sys.FreqDomain()
	limit := domain.NTicksLater(s.engine.CurrentTime(), timing.VTimeInCycle(sysCycles))

	return s.engine.RunUntil(limit)
}

// Now returns the current time in global cycles.
func (s *SoC) Now() timing.VTimeInCycle {
	return s.engine.CurrentTime()
}

func sortedByOffset(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if m[names[i]] != m[names[j]] {
			return m[names[i]] < m[names[j]]
		}

		return names[i] < names[j]
	})

	return names
}
