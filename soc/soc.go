// Package soc composes the Arty DDR3 system-on-chip: the clock and reset
// generator, the DDR3 PHY and its controller, the UART bridge, the on-die
// peripherals and the optional debug tap, together with their register and
// address maps.
package soc

import (
	"fmt"

	"github.com/sarchlab/socgen/bus"
	"github.com/sarchlab/socgen/crg"
	"github.com/sarchlab/socgen/csr"
	"github.com/sarchlab/socgen/ddrphy"
	"github.com/sarchlab/socgen/debugtap"
	"github.com/sarchlab/socgen/instrumentation/logging"
	"github.com/sarchlab/socgen/periph"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/sdram"
	"github.com/sarchlab/socgen/timing"
)

// SoC is a composed system-on-chip.
type SoC struct {
	spec     Spec
	platform *platform.Platform

	engine   *timing.SerialEngine
	registry *timing.FrequencyRegistry
	started  bool

	crg        *crg.Comp
	sys        *crg.Domain
	trace      *crg.Trace
	settings   sdram.Settings
	phy        *ddrphy.Comp
	controller *sdram.Controller
	bus        *bus.Interconnect
	bridge     *bus.UARTBridge
	csr        *csr.Map
	dna        *periph.DNA
	xadc       *periph.XADC
	analyzer   *debugtap.Analyzer
}

type pads struct {
	clk, rst, ddram, serial *platform.Resource
}

// Compose builds the SoC on a platform. It claims the oscillator, the
// reset button, the memory pins and the serial pins. The first error
// aborts composition.
func Compose(p *platform.Platform, spec Spec, opts ...Option) (*SoC, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	pins, err := requestPads(p)
	if err != nil {
		return nil, err
	}

	s := &SoC{
		spec:     spec,
		platform: p,
		engine:   o.engine,
		registry: timing.NewFrequencyRegistry(),
	}

	if s.engine == nil {
		s.engine = timing.NewSerialEngine()
	}

	s.buildCRG(pins, o)

	steps := []func() error{
		func() error { return s.buildMemory(pins.ddram) },
		s.buildCSRMap,
		func() error { return s.buildBus(pins.serial) },
		s.buildPeripherals,
		s.buildDebugTap,
		s.bindCSRs,
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	s.addConstants()

	return s, nil
}

func requestPads(p *platform.Platform) (pads, error) {
	var pins pads

	requests := []struct {
		name string
		dst  **platform.Resource
	}{
		{p.DefaultClock(), &pins.clk},
		{"cpu_reset", &pins.rst},
		{"ddram", &pins.ddram},
		{"serial", &pins.serial},
	}

	for _, r := range requests {
		res, err := p.Request(r.name, 0)
		if err != nil {
			return pads{}, fmt.Errorf("soc: request %s: %w", r.name, err)
		}

		*r.dst = res
	}

	return pins, nil
}

func (s *SoC) buildCRG(pins pads, o *options) {
	b := crg.MakeBuilder().
		WithEngine(s.engine).
		WithFreqRegistry(s.registry).
		WithSpec(s.spec.CRG).
		WithRefClock(pins.clk).
		WithRefReset(pins.rst)

	for _, h := range o.crgHooks {
		b = b.WithHook(h)
	}

	if o.logger != nil {
		b = b.WithHook(logging.NewMilestoneLogger(o.logger, s.engine,
			crg.HookPosLockAcquired,
			crg.HookPosDomainActive,
			crg.HookPosCalibrationEnd))

		if o.logEvents {
			s.engine.AcceptHook(logging.NewEventLogger(o.logger))
		}
	}

	s.crg = b.Build("crg")
	s.sys = s.crg.MustDomain(s.spec.SysName)

	s.trace = crg.NewTrace(s.crg, s.registry)
	s.engine.AcceptHook(s.trace)

	for _, h := range o.engineHooks {
		s.engine.AcceptHook(h)
	}
}

func (s *SoC) buildMemory(ddram *platform.Resource) error {
	s.settings = s.spec.Memory.Resolve(
		s.sys.Freq(), sdram.MustParseRatio(s.spec.Ratio))

	err := ddrphy.CheckPads(ddram, s.settings.Geom, s.settings.DataWidth)
	if err != nil {
		return fmt.Errorf("soc: ddrphy: %w", err)
	}

	s.phy = ddrphy.MakeBuilder().
		WithPads(ddram).
		WithGeometry(s.settings.Geom).
		WithDQWidth(s.settings.DataWidth).
		WithCRG(s.crg).
		Build("ddrphy")

	s.controller, err = sdram.NewController(
		s.spec.ControllerScheme, s.settings, s.phy.DFI().NumPhases())
	if err != nil {
		return fmt.Errorf("soc: sdram: %w", err)
	}

	return nil
}

func (s *SoC) buildCSRMap() error {
	s.csr = csr.NewMap(s.spec.CSR)

	names := sortedByOffset(s.spec.InheritedCSR)
	for _, name := range names {
		if err := s.csr.Inherit(name, s.spec.InheritedCSR[name]); err != nil {
			return fmt.Errorf("soc: csr: %w", err)
		}
	}

	if err := s.csr.AssignAll(s.spec.CSRMap); err != nil {
		return fmt.Errorf("soc: csr: %w", err)
	}

	return nil
}

func (s *SoC) buildBus(serial *platform.Resource) error {
	s.bus = bus.NewInterconnect(s.spec.BusDataWidth)

	regions := []bus.Region{
		{
			Name:   "main_ram",
			Base:   s.spec.MainRAMBase,
			Size:   s.settings.CapacityBytes(),
			Cached: true,
		},
		{
			Name: "csr",
			Base: s.spec.CSR.Base,
			Size: uint64(s.spec.CSR.Limit) * s.spec.CSR.BankSize,
		},
	}

	for _, r := range regions {
		if err := s.bus.AddRegion(r); err != nil {
			return fmt.Errorf("soc: bus: %w", err)
		}

		s.csr.AddMemoryRegion(csr.MemoryRegion{
			Name: r.Name, Base: r.Base, Size: r.Size, Kind: r.Kind(),
		})
	}

	bridge, err := bus.NewUARTBridge(
		"uart_bridge", serial, s.sys.Freq(), s.spec.UARTBaud)
	if err != nil {
		return fmt.Errorf("soc: bus: %w", err)
	}

	if err := s.bus.RegisterMaster(bridge); err != nil {
		return fmt.Errorf("soc: bus: %w", err)
	}

	s.bridge = bridge

	return nil
}

func (s *SoC) buildPeripherals() error {
	s.dna = periph.NewDNA(s.spec.DeviceDNA, s.sys.Clock(), s.sys.Active)
	s.xadc = periph.NewXADC(
		s.spec.XADC, s.spec.XADCPeriod, s.sys.Clock(), s.sys.Active)

	return nil
}

func (s *SoC) buildDebugTap() error {
	if !s.spec.DebugTap.Enabled {
		return nil
	}

	signals, err := debugtap.SignalList(s.phy.DFI(), s.spec.DebugTap.Phases)
	if err != nil {
		return fmt.Errorf("soc: debug tap: %w", err)
	}

	s.analyzer = debugtap.Attach(signals, s.spec.DebugTap.Depth)
	s.analyzer.SetTrigger(s.phy.DelayCtrl().ReadySignal(), 1, 1)
	s.analyzer.SampleOn(s.sys.Clock())
	s.analyzer.Arm()

	if _, reserved := s.csr.Offset("analyzer"); !reserved {
		if _, err := s.csr.Allocate("analyzer"); err != nil {
			return fmt.Errorf("soc: csr: %w", err)
		}
	}

	return nil
}

func (s *SoC) bindCSRs() error {
	bindings := []struct {
		name string
		p    csr.Provider
	}{
		{"sdram", s.controller},
		{"ddrphy", s.phy},
		{"dna", s.dna},
		{"xadc", s.xadc},
	}

	if s.analyzer != nil {
		bindings = append(bindings, struct {
			name string
			p    csr.Provider
		}{"analyzer", s.analyzer})
	}

	for _, b := range bindings {
		if err := s.csr.Bind(b.name, b.p); err != nil {
			return fmt.Errorf("soc: csr: %w", err)
		}
	}

	return nil
}

func (s *SoC) addConstants() {
	geom := s.settings.Geom

	s.csr.AddConstant("config_clock_frequency", uint64(s.sys.Freq()))
	s.csr.AddConstant("config_csr_data_width", s.spec.CSR.DataWidth)
	s.csr.AddConstant("config_bus_data_width", s.spec.BusDataWidth)
	s.csr.AddConstant("config_uart_bridge_baudrate", s.bridge.Baud())
	s.csr.AddConstant("sdram_module", s.settings.Module)
	s.csr.AddConstant("sdram_controller", s.controller.Scheme())
	s.csr.AddConstant("sdram_phy", "A7DDRPHY")
	s.csr.AddConstant("sdram_bank_bits", geom.BankBits)
	s.csr.AddConstant("sdram_row_bits", geom.RowBits)
	s.csr.AddConstant("sdram_col_bits", geom.ColBits)
	s.csr.AddConstant("sdram_ratio", s.settings.Ratio)
}
