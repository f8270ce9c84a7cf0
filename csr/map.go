// Package csr assigns control/status register banks to the subsystems of
// the SoC and exports the resulting address map.
package csr

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOffsetCollision is returned when two banks ask for the same offset.
	ErrOffsetCollision = errors.New("csr offset collision")

	// ErrDuplicateName is returned when a bank name is reserved twice.
	ErrDuplicateName = errors.New("duplicate csr bank name")

	// ErrBelowFloor is returned when an explicit offset falls in the range
	// kept for the framework's own banks.
	ErrBelowFloor = errors.New("csr offset below reserved floor")

	// ErrOffsetOutOfRange is returned when an offset does not fit the CSR
	// address space.
	ErrOffsetOutOfRange = errors.New("csr offset out of range")

	// ErrNotReserved is returned when binding registers to a bank that was
	// never reserved.
	ErrNotReserved = errors.New("csr bank not reserved")

	// ErrAlreadyBound is returned when binding a bank twice.
	ErrAlreadyBound = errors.New("csr bank already bound")

	// ErrMapFull is returned when no free offset is left.
	ErrMapFull = errors.New("csr map full")
)

// Config holds the layout of the CSR address space.
type Config struct {
	Base      uint64
	BankSize  uint64
	Floor     int
	Limit     int
	DataWidth int
	WordBytes uint64
}

// DefaultConfig returns the layout used by the SoC: 32 banks of 0x800
// bytes starting at 0x60000000, with the first 17 banks kept for the
// framework.
func DefaultConfig() Config {
	return Config{
		Base:      0x60000000,
		BankSize:  0x800,
		Floor:     17,
		Limit:     32,
		DataWidth: 8,
		WordBytes: 4,
	}
}

// Bank is a reserved CSR bank.
type Bank struct {
	Name      string
	Offset    int
	Base      uint64
	Inherited bool
	Bound     bool
	Registers []Register
}

// Map is the CSR address map. Offsets and names are unique.
type Map struct {
	cfg       Config
	banks     map[string]*Bank
	offsets   map[int]string
	constants []Constant
	regions   []MemoryRegion
}

// NewMap creates an empty map.
func NewMap(cfg Config) *Map {
	return &Map{
		cfg:     cfg,
		banks:   make(map[string]*Bank),
		offsets: make(map[int]string),
	}
}

// Config returns the layout of the map.
func (m *Map) Config() Config {
	return m.cfg
}

// Inherit reserves a framework bank. Framework banks sit below the floor.
func (m *Map) Inherit(name string, offset int) error {
	if offset < 0 || offset >= m.cfg.Floor {
		return fmt.Errorf("%w: %s at %d, floor %d",
			ErrOffsetOutOfRange, name, offset, m.cfg.Floor)
	}

	return m.reserve(name, offset, true)
}

// Assign reserves a bank at an explicit offset, which must be at or above
// the floor.
func (m *Map) Assign(name string, offset int) error {
	if offset < m.cfg.Floor {
		return fmt.Errorf("%w: %s at %d, floor %d",
			ErrBelowFloor, name, offset, m.cfg.Floor)
	}

	if offset >= m.cfg.Limit {
		return fmt.Errorf("%w: %s at %d, limit %d",
			ErrOffsetOutOfRange, name, offset, m.cfg.Limit)
	}

	return m.reserve(name, offset, false)
}

// AssignAll reserves a set of explicit offsets in ascending offset order
// and stops at the first error.
func (m *Map) AssignAll(offsets map[string]int) error {
	names := make([]string, 0, len(offsets))
	for name := range offsets {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if offsets[names[i]] != offsets[names[j]] {
			return offsets[names[i]] < offsets[names[j]]
		}

		return names[i] < names[j]
	})

	for _, name := range names {
		if err := m.Assign(name, offsets[name]); err != nil {
			return err
		}
	}

	return nil
}

// Allocate reserves the lowest free offset at or above the floor.
func (m *Map) Allocate(name string) (int, error) {
	for offset := m.cfg.Floor; offset < m.cfg.Limit; offset++ {
		if _, taken := m.offsets[offset]; taken {
			continue
		}

		if err := m.reserve(name, offset, false); err != nil {
			return 0, err
		}

		return offset, nil
	}

	return 0, fmt.Errorf("%w: cannot place %s", ErrMapFull, name)
}

func (m *Map) reserve(name string, offset int, inherited bool) error {
	if _, found := m.banks[name]; found {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	if owner, taken := m.offsets[offset]; taken {
		return fmt.Errorf("%w: %s and %s at %d",
			ErrOffsetCollision, owner, name, offset)
	}

	m.banks[name] = &Bank{
		Name:      name,
		Offset:    offset,
		Base:      m.cfg.Base + uint64(offset)*m.cfg.BankSize,
		Inherited: inherited,
	}
	m.offsets[offset] = name

	return nil
}

// Bind attaches the registers of a component to its reserved bank.
func (m *Map) Bind(name string, p Provider) error {
	b, found := m.banks[name]
	if !found {
		return fmt.Errorf("%w: %s", ErrNotReserved, name)
	}

	if b.Bound {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, name)
	}

	regs := p.Registers()
	if err := m.checkFits(name, regs); err != nil {
		return err
	}

	b.Bound = true
	b.Registers = regs

	return nil
}

func (m *Map) checkFits(name string, regs []Register) error {
	var words uint64
	for _, r := range regs {
		words += uint64(r.Words(m.cfg.DataWidth))
	}

	if words*m.cfg.WordBytes > m.cfg.BankSize {
		return fmt.Errorf("%w: bank %s needs %d words",
			ErrOffsetOutOfRange, name, words)
	}

	return nil
}

// Bank returns the named bank.
func (m *Map) Bank(name string) (*Bank, bool) {
	b, ok := m.banks[name]
	return b, ok
}

// Offset returns the offset of the named bank.
func (m *Map) Offset(name string) (int, bool) {
	b, ok := m.banks[name]
	if !ok {
		return 0, false
	}

	return b.Offset, true
}

// Banks returns every reserved bank ordered by offset.
func (m *Map) Banks() []*Bank {
	banks := make([]*Bank, 0, len(m.banks))
	for _, b := range m.banks {
		banks = append(banks, b)
	}

	sort.Slice(banks, func(i, j int) bool {
		return banks[i].Offset < banks[j].Offset
	})

	return banks
}

// BoundBanks returns the banks that have registers, ordered by offset.
func (m *Map) BoundBanks() []*Bank {
	var bound []*Bank

	for _, b := range m.Banks() {
		if b.Bound {
			bound = append(bound, b)
		}
	}

	return bound
}

// AddConstant publishes a named value.
func (m *Map) AddConstant(name string, value any) {
	m.constants = append(m.constants, Constant{
		Name:  name,
		Value: fmt.Sprint(value),
	})
}

// Constants returns the published constants in insertion order.
func (m *Map) Constants() []Constant {
	return m.constants
}

// AddMemoryRegion publishes a bus region.
func (m *Map) AddMemoryRegion(r MemoryRegion) {
	m.regions = append(m.regions, r)
}

// MemoryRegions returns the published regions in insertion order.
func (m *Map) MemoryRegions() []MemoryRegion {
	return m.regions
}

// RegisterAddress returns the bus address of a register.
func (m *Map) RegisterAddress(bank, register string) (uint64, bool) {
	b, found := m.banks[bank]
	if !found {
		return 0, false
	}

	addr := b.Base
	for _, r := range b.Registers {
		if r.Name == register {
			return addr, true
		}

		addr += uint64(r.Words(m.cfg.DataWidth)) * m.cfg.WordBytes
	}

	return 0, false
}
