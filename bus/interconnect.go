// Package bus models the on-chip bus: its single master and the address
// regions of its slaves.
package bus

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMasterRegistered is returned when a second master is registered.
	ErrMasterRegistered = errors.New("bus master already registered")

	// ErrRegionOverlap is returned when two regions share addresses.
	ErrRegionOverlap = errors.New("bus regions overlap")

	// ErrDuplicateRegion is returned when two regions share a name.
	ErrDuplicateRegion = errors.New("duplicate bus region")

	// ErrInvalidRegion is returned for empty or misaligned regions.
	ErrInvalidRegion = errors.New("invalid bus region")

	// ErrUnmapped is returned when an address hits no region.
	ErrUnmapped = errors.New("address not mapped")
)

// A Master can issue bus transactions.
type Master interface {
	Name() string
}

// Region is a range of bus addresses served by one slave.
type Region struct {
	Name   string
	Base   uint64
	Size   uint64
	Cached bool
}

// End returns the first address after the region.
func (r Region) End() uint64 {
	return r.Base + r.Size
}

// Contains tells if the address falls in the region.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Base && addr < r.End()
}

func (r Region) overlaps(o Region) bool {
	return r.Base < o.End() && o.Base < r.End()
}

// Kind returns "cached" or "io".
func (r Region) Kind() string {
	if r.Cached {
		return "cached"
	}

	return "io"
}

// Interconnect connects one master to a set of address regions.
type Interconnect struct {
	dataWidth int
	master    Master
	regions   []Region
}

// NewInterconnect creates an interconnect with the given data width in
// bits.
func NewInterconnect(dataWidth int) *Interconnect {
	return &Interconnect{dataWidth: dataWidth}
}

// DataWidth returns the data width of the bus.
func (ic *Interconnect) DataWidth() int {
	return ic.dataWidth
}

// RegisterMaster sets the bus master. Only one master may be registered.
func (ic *Interconnect) RegisterMaster(m Master) error {
	if ic.master != nil {
		return fmt.Errorf("%w: %s, cannot add %s",
			ErrMasterRegistered, ic.master.Name(), m.Name())
	}

	ic.master = m

	return nil
}

// Master returns the registered master, or nil.
func (ic *Interconnect) Master() Master {
	return ic.master
}

// Masters returns the registered masters.
func (ic *Interconnect) Masters() []Master {
	if ic.master == nil {
		return nil
	}

	return []Master{ic.master}
}

// AddRegion maps a slave region. Regions must be a power of two in size,
// aligned to their size, and must not overlap.
func (ic *Interconnect) AddRegion(r Region) error {
	if r.Size == 0 || r.Size&(r.Size-1) != 0 || r.Base%r.Size != 0 {
		return fmt.Errorf("%w: %s base 0x%x size 0x%x",
			ErrInvalidRegion, r.Name, r.Base, r.Size)
	}

	for _, o := range ic.regions {
		if o.Name == r.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateRegion, r.Name)
		}

		if o.overlaps(r) {
			return fmt.Errorf("%w: %s and %s", ErrRegionOverlap, o.Name, r.Name)
		}
	}

	ic.regions = append(ic.regions, r)
	sort.Slice(ic.regions, func(i, j int) bool {
		return ic.regions[i].Base < ic.regions[j].Base
	})

	return nil
}

// Regions returns the regions ordered by base address.
func (ic *Interconnect) Regions() []Region {
	return ic.regions
}

// Region returns the named region.
func (ic *Interconnect) Region(name string) (Region, bool) {
	for _, r := range ic.regions {
		if r.Name == name {
			return r, true
		}
	}

	return Region{}, false
}

// Decode returns the region that serves an address and the offset of the
// address inside it.
func (ic *Interconnect) Decode(addr uint64) (Region, uint64, error) {
	i := sort.Search(len(ic.regions), func(i int) bool {
		return ic.regions[i].End() > addr
	})

	if i < len(ic.regions) && ic.regions[i].Contains(addr) {
		return ic.regions[i], addr - ic.regions[i].Base, nil
	}

	return Region{}, 0, fmt.Errorf("%w: 0x%08x", ErrUnmapped, addr)
}
