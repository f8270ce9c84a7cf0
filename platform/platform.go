// Package platform describes board resources and hands them out to the
// components that drive them.
package platform

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/socgen/timing"
)

var (
	// ErrUnknownResource is returned when the platform has no resource
	// with the requested name and number.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrResourceClaimed is returned when a resource has already been
	// handed out.
	ErrResourceClaimed = errors.New("resource already claimed")

	// ErrDuplicateResource is returned when two declarations share a name
	// and number.
	ErrDuplicateResource = errors.New("duplicate resource")
)

// Subsignal is a named group of pins inside a resource.
type Subsignal struct {
	Name       string
	Pins       []string
	IOStandard string
	Misc       []string
}

// Resource is a numbered set of board pins.
type Resource struct {
	Name       string
	Number     int
	Pins       []string
	IOStandard string
	Misc       []string
	Inverted   bool
	Subsignals []Subsignal
}

// ID returns the name:number form of the resource.
func (r *Resource) ID() string {
	return fmt.Sprintf("%s:%d", r.Name, r.Number)
}

// Subsignal returns the subsignal with the given name.
func (r *Resource) Subsignal(name string) (Subsignal, bool) {
	for _, s := range r.Subsignals {
		if s.Name == name {
			return s, true
		}
	}

	return Subsignal{}, false
}

// Width returns the number of pins of the resource, or of the named
// subsignal.
func (r *Resource) Width(subsignal string) int {
	if subsignal == "" {
		return len(r.Pins)
	}

	s, ok := r.Subsignal(subsignal)
	if !ok {
		return 0
	}

	return len(s.Pins)
}

type resourceKey struct {
	name   string
	number int
}

// Platform owns the resources of one board. Each resource can be
// requested once.
type Platform struct {
	name          string
	device        string
	defaultClock  string
	defaultPeriod float64

	resources map[resourceKey]*Resource
	order     []resourceKey
	claimed   map[resourceKey]bool
}

// New creates a platform from a list of resources.
func New(
	name, device string,
	defaultClock string,
	defaultPeriodNS float64,
	resources []Resource,
) (*Platform, error) {
	p := &Platform{
		name:          name,
		device:        device,
		defaultClock:  defaultClock,
		defaultPeriod: defaultPeriodNS,
		resources:     make(map[resourceKey]*Resource),
		claimed:       make(map[resourceKey]bool),
	}

	for i := range resources {
		r := resources[i]
		key := resourceKey{r.Name, r.Number}

		if _, found := p.resources[key]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateResource, r.ID())
		}

		p.resources[key] = &r
		p.order = append(p.order, key)
	}

	return p, nil
}

// FromIOFile creates a platform from a parsed IO description.
func FromIOFile(f *IOFile) (*Platform, error) {
	name, device, clock, period := "custom", "", "", 0.0
	if f.Platform != nil {
		name = f.Platform.Name
		device = f.Platform.Device
		clock = f.Platform.ClockName
		period = float64(f.Platform.ClockPeriod) / 1000
	}

	return New(name, device, clock, period, f.Resources())
}

// Name returns the board name.
func (p *Platform) Name() string {
	return p.name
}

// Device returns the FPGA part number.
func (p *Platform) Device() string {
	return p.device
}

// DefaultClock returns the name of the board oscillator resource.
func (p *Platform) DefaultClock() string {
	return p.defaultClock
}

// DefaultClockFreq returns the frequency of the board oscillator.
func (p *Platform) DefaultClockFreq() timing.FreqInHz {
	if p.defaultPeriod <= 0 {
		return 0
	}

	return timing.FreqInHz(1e9/p.defaultPeriod + 0.5)
}

// Request claims the resource with the given name and number.
func (p *Platform) Request(name string, number int) (*Resource, error) {
	key := resourceKey{name, number}

	r, found := p.resources[key]
	if !found {
		return nil, fmt.Errorf("%w: %s:%d", ErrUnknownResource, name, number)
	}

	if p.claimed[key] {
		return nil, fmt.Errorf("%w: %s:%d", ErrResourceClaimed, name, number)
	}

	p.claimed[key] = true

	return r, nil
}

// RequestFirst claims the lowest-numbered free resource with the given
// name.
func (p *Platform) RequestFirst(name string) (*Resource, error) {
	numbers := p.numbers(name)
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}

	for _, n := range numbers {
		if !p.claimed[resourceKey{name, n}] {
			return p.Request(name, n)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrResourceClaimed, name)
}

// Lookup returns a resource without claiming it.
func (p *Platform) Lookup(name string, number int) (*Resource, bool) {
	r, found := p.resources[resourceKey{name, number}]
	return r, found
}

// Claimed tells if a resource has been handed out.
func (p *Platform) Claimed(name string, number int) bool {
	return p.claimed[resourceKey{name, number}]
}

// ClaimedIDs lists the claimed resources in declaration order.
func (p *Platform) ClaimedIDs() []string {
	var ids []string

	for _, key := range p.order {
		if p.claimed[key] {
			ids = append(ids, p.resources[key].ID())
		}
	}

	return ids
}

// Resources lists every resource in declaration order.
func (p *Platform) Resources() []*Resource {
	list := make([]*Resource, 0, len(p.order))
	for _, key := range p.order {
		list = append(list, p.resources[key])
	}

	return list
}

func (p *Platform) numbers(name string) []int {
	var numbers []int

	for key := range p.resources {
		if key.name == name {
			numbers = append(numbers, key.number)
		}
	}

	sort.Ints(numbers)

	return numbers
}

// String summarizes the platform.
func (p *Platform) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)", p.name, p.device)
	for _, key := range p.order {
		r := p.resources[key]
		fmt.Fprintf(&b, "\n  %s", r.ID())
		if p.claimed[key] {
			b.WriteString(" [claimed]")
		}
	}

	return b.String()
}
