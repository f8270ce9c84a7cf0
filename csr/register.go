package csr

// Mode is the software access mode of a register.
type Mode string

// Register access modes.
const (
	ReadWrite Mode = "rw"
	ReadOnly  Mode = "ro"
)

// Register is one control/status register of a bank.
type Register struct {
	Name  string
	Width int
	Mode  Mode
	Reset uint64
}

// Words returns how many bus words the register spans when the CSR bus is
// dataWidth bits wide.
func (r Register) Words(dataWidth int) int {
	if r.Width <= 0 {
		return 1
	}

	return (r.Width + dataWidth - 1) / dataWidth
}

// A Provider is a component that exposes registers in its CSR bank.
type Provider interface {
	Registers() []Register
}

// Constant is a named value published next to the register map.
type Constant struct {
	Name  string
	Value string
}

// MemoryRegion is a bus region published next to the register map.
type MemoryRegion struct {
	Name string
	Base uint64
	Size uint64
	Kind string
}
