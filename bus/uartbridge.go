package bus

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/timing"
)

// ErrInvalidBridge is returned when a bridge cannot be built.
var ErrInvalidBridge = errors.New("invalid uart bridge")

// UARTBridge is a bus master driven over a serial link.
type UARTBridge struct {
	name       string
	pads       *platform.Resource
	sysFreq    timing.FreqInHz
	baud       uint64
	tuningWord uint32
}

// NewUARTBridge creates a bridge on the given serial pads. The pads must
// carry tx and rx subsignals.
func NewUARTBridge(
	name string,
	pads *platform.Resource,
	sysFreq timing.FreqInHz,
	baud uint64,
) (*UARTBridge, error) {
	if pads == nil {
		return nil, fmt.Errorf("%w: no pads", ErrInvalidBridge)
	}

	for _, sub := range []string{"tx", "rx"} {
		if pads.Width(sub) != 1 {
			return nil, fmt.Errorf("%w: %s has no %s pin",
				ErrInvalidBridge, pads.ID(), sub)
		}
	}

	if baud == 0 || sysFreq == 0 || baud >= uint64(sysFreq) {
		return nil, fmt.Errorf("%w: baud %d at %s",
			ErrInvalidBridge, baud, sysFreq)
	}

	return &UARTBridge{
		name:       name,
		pads:       pads,
		sysFreq:    sysFreq,
		baud:       baud,
		tuningWord: TuningWord(baud, sysFreq),
	}, nil
}

// TuningWord returns the phase increment of the baud generator,
// baud * 2^32 / sysFreq.
func TuningWord(baud uint64, sysFreq timing.FreqInHz) uint32 {
	w := new(big.Int).Lsh(new(big.Int).SetUint64(baud), 32)
	w.Quo(w, new(big.Int).SetUint64(uint64(sysFreq)))

	return uint32(w.Uint64())
}

// Name returns the name of the bridge.
func (b *UARTBridge) Name() string {
	return b.name
}

// Baud returns the serial rate.
func (b *UARTBridge) Baud() uint64 {
	return b.baud
}

// TuningWord returns the phase increment of the baud generator.
func (b *UARTBridge) TuningWord() uint32 {
	return b.tuningWord
}

// Pads returns the serial resource the bridge drives.
func (b *UARTBridge) Pads() *platform.Resource {
	return b.pads
}

// ActualBaud returns the rate the baud generator produces.
func (b *UARTBridge) ActualBaud() float64 {
	return float64(b.tuningWord) * float64(b.sysFreq) / (1 << 32)
}
