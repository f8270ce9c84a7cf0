package periph

import (
	"github.com/sarchlab/socgen/csr"
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/timing"
)

// XADC channel names, in register order.
const (
	Temperature = "temperature"
	VCCInt      = "vccint"
	VCCAux      = "vccaux"
	VCCBRAM     = "vccbram"
)

// Readings are the on-die sensor values the XADC converts.
type Readings struct {
	TemperatureC float64
	VCCInt       float64
	VCCAux       float64
	VCCBRAM      float64
}

// NominalReadings returns a 7-series part at room temperature and nominal
// supplies.
func NominalReadings() Readings {
	return Readings{
		TemperatureC: 40,
		VCCInt:       1.0,
		VCCAux:       1.8,
		VCCBRAM:      1.0,
	}
}

// XADC converts one channel per conversion period, round robin, into 12-bit
// codes.
type XADC struct {
	readings Readings
	period   uint64
	cycles   uint64
	next     int
	channels []*hdl.Signal
	active   func() bool
}

// NewXADC creates a monitor that completes a conversion every period
// cycles of the clock while active returns true.
func NewXADC(
	readings Readings,
	period uint64,
	clock *timing.Clock,
	active func() bool,
) *XADC {
	if period == 0 {
		panic("xadc: conversion period must be positive")
	}

	x := &XADC{
		readings: readings,
		period:   period,
		active:   active,
	}

	for _, name := range []string{Temperature, VCCInt, VCCAux, VCCBRAM} {
		x.channels = append(x.channels, hdl.NewSignal("xadc_"+name, 12))
	}

	clock.Attach(x)

	return x
}

// Tick advances the conversion sequencer.
func (x *XADC) Tick(_ timing.VTimeInCycle) {
	if !x.active() {
		return
	}

	x.cycles++
	if x.cycles%x.period != 0 {
		return
	}

	x.channels[x.next].Set(x.code(x.next))
	x.next = (x.next + 1) % len(x.channels)
}

func (x *XADC) code(channel int) uint64 {
	switch channel {
	case 0:
		return TemperatureCode(x.readings.TemperatureC)
	case 1:
		return SupplyCode(x.readings.VCCInt)
	case 2:
		return SupplyCode(x.readings.VCCAux)
	default:
		return SupplyCode(x.readings.VCCBRAM)
	}
}

// Code returns the last converted code of a channel.
func (x *XADC) Code(channel string) uint64 {
	for _, s := range x.channels {
		if s.Name() == "xadc_"+channel {
			return s.Get()
		}
	}

	return 0
}

// Temperature returns the last converted die temperature in Celsius.
func (x *XADC) Temperature() float64 {
	return CodeToTemperature(x.Code(Temperature))
}

// Supply returns the last converted voltage of a supply channel.
func (x *XADC) Supply(channel string) float64 {
	return CodeToSupply(x.Code(channel))
}

// Registers lists the channel registers.
func (x *XADC) Registers() []csr.Register {
	regs := make([]csr.Register, 0, len(x.channels))
	for _, name := range []string{Temperature, VCCInt, VCCAux, VCCBRAM} {
		regs = append(regs, csr.Register{Name: name, Width: 12, Mode: csr.ReadOnly})
	}

	return regs
}

// TemperatureCode converts Celsius to a 12-bit sensor code.
func TemperatureCode(c float64) uint64 {
	return clampCode((c + 273.15) * 4096 / 503.975)
}

// CodeToTemperature converts a 12-bit sensor code to Celsius.
func CodeToTemperature(code uint64) float64 {
	return float64(code)*503.975/4096 - 273.15
}

// SupplyCode converts a supply voltage to a 12-bit code, 3 V full scale.
func SupplyCode(v float64) uint64 {
	return clampCode(v * 4096 / 3)
}

// CodeToSupply converts a 12-bit supply code to volts.
func CodeToSupply(code uint64) float64 {
	return float64(code) * 3 / 4096
}

func clampCode(v float64) uint64 {
	switch {
	case v <= 0:
		return 0
	case v >= 4095:
		return 4095
	default:
		return uint64(v + 0.5)
	}
}
