package debugtap

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sarchlab/socgen/csr"
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/timing"
)

// Sample is the value of every observed signal at one clock edge.
type Sample struct {
	Cycle  timing.VTimeInCycle
	Values []uint64
}

// Record is one sampled value in long form, as stored in the recording
// database.
type Record struct {
	Sample uint64
	Cycle  uint64
	Signal string
	Value  uint64
}

// Analyzer is a logic analyzer with a fixed sample depth. Once armed, it
// waits for its trigger and then stores one sample per clock edge until
// the buffer is full.
type Analyzer struct {
	signals []hdl.Probe
	depth   int

	armed     bool
	triggered bool
	trigger   hdl.Probe
	value     uint64
	mask      uint64

	samples []Sample
}

// Attach creates an analyzer over the given signals. It panics if depth is
// not positive.
func Attach(signals []hdl.Probe, depth int) *Analyzer {
	if depth <= 0 {
		panic(fmt.Sprintf("debugtap: depth %d must be positive", depth))
	}

	return &Analyzer{
		signals: signals,
		depth:   depth,
		samples: make([]Sample, 0, depth),
	}
}

// SampleOn makes the analyzer sample on the edges of a clock.
func (a *Analyzer) SampleOn(c *timing.Clock) {
	c.Attach(a)
}

// Signals returns the observed signals.
func (a *Analyzer) Signals() []hdl.Probe {
	return a.signals
}

// Depth returns the capacity of the sample buffer.
func (a *Analyzer) Depth() int {
	return a.depth
}

// Width returns the total number of observed bits.
func (a *Analyzer) Width() int {
	w := 0
	for _, s := range a.signals {
		w += s.Width()
	}

	return w
}

// SetTrigger starts the capture on the first armed edge where the masked
// trigger signal equals the masked value.
func (a *Analyzer) SetTrigger(p hdl.Probe, value, mask uint64) {
	a.trigger = p
	a.value = value
	a.mask = mask
}

// Arm clears the buffer and starts waiting for the trigger.
func (a *Analyzer) Arm() {
	a.armed = true
	a.triggered = false
	a.samples = a.samples[:0]
}

// Armed tells if the analyzer is waiting or capturing.
func (a *Analyzer) Armed() bool {
	return a.armed
}

// Done tells if the buffer is full.
func (a *Analyzer) Done() bool {
	return len(a.samples) == a.depth
}

// Samples returns the captured samples.
func (a *Analyzer) Samples() []Sample {
	return a.samples
}

// Tick samples the signals if the analyzer is capturing.
func (a *Analyzer) Tick(now timing.VTimeInCycle) {
	if !a.armed {
		return
	}

	if !a.triggered {
		if a.trigger != nil && a.trigger.Get()&a.mask != a.value&a.mask {
			return
		}

		a.triggered = true
	}

	values := make([]uint64, len(a.signals))
	for i, s := range a.signals {
		values[i] = s.Get()
	}

	a.samples = append(a.samples, Sample{Cycle: now, Values: values})

	if a.Done() {
		a.armed = false
	}
}

// Records flattens the samples, one record per signal per sample.
func (a *Analyzer) Records() []Record {
	records := make([]Record, 0, len(a.samples)*len(a.signals))

	for n, smp := range a.samples {
		for i, s := range a.signals {
			records = append(records, Record{
				Sample: uint64(n),
				Cycle:  uint64(smp.Cycle),
				Signal: s.Name(),
				Value:  smp.Values[i],
			})
		}
	}

	return records
}

// WriteCSV writes one header line with the signal names and one line per
// sample.
func (a *Analyzer) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"cycle"}
	for _, s := range a.signals {
		header = append(header, s.Name())
	}

	if err := cw.Write(header); err != nil {
		return err
	}

	for _, smp := range a.samples {
		line := []string{strconv.FormatUint(uint64(smp.Cycle), 10)}
		for _, v := range smp.Values {
			line = append(line, strconv.FormatUint(v, 10))
		}

		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteCSVFile writes the capture to a file, creating parent directories.
func (a *Analyzer) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return a.WriteCSV(f)
}

// Registers lists the control registers of the analyzer.
func (a *Analyzer) Registers() []csr.Register {
	return []csr.Register{
		{Name: "frontend_trigger_value", Width: 64, Mode: csr.ReadWrite},
		{Name: "frontend_trigger_mask", Width: 64, Mode: csr.ReadWrite},
		{Name: "frontend_subsampler_value", Width: 16, Mode: csr.ReadWrite},
		{Name: "storage_start", Width: 1, Mode: csr.ReadWrite},
		{Name: "storage_length", Width: bitsFor(a.depth), Mode: csr.ReadWrite},
		{Name: "storage_offset", Width: bitsFor(a.depth), Mode: csr.ReadWrite},
		{Name: "storage_idle", Width: 1, Mode: csr.ReadOnly},
		{Name: "storage_wait", Width: 1, Mode: csr.ReadOnly},
		{Name: "storage_run", Width: 1, Mode: csr.ReadOnly},
		{Name: "storage_mem_valid", Width: 1, Mode: csr.ReadOnly},
		{Name: "storage_mem_ready", Width: 1, Mode: csr.ReadWrite},
		{Name: "storage_mem_data", Width: 32, Mode: csr.ReadOnly},
	}
}

func bitsFor(n int) int {
	bits := 1
	for 1<<bits <= n {
		bits++
	}

	return bits
}
