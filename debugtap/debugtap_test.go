package debugtap

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/dfi"
	"github.com/sarchlab/socgen/hdl"
	"github.com/sarchlab/socgen/timing"
)

var _ = Describe("SignalList", func() {
	var i *dfi.Interface

	BeforeEach(func() {
		i = dfi.NewInterface("ddrphy_dfi", 14, 3, 32, 4)
	})

	It("should list the two enabled phases in order", func() {
		signals, err := SignalList(i, DefaultPhaseTable())
		Expect(err).NotTo(HaveOccurred())
		Expect(signals).To(HaveLen(30))

		names := make([]string, 0, 15)
		for _, s := range signals[:15] {
			names = append(names, strings.TrimPrefix(s.Name(), "ddrphy_dfi_p0_"))
		}
		Expect(names).To(Equal([]string{
			"address", "bank", "cas_n", "cs_n", "ras_n", "we_n", "cke", "odt",
			"reset_n", "wrdata", "wrdata_en", "wrdata_mask", "rddata_en",
			"rddata", "rddata_valid",
		}))
		Expect(signals[15].Name()).To(Equal("ddrphy_dfi_p1_address"))
	})

	It("should follow the phase table", func() {
		signals, err := SignalList(i, PhaseTable{3: true, 0: false})
		Expect(err).NotTo(HaveOccurred())
		Expect(signals).To(HaveLen(15))
		Expect(signals[0].Name()).To(Equal("ddrphy_dfi_p3_address"))

		signals, err = SignalList(i, PhaseTable{0: false, 1: false})
		Expect(err).NotTo(HaveOccurred())
		Expect(signals).To(BeEmpty())
	})

	It("should reject phases the interface does not have", func() {
		_, err := SignalList(i, PhaseTable{4: true})
		Expect(err).To(MatchError(ErrUnknownPhase))
	})
})

var _ = Describe("Analyzer", func() {
	var (
		engine *timing.SerialEngine
		clock  *timing.Clock
		count  *hdl.Signal
		flag   *hdl.Signal
	)

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		registry := timing.NewFrequencyRegistry()
		domain, err := registry.RegisterFrequency(100 * timing.MHz)
		Expect(err).NotTo(HaveOccurred())

		clock = timing.NewClock("sys", engine, domain)
		count = hdl.NewSignal("count", 8)
		flag = hdl.NewSignal("flag", 1)

		clock.Attach(timing.TickerFunc(func(now timing.VTimeInCycle) {
			count.Set(uint64(now))
		}))
	})

	It("should not capture before it is armed", func() {
		a := Attach([]hdl.Probe{count}, 4)
		a.SampleOn(clock)
		clock.Start()

		Expect(engine.RunUntil(10)).To(Succeed())
		Expect(a.Samples()).To(BeEmpty())
	})

	It("should stop after depth samples", func() {
		a := Attach([]hdl.Probe{count, flag}, 4)
		a.SampleOn(clock)
		a.Arm()
		clock.Start()

		Expect(engine.RunUntil(10)).To(Succeed())
		Expect(a.Done()).To(BeTrue())
		Expect(a.Armed()).To(BeFalse())
		Expect(a.Samples()).To(HaveLen(4))
		Expect(a.Samples()[3].Cycle).To(Equal(timing.VTimeInCycle(3)))
		Expect(a.Samples()[3].Values).To(Equal([]uint64{3, 0}))
		Expect(a.Width()).To(Equal(9))
	})

	It("should wait for the trigger", func() {
		a := Attach([]hdl.Probe{count}, 2)
		a.SampleOn(clock)
		a.SetTrigger(count, 0x05, 0x0f)
		a.Arm()
		clock.Start()

		Expect(engine.RunUntil(20)).To(Succeed())
		Expect(a.Samples()).To(HaveLen(2))
		Expect(a.Samples()[0].Values).To(Equal([]uint64{5}))
		Expect(a.Samples()[1].Values).To(Equal([]uint64{6}))
	})

	It("should never change what it observes", func() {
		flag.Set(1)
		a := Attach([]hdl.Probe{flag}, 8)
		a.SampleOn(clock)
		a.Arm()
		clock.Start()

		Expect(engine.RunUntil(20)).To(Succeed())
		Expect(flag.Get()).To(Equal(uint64(1)))
	})

	It("should export the capture", func() {
		a := Attach([]hdl.Probe{count, flag}, 2)
		a.SampleOn(clock)
		a.Arm()
		clock.Start()
		Expect(engine.RunUntil(5)).To(Succeed())

		var buf bytes.Buffer
		Expect(a.WriteCSV(&buf)).To(Succeed())
		Expect(buf.String()).To(Equal("cycle,count,flag\n0,0,0\n1,1,0\n"))

		records := a.Records()
		Expect(records).To(HaveLen(4))
		Expect(records[2]).To(Equal(Record{Sample: 1, Cycle: 1, Signal: "count", Value: 1}))
	})

	It("should reject a zero depth", func() {
		Expect(func() { Attach(nil, 0) }).To(Panic())
	})

	It("should size its storage registers from the depth", func() {
		a := Attach(nil, 1024)
		for _, r := range a.Registers() {
			if r.Name == "storage_length" {
				Expect(r.Width).To(Equal(11))
			}
		}
	})
})
