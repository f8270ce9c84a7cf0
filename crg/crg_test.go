package crg

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/instrumentation/hooking"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/timing"
)

// With the default spec the global resolution is 1600 MHz: the reference
// clock ticks every 16 cycles and reports lock on its 32nd edge.
const (
	lockTime        = timing.VTimeInCycle(31 * 16)
	sysReleaseTime  = lockTime + 2*16
	calibrationDone = lockTime + 8 + 14*8
)

type rig struct {
	engine   *timing.SerialEngine
	registry *timing.FrequencyRegistry
	comp     *Comp
}

func newRig(spec Spec) *rig {
	board := platform.Arty()

	clk, err := board.Request("clk100", 0)
	Expect(err).NotTo(HaveOccurred())

	rst, err := board.Request("cpu_reset", 0)
	Expect(err).NotTo(HaveOccurred())

	r := &rig{
		engine:   timing.NewSerialEngine(),
		registry: timing.NewFrequencyRegistry(),
	}
	r.comp = Generate(r.engine, r.registry, spec, clk, rst)
	r.comp.Start()

	return r
}

func (r *rig) runUntil(t timing.VTimeInCycle) {
	Expect(r.engine.RunUntil(t)).To(Succeed())
}

var _ = Describe("Spec", func() {
	It("should derive a 1600 MHz VCO", func() {
		spec := Defaults()
		Expect(spec.VCO()).To(Equal(1600 * timing.MHz))
		Expect(spec.Validate()).To(Succeed())
	})

	DescribeTable("invalid specs",
		func(modify func(s *Spec)) {
			spec := Defaults()
			modify(&spec)

			Expect(spec.Validate()).To(MatchError(ErrInvalidSpec))
			Expect(func() {
				MakeBuilder().
					WithEngine(timing.NewSerialEngine()).
					WithFreqRegistry(timing.NewFrequencyRegistry()).
					WithSpec(spec).
					WithRefClock(&platform.Resource{Name: "clk100"}).
					WithRefReset(&platform.Resource{Name: "cpu_reset"}).
					Build("crg")
			}).To(Panic())
		},
		Entry("divider not dividing the VCO", func(s *Spec) {
			s.Outputs[0].Divide = 3
		}),
		Entry("VCO above range", func(s *Spec) { s.Multiply = 20 }),
		Entry("VCO below range", func(s *Spec) { s.Multiply = 4 }),
		Entry("input divider not dividing", func(s *Spec) {
			s.RefFreq = 100*timing.MHz + 1
			s.Multiply = 15
			s.DivClk = 2
		}),
		Entry("duplicate names", func(s *Spec) { s.Outputs[1].Name = "sys" }),
		Entry("phase out of range", func(s *Spec) { s.Outputs[2].Phase = 360 }),
		Entry("countdown too wide for its value", func(s *Spec) {
			s.CountdownInit = 16
		}),
		Entry("countdown on a disabled output", func(s *Spec) {
			s.CountdownDomain = "clkout4"
		}),
		Entry("no lock delay", func(s *Spec) { s.LockDelay = 0 }),
	)
})

var _ = Describe("Comp", func() {
	var r *rig

	BeforeEach(func() {
		r = newRig(Defaults())
	})

	It("should produce the same domain table every time", func() {
		other := newRig(Defaults())

		for _, c := range []*Comp{r.comp, other.comp} {
			domains := c.Domains()
			Expect(domains).To(HaveLen(4))

			type row struct {
				name      string
				freq      timing.FreqInHz
				phase     timing.PhaseInDeg
				resetLess bool
			}

			var rows []row
			for _, d := range domains {
				rows = append(rows, row{d.Name(), d.Freq(), d.Phase(), d.ResetLess()})
			}

			Expect(rows).To(Equal([]row{
				{"sys", 100 * timing.MHz, 0, false},
				{"sys4x", 400 * timing.MHz, 0, true},
				{"sys4x_dqs", 400 * timing.MHz, 90, true},
				{"clk200", 200 * timing.MHz, 0, false},
			}))
		}

		Expect(r.registry.Resolution()).To(Equal(1600 * timing.MHz))
		Expect(r.comp.MustDomain("sys4x_dqs").FreqDomain().Offset()).
			To(Equal(timing.VTimeInCycle(1)))

		_, found := r.comp.Domain("clkout4")
		Expect(found).To(BeFalse())
	})

	It("should give resetless domains no reset signal", func() {
		Expect(r.comp.MustDomain("sys4x").Reset()).To(BeNil())
		Expect(r.comp.MustDomain("sys4x_dqs").Reset()).To(BeNil())
		Expect(r.comp.MustDomain("sys").Reset()).NotTo(BeNil())
		Expect(r.comp.MustDomain("clk200").Reset()).NotTo(BeNil())
	})

	It("should lock after the lock delay", func() {
		r.runUntil(lockTime - 1)
		Expect(r.comp.Locked()).To(BeFalse())
		Expect(r.comp.LockSignal().Get()).To(Equal(uint64(0)))

		r.runUntil(lockTime)
		Expect(r.comp.Locked()).To(BeTrue())
	})

	It("should hold every domain inactive until lock", func() {
		r.runUntil(lockTime - 1)

		for _, d := range r.comp.Domains() {
			Expect(d.Active()).To(BeFalse(), d.Name())
			Expect(d.Clock().Delivered()).To(BeZero(), d.Name())
		}
	})

	It("should assert every reset whenever lock is low, at every cycle", func() {
		probeDomain, err := r.registry.RegisterFrequency(r.registry.Resolution())
		Expect(err).NotTo(HaveOccurred())
		Expect(r.registry.Resolution()).To(Equal(1600 * timing.MHz))

		checked := 0
		probe := timing.NewSecondaryClock("probe", r.engine, probeDomain)
		probe.Attach(timing.TickerFunc(func(now timing.VTimeInCycle) {
			checked++
			if r.comp.Locked() {
				return
			}

			for _, d := range r.comp.Domains() {
				Expect(d.Active()).To(BeFalse(), "%s at %d", d.Name(), now)
				if !d.ResetLess() {
					Expect(d.InReset()).To(BeTrue(), "%s at %d", d.Name(), now)
				}
			}
		}))
		probe.Start()

		r.runUntil(2 * lockTime)
		Expect(checked).To(Equal(int(2*lockTime) + 1))
	})

	It("should start the resetless domains at lock", func() {
		r.runUntil(lockTime)
		Expect(r.comp.MustDomain("sys4x").Active()).To(BeTrue())
		Expect(r.comp.MustDomain("sys4x_dqs").Active()).To(BeTrue())

		r.runUntil(lockTime + 4)
		Expect(r.comp.MustDomain("sys4x").Clock().Delivered()).To(Equal(uint64(1)))
		Expect(r.comp.MustDomain("sys4x_dqs").Clock().Delivered()).To(Equal(uint64(1)))
	})

	It("should release the sys reset two edges after lock", func() {
		sys := r.comp.MustDomain("sys")

		r.runUntil(sysReleaseTime - 1)
		Expect(sys.InReset()).To(BeTrue())
		Expect(sys.Clock().Delivered()).To(Equal(uint64(1)))

		r.runUntil(sysReleaseTime)
		Expect(sys.InReset()).To(BeFalse())
		Expect(sys.Active()).To(BeTrue())
	})

	Context("reset request polarity", func() {
		It("should keep clk200 in reset while no reset is requested", func() {
			r.runUntil(4 * lockTime)

			Expect(r.comp.ResetRequested()).To(BeFalse())
			Expect(r.comp.MustDomain("sys").InReset()).To(BeFalse())
			Expect(r.comp.MustDomain("clk200").InReset()).To(BeTrue())
		})

		It("should swap the two resets while a reset is requested", func() {
			r.runUntil(4 * lockTime)
			sys := r.comp.MustDomain("sys")
			clk200 := r.comp.MustDomain("clk200")

			r.comp.SetResetRequest(true)
			Expect(r.comp.ResetPin().Get()).To(Equal(uint64(0)))
			Expect(sys.InReset()).To(BeTrue())
			Expect(clk200.InReset()).To(BeTrue())

			r.runUntil(4*lockTime + 2*8)
			Expect(sys.InReset()).To(BeTrue())
			Expect(clk200.InReset()).To(BeFalse())

			r.comp.SetResetRequest(false)
			Expect(clk200.InReset()).To(BeTrue())
			Expect(sys.InReset()).To(BeTrue())

			r.runUntil(4*lockTime + 2*8 + 2*16)
			Expect(sys.InReset()).To(BeFalse())
			Expect(clk200.InReset()).To(BeTrue())
		})
	})

	Context("calibration countdown", func() {
		It("should stay active for exactly 15 clk200 edges after lock", func() {
			clk200 := r.comp.MustDomain("clk200").Clock()

			r.runUntil(calibrationDone - 1)
			Expect(r.comp.Countdown().Active()).To(BeTrue())
			Expect(r.comp.Countdown().Value()).To(Equal(uint64(1)))

			r.runUntil(calibrationDone)
			Expect(r.comp.Countdown().Active()).To(BeFalse())
			Expect(r.comp.CalibrationActive().Get()).To(Equal(uint64(0)))
			Expect(clk200.Delivered()).To(Equal(uint64(15)))
		})

		It("should not re-arm", func() {
			r.runUntil(calibrationDone)

			r.comp.SetResetRequest(true)
			r.runUntil(calibrationDone + 100)
			r.comp.SetResetRequest(false)
			r.runUntil(calibrationDone + 400)

			Expect(r.comp.Countdown().Value()).To(BeZero())
			Expect(r.comp.Countdown().Active()).To(BeFalse())
		})
	})

	It("should raise the bring-up milestones in order", func() {
		type milestone struct {
			pos  *hooking.HookPos
			item string
			at   timing.VTimeInCycle
		}

		var got []milestone
		r.comp.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			m := milestone{pos: ctx.Pos, at: ctx.Detail.(timing.VTimeInCycle)}
			if d, ok := ctx.Item.(*Domain); ok {
				m.item = d.Name()
			}
			got = append(got, m)
		}))

		r.runUntil(calibrationDone)

		Expect(got).To(Equal([]milestone{
			{HookPosLockAcquired, "", lockTime},
			{HookPosDomainActive, "sys4x", lockTime},
			{HookPosDomainActive, "sys4x_dqs", lockTime},
			{HookPosDomainActive, "sys", sysReleaseTime},
			{HookPosCalibrationEnd, "", calibrationDone},
		}))
	})
})

var _ = Describe("Trace", func() {
	It("should record the bring-up transitions", func() {
		r := newRig(Defaults())
		trace := NewTrace(r.comp, r.registry)
		r.engine.AcceptHook(trace)

		r.runUntil(calibrationDone + 16)

		lock, ok := trace.FirstChange("crg.pll.locked")
		Expect(ok).To(BeTrue())
		Expect(lock.Cycle).To(Equal(uint64(lockTime)))
		Expect(lock.Value).To(Equal(uint64(1)))
		Expect(lock.TimeNS).To(BeNumerically("~", 310, 1e-6))

		sysRst, ok := trace.FirstChange("crg.sys.rst")
		Expect(ok).To(BeTrue())
		Expect(sysRst.Cycle).To(Equal(uint64(sysReleaseTime)))
		Expect(sysRst.Value).To(BeZero())

		cal, ok := trace.FirstChange("crg.calibration.active")
		Expect(ok).To(BeTrue())
		Expect(cal.Cycle).To(Equal(uint64(calibrationDone)))

		_, ok = trace.FirstChange("crg.clk200.rst")
		Expect(ok).To(BeFalse())
	})
})
