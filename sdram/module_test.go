package sdram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/timing"
)

// ceilPs is an integer reference for ceil(ns * f): the duration is given in
// picoseconds and the frequency in MHz.
func ceilPs(ps, mhz uint64) int {
	return int((ps*mhz + 999999) / 1000000)
}

var _ = Describe("Module", func() {
	var m Module

	BeforeEach(func() {
		m = MT41K128M16()
	})

	It("should resolve the Arty DDR3 device at 100 MHz", func() {
		s := m.Resolve(100*timing.MHz, MustParseRatio("1:4"))

		Expect(s.Geom).To(Equal(GeomSettings{BankBits: 3, RowBits: 14, ColBits: 10}))
		Expect(s.Geom.AddressBits()).To(Equal(14))
		Expect(s.Timing).To(Equal(TimingSettings{
			TRP:   2,
			TRCD:  2,
			TWR:   2,
			TWTR:  8,
			TREFI: 782,
			TRFC:  16,
		}))
		Expect(s.Ratio.NumPhases()).To(Equal(4))
		Expect(s.CapacityBytes()).To(Equal(uint64(256 << 20)))
		Expect(s.MemType).To(Equal(DDR3))
	})

	It("should round every timing up for all valid geometries", func() {
		timings := []uint64{13750, 15000, 160000, 7812500, 1, 999}
		freqs := []uint64{25, 50, 100, 125, 133, 200}

		for banks := 1; banks <= 16; banks *= 2 {
			for rows := 1; rows <= 1<<16; rows *= 16 {
				for cols := 1; cols <= 1<<12; cols *= 8 {
					for _, mhz := range freqs {
						for _, ps := range timings {
							mod := Module{
								MemType:    DDR3,
								NumBanks:   banks,
								NumRows:    rows,
								NumCols:    cols,
								DataWidth:  16,
								TRP:        float64(ps) / 1000,
								TRCD:       float64(ps) / 1000,
								TWR:        float64(ps) / 1000,
								TREFI:      7812.5,
								TRFC:       160,
								TWTRCycles: 4,
							}

							s := mod.Resolve(timing.FreqInHz(mhz)*timing.MHz,
								MustParseRatio("1:4"))

							want := ceilPs(ps, mhz)
							Expect(s.Timing.TRP).To(Equal(want))
							Expect(s.Timing.TRCD).To(Equal(want))
							Expect(s.Timing.TWR).To(Equal(want))
							Expect(s.Timing.TREFI).To(Equal(ceilPs(7812500, mhz)))
							Expect(s.Timing.TRFC).To(Equal(ceilPs(160000, mhz)))
							Expect(1 << s.Geom.BankBits).To(Equal(banks))
							Expect(1 << s.Geom.RowBits).To(Equal(rows))
							Expect(1 << s.Geom.ColBits).To(Equal(cols))
						}
					}
				}
			}
		}
	})

	DescribeTable("should reject malformed modules",
		func(mutate func(*Module)) {
			mutate(&m)

			Expect(m.Validate()).To(MatchError(ErrInvalidModule))
			Expect(func() {
				m.Resolve(100*timing.MHz, MustParseRatio("1:4"))
			}).To(Panic())
		},
		Entry("non power of two banks", func(m *Module) { m.NumBanks = 6 }),
		Entry("zero banks", func(m *Module) { m.NumBanks = 0 }),
		Entry("non power of two rows", func(m *Module) { m.NumRows = 10000 }),
		Entry("non power of two columns", func(m *Module) { m.NumCols = 1000 }),
		Entry("negative tRP", func(m *Module) { m.TRP = -1 }),
		Entry("negative tWTR", func(m *Module) { m.TWTRCycles = -2 }),
		Entry("refresh shorter than refresh cycle", func(m *Module) { m.TREFI = 100 }),
		Entry("unknown type", func(m *Module) { m.MemType = "HBM" }),
	)

	It("should panic on a zero clock", func() {
		Expect(func() { m.Resolve(0, MustParseRatio("1:4")) }).To(Panic())
	})
})

var _ = Describe("Ratio", func() {
	It("should parse supported ratios", func() {
		for s, phases := range map[string]int{"1:1": 1, "1:2": 2, " 1 : 4 ": 4} {
			r, err := ParseRatio(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.NumPhases()).To(Equal(phases))
		}

		Expect(MustParseRatio("1:4").String()).To(Equal("1:4"))
	})

	It("should reject unsupported ratios", func() {
		for _, s := range []string{"1:3", "2:4", "4", "a:b", ""} {
			_, err := ParseRatio(s)
			Expect(err).To(MatchError(ErrInvalidRatio))
		}

		Expect(func() { MustParseRatio("1:8") }).To(Panic())
	})
})

var _ = Describe("Controller", func() {
	var settings Settings

	BeforeEach(func() {
		settings = MT41K128M16().Resolve(100*timing.MHz, MustParseRatio("1:4"))
	})

	It("should expose the DFI injector of every phase", func() {
		c, err := NewController(SchemeMinicon, settings, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Scheme()).To(Equal("minicon"))

		regs := c.Registers()
		Expect(regs).To(HaveLen(1 + 4*6))
		Expect(regs[0].Name).To(Equal("dfii_control"))
		Expect(regs[3].Name).To(Equal("dfii_pi0_address"))
		Expect(regs[3].Width).To(Equal(14))
		Expect(regs[5].Width).To(Equal(32))
	})

	It("should reject unknown schemes", func() {
		_, err := NewController("roundrobin", settings, 4)
		Expect(err).To(MatchError(ErrUnknownScheme))
	})

	It("should reject a PHY with the wrong number of phases", func() {
		_, err := NewController(SchemeMinicon, settings, 2)
		Expect(err).To(HaveOccurred())
	})
})
