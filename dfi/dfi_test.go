package dfi

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Interface", func() {
	var i *Interface

	BeforeEach(func() {
		i = NewInterface("ddrphy_dfi", 14, 3, 32, 4)
	})

	It("should create every phase with the full signal set", func() {
		Expect(i.NumPhases()).To(Equal(4))

		for n, p := range i.Phases() {
			Expect(p.Index()).To(Equal(n))
			Expect(p.Signals()).To(HaveLen(15))
		}
	})

	It("should size the signals from the geometry", func() {
		p := i.Phase(1)

		Expect(p.Signal(Address).Width()).To(Equal(14))
		Expect(p.Signal(Bank).Width()).To(Equal(3))
		Expect(p.Signal(WrData).Width()).To(Equal(32))
		Expect(p.Signal(WrDataMask).Width()).To(Equal(4))
		Expect(p.Signal(RdData).Width()).To(Equal(32))
		Expect(p.Signal(RdDataValid).Width()).To(Equal(1))
		Expect(p.Signal(Address).Name()).To(Equal("ddrphy_dfi_p1_address"))
	})

	It("should keep the command strobes inactive after reset", func() {
		p := i.Phase(0)
		p.Signal(CasN).Set(0)
		p.Signal(WrData).Set(0xdeadbeef)

		i.Reset()

		for _, name := range []string{CasN, CsN, RasN, WeN} {
			Expect(p.Signal(name).Get()).To(Equal(uint64(1)), name)
		}
		Expect(p.Signal(WrData).Get()).To(BeZero())
	})

	It("should panic on unknown signals", func() {
		Expect(func() { i.Phase(0).Signal("dqs") }).To(Panic())
	})

	It("should reject data widths that are not whole bytes", func() {
		Expect(func() { NewInterface("x", 14, 3, 12, 4) }).To(Panic())
		Expect(func() { NewInterface("x", 14, 3, 32, 0) }).To(Panic())
	})
})
