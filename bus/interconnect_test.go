package bus

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/timing"
)

type namedMaster string

func (m namedMaster) Name() string { return string(m) }

var _ = Describe("Interconnect", func() {
	var ic *Interconnect

	BeforeEach(func() {
		ic = NewInterconnect(32)
	})

	It("should accept exactly one master", func() {
		Expect(ic.RegisterMaster(namedMaster("uart_bridge"))).To(Succeed())

		err := ic.RegisterMaster(namedMaster("cpu"))
		Expect(err).To(MatchError(ErrMasterRegistered))
		Expect(ic.Master().Name()).To(Equal("uart_bridge"))
		Expect(ic.Masters()).To(HaveLen(1))
	})

	It("should decode addresses", func() {
		Expect(ic.AddRegion(Region{
			Name: "main_ram", Base: 0x40000000, Size: 0x10000000, Cached: true,
		})).To(Succeed())
		Expect(ic.AddRegion(Region{
			Name: "csr", Base: 0x60000000, Size: 0x10000,
		})).To(Succeed())

		r, offset, err := ic.Decode(0x40001000)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Name).To(Equal("main_ram"))
		Expect(offset).To(Equal(uint64(0x1000)))

		r, offset, err = ic.Decode(0x60008800)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Name).To(Equal("csr"))
		Expect(r.Kind()).To(Equal("io"))
		Expect(offset).To(Equal(uint64(0x8800)))

		_, _, err = ic.Decode(0x50000000)
		Expect(err).To(MatchError(ErrUnmapped))

		_, _, err = ic.Decode(0x60010000)
		Expect(err).To(MatchError(ErrUnmapped))
	})

	It("should reject overlapping regions", func() {
		Expect(ic.AddRegion(Region{Name: "a", Base: 0x0, Size: 0x1000})).To(Succeed())
		Expect(ic.AddRegion(Region{Name: "b", Base: 0x0, Size: 0x100})).
			To(MatchError(ErrRegionOverlap))
		Expect(ic.AddRegion(Region{Name: "a", Base: 0x2000, Size: 0x1000})).
			To(MatchError(ErrDuplicateRegion))
	})

	It("should reject misaligned regions", func() {
		Expect(ic.AddRegion(Region{Name: "a", Base: 0x100, Size: 0x1000})).
			To(MatchError(ErrInvalidRegion))
		Expect(ic.AddRegion(Region{Name: "b", Base: 0, Size: 0x300})).
			To(MatchError(ErrInvalidRegion))
		Expect(ic.AddRegion(Region{Name: "c", Base: 0, Size: 0})).
			To(MatchError(ErrInvalidRegion))
	})
})

var _ = Describe("UARTBridge", func() {
	It("should derive the tuning word from the sys clock", func() {
		serial, err := platform.Arty().Request("serial", 0)
		Expect(err).NotTo(HaveOccurred())

		b, err := NewUARTBridge("uart_bridge", serial, 100*timing.MHz, 115200)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.TuningWord()).To(Equal(uint32(4947802)))
		Expect(b.ActualBaud()).To(BeNumerically("~", 115200, 1))
		Expect(b.Name()).To(Equal("uart_bridge"))
	})

	It("should require tx and rx pins", func() {
		_, err := NewUARTBridge("uart_bridge",
			&platform.Resource{Name: "serial"}, 100*timing.MHz, 115200)
		Expect(err).To(MatchError(ErrInvalidBridge))
	})

	It("should reject rates the clock cannot produce", func() {
		serial, _ := platform.Arty().Request("serial", 0)
		_, err := NewUARTBridge("uart_bridge", serial, 100*timing.MHz, 0)
		Expect(err).To(MatchError(ErrInvalidBridge))
	})
})
