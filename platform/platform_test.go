package platform

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/timing"
)

var _ = Describe("Parser", func() {
	var parser *Parser

	BeforeEach(func() {
		var err error
		parser, err = NewParser()
		Expect(err).NotTo(HaveOccurred())
	})

	It("should parse a resource with subsignals", func() {
		f, err := parser.ParseString("test.io", `
			# uart
			io serial 0 {
				subsignal tx { pins "D10"; }
				subsignal rx { pins "A9"; }
				iostandard "LVCMOS33";
			}
		`)
		Expect(err).NotTo(HaveOccurred())

		resources := f.Resources()
		Expect(resources).To(HaveLen(1))
		Expect(resources[0].Name).To(Equal("serial"))
		Expect(resources[0].IOStandard).To(Equal("LVCMOS33"))
		Expect(resources[0].Subsignals).To(HaveLen(2))

		tx, ok := resources[0].Subsignal("tx")
		Expect(ok).To(BeTrue())
		Expect(tx.Pins).To(Equal([]string{"D10"}))
	})

	It("should split pin groups on blanks", func() {
		f, err := parser.ParseString("test.io",
			`io bus 0 { pins "A1 A2" "A3"; misc "SLEW=FAST"; inverted; }`)
		Expect(err).NotTo(HaveOccurred())

		r := f.Resources()[0]
		Expect(r.Pins).To(Equal([]string{"A1", "A2", "A3"}))
		Expect(r.Misc).To(Equal([]string{"SLEW=FAST"}))
		Expect(r.Inverted).To(BeTrue())
	})

	It("should reject malformed input", func() {
		_, err := parser.ParseString("test.io", `io serial { pins "D10"; }`)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Platform", func() {
	var p *Platform

	BeforeEach(func() {
		p = Arty()
	})

	It("should describe the arty board", func() {
		Expect(p.Name()).To(Equal("arty"))
		Expect(p.Device()).To(Equal("xc7a35ticsg324-1L"))
		Expect(p.DefaultClock()).To(Equal("clk100"))
		Expect(p.DefaultClockFreq()).To(Equal(100 * timing.MHz))
	})

	It("should expose the memory pins", func() {
		r, found := p.Lookup("ddram", 0)
		Expect(found).To(BeTrue())
		Expect(r.Width("a")).To(Equal(14))
		Expect(r.Width("ba")).To(Equal(3))
		Expect(r.Width("dq")).To(Equal(16))
		Expect(r.Width("dqs_p")).To(Equal(2))
		Expect(r.Width("missing")).To(Equal(0))
	})

	It("should mark the reset button active low", func() {
		r, found := p.Lookup("cpu_reset", 0)
		Expect(found).To(BeTrue())
		Expect(r.Inverted).To(BeTrue())
	})

	It("should hand out a resource once", func() {
		first, err := p.Request("serial", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.ID()).To(Equal("serial:0"))

		_, err = p.Request("serial", 0)
		Expect(err).To(MatchError(ErrResourceClaimed))
		Expect(p.Claimed("serial", 0)).To(BeTrue())
		Expect(p.ClaimedIDs()).To(Equal([]string{"serial:0"}))
	})

	It("should keep the first claim when a second one fails", func() {
		first, err := p.Request("clk100", 0)
		Expect(err).NotTo(HaveOccurred())

		_, err = p.RequestFirst("clk100")
		Expect(err).To(MatchError(ErrResourceClaimed))

		r, _ := p.Lookup("clk100", 0)
		Expect(r).To(BeIdenticalTo(first))
	})

	It("should reject unknown resources", func() {
		_, err := p.Request("hdmi", 0)
		Expect(err).To(MatchError(ErrUnknownResource))

		_, err = p.Request("serial", 1)
		Expect(err).To(MatchError(ErrUnknownResource))

		_, err = p.RequestFirst("hdmi")
		Expect(err).To(MatchError(ErrUnknownResource))
	})

	It("should pick the lowest free number", func() {
		_, err := p.Request("user_led", 0)
		Expect(err).NotTo(HaveOccurred())

		r, err := p.RequestFirst("user_led")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Number).To(Equal(1))
	})

	It("should reject duplicate declarations", func() {
		_, err := New("b", "d", "", 0, []Resource{
			{Name: "x", Number: 0},
			{Name: "x", Number: 0},
		})
		Expect(err).To(MatchError(ErrDuplicateResource))
	})
})
