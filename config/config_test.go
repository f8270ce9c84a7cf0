package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/config"
	"github.com/sarchlab/socgen/soc"
)

const sample = `
platform: arty
uart_baud: 921600
device_dna: "0x1fffffffffffff"
bringup_cycles: 200
csr_map:
  ddrphy: 17
  dna: 18
  xadc: 19
debug_tap:
  enabled: true
  depth: 512
  phases: [0, 3]
output:
  csr_csv: out/csr.csv
  database: out/run
monitor:
  port: 8080
`

func setenv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

	return path
}

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "socgen-config")
		Expect(err).NotTo(HaveOccurred())

		DeferCleanup(os.RemoveAll, dir)
	})

	It("should default to the Arty build", func() {
		c, err := config.Load("", "")

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Platform).To(Equal("arty"))
		Expect(c.Spec).To(Equal(soc.DefaultSpec()))
		Expect(c.Artifacts.CSRCSV).To(Equal("test/csr.csv"))
		Expect(c.Artifacts.AnalyzerCSV).To(Equal("test/analyzer.csv"))
	})

	It("should apply the YAML file over the defaults", func() {
		c, err := config.Parse([]byte(sample))

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Spec.UARTBaud).To(Equal(uint64(921600)))
		Expect(c.Spec.DeviceDNA).To(Equal(uint64(0x1fffffffffffff)))
		Expect(c.BringUpCycles).To(Equal(uint64(200)))
		Expect(c.Spec.CSRMap).To(HaveLen(3))
		Expect(c.Spec.CSRMap).NotTo(HaveKey("analyzer"))
		Expect(c.Spec.DebugTap.Enabled).To(BeTrue())
		Expect(c.Spec.DebugTap.Depth).To(Equal(512))
		Expect(c.Spec.DebugTap.Phases.Enabled()).To(Equal([]int{0, 3}))
		Expect(c.Artifacts.CSRCSV).To(Equal("out/csr.csv"))
		Expect(c.Artifacts.AnalyzerCSV).To(Equal("test/analyzer.csv"))
		Expect(c.Database).To(Equal("out/run"))
		Expect(c.MonitorPort).To(Equal(8080))
	})

	It("should leave the tap disabled when the file does not mention it", func() {
		c, err := config.Parse([]byte("uart_baud: 9600\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Spec.DebugTap.Enabled).To(BeFalse())
		Expect(c.Spec.DebugTap.Phases).To(Equal(soc.DefaultSpec().DebugTap.Phases))
	})

	It("should report malformed YAML", func() {
		_, err := config.Parse([]byte("uart_baud: [1, 2"))

		Expect(err).To(HaveOccurred())
	})

	It("should report a missing config file", func() {
		_, err := config.Load(filepath.Join(dir, "missing.yaml"), "")

		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should ignore a missing env file", func() {
		_, err := config.Load("", filepath.Join(dir, ".env"))

		Expect(err).NotTo(HaveOccurred())
	})

	It("should let the env file override the YAML file", func() {
		path := writeFile(dir, "socgen.yaml", sample)
		env := writeFile(dir, ".env",
			"SOCGEN_UART_BAUD=115200\nSOCGEN_DEBUG_TAP=false\nOTHER=1\n")

		c, err := config.Load(path, env)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Spec.UARTBaud).To(Equal(uint64(115200)))
		Expect(c.Spec.DebugTap.Enabled).To(BeFalse())
		Expect(c.Spec.DebugTap.Depth).To(Equal(512))
	})

	It("should let the process environment override the env file", func() {
		env := writeFile(dir, ".env", "SOCGEN_CSR_CSV=a.csv\n")
		setenv("SOCGEN_CSR_CSV", "b.csv")
		setenv("SOCGEN_BRINGUP_CYCLES", "42")

		c, err := config.Load("", env)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Artifacts.CSRCSV).To(Equal("b.csv"))
		Expect(c.BringUpCycles).To(Equal(uint64(42)))
	})

	It("should reject a malformed override", func() {
		setenv("SOCGEN_DEBUG_TAP_DEPTH", "deep")

		_, err := config.Load("", "")

		Expect(err).To(MatchError(config.ErrInvalidValue))
	})
})
