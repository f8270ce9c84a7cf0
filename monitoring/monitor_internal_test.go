package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/crg"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/soc"
)

func get(h http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	return rec
}

func decode[T any](rec *httptest.ResponseRecorder) T {
	var v T
	Expect(json.Unmarshal(rec.Body.Bytes(), &v)).To(Succeed())

	return v
}

var _ = Describe("Monitor", func() {
	var (
		s *soc.SoC
		m *Monitor
		h http.Handler
	)

	BeforeEach(func() {
		var err error
		s, err = soc.Compose(platform.Arty(), soc.DefaultSpec())
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor()
		m.RegisterSoC(s)
		h = m.Router()
	})

	It("should register the parts of the SoC", func() {
		Expect(m.names).To(Equal([]string{
			"crg", "ddrphy", "sdram", "uart_bridge", "dna", "xadc"}))
	})

	It("should reject a port below 1000", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should list the clock domains", func() {
		rec := get(h, "/api/domains")

		Expect(rec.Code).To(Equal(http.StatusOK))
		domains := decode[[]soc.DomainRow](rec)
		Expect(domains).To(Equal(s.Domains()))
	})

	It("should list the bus regions", func() {
		regions := decode[[]regionRsp](get(h, "/api/regions"))

		Expect(regions).To(ConsistOf(
			regionRsp{"main_ram", 0x40000000, 256 << 20, "cached"},
			regionRsp{"csr", 0x60000000, 0x10000, "io"},
		))
	})

	It("should list the register map", func() {
		rows := decode[[]map[string]string](get(h, "/api/csr"))

		Expect(rows).To(ContainElement(HaveKeyWithValue("Name", "ddrphy")))
	})

	It("should serialize a component", func() {
		rec := get(h, "/api/component/sdram")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).NotTo(BeEmpty())
	})

	It("should return 404 for an unknown component", func() {
		rec := get(h, "/api/component/gpu")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a run without cycles", func() {
		rec := get(h, "/api/run")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should run the SoC in the background", func() {
		rec := get(h, "/api/run?cycles=250")
		Expect(rec.Code).To(Equal(http.StatusAccepted))

		Eventually(func() uint64 {
			return decode[nowRsp](get(h, "/api/now")).Now
		}).Should(Equal(uint64(250 * 16)))

		Eventually(func() []*ProgressBar {
			m.progressBarsLock.Lock()
			defer m.progressBarsLock.Unlock()

			return m.progressBars
		}).Should(BeEmpty())

		now := decode[nowRsp](get(h, "/api/now"))
		Expect(now.Locked).To(BeTrue())
		Expect(now.Ready).To(BeTrue())

		trace := decode[[]map[string]any](get(h, "/api/bringup"))
		Expect(trace).To(ContainElement(
			HaveKeyWithValue("Signal", "crg.pll.locked")))
	})

	It("should serve reads while a run is in progress", func() {
		Expect(get(h, "/api/run?cycles=2000").Code).To(Equal(http.StatusAccepted))

		running := func() bool {
			m.progressBarsLock.Lock()
			defer m.progressBarsLock.Unlock()

			return len(m.progressBars) > 0
		}

		reads := 0
		for running() {
			for _, url := range []string{
				"/api/now",
				"/api/bringup",
				"/api/progress",
				"/api/domains",
				"/api/component/sdram",
			} {
				Expect(get(h, url).Code).To(Equal(http.StatusOK), url)
			}

			reads++
		}

		Expect(reads).To(BeNumerically(">", 0))
		Expect(decode[nowRsp](get(h, "/api/now")).Now).
			To(Equal(uint64(2000 * 16)))

		trace := decode[[]crg.TraceEntry](get(h, "/api/bringup"))
		Expect(trace).To(ContainElement(
			HaveField("Signal", "crg.pll.locked")))
	})

	It("should report a snapshot of the running bars", func() {
		bar := m.CreateProgressBar("run", 10)
		bar.IncrementInProgress(3)

		bars := decode[[]ProgressSnapshot](get(h, "/api/progress"))

		Expect(bars).To(HaveLen(1))
		Expect(bars[0].ID).To(Equal(bar.ID))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].InProgress).To(Equal(uint64(3)))
	})

	It("should serve the page", func() {
		rec := get(h, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should track progress", func() {
		bar := m.CreateProgressBar("run", 10)
		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(4)

		Expect(bar.Fraction()).To(BeNumerically("~", 0.4))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
