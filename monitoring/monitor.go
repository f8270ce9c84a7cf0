// Package monitoring turns a composed SoC into a web server that shows its
// clock domains, register map, bus regions and bring-up trace, and lets the
// user advance the model.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/socgen/monitoring/web"
	"github.com/sarchlab/socgen/soc"
)

// runChunk is the number of sys cycles between progress updates.
const runChunk = 100

// Monitor serves the state of a SoC over HTTP.
type Monitor struct {
	soc         *soc.SoC
	components  map[string]any
	names       []string
	portNumber  int
	openBrowser bool

	runLock sync.Mutex

	// stateLock guards the SoC. A run holds it for one chunk at a time.
	stateLock sync.RWMutex

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		components: make(map[string]any),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser opens the page in the default browser once the server is up.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterSoC registers the SoC and its parts.
func (m *Monitor) RegisterSoC(s *soc.SoC) {
	m.soc = s

	m.RegisterComponent(s.CRG().Name(), s.CRG())
	m.RegisterComponent(s.PHY().Name(), s.PHY())
	m.RegisterComponent("sdram", s.Controller())
	m.RegisterComponent(s.Bridge().Name(), s.Bridge())
	m.RegisterComponent("dna", s.DNA())
	m.RegisterComponent("xadc", s.XADC())

	if s.Analyzer() != nil {
		m.RegisterComponent("analyzer", s.Analyzer())
	}
}

// RegisterComponent registers a part to be inspected.
func (m *Monitor) RegisterComponent(name string, c any) {
	if _, found := m.components[name]; !found {
		m.names = append(m.names, name)
	}

	m.components[name] = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler of every route of the monitor.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/domains", m.listDomains)
	r.HandleFunc("/api/csr", m.listCSR)
	r.HandleFunc("/api/regions", m.listRegions)
	r.HandleFunc("/api/bringup", m.listBringUp)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns the URL it
// listens on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring %s with %s\n", m.soc.Spec().Name, url)

	go func() {
		err := http.Serve(listener, m.Router())
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
		}
	}

	return url
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.soc.Engine().Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.soc.Engine().Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type nowRsp struct {
	Now    uint64  `json:"now"`
	TimeNS float64 `json:"time_ns"`
	Locked bool    `json:"locked"`
	Ready  bool    `json:"phy_ready"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.RLock()
	now := m.soc.Now()
	rsp := nowRsp{
		Now:    uint64(now),
		TimeNS: float64(m.soc.FreqRegistry().CyclesToSeconds(now)) * 1e9,
		Locked: m.soc.CRG().Locked(),
		Ready:  m.soc.PHY().Ready(),
	}
	m.stateLock.RUnlock()

	m.writeJSON(w, rsp)
}

// run advances the SoC by the number of sys cycles in the cycles query
// parameter. The run continues in the background.
func (m *Monitor) run(w http.ResponseWriter, r *http.Request) {
	cycles, err := strconv.ParseUint(r.URL.Query().Get("cycles"), 10, 64)
	if err != nil || cycles == 0 {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: invalid cycles %q", r.URL.Query().Get("cycles"))

		return
	}

	if !m.runLock.TryLock() {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, "Error: a run is in progress")

		return
	}

	bar := m.CreateProgressBar("run", cycles)

	go func() {
		defer m.runLock.Unlock()
		defer m.CompleteProgressBar(bar)

		for done := uint64(0); done < cycles; {
			n := min(runChunk, cycles-done)

			bar.IncrementInProgress(n)

			m.stateLock.Lock()
			err := m.soc.Run(n)
			m.stateLock.Unlock()
			dieOnErr(err)

			bar.MoveInProgressToFinished(n)

			done += n
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (m *Monitor) listDomains(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.RLock()
	domains := m.soc.Domains()
	m.stateLock.RUnlock()

	m.writeJSON(w, domains)
}

func (m *Monitor) listCSR(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.RLock()
	rows := m.soc.CSRMap().Rows()
	m.stateLock.RUnlock()

	m.writeJSON(w, rows)
}

type regionRsp struct {
	Name string `json:"name"`
	Base uint64 `json:"base"`
	Size uint64 `json:"size"`
	Kind string `json:"kind"`
}

func (m *Monitor) listRegions(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.RLock()
	regions := m.soc.Bus().Regions()
	m.stateLock.RUnlock()

	rsp := make([]regionRsp, 0, len(regions))
	for _, r := range regions {
		rsp = append(rsp, regionRsp{r.Name, r.Base, r.Size, r.Kind()})
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) listBringUp(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.RLock()
	entries := slices.Clone(m.soc.Trace().Entries())
	m.stateLock.RUnlock()

	m.writeJSON(w, entries)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) any {
	component, found := m.components[name]
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)

		return nil
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	rsp := make([]ProgressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		rsp = append(rsp, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
