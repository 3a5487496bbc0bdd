// Package monitoring turns a running cache simulation into a web server so
// that its progress and state can be inspected while it runs.
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
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachemodel/mem/cache"
	"github.com/sarchlab/cachemodel/sim/idgen"
)

// A ResultSource returns a JSON-serializable snapshot of the results.
type ResultSource func() any

// Monitor can turn a simulation into a server and allows external monitoring
// of the simulation.
type Monitor struct {
	portNumber    int
	openBrowser   bool
	stateLock     sync.Locker
	organizations []cache.Organization
	resultSource  ResultSource
	idGen         idgen.IDGenerator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		stateLock: &sync.Mutex{},
		idGen:     idgen.NewSequentialIDGenerator(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open its address in a web browser once the
// server starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// WithStateLock sets the lock that must be held while reading the state of
// the organizations.
func (m *Monitor) WithStateLock(l sync.Locker) *Monitor {
	m.stateLock = l
	return m
}

// RegisterOrganization registers a cache organization to be monitored.
func (m *Monitor) RegisterOrganization(o cache.Organization) {
	m.organizations = append(m.organizations, o)
}

// RegisterResultSource sets the function that reports the results.
func (m *Monitor) RegisterResultSource(source ResultSource) {
	m.resultSource = source
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGen.Generate(),
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

// Router returns the HTTP handler that serves the monitoring API.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_organizations", m.listOrganizations)
	r.HandleFunc("/api/organization/{name}", m.organizationDetails)
	r.HandleFunc("/api/results", m.listResults)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(url + "/api/results")
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url, nil
}

func (m *Monitor) listOrganizations(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.organizations))
	for _, o := range m.organizations {
		names = append(names, o.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) organizationDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	o := m.findOrganizationOr404(w, name)
	if o == nil {
		return
	}

	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(o)
	serializer.SetMaxDepth(2)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findOrganizationOr404(
	w http.ResponseWriter,
	name string,
) cache.Organization {
	for _, o := range m.organizations {
		if o.Name() == name {
			return o
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Organization not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listResults(w http.ResponseWriter, _ *http.Request) {
	if m.resultSource == nil {
		writeJSON(w, []any{})
		return
	}

	writeJSON(w, m.resultSource())
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	snapshots := make([]ProgressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		snapshots = append(snapshots, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, snapshots)
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

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, rsp)
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

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
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
