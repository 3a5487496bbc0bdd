package simulation

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/cachemodel/datarecording"
	"github.com/sarchlab/cachemodel/mem/cache"
	"github.com/sarchlab/cachemodel/monitoring"
	"github.com/sarchlab/cachemodel/sim/hooking"
	"github.com/sarchlab/cachemodel/sim/idgen"
)

// Builder can be used to build a simulation.
type Builder struct {
	cacheBuilder     cache.Builder
	alignLog2        int
	timing           bool
	recordOn         bool
	recordPath       string
	dataRecorder     datarecording.DataRecorder
	monitorOn        bool
	monitorPort      int
	openBrowser      bool
	expectedAccesses uint64
}

// MakeBuilder creates a new builder. The caches use the default geometry of
// cache.MakeBuilder and addresses are forwarded unchanged.
func MakeBuilder() Builder {
	return Builder{
		cacheBuilder: cache.MakeBuilder(),
	}
}

// WithCacheBuilder sets the builder that builds the organizations.
func (b Builder) WithCacheBuilder(cacheBuilder cache.Builder) Builder {
	b.cacheBuilder = cacheBuilder
	return b
}

// WithBlockCount sets the number of blocks of every organization.
func (b Builder) WithBlockCount(blockCount int) Builder {
	b.cacheBuilder = b.cacheBuilder.WithBlockCount(blockCount)
	return b
}

// WithLog2BlockSize sets the log2 of the block size of every organization.
func (b Builder) WithLog2BlockSize(log2BlockSize int) Builder {
	b.cacheBuilder = b.cacheBuilder.WithLog2BlockSize(log2BlockSize)
	return b
}

// WithGroupSize sets the associativity of the set-associative organization.
func (b Builder) WithGroupSize(groupSize int) Builder {
	b.cacheBuilder = b.cacheBuilder.WithGroupSize(groupSize)
	return b
}

// WithAddressAlignment clears the lowest log2 bits of every address before it
// reaches the organizations.
func (b Builder) WithAddressAlignment(log2 int) Builder {
	b.alignLog2 = log2
	return b
}

// WithUniqueTaskIDs identifies the traced accesses with IDs that are unique
// across simulations, so that recordings can be merged. By default, each
// organization numbers its accesses from 1.
func (b Builder) WithUniqueTaskIDs() Builder {
	b.cacheBuilder = b.cacheBuilder.WithIDGenerator(idgen.NewParallelIDGenerator())
	return b
}

// WithTiming measures the wall-clock time each organization spends on reads
// and writes.
func (b Builder) WithTiming() Builder {
	b.timing = true
	return b
}

// WithRecording records every access and the final statistics into
// <path>.sqlite3. An empty path generates a unique file name.
func (b Builder) WithRecording(path string) Builder {
	b.recordOn = true
	b.recordPath = path

	return b
}

// WithDataRecorder records into an existing data recorder. The simulation
// closes the recorder when it terminates.
func (b Builder) WithDataRecorder(dataRecorder datarecording.DataRecorder) Builder {
	b.recordOn = true
	b.dataRecorder = dataRecorder

	return b
}

// WithMonitoring starts a monitoring server together with the simulation.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a web browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithExpectedAccesses sets the number of accesses shown as the total of the
// progress bar.
func (b Builder) WithExpectedAccesses(n uint64) Builder {
	b.expectedAccesses = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		panic("monitor options cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation. It returns a *cache.ConfigurationError if any
// organization cannot be built.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	if b.alignLog2 < 0 || b.alignLog2 >= 64 {
		return nil, fmt.Errorf("address alignment %d is out of range [0, 64)",
			b.alignLog2)
	}

	s := &Simulation{
		id:        xid.New().String(),
		alignMask: (uint64(1) << b.alignLog2) - 1,
	}

	err := b.buildOrganizations(s)
	if err != nil {
		return nil, err
	}

	if b.recordOn {
		err = b.buildRecorder(s)
		if err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		err = b.buildMonitor(s)
		if err != nil {
			s.closeRecorder()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) buildOrganizations(s *Simulation) error {
	var clock *hooking.WallClock
	if b.timing {
		clock = hooking.NewWallClock()
	}

	for _, kind := range cache.Kinds {
		o, err := b.cacheBuilder.Build(kind.String(), kind)
		if err != nil {
			return err
		}

		e := &entry{
			org:  o,
			tags: hooking.NewTagCountTracer(),
		}
		o.AcceptHook(e.tags)

		if clock != nil {
			e.readTime = hooking.NewAverageTimeTracer(
				clock, hooking.KindFilter(cache.Read.String()))
			e.writeTime = hooking.NewAverageTimeTracer(
				clock, hooking.KindFilter(cache.Write.String()))

			o.AcceptHook(e.readTime)
			o.AcceptHook(e.writeTime)
		}

		s.entries = append(s.entries, e)
	}

	return nil
}

func (b Builder) buildRecorder(s *Simulation) error {
	dataRecorder := b.dataRecorder
	if dataRecorder == nil {
		var err error

		dataRecorder, err = datarecording.New(b.recordPath)
		if err != nil {
			return err
		}
	}

	s.dataRecorder = dataRecorder
	s.recorder = NewRecorder(dataRecorder, s.id)

	for _, e := range s.entries {
		e.org.AcceptHook(s.recorder)
	}

	return nil
}

func (b Builder) buildMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor().WithStateLock(&s.lock)

	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		s.monitor.WithBrowser()
	}

	for _, e := range s.entries {
		s.monitor.RegisterOrganization(e.org)
	}

	s.monitor.RegisterResultSource(func() any { return s.Results() })
	s.progressBar = s.monitor.CreateProgressBar("Accesses", b.expectedAccesses)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.monitorURL = url

	return nil
}
