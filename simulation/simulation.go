// Package simulation feeds memory accesses to a fully associative, a
// direct-mapped, and a set-associative cache side by side and collects their
// statistics.
package simulation

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sarchlab/cachemodel/datarecording"
	"github.com/sarchlab/cachemodel/mem/cache"
	"github.com/sarchlab/cachemodel/mem/trace"
	"github.com/sarchlab/cachemodel/monitoring"
	"github.com/sarchlab/cachemodel/sim/hooking"
)

type entry struct {
	org       cache.Organization
	stats     cache.Statistics
	tags      *hooking.TagCountTracer
	readTime  *hooking.TotalAvgTimeTracer
	writeTime *hooking.TotalAvgTimeTracer
}

// A Simulation owns the organizations under comparison and everything that
// observes them.
type Simulation struct {
	lock sync.Mutex

	id         string
	alignMask  uint64
	entries    []*entry
	terminated bool

	dataRecorder datarecording.DataRecorder
	recorder     *Recorder

	monitor     *monitoring.Monitor
	monitorURL  string
	progressBar *monitoring.ProgressBar
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Organizations returns the organizations in the order they are reported.
func (s *Simulation) Organizations() []cache.Organization {
	orgs := make([]cache.Organization, 0, len(s.entries))
	for _, e := range s.entries {
		orgs = append(orgs, e.org)
	}

	return orgs
}

// MonitorURL returns the address of the monitoring server, or an empty string
// if the simulation is not monitored.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Process forwards one access to every organization and returns whether each
// of them hits, in the order of Organizations. It panics if the simulation has
// terminated.
func (s *Simulation) Process(access trace.Access) []bool {
	addr := access.Address &^ s.alignMask
	hits := make([]bool, len(s.entries))

	s.lock.Lock()
	if s.terminated {
		s.lock.Unlock()
		panic("cannot process accesses after the simulation terminates")
	}

	for i, e := range s.entries {
		hit := e.org.Classify(addr, access.Kind)
		e.stats.Record(access.Kind, hit)
		hits[i] = hit
	}
	s.lock.Unlock()

	if s.progressBar != nil {
		s.progressBar.IncrementFinished(1)
	}

	return hits
}

// Run processes all the accesses from the source until it reports io.EOF. It
// stops early if the context is cancelled or the source fails.
func (s *Simulation) Run(ctx context.Context, src trace.Source) error {
	for {
		err := ctx.Err()
		if err != nil {
			return err
		}

		access, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		s.Process(access)
	}
}

// Results returns a snapshot of the statistics of every organization.
func (s *Simulation) Results() []Result {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.results()
}

func (s *Simulation) results() []Result {
	results := make([]Result, 0, len(s.entries))

	for _, e := range s.entries {
		r := Result{
			Organization: e.org.Name(),
			Kind:         e.org.Kind(),
			Geometry:     e.org.Geometry(),
			Statistics:   e.stats,
			Replacements: e.tags.GetTagCount(cache.TagReplace),
		}

		if e.readTime != nil {
			r.Timing = &Timing{
				ReadSeconds:  e.readTime.TotalTime(),
				ReadCount:    e.readTime.TotalCount(),
				WriteSeconds: e.writeTime.TotalTime(),
				WriteCount:   e.writeTime.TotalCount(),
			}
		}

		results = append(results, r)
	}

	return results
}

// Terminate records the final statistics, closes the data recorder, and
// removes the progress bar. Calling it more than once has no effect.
func (s *Simulation) Terminate() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.terminated {
		return nil
	}

	s.terminated = true

	if s.monitor != nil {
		s.monitor.CompleteProgressBar(s.progressBar)
	}

	if s.recorder != nil {
		s.recorder.RecordResults(s.results())
	}

	return s.closeRecorder()
}

func (s *Simulation) closeRecorder() error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
