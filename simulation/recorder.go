package simulation

import (
	"fmt"
	"sync"

	"github.com/sarchlab/cachemodel/datarecording"
	"github.com/sarchlab/cachemodel/mem/cache"
	"github.com/sarchlab/cachemodel/sim/hooking"
)

// The names of the tables that a Recorder writes.
const (
	AccessTableName     = "cache_accesses"
	StatisticsTableName = "cache_statistics"
)

// AccessEntry is a row of the access table. Addresses and tags are stored as
// hexadecimal strings since SQLite integers are signed 64-bit values.
type AccessEntry struct {
	TaskID       string
	Organization string
	Seq          uint64
	Kind         string
	Address      string
	Tag          string
	SetID        int
	BlockID      int
	Hit          bool
	Replaced     bool
}

// StatisticsEntry is a row of the statistics table.
type StatisticsEntry struct {
	Simulation    string
	Organization  string
	BlockCount    int
	Log2BlockSize int
	GroupSize     int
	ReadRequests  uint64
	ReadHits      uint64
	WriteRequests uint64
	WriteHits     uint64
	Replacements  uint64
}

// A Recorder is a hook that writes every classified access into a data
// recorder.
type Recorder struct {
	dataRecorder datarecording.DataRecorder
	simID        string

	lock sync.Mutex
	seq  map[string]uint64
}

// NewRecorder creates the tables and returns a Recorder that writes into them.
func NewRecorder(
	dataRecorder datarecording.DataRecorder,
	simID string,
) *Recorder {
	r := &Recorder{
		dataRecorder: dataRecorder,
		simID:        simID,
		seq:          make(map[string]uint64),
	}

	dataRecorder.CreateTable(AccessTableName, AccessEntry{})
	dataRecorder.CreateTable(StatisticsTableName, StatisticsEntry{})

	return r
}

// Func records the accesses.
func (r *Recorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	detail := ctx.Item.(cache.AccessDetail)

	r.lock.Lock()
	seq := r.seq[detail.Organization]
	r.seq[detail.Organization] = seq + 1
	r.lock.Unlock()

	r.dataRecorder.InsertData(AccessTableName, AccessEntry{
		TaskID:       detail.TaskID,
		Organization: detail.Organization,
		Seq:          seq,
		Kind:         detail.Kind.String(),
		Address:      fmt.Sprintf("0x%x", detail.Address),
		Tag:          fmt.Sprintf("0x%x", detail.Tag),
		SetID:        detail.SetID,
		BlockID:      detail.BlockID,
		Hit:          detail.Hit,
		Replaced:     detail.Replaced,
	})
}

// RecordResults writes one statistics row per organization.
func (r *Recorder) RecordResults(results []Result) {
	for _, res := range results {
		r.dataRecorder.InsertData(StatisticsTableName, StatisticsEntry{
			Simulation:    r.simID,
			Organization:  res.Organization,
			BlockCount:    res.Geometry.BlockCount,
			Log2BlockSize: res.Geometry.Log2BlockSize,
			GroupSize:     res.Geometry.GroupSize,
			ReadRequests:  res.Statistics.ReadRequests,
			ReadHits:      res.Statistics.ReadHits,
			WriteRequests: res.Statistics.WriteRequests,
			WriteHits:     res.Statistics.WriteHits,
			Replacements:  res.Replacements,
		})
	}

	r.dataRecorder.Flush()
}

// Result converts a statistics row back into a Result. The timing is not
// recorded and stays nil.
func (e StatisticsEntry) Result() Result {
	kind := cache.Kind(-1)

	for _, k := range cache.Kinds {
		if k.String() == e.Organization {
			kind = k
		}
	}

	return Result{
		Organization: e.Organization,
		Kind:         kind,
		Geometry: cache.Geometry{
			BlockCount:    e.BlockCount,
			Log2BlockSize: e.Log2BlockSize,
			GroupSize:     e.GroupSize,
		},
		Statistics: cache.Statistics{
			ReadRequests:  e.ReadRequests,
			ReadHits:      e.ReadHits,
			WriteRequests: e.WriteRequests,
			WriteHits:     e.WriteHits,
		},
		Replacements: e.Replacements,
	}
}
