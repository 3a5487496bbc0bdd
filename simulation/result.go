package simulation

import (
	"fmt"

	"github.com/sarchlab/cachemodel/mem/cache"
)

// Timing is the wall-clock time an organization spent classifying accesses.
type Timing struct {
	ReadSeconds  float64 `json:"read_seconds"`
	ReadCount    uint64  `json:"read_count"`
	WriteSeconds float64 `json:"write_seconds"`
	WriteCount   uint64  `json:"write_count"`
}

// AverageTime returns the average seconds spent on one access of the given
// kind. It returns cache.ErrStatisticsUnavailable if no such access was
// timed.
func (t Timing) AverageTime(kind cache.AccessKind) (float64, error) {
	var total float64

	var count uint64

	switch kind {
	case cache.Read:
		total, count = t.ReadSeconds, t.ReadCount
	case cache.Write:
		total, count = t.WriteSeconds, t.WriteCount
	default:
		panic(fmt.Sprintf("unknown access kind %d", int(kind)))
	}

	if count == 0 {
		return 0, cache.ErrStatisticsUnavailable
	}

	return total / float64(count), nil
}

// Result is the outcome of a simulation for one organization.
type Result struct {
	Organization string           `json:"organization"`
	Kind         cache.Kind       `json:"kind"`
	Geometry     cache.Geometry   `json:"geometry"`
	Statistics   cache.Statistics `json:"statistics"`

	// Replacements counts the misses that overwrote a valid block.
	Replacements uint64 `json:"replacements"`

	// Timing is nil unless the simulation is timed.
	Timing *Timing `json:"timing,omitempty"`
}

// AverageTime returns the average seconds spent on one access of the given
// kind. It returns cache.ErrStatisticsUnavailable if timing is off or no such
// access was timed.
func (r Result) AverageTime(kind cache.AccessKind) (float64, error) {
	if r.Timing == nil {
		return 0, cache.ErrStatisticsUnavailable
	}

	return r.Timing.AverageTime(kind)
}
