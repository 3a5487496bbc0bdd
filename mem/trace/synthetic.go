package trace

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/sarchlab/cachemodel/mem/cache"
)

// Patterns of synthetic traces.
const (
	PatternSequential = "sequential"
	PatternStrided    = "strided"
	PatternRandom     = "random"
)

// SyntheticBuilder builds sources that generate accesses without a trace
// file.
type SyntheticBuilder struct {
	pattern    string
	count      uint64
	base       uint64
	stride     uint64
	footprint  uint64
	writeRatio float64
	seed       int64
}

// MakeSyntheticBuilder creates a builder for a sequential read-only stream of
// 1M word accesses over 1 MB.
func MakeSyntheticBuilder() SyntheticBuilder {
	return SyntheticBuilder{
		pattern:   PatternSequential,
		count:     1 << 20,
		stride:    4,
		footprint: 1 << 20,
		seed:      1,
	}
}

// WithPattern sets the address pattern.
func (b SyntheticBuilder) WithPattern(pattern string) SyntheticBuilder {
	b.pattern = pattern
	return b
}

// WithCount sets the number of accesses.
func (b SyntheticBuilder) WithCount(count uint64) SyntheticBuilder {
	b.count = count
	return b
}

// WithBase sets the lowest address.
func (b SyntheticBuilder) WithBase(base uint64) SyntheticBuilder {
	b.base = base
	return b
}

// WithStride sets the distance between consecutive strided accesses.
func (b SyntheticBuilder) WithStride(stride uint64) SyntheticBuilder {
	b.stride = stride
	return b
}

// WithFootprint sets the number of bytes that the accesses spread over.
func (b SyntheticBuilder) WithFootprint(footprint uint64) SyntheticBuilder {
	b.footprint = footprint
	return b
}

// WithWriteRatio sets the fraction of accesses that are writes.
func (b SyntheticBuilder) WithWriteRatio(ratio float64) SyntheticBuilder {
	b.writeRatio = ratio
	return b
}

// WithSeed sets the seed of the random number generator.
func (b SyntheticBuilder) WithSeed(seed int64) SyntheticBuilder {
	b.seed = seed
	return b
}

// Build creates the source.
func (b SyntheticBuilder) Build() (Source, error) {
	if b.footprint == 0 {
		return nil, fmt.Errorf("footprint must be positive")
	}

	if b.writeRatio < 0 || b.writeRatio > 1 {
		return nil, fmt.Errorf("write ratio %f out of [0, 1]", b.writeRatio)
	}

	g := &generator{
		count:      b.count,
		base:       b.base,
		footprint:  b.footprint,
		writeRatio: b.writeRatio,
		rand:       rand.New(rand.NewSource(b.seed)),
	}

	switch b.pattern {
	case PatternSequential:
		g.offset = g.strided(4)
	case PatternStrided:
		if b.stride == 0 {
			return nil, fmt.Errorf("stride must be positive")
		}

		g.offset = g.strided(b.stride)
	case PatternRandom:
		if b.footprint > math.MaxInt64 {
			return nil, fmt.Errorf("footprint %d is too large", b.footprint)
		}

		g.offset = g.random
	default:
		return nil, fmt.Errorf("unknown pattern %q", b.pattern)
	}

	return g, nil
}

type generator struct {
	count      uint64
	issued     uint64
	base       uint64
	footprint  uint64
	writeRatio float64
	rand       *rand.Rand
	offset     func(i uint64) uint64
}

func (g *generator) Next() (Access, error) {
	if g.issued >= g.count {
		return Access{}, io.EOF
	}

	access := Access{
		Address: g.base + g.offset(g.issued),
		Kind:    cache.Read,
	}

	if g.writeRatio > 0 && g.rand.Float64() < g.writeRatio {
		access.Kind = cache.Write
	}

	g.issued++

	return access, nil
}

func (g *generator) strided(stride uint64) func(i uint64) uint64 {
	return func(i uint64) uint64 {
		return i * stride % g.footprint
	}
}

func (g *generator) random(_ uint64) uint64 {
	return uint64(g.rand.Int63n(int64(g.footprint))) &^ 3
}
