package cache

import (
	"fmt"

	"github.com/sarchlab/cachemodel/mem/cache/internal/tagging"
	"github.com/sarchlab/cachemodel/sim/idgen"
)

// Builder can build cache organizations.
type Builder struct {
	blockCount    int
	log2BlockSize int
	groupSize     int
	idGen         idgen.IDGenerator
}

// MakeBuilder creates a new builder with 512 blocks of 64 bytes and a group
// size of 4.
func MakeBuilder() Builder {
	return Builder{
		blockCount:    512,
		log2BlockSize: 6,
		groupSize:     4,
	}
}

// WithBlockCount sets the total number of blocks.
func (b Builder) WithBlockCount(blockCount int) Builder {
	b.blockCount = blockCount
	return b
}

// WithLog2BlockSize sets the log2 of the block size in bytes.
func (b Builder) WithLog2BlockSize(log2BlockSize int) Builder {
	b.log2BlockSize = log2BlockSize
	return b
}

// WithGroupSize sets the associativity of set-associative organizations. It
// does not affect the other organizations.
func (b Builder) WithGroupSize(groupSize int) Builder {
	b.groupSize = groupSize
	return b
}

// WithIDGenerator sets the generator of the IDs of traced accesses. By
// default, each organization numbers its accesses sequentially.
func (b Builder) WithIDGenerator(idGen idgen.IDGenerator) Builder {
	b.idGen = idGen
	return b
}

// Geometry returns the geometry that an organization of the given kind would
// be built with.
func (b Builder) Geometry(kind Kind) Geometry {
	g := Geometry{
		BlockCount:    b.blockCount,
		Log2BlockSize: b.log2BlockSize,
	}

	switch kind {
	case FullyAssociative:
		g.GroupSize = b.blockCount
	case DirectMapped:
		g.GroupSize = 1
	case SetAssociative:
		g.GroupSize = b.groupSize
	default:
		panic(fmt.Sprintf("unknown cache organization %d", int(kind)))
	}

	return g
}

// BuildFullyAssociative builds a fully associative cache.
func (b Builder) BuildFullyAssociative(name string) (Organization, error) {
	return b.Build(name, FullyAssociative)
}

// BuildDirectMapped builds a direct-mapped cache.
func (b Builder) BuildDirectMapped(name string) (Organization, error) {
	return b.Build(name, DirectMapped)
}

// BuildSetAssociative builds a set-associative cache.
func (b Builder) BuildSetAssociative(name string) (Organization, error) {
	return b.Build(name, SetAssociative)
}

// Build builds a cache organization of the given kind. It returns a
// *ConfigurationError if the geometry is not usable.
func (b Builder) Build(name string, kind Kind) (Organization, error) {
	g := b.Geometry(kind)

	err := g.Validate()
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Geometry: g, Err: err}
	}

	tags := tagging.NewTagArray(g)

	o := &organization{
		name:  name,
		kind:  kind,
		tags:  tags,
		idGen: b.idGen,
	}

	if o.idGen == nil {
		o.idGen = idgen.NewSequentialIDGenerator()
	}

	switch kind {
	case FullyAssociative:
		o.placement = newFullyAssociativePlacement(tags)
	case DirectMapped:
		o.placement = &directMappedPlacement{tags: tags}
	case SetAssociative:
		o.placement = newSetAssociativePlacement(tags)
	}

	return o, nil
}
