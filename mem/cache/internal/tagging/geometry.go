package tagging

import (
	"errors"
	"fmt"
)

// A Geometry describes how the blocks of a cache are grouped into sets and how
// many bytes each block covers.
type Geometry struct {
	// BlockCount is the total number of blocks in the cache.
	BlockCount int

	// Log2BlockSize is log2 of the number of bytes in a block.
	Log2BlockSize int

	// GroupSize is the number of blocks that share one set. It is 1 for a
	// direct-mapped cache and BlockCount for a fully associative cache.
	GroupSize int
}

// NumSets returns the number of sets in the cache.
func (g Geometry) NumSets() int {
	return g.BlockCount / g.GroupSize
}

// BlockSize returns the number of bytes in a block.
func (g Geometry) BlockSize() uint64 {
	return 1 << g.Log2BlockSize
}

// TotalSize returns the maximum number of bytes can be stored in the cache.
func (g Geometry) TotalSize() uint64 {
	return uint64(g.BlockCount) * g.BlockSize()
}

// Validate checks that the geometry can be used for mask-based set indexing.
func (g Geometry) Validate() error {
	if g.BlockCount <= 0 {
		return fmt.Errorf("block count must be positive, got %d", g.BlockCount)
	}

	if g.GroupSize <= 0 {
		return fmt.Errorf("group size must be positive, got %d", g.GroupSize)
	}

	if g.Log2BlockSize < 0 || g.Log2BlockSize >= 64 {
		return fmt.Errorf(
			"log2 block size must be in [0, 64), got %d", g.Log2BlockSize)
	}

	if g.BlockCount%g.GroupSize != 0 {
		return fmt.Errorf(
			"block count %d is not a multiple of group size %d",
			g.BlockCount, g.GroupSize)
	}

	if !isPowerOfTwo(g.NumSets()) {
		return errors.New("number of sets must be a power of two")
	}

	return nil
}

// LineNumber drops the offset bits of an address.
func (g Geometry) LineNumber(addr uint64) uint64 {
	return addr >> g.Log2BlockSize
}

// Decode splits an address into the tag and the set that the line can be
// placed in.
func (g Geometry) Decode(addr uint64) (tag uint64, setID int) {
	line := g.LineNumber(addr)
	numSets := uint64(g.NumSets())

	setID = int(line & (numSets - 1))
	tag = line / numSets

	return tag, setID
}

// FirstBlock returns the ID of the first block in a set.
func (g Geometry) FirstBlock(setID int) int {
	return setID * g.GroupSize
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
