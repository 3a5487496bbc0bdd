// Package tagging keeps the tag state of a cache and decodes addresses into
// tags and sets.
package tagging

import "fmt"

// A Block of a cache is the information that is associated with a cache line
type Block struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool
}

// A TagArray owns all the blocks of a cache, laid out set by set.
type TagArray struct {
	geometry Geometry
	Blocks   []Block
}

// NewTagArray creates a tag array with all the blocks invalid. The geometry
// must have been validated.
func NewTagArray(geometry Geometry) *TagArray {
	t := &TagArray{
		geometry: geometry,
	}

	t.Reset()

	return t
}

// Geometry returns the geometry of the tag array.
func (t *TagArray) Geometry() Geometry {
	return t.geometry
}

// Lookup searches a set for a valid block holding the tag.
func (t *TagArray) Lookup(setID int, tag uint64) (blockID int, found bool) {
	t.mustBeValidSet(setID)

	first := t.geometry.FirstBlock(setID)
	for i := first; i < first+t.geometry.GroupSize; i++ {
		block := &t.Blocks[i]
		if block.IsValid && block.Tag == tag {
			return i, true
		}
	}

	return 0, false
}

// Fill places the tag in a block and returns what the block held before.
func (t *TagArray) Fill(blockID int, tag uint64) (previous Block) {
	t.mustBeValidBlock(blockID)

	block := &t.Blocks[blockID]
	previous = *block

	block.IsValid = true
	block.Tag = tag

	return previous
}

// Reset will mark all the blocks in the directory invalid
func (t *TagArray) Reset() {
	t.Blocks = make([]Block, t.geometry.BlockCount)

	for i := range t.Blocks {
		t.Blocks[i] = Block{
			SetID: i / t.geometry.GroupSize,
			WayID: i % t.geometry.GroupSize,
		}
	}
}

func (t *TagArray) mustBeValidSet(setID int) {
	if setID < 0 || setID >= t.geometry.NumSets() {
		panic(fmt.Sprintf("set %d out of range [0, %d)",
			setID, t.geometry.NumSets()))
	}
}

func (t *TagArray) mustBeValidBlock(blockID int) {
	if blockID < 0 || blockID >= len(t.Blocks) {
		panic(fmt.Sprintf("block %d out of range [0, %d)",
			blockID, len(t.Blocks)))
	}
}
