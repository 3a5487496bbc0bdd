package cache

import (
	"github.com/sarchlab/cachemodel/mem/cache/internal/replacement"
	"github.com/sarchlab/cachemodel/mem/cache/internal/tagging"
)

// fullyAssociativePlacement lets a line live in any block. All the blocks
// share a single LRU sequence.
type fullyAssociativePlacement struct {
	tags  *tagging.TagArray
	order *replacement.LRUOrder
}

func newFullyAssociativePlacement(
	tags *tagging.TagArray,
) *fullyAssociativePlacement {
	return &fullyAssociativePlacement{
		tags:  tags,
		order: replacement.NewLRUOrder(1, len(tags.Blocks)),
	}
}

// lookup scans every block in the cache.
func (p *fullyAssociativePlacement) lookup(
	_ int,
	tag uint64,
) (blockID int, found bool) {
	for i := range p.tags.Blocks {
		block := &p.tags.Blocks[i]
		if block.IsValid && block.Tag == tag {
			return i, true
		}
	}

	return 0, false
}

func (p *fullyAssociativePlacement) victim(_ int) int {
	return p.order.LeastRecentlyUsed(0)
}

func (p *fullyAssociativePlacement) visit(blockID int) {
	p.order.MarkUsed(blockID)
}

func (p *fullyAssociativePlacement) reset() {
	p.order.Reset()
}

// directMappedPlacement maps each line to exactly one block. There is never a
// choice of victim, so no recency is tracked.
type directMappedPlacement struct {
	tags *tagging.TagArray
}

func (p *directMappedPlacement) lookup(
	setID int,
	tag uint64,
) (blockID int, found bool) {
	block := &p.tags.Blocks[setID]

	return setID, block.IsValid && block.Tag == tag
}

func (p *directMappedPlacement) victim(setID int) int {
	return setID
}

func (p *directMappedPlacement) visit(_ int) {}

func (p *directMappedPlacement) reset() {}

// setAssociativePlacement maps each line to a set of contiguous blocks and
// evicts the least recently used block of the set.
type setAssociativePlacement struct {
	tags  *tagging.TagArray
	order *replacement.LRUOrder
}

func newSetAssociativePlacement(
	tags *tagging.TagArray,
) *setAssociativePlacement {
	g := tags.Geometry()

	return &setAssociativePlacement{
		tags:  tags,
		order: replacement.NewLRUOrder(g.NumSets(), g.GroupSize),
	}
}

func (p *setAssociativePlacement) lookup(
	setID int,
	tag uint64,
) (blockID int, found bool) {
	return p.tags.Lookup(setID, tag)
}

func (p *setAssociativePlacement) victim(setID int) int {
	return p.order.LeastRecentlyUsed(setID)
}

func (p *setAssociativePlacement) visit(blockID int) {
	p.order.MarkUsed(blockID)
}

func (p *setAssociativePlacement) reset() {
	p.order.Reset()
}
