// Package cache models how different cache organizations classify memory
// accesses as hits or misses.
package cache

import (
	"github.com/sarchlab/cachemodel/mem/cache/internal/tagging"
	"github.com/sarchlab/cachemodel/sim/hooking"
	"github.com/sarchlab/cachemodel/sim/idgen"
)

// Geometry describes the number of blocks, the block size, and the number of
// blocks in each set.
type Geometry = tagging.Geometry

// Block is the occupancy state of one cache block.
type Block = tagging.Block

// An Organization is a cache that decides whether each access hits. It keeps
// only tags, never data.
type Organization interface {
	hooking.Hookable

	// Name returns the name of the organization.
	Name() string

	// Kind returns which organization this is.
	Kind() Kind

	// Geometry returns the geometry used for decoding addresses.
	Geometry() Geometry

	// Classify looks up the address and updates the cache state. It returns
	// true if the access hits.
	Classify(addr uint64, kind AccessKind) bool

	// Blocks returns a copy of the block states.
	Blocks() []Block

	// Reset invalidates all the blocks and restores the initial replacement
	// order.
	Reset()
}

// placement is the part of the lookup and replacement logic that differs
// between organizations.
type placement interface {
	lookup(setID int, tag uint64) (blockID int, found bool)
	victim(setID int) (blockID int)
	visit(blockID int)
	reset()
}

type organization struct {
	hooking.HookableBase

	name      string
	kind      Kind
	tags      *tagging.TagArray
	placement placement
	idGen     idgen.IDGenerator
}

func (o *organization) Name() string {
	return o.name
}

func (o *organization) Kind() Kind {
	return o.kind
}

func (o *organization) Geometry() Geometry {
	return o.tags.Geometry()
}

func (o *organization) Blocks() []Block {
	blocks := make([]Block, len(o.tags.Blocks))
	copy(blocks, o.tags.Blocks)

	return blocks
}

func (o *organization) Reset() {
	o.tags.Reset()
	o.placement.reset()
}

func (o *organization) Classify(addr uint64, kind AccessKind) bool {
	if o.NumHooks() == 0 {
		return o.lookupAndFill(addr).Hit
	}

	taskID := o.idGen.Generate()

	o.traceAccessStart(taskID, kind)
	detail := o.lookupAndFill(addr)
	o.traceAccessEnd(taskID)

	detail.TaskID = taskID
	detail.Organization = o.name
	detail.Kind = kind
	o.traceAccess(detail)

	return detail.Hit
}

// lookupAndFill is the work that is timed for each access. It fills in the
// location and the outcome of the access.
func (o *organization) lookupAndFill(addr uint64) AccessDetail {
	tag, setID := o.tags.Geometry().Decode(addr)

	blockID, hit := o.placement.lookup(setID, tag)
	if hit {
		o.placement.visit(blockID)

		return AccessDetail{
			Address: addr,
			Tag:     tag,
			SetID:   setID,
			BlockID: blockID,
			Hit:     true,
		}
	}

	blockID = o.placement.victim(setID)
	previous := o.tags.Fill(blockID, tag)
	o.placement.visit(blockID)

	return AccessDetail{
		Address:     addr,
		Tag:         tag,
		SetID:       setID,
		BlockID:     blockID,
		Replaced:    previous.IsValid,
		ReplacedTag: previous.Tag,
	}
}
