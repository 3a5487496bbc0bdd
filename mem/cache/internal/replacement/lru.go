// Package replacement tracks the recency of use of the blocks in each set of a
// cache.
package replacement

import "fmt"

const none = -1

// LRUOrder keeps, for every set, the blocks of the set ordered from the least
// recently used (front) to the most recently used (back).
//
// The sequences are doubly linked lists threaded through the prev and next
// slices, which are indexed by block ID.
type LRUOrder struct {
	groupSize int
	prev      []int
	next      []int
	head      []int
	tail      []int
}

// NewLRUOrder creates the ordering for numSets sets of groupSize blocks. Set s
// holds blocks s*groupSize to s*groupSize+groupSize-1, initially ordered by
// ascending block ID.
func NewLRUOrder(numSets, groupSize int) *LRUOrder {
	if numSets <= 0 || groupSize <= 0 {
		panic(fmt.Sprintf("invalid LRU order size %d x %d", numSets, groupSize))
	}

	o := &LRUOrder{
		groupSize: groupSize,
		prev:      make([]int, numSets*groupSize),
		next:      make([]int, numSets*groupSize),
		head:      make([]int, numSets),
		tail:      make([]int, numSets),
	}

	o.Reset()

	return o
}

// NumSets returns the number of sequences.
func (o *LRUOrder) NumSets() int {
	return len(o.head)
}

// GroupSize returns the number of blocks in each sequence.
func (o *LRUOrder) GroupSize() int {
	return o.groupSize
}

// Reset restores the identity ordering of every set.
func (o *LRUOrder) Reset() {
	for s := range o.head {
		first := s * o.groupSize
		last := first + o.groupSize - 1

		o.head[s] = first
		o.tail[s] = last

		for id := first; id <= last; id++ {
			o.prev[id] = id - 1
			o.next[id] = id + 1
		}

		o.prev[first] = none
		o.next[last] = none
	}
}

// MarkUsed moves the block to the most recently used end of its set.
func (o *LRUOrder) MarkUsed(blockID int) {
	o.mustBeValidBlock(blockID)

	setID := blockID / o.groupSize
	if o.tail[setID] == blockID {
		return
	}

	o.unlink(setID, blockID)
	o.pushBack(setID, blockID)
}

// LeastRecentlyUsed returns the block at the front of the set, without
// removing it.
func (o *LRUOrder) LeastRecentlyUsed(setID int) int {
	o.mustBeValidSet(setID)

	return o.head[setID]
}

// Order returns the block IDs of a set from the least to the most recently
// used.
func (o *LRUOrder) Order(setID int) []int {
	o.mustBeValidSet(setID)

	order := make([]int, 0, o.groupSize)
	for id := o.head[setID]; id != none; id = o.next[id] {
		order = append(order, id)
	}

	return order
}

func (o *LRUOrder) unlink(setID, blockID int) {
	p, n := o.prev[blockID], o.next[blockID]

	if p == none {
		o.head[setID] = n
	} else {
		o.next[p] = n
	}

	if n == none {
		o.tail[setID] = p
	} else {
		o.prev[n] = p
	}
}

func (o *LRUOrder) pushBack(setID, blockID int) {
	last := o.tail[setID]

	o.prev[blockID] = last
	o.next[blockID] = none

	if last == none {
		o.head[setID] = blockID
	} else {
		o.next[last] = blockID
	}

	o.tail[setID] = blockID
}

func (o *LRUOrder) mustBeValidSet(setID int) {
	if setID < 0 || setID >= len(o.head) {
		panic(fmt.Sprintf("set %d out of range [0, %d)", setID, len(o.head)))
	}
}

func (o *LRUOrder) mustBeValidBlock(blockID int) {
	if blockID < 0 || blockID >= len(o.prev) {
		panic(fmt.Sprintf("block %d out of range [0, %d)",
			blockID, len(o.prev)))
	}
}
