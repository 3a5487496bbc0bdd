package cache

import "fmt"

// AccessKind tells whether a memory access reads or writes.
type AccessKind int

// The kinds of memory accesses.
const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

// Kind identifies a cache organization.
type Kind int

// The supported cache organizations.
const (
	FullyAssociative Kind = iota
	DirectMapped
	SetAssociative
)

// Kinds lists all the cache organizations in the order they are reported.
var Kinds = []Kind{FullyAssociative, DirectMapped, SetAssociative}

func (k Kind) String() string {
	switch k {
	case FullyAssociative:
		return "FullyAssociative"
	case DirectMapped:
		return "DirectMapped"
	case SetAssociative:
		return "SetAssociative"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the organization by its name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
