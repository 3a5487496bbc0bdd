// Package trace reads, writes, and generates streams of memory accesses.
package trace

import (
	"fmt"

	"github.com/sarchlab/cachemodel/mem/cache"
)

// An Access is one memory operation observed on a running program.
type Access struct {
	Address uint64
	Kind    cache.AccessKind
}

// A Source produces accesses. Next returns io.EOF after the last access.
type Source interface {
	Next() (Access, error)
}

// A ParseError reports a malformed line in a trace file.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
