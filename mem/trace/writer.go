package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/cachemodel/mem/cache"
)

// A Writer writes accesses in the format that Reader parses.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one access.
func (w *Writer) Write(access Access) error {
	kind := "R"
	if access.Kind == cache.Write {
		kind = "W"
	}

	_, err := fmt.Fprintf(w.w, "%s 0x%x\n", kind, access.Address)

	return err
}

// Copy writes all the accesses of a source and returns how many were written.
func (w *Writer) Copy(src Source) (uint64, error) {
	var n uint64

	for {
		access, err := src.Next()
		if err == io.EOF {
			return n, nil
		}

		if err != nil {
			return n, err
		}

		err = w.Write(access)
		if err != nil {
			return n, err
		}

		n++
	}
}

// Flush writes any buffered data.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
