package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/cachemodel/mem/cache"
)

// A Reader parses a text trace with one access per line, in the form of
// "<kind> <address>". The kind is R, W, read, or write in any case. The
// address can be written in any base that strconv.ParseUint accepts with base
// 0. Empty lines and lines starting with # are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next access in the trace.
func (r *Reader) Next() (Access, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		access, err := parseLine(text)
		if err != nil {
			return Access{}, &ParseError{Line: r.line, Text: text, Err: err}
		}

		return access, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Access{}, err
	}

	return Access{}, io.EOF
}

func parseLine(text string) (Access, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Access{}, errors.New("expecting a kind and an address")
	}

	kind, err := parseKind(fields[0])
	if err != nil {
		return Access{}, err
	}

	addr, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return Access{}, fmt.Errorf("bad address: %w", err)
	}

	return Access{Address: addr, Kind: kind}, nil
}

func parseKind(s string) (cache.AccessKind, error) {
	switch strings.ToLower(s) {
	case "r", "read":
		return cache.Read, nil
	case "w", "write":
		return cache.Write, nil
	default:
		return 0, fmt.Errorf("unknown access kind %q", s)
	}
}
