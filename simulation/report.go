package simulation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/cachemodel/mem/cache"
)

func reportTitle(r Result) string {
	switch r.Kind {
	case cache.FullyAssociative:
		return "Fully Associative Cache"
	case cache.DirectMapped:
		return "Directly Mapped Cache"
	case cache.SetAssociative:
		return "Set-Associative Cache"
	default:
		return r.Organization
	}
}

// WriteReport writes the results in a human-readable form.
func WriteReport(w io.Writer, results []Result) error {
	var sb strings.Builder

	for _, r := range results {
		fmt.Fprintf(&sb, "\n%s:\n", reportTitle(r))

		if r.Timing != nil {
			fmt.Fprintf(&sb, "average read time: %s\n",
				formatMicroseconds(r.AverageTime(cache.Read)))
			fmt.Fprintf(&sb, "average write time: %s\n",
				formatMicroseconds(r.AverageTime(cache.Write)))
		}

		for _, kind := range []cache.AccessKind{cache.Read, cache.Write} {
			fmt.Fprintf(&sb, "\t%s req: %d,\thit: %d,\thit rate: %s\n",
				kind,
				r.Statistics.Requests(kind),
				r.Statistics.Hits(kind),
				formatPercentage(r.Statistics.HitRate(kind)))
		}

		fmt.Fprintf(&sb, "\treplacements: %d\n", r.Replacements)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// WriteJSON writes the results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(results)
}

func formatMicroseconds(seconds float64, err error) string {
	if err != nil {
		return "n/a"
	}

	return fmt.Sprintf("%.2fus", seconds*1e6)
}

func formatPercentage(rate float64, err error) string {
	if err != nil {
		return "n/a"
	}

	return fmt.Sprintf("%.2f%%", rate)
}
