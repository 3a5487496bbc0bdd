package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachemodel/mem/trace"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic trace.",
	Long: "`gen` writes a trace of sequential, strided, or random accesses " +
		"in the format that `run` reads.",
	Args: cobra.NoArgs,
	RunE: generateTrace,
}

func init() {
	rootCmd.AddCommand(genCmd)

	flags := genCmd.Flags()
	flags.String("pattern", trace.PatternSequential,
		"One of sequential, strided, and random")
	flags.Uint64("count", 1<<20, "Number of accesses")
	flags.Uint64("base", 0, "Lowest address")
	flags.Uint64("stride", 4, "Distance between strided accesses")
	flags.Uint64("footprint", 1<<20, "Number of bytes the accesses spread over")
	flags.Float64("write-ratio", 0, "Fraction of writes")
	flags.Int64("seed", 1, "Seed of the random number generator")
	flags.StringP("output", "o", "-", "Output file, - for the standard output")
}

func generateTrace(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	pattern, _ := flags.GetString("pattern")
	count, _ := flags.GetUint64("count")
	base, _ := flags.GetUint64("base")
	stride, _ := flags.GetUint64("stride")
	footprint, _ := flags.GetUint64("footprint")
	writeRatio, _ := flags.GetFloat64("write-ratio")
	seed, _ := flags.GetInt64("seed")
	output, _ := flags.GetString("output")

	src, err := trace.MakeSyntheticBuilder().
		WithPattern(pattern).
		WithCount(count).
		WithBase(base).
		WithStride(stride).
		WithFootprint(footprint).
		WithWriteRatio(writeRatio).
		WithSeed(seed).
		Build()
	if err != nil {
		return err
	}

	var n uint64

	if output == "-" {
		n, err = writeTrace(cmd.OutOrStdout(), src)
	} else {
		n, err = writeTraceFile(output, src)
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d accesses generated\n", n)

	return nil
}

func writeTrace(out io.Writer, src trace.Source) (uint64, error) {
	w := trace.NewWriter(out)

	n, err := w.Copy(src)
	if err != nil {
		return n, err
	}

	return n, w.Flush()
}

func writeTraceFile(path string, src trace.Source) (uint64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	return writeAndClose(f, src)
}

// writeAndClose reports the error of closing the file together with the
// errors of writing it.
func writeAndClose(f io.WriteCloser, src trace.Source) (uint64, error) {
	n, err := writeTrace(f, src)

	return n, errors.Join(err, f.Close())
}
