package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachemodel/mem/trace"
	"github.com/sarchlab/cachemodel/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run [trace-file|-]",
	Short: "Simulate the three caches on a trace.",
	Long: "`run` reads a trace from a file, or from the standard input if " +
		"the file is - or missing, and reports the statistics of each cache.",
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	addCacheFlags(runCmd)

	flags := runCmd.Flags()
	flags.Bool("timing", false, "Measure the time spent in each cache")
	flags.String("record", "",
		"Record every access into <record>.sqlite3")
	flags.Bool("unique-task-ids", false,
		"Give recorded accesses IDs that are unique across runs")
	flags.Bool("monitor", false, "Serve the simulation state over HTTP")
	flags.Int("monitor-port", 0, "Port of the monitoring server")
	flags.Bool("open-browser", false, "Open the monitoring page in a browser")
	flags.Bool("json", false, "Print the results as JSON")
	flags.Uint64("expected-accesses", 0,
		"Number of accesses shown as the total of the progress bar")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	b, err := simulationBuilder(cmd)
	if err != nil {
		return err
	}

	in, err := openTrace(args)
	if err != nil {
		return err
	}
	defer in.Close()

	s, err := b.Build()
	if err != nil {
		return err
	}

	runErr := s.Run(cmd.Context(), trace.NewReader(in))
	termErr := s.Terminate()

	results := s.Results()
	out := cmd.OutOrStdout()

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		err = simulation.WriteJSON(out, results)
	} else {
		err = simulation.WriteReport(out, results)
	}

	return errors.Join(runErr, termErr, err)
}

func simulationBuilder(cmd *cobra.Command) (simulation.Builder, error) {
	c, err := resolveCacheConfig(cmd, os.LookupEnv)
	if err != nil {
		return simulation.Builder{}, err
	}

	b := simulation.MakeBuilder().
		WithBlockCount(c.blockCount).
		WithLog2BlockSize(c.log2BlockSize).
		WithGroupSize(c.groupSize).
		WithAddressAlignment(c.alignLog2)

	flags := cmd.Flags()

	if timing, _ := flags.GetBool("timing"); timing {
		b = b.WithTiming()
	}

	if record, _ := flags.GetString("record"); record != "" {
		b = b.WithRecording(record)

		if unique, _ := flags.GetBool("unique-task-ids"); unique {
			b = b.WithUniqueTaskIDs()
		}
	}

	if monitor, _ := flags.GetBool("monitor"); monitor {
		port, _ := flags.GetInt("monitor-port")
		expected, _ := flags.GetUint64("expected-accesses")

		b = b.WithMonitoring().
			WithMonitorPort(port).
			WithExpectedAccesses(expected)

		if open, _ := flags.GetBool("open-browser"); open {
			b = b.WithBrowser()
		}
	}

	return b, nil
}

func openTrace(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(args[0])
}
