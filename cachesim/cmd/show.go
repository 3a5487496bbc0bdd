package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachemodel/datarecording"
	"github.com/sarchlab/cachemodel/simulation"
)

var showCmd = &cobra.Command{
	Use:   "show <recording.sqlite3>",
	Short: "Show the statistics stored in a recording.",
	Args:  cobra.ExactArgs(1),
	RunE:  showRecording,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("json", false, "Print the results as JSON")
}

func showRecording(cmd *cobra.Command, args []string) error {
	results, err := readRecordedResults(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return simulation.WriteJSON(cmd.OutOrStdout(), results)
	}

	return simulation.WriteReport(cmd.OutOrStdout(), results)
}

func readRecordedResults(
	ctx context.Context,
	filename string,
) ([]simulation.Result, error) {
	reader, err := datarecording.NewReader(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	reader.MapTable(simulation.StatisticsTableName, simulation.StatisticsEntry{})

	rows, _, err := reader.Query(ctx, simulation.StatisticsTableName,
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, err
	}

	results := make([]simulation.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.(*simulation.StatisticsEntry).Result())
	}

	return results, nil
}
