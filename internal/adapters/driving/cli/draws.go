package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/services"
)

var drawsJSON bool

var drawsCmd = &cobra.Command{
	Use:   "draws",
	Short: "Show stored draws",
	Long: `Read draws from the local store. Nothing is fetched from the remote;
run 'drawsync sync' first to bring the store up to date.`,
}

var drawsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent stored draw",
	Args:  cobra.NoArgs,
	RunE:  runDrawsLatest,
}

var drawsShowCmd = &cobra.Command{
	Use:   "show <issue>",
	Short: "Show the draw for one issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrawsShow,
}

var drawsRangeCmd = &cobra.Command{
	Use:   "range <start-issue> <end-issue>",
	Short: "Show draws between two issues, oldest first",
	Long: fmt.Sprintf(`Show stored draws whose issue lies between start and end inclusive.
At most %d draws are returned.`, services.MaxRangeDraws),
	Args: cobra.ExactArgs(2),
	RunE: runDrawsRange,
}

var drawsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show how many draws are stored",
	Args:  cobra.NoArgs,
	RunE:  runDrawsCount,
}

func init() {
	drawsCmd.PersistentFlags().BoolVar(&drawsJSON, "json", false, "output JSON")
	drawsCmd.AddCommand(drawsLatestCmd)
	drawsCmd.AddCommand(drawsShowCmd)
	drawsCmd.AddCommand(drawsRangeCmd)
	drawsCmd.AddCommand(drawsCountCmd)
	rootCmd.AddCommand(drawsCmd)
}

func runDrawsLatest(cmd *cobra.Command, _ []string) error {
	if app == nil || app.Draws == nil {
		return fmt.Errorf("draws: %w", errNotConfigured)
	}

	draw, err := app.Draws.Latest(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading latest draw: %w", err)
	}
	return printDraws(cmd, []domain.DrawRecord{*draw}, true)
}

func runDrawsShow(cmd *cobra.Command, args []string) error {
	if app == nil || app.Draws == nil {
		return fmt.Errorf("draws: %w", errNotConfigured)
	}

	draw, err := app.Draws.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reading draw %s: %w", args[0], err)
	}
	return printDraws(cmd, []domain.DrawRecord{*draw}, true)
}

func runDrawsRange(cmd *cobra.Command, args []string) error {
	if app == nil || app.Draws == nil {
		return fmt.Errorf("draws: %w", errNotConfigured)
	}

	draws, err := app.Draws.Range(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("reading draws: %w", err)
	}
	if len(draws) == 0 && !drawsJSON {
		cmd.Println("No draws found.")
		return nil
	}
	return printDraws(cmd, draws, false)
}

func runDrawsCount(cmd *cobra.Command, _ []string) error {
	if app == nil || app.Draws == nil {
		return fmt.Errorf("draws: %w", errNotConfigured)
	}

	n, err := app.Draws.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting draws: %w", err)
	}
	if drawsJSON {
		return writeJSON(cmd, map[string]int{"count": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d draws stored\n", n)
	return nil
}

// printDraws writes draws to stdout as JSON or one styled line each. With single set,
// JSON output is an object rather than an array.
func printDraws(cmd *cobra.Command, draws []domain.DrawRecord, single bool) error {
	if drawsJSON {
		if single {
			return writeJSON(cmd, toDrawJSON(draws[0]))
		}
		out := make([]drawJSON, len(draws))
		for i := range draws {
			out[i] = toDrawJSON(draws[i])
		}
		return writeJSON(cmd, out)
	}

	st := outputStyles(cmd)
	out := cmd.OutOrStdout()
	for i := range draws {
		fmt.Fprintln(out, st.Draw(draws[i]))
	}
	return nil
}
