package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/stats"
)

// allResults is the page size used to fetch every result at once.
const allResults = 999

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show accuracy by skill and topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		results, err := e.api.FetchResults(cmd.Context(), allResults, kind)
		if errors.Is(err, api.ErrNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in. Run `toeic login` first.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch results: %w", err)
		}

		printSummary(cmd.OutOrStdout(), stats.Summarize(results))
		return nil
	},
}

func printSummary(w io.Writer, s stats.Summary) {
	if s.Total.Attempts()+s.Total.Skipped == 0 {
		fmt.Fprintln(w, "No answers yet.")
		return
	}

	fmt.Fprintf(w, "%d results\n\n", s.Results)
	fmt.Fprintf(w, "%-28s  %7s  %9s  %7s  %8s\n", "", "Correct", "Incorrect", "Skipped", "Accuracy")
	fmt.Fprintln(w, strings.Repeat("─", 66))
	row := func(label string, c stats.Counts) {
		fmt.Fprintf(w, "%-28s  %7d  %9d  %7d  %7.0f%%\n",
			truncate(label, 28), c.Correct, c.Incorrect, c.Skipped, c.Accuracy()*100)
	}
	for _, sk := range s.Skills {
		row(sk.Skill.DisplayName(), sk.Counts)
	}
	fmt.Fprintln(w, strings.Repeat("─", 66))
	row("TOTAL", s.Total)

	if len(s.Topics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Top topics")
		fmt.Fprintln(w, strings.Repeat("─", 66))
		for _, t := range s.Topics {
			row(t.Name, t.Counts)
		}
	}
}

func init() {
	statsCmd.Flags().String("type", "", "Only results of this type (e.g. FULL_TEST, QUESTION)")
}
