package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toeicpractice/toeic/internal/api"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List available practice tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		tests, err := e.api.ListTests(cmd.Context(), api.TestFilter{Search: search, PageSize: limit})
		if err != nil {
			return fmt.Errorf("list tests: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(tests) == 0 {
			fmt.Fprintln(out, "No tests found.")
			return nil
		}

		fmt.Fprintf(out, "%-24s  %-32s  %9s  %7s  %8s\n", "ID", "Name", "Questions", "Minutes", "Attempts")
		fmt.Fprintln(out, strings.Repeat("─", 88))
		for _, t := range tests {
			name := t.Name
			if t.Category != nil && t.Category.Year > 0 {
				name = fmt.Sprintf("%s (%d)", name, t.Category.Year)
			}
			fmt.Fprintf(out, "%-24s  %-32s  %9d  %7d  %8d\n",
				t.ID, truncate(name, 32), t.TotalQuestion, t.LimitTime, t.TotalUserAttemp)
		}
		fmt.Fprintf(out, "\n%d tests\n", len(tests))
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func init() {
	testsCmd.Flags().StringP("search", "s", "", "Only tests whose name contains this text")
	testsCmd.Flags().IntP("limit", "n", 0, "Maximum number of tests (0 = server default)")
}
