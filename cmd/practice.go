package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/screens/practicelist"
	"github.com/toeicpractice/toeic/internal/ui/layout"
)

// prefetchLimit bounds concurrent page requests.
const prefetchLimit = 4

var practiceCmd = &cobra.Command{
	Use:   "practice [listening|reading]",
	Short: "Print one page of questions for every part of a skill",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := practice.Listening
		if len(args) == 1 {
			t, err := practice.ParsePracticeType(args[0])
			if err != nil {
				return err
			}
			kind = t
		}
		page, _ := cmd.Flags().GetInt("page")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		b := practice.NewBrowser(e.api, e.api, e.sessions,
			practice.WithLogger(e.log), practice.WithPageSize(e.cfg.PageSize))
		b.Initialize(kind)

		groups := b.Groups()
		if len(groups) == 0 {
			return fmt.Errorf("%s has no practice parts", kind.DisplayName())
		}

		// Every group keeps its own cursor, so pages load side by side.
		ctx := cmd.Context()
		errs := make([]error, len(groups))
		var g errgroup.Group
		g.SetLimit(prefetchLimit)
		g.Go(func() error {
			if err := b.RefreshAnswered(ctx); err != nil {
				e.log.Sugar().Warnw("answered set unavailable", "error", err)
			}
			return nil
		})
		for i, grp := range groups {
			g.Go(func() error {
				errs[i] = b.LoadPage(ctx, grp.ID, page)
				return nil
			})
		}
		_ = g.Wait()

		printPractice(cmd.OutOrStdout(), b, errs)
		return nil
	},
}

func printPractice(w io.Writer, b *practice.Browser, errs []error) {
	fmt.Fprintf(w, "%s practice · %d answered\n", b.Type().DisplayName(), b.AnsweredCount())
	for i, v := range b.Groups() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s  (page %d)\n", v.Title, v.Page)
		fmt.Fprintln(w, strings.Repeat("─", 60))

		if errs[i] != nil {
			fmt.Fprintf(w, "  could not load: %v\n", errs[i])
			continue
		}
		if len(v.Items) == 0 {
			fmt.Fprintln(w, "  no questions")
			continue
		}
		for j, q := range v.Items {
			mark := " "
			if b.IsAnswered(q) {
				mark = "✓"
			}
			fmt.Fprintf(w, "  %s %3d. %s [%s]\n", mark, v.ItemNumber(j), layout.Truncate(practicelist.ItemLabel(q), 60), q.Difficulty)
		}
		if v.HasNext {
			fmt.Fprintf(w, "  more: --page %d\n", v.Page+1)
		}
	}
}

func init() {
	practiceCmd.Flags().Int("page", 1, "Page to load in every part")
}
