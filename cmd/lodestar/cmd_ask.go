package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lodestar/internal/format"
	"lodestar/internal/rag"
	"lodestar/internal/wiring"
)

var askFlags struct {
	variant  string
	parallel int
	markdown bool
	showPath bool
}

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer one or more questions and print a result table",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	f := askCmd.Flags()
	f.StringVar(&askFlags.variant, "variant", "", "Workflow variant: basic, suggestion, search (default from config)")
	f.IntVarP(&askFlags.parallel, "parallel", "p", 2, "Questions answered concurrently")
	f.BoolVar(&askFlags.markdown, "markdown", false, "Render the result table as Markdown")
	f.BoolVar(&askFlags.showPath, "show-path", false, "Print the node path each run took")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askFlags.variant != "" {
		cfg.Workflow.Variant = askFlags.variant
	}

	app, err := wiring.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	results := make([]*rag.Result, len(args))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(askFlags.parallel)
	for i, question := range args {
		g.Go(func() error {
			res, err := app.Workflow.Execute(ctx, question)
			if err != nil {
				return fmt.Errorf("%q: %w", question, err)
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	mode := format.ASCII
	if askFlags.markdown {
		mode = format.Markdown
	}
	tb := format.NewTable(mode)
	tb.Header("Question", "Confidence", "Done", "Answer")
	tb.Columns(
		format.ColumnConfig{Number: 1, MaxWidth: 40},
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignCenter},
		format.ColumnConfig{Number: 4, MaxWidth: 60},
	)
	for i, res := range results {
		tb.Row(
			format.Truncate(args[i], 40),
			format.FmtConfidence(res.Confidence),
			format.StatusMark(res.Exhausted()),
			format.Truncate(res.Answer, 60),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())

	for i, res := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "\nQ: %s\nA: %s\n", args[i], res.Answer)
		if len(res.Suggestions) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Suggestions:")
			for _, s := range res.Suggestions {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", s)
			}
		}
		if askFlags.showPath {
			fmt.Fprintf(cmd.OutOrStdout(), "Path: %v\n", res.Trace.Path())
		}
	}
	return nil
}
