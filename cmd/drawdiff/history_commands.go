package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"drawdiff/internal/history"
)

type historyRunJSON struct {
	ID          string    `json:"id"`
	FileA       string    `json:"file_a"`
	FileB       string    `json:"file_b"`
	Output      string    `json:"output"`
	Outcome     string    `json:"outcome"`
	PDFResult   string    `json:"pdf_result"`
	ExitCode    int       `json:"exit_code"`
	PagesA      int       `json:"pages_a,omitempty"`
	PagesB      int       `json:"pages_b,omitempty"`
	ModelResult string    `json:"model_result"`
	Screenshot  string    `json:"screenshot,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMS  int64     `json:"duration_ms"`
}

func toHistoryJSON(run *history.Run) historyRunJSON {
	return historyRunJSON{
		ID:          run.ID,
		FileA:       run.FileA,
		FileB:       run.FileB,
		Output:      run.Output,
		Outcome:     run.Outcome,
		PDFResult:   run.PDFResult,
		ExitCode:    run.ExitCode,
		PagesA:      run.PagesA,
		PagesB:      run.PagesB,
		ModelResult: run.ModelResult,
		Screenshot:  run.Screenshot,
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		DurationMS:  run.Duration().Milliseconds(),
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent comparison runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					items := make([]historyRunJSON, 0, len(runs))
					for _, run := range runs {
						items = append(items, toHistoryJSON(run))
					}
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No comparison runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						humanize.Time(run.StartedAt),
						filepath.Base(run.FileA),
						filepath.Base(run.FileB),
						run.PDFResult,
						run.ModelResult,
						run.Outcome,
						run.Duration().Round(time.Millisecond).String(),
					})
				}
				cols := []column{left("ID"), left("Started"), left("Original"), left("Comparison"), left("PDF"), left("3D"), left("Outcome"), right("Duration")}
				fmt.Fprintln(out, renderTable(cols, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one comparison run (full id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := resolveRun(cmd, store, strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, toHistoryJSON(run))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %s\n", run.ID)
				fmt.Fprintf(out, "Original:    %s\n", run.FileA)
				fmt.Fprintf(out, "Comparison:  %s\n", run.FileB)
				fmt.Fprintf(out, "Output:      %s\n", run.Output)
				fmt.Fprintf(out, "PDF:         %s (exit %d)\n", run.PDFResult, run.ExitCode)
				fmt.Fprintf(out, "3D:          %s\n", run.ModelResult)
				if run.Screenshot != "" {
					fmt.Fprintf(out, "Screenshot:  %s\n", run.Screenshot)
				}
				fmt.Fprintf(out, "Outcome:     %s\n", run.Outcome)
				if run.Error != "" {
					fmt.Fprintf(out, "Error:       %s\n", run.Error)
				}
				fmt.Fprintf(out, "Started:     %s (%s)\n", run.StartedAt.Format(time.RFC3339), humanize.Time(run.StartedAt))
				fmt.Fprintf(out, "Duration:    %s\n", run.Duration().Round(time.Millisecond))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", pluralize(removed, "run"))
				return nil
			})
		},
	}
}

// resolveRun finds a run by full id or by a unique id prefix.
func resolveRun(cmd *cobra.Command, store *history.Store, id string) (*history.Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("run id must not be empty")
	}
	run, err := store.Get(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}
	runs, err := store.Recent(cmd.Context(), 0)
	if err != nil {
		return nil, err
	}
	var found *history.Run
	for _, candidate := range runs {
		if !strings.HasPrefix(candidate.ID, id) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
		}
		found = candidate
	}
	if found == nil {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return found, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func pluralize(count int64, noun string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(count), noun)
}
