package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"drawdiff/internal/compare"
	"drawdiff/internal/history"
	"drawdiff/internal/pdfdiff"
	"drawdiff/internal/services"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var output string
	var no3D bool
	var noAutofill bool

	cmd := &cobra.Command{
		Use:   "compare <original.pdf> [comparison.pdf]",
		Short: "Redline two drawing revisions, auto-filling the comparison when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			matcher, err := ctx.matcher()
			if err != nil {
				return err
			}
			logger := ctx.loggerValue()
			out := cmd.OutOrStdout()

			session := compare.NewSession(matcher,
				compare.WithAutofill(cfg.Autofill.Enabled && !noAutofill && len(args) == 1),
				compare.WithSessionLogger(logger),
			)
			event := session.SetA(args[0])
			if len(args) == 2 {
				event = session.SetB(args[1])
			}
			if event.Status == compare.StatusAutoFilled {
				fmt.Fprintln(out, event.Message)
			}
			if !session.Ready() {
				if event.Status == compare.StatusNoPair {
					return errors.New("no matching pair found for auto-fill; pass the comparison file explicitly")
				}
				return errors.New("select both files first")
			}

			return ctx.withHistory(func(store *history.Store) error {
				runner, err := compare.NewRunner(cfg,
					compare.WithRecorder(store),
					compare.WithRunnerLogger(logger),
				)
				if err != nil {
					return err
				}
				report, runErr := runner.Run(cmd.Context(), compare.Request{
					FileA:  session.A(),
					FileB:  session.B(),
					Output: output,
					Skip3D: no3D,
				})
				printReport(out, report, runErr)
				return runErr
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Redline output path (default: <comparison>-Redline.pdf)")
	cmd.Flags().BoolVar(&no3D, "no-3d", false, "Skip the 3D STEP comparison")
	cmd.Flags().BoolVar(&noAutofill, "no-autofill", false, "Do not propose the comparison file")
	return cmd
}

func printReport(out io.Writer, report compare.Report, runErr error) {
	fmt.Fprintf(out, "Original:   %s%s\n", report.FileA, pagesSuffix(report.PagesA))
	fmt.Fprintf(out, "Comparison: %s%s\n", report.FileB, pagesSuffix(report.PagesB))
	switch {
	case report.PDF.Succeeded():
		verdict := "Differences found"
		if report.PDF.Result == pdfdiff.Identical {
			verdict = "No visual differences"
		}
		fmt.Fprintf(out, "PDF:        %s; redline saved to %s\n", verdict, report.Output)
	case report.PDF.Result == pdfdiff.AccessDenied:
		fmt.Fprintln(out, "PDF:        Access denied; check file permissions or close the files in other programs")
	case runErr != nil:
		fmt.Fprintf(out, "PDF:        Failed (%s)\n", services.Classify(runErr))
	}

	model := report.Model
	switch model.Status {
	case compare.ModelCaptured:
		fmt.Fprintf(out, "3D:         Screenshot saved to %s\n", model.Screenshot)
	case compare.ModelNoCapture:
		fmt.Fprintln(out, "3D:         Viewer closed without a screenshot")
	case compare.ModelFailed:
		detail := model.Reason
		if model.ErrorLog != "" {
			detail = fmt.Sprintf("see %s", model.ErrorLog)
		}
		fmt.Fprintf(out, "3D:         Failed (%s)\n", detail)
	default:
		if model.Reason != "" {
			fmt.Fprintf(out, "3D:         %s (%s)\n", model.Status, model.Reason)
		}
	}
	fmt.Fprintf(out, "Run:        %s (%s)\n", report.RunID, report.Outcome)
}

func pagesSuffix(pages int) string {
	if pages <= 0 {
		return ""
	}
	if pages == 1 {
		return " (1 page)"
	}
	return fmt.Sprintf(" (%d pages)", pages)
}
