package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drawdiff/internal/revision"
)

type pairOutput struct {
	Reference string  `json:"reference"`
	Mode      string  `json:"mode"`
	Found     bool    `json:"found"`
	Path      string  `json:"path,omitempty"`
	Strategy  string  `json:"strategy,omitempty"`
	Revision  *int    `json:"revision,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

func newPairCommand(ctx *commandContext) *cobra.Command {
	var prev bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pair <file>",
		Short: "Propose the next (or previous) revision of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matcher, err := ctx.matcher()
			if err != nil {
				return err
			}
			mode := revision.Next
			if prev {
				mode = revision.Prev
			}

			reference := args[0]
			match, ok := matcher.FindPair(reference, mode)
			result := pairOutput{Reference: reference, Mode: mode.String(), Found: ok}
			if ok {
				result.Path = match.Path
				result.Strategy = string(match.Strategy)
				switch match.Strategy {
				case revision.StrategyRevision:
					rev := match.Revision
					result.Revision = &rev
				case revision.StrategySimilarity:
					result.Score = match.Score
				}
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			if !ok {
				return fmt.Errorf("no %s pair found for %s", mode, reference)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, match.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&prev, "prev", false, "Look for the previous revision instead of the next")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
