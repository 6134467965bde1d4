package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"drawdiff/internal/revision"
)

type tokenOutput struct {
	Name      string `json:"name"`
	Found     bool   `json:"found"`
	Rule      string `json:"rule,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Separator string `json:"separator,omitempty"`
	Number    string `json:"number,omitempty"`
	Suffix    string `json:"suffix,omitempty"`
	Revision  *int   `json:"revision,omitempty"`
}

func newTokensCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "tokens <name>...",
		Short:       "Show the revision token extracted from file names",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]tokenOutput, 0, len(args))
			for _, arg := range args {
				results = append(results, describeToken(filepath.Base(arg)))
			}
			if asJSON {
				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				if !r.Found {
					rows = append(rows, []string{r.Name, "-", "", "", "", "", "-"})
					continue
				}
				rev := "invalid"
				if r.Revision != nil {
					rev = fmt.Sprintf("%d", *r.Revision)
				}
				rows = append(rows, []string{r.Name, r.Rule, r.Prefix, r.Separator, r.Number, r.Suffix, rev})
			}
			cols := []column{left("Name"), left("Rule"), left("Prefix"), center("Separator"), right("Number"), left("Suffix"), right("Revision")}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cols, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func describeToken(name string) tokenOutput {
	stem, _ := revision.SplitExt(name)
	tok, rule, ok := revision.ExtractRule(stem)
	out := tokenOutput{Name: name, Found: ok}
	if !ok {
		return out
	}
	out.Rule = rule
	out.Prefix = tok.Prefix
	out.Separator = tok.Separator
	out.Number = tok.Number
	out.Suffix = tok.Suffix
	if rev, err := tok.Revision(); err == nil {
		out.Revision = &rev
	}
	return out
}
