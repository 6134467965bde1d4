package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"drawdiff/internal/revision"
	"drawdiff/internal/textutil"
)

type candidateRow struct {
	Name       string
	Token      tokenOutput
	Size       int64
	Similarity float64
	Eligible   bool
	Pick       string
}

func newCandidatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <file>",
		Short: "List the files considered when pairing a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matcher, err := ctx.matcher()
			if err != nil {
				return err
			}
			reference := args[0]
			if _, err := os.Stat(reference); err != nil {
				return fmt.Errorf("reference %s: %w", reference, err)
			}

			rows, err := collectCandidates(matcher, reference)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ref := describeToken(filepath.Base(reference))
			strategy := "similarity"
			if ref.Found {
				strategy = fmt.Sprintf("revision (prefix %q)", ref.Prefix)
			}
			fmt.Fprintf(out, "Reference: %s\nStrategy:  %s\n", filepath.Base(reference), strategy)
			if len(rows) == 0 {
				fmt.Fprintln(out, "No candidates share the reference extension.")
				return nil
			}

			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				rev := "-"
				if row.Token.Revision != nil {
					rev = fmt.Sprintf("%d", *row.Token.Revision)
				}
				tokenText := "-"
				if row.Token.Found {
					tokenText = row.Token.Prefix + "|" + row.Token.Separator + "|" + row.Token.Number + "|" + row.Token.Suffix
				}
				tableRows = append(tableRows, []string{
					row.Name,
					tokenText,
					rev,
					humanize.Bytes(uint64(row.Size)),
					fmt.Sprintf("%.3f", row.Similarity),
					yesNo(row.Eligible),
					row.Pick,
				})
			}
			cols := []column{left("Name"), left("Token"), right("Revision"), right("Size"), right("Similarity"), center("Eligible"), center("Pick")}
			fmt.Fprintln(out, renderTable(cols, tableRows))
			return nil
		},
	}
}

// collectCandidates annotates the candidate set of reference with the
// information the matcher uses and marks the next/prev proposals.
func collectCandidates(matcher *revision.Matcher, reference string) ([]candidateRow, error) {
	names, err := revision.Candidates(reference)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(reference)
	refName := filepath.Base(reference)
	ref := describeToken(refName)

	picks := map[string]string{}
	for _, mode := range []revision.Mode{revision.Next, revision.Prev} {
		if match, ok := matcher.FindPair(reference, mode); ok {
			if existing := picks[match.Name]; existing != "" {
				picks[match.Name] = existing + "," + mode.String()
			} else {
				picks[match.Name] = mode.String()
			}
		}
	}

	rows := make([]candidateRow, 0, len(names))
	for _, name := range names {
		row := candidateRow{
			Name:       name,
			Token:      describeToken(name),
			Similarity: textutil.SequenceRatio(refName, name),
			Pick:       picks[name],
		}
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			row.Size = info.Size()
		}
		if ref.Found {
			row.Eligible = row.Token.Found && row.Token.Revision != nil && textutil.EqualFold(row.Token.Prefix, ref.Prefix)
		} else {
			row.Eligible = row.Similarity >= matcher.Cutoff()
		}
		rows = append(rows, row)
	}
	return rows, nil
}
