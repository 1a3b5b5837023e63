package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rapidmidiex/chordstrainer/chords"
	"github.com/rapidmidiex/chordstrainer/theory"
)

func init() {
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find NOTES...",
	Short: "Names the chords formed by some notes",
	Long: `Names the chords formed by some notes, lowest first.

  chordstrainer find C E G
  chordstrainer find "Bb, D, F, Ab"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return find(cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

func find(w io.Writer, text string) error {
	notes := theory.Parse(text)
	if len(notes) == 0 {
		return fmt.Errorf("no notes in %q", text)
	}
	matches := chords.Find(notes)
	if len(matches) == 0 {
		fmt.Fprintf(w, "%s: no chord\n", theory.Render(notes))
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(w, "%s (%s)\n", m.Name, strings.Join(m.Abbreviations, ", "))
		degrees := make([]string, len(notes))
		for i, n := range notes {
			degrees[i] = n.String() + "=" + m.Degrees[n]
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(degrees, " "))
	}
	return nil
}
