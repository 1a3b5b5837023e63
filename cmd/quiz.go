package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rapidmidiex/chordstrainer/chords"
	"github.com/rapidmidiex/chordstrainer/theory"
	"github.com/rapidmidiex/chordstrainer/trainer"
)

var quizCount int

func init() {
	quizCmd.Flags().IntVarP(&quizCount, "count", "n", 10, "number of chords")
	rootCmd.AddCommand(quizCmd)
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Prints random chords to practice",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if quizCount < 1 {
			return fmt.Errorf("count must be positive, got %d", quizCount)
		}
		quiz(cmd.OutOrStdout(), trainer.New(cfg.Rand(), cfg.QuizTier()), quizCount)
		return nil
	},
}

func quiz(w io.Writer, t *trainer.Trainer, n int) {
	target := t.Target()
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%-22s %s\n", target.Name, theory.Render(chords.Spell(target.Root, target.Quality)))
		target = t.Generate()
	}
}
