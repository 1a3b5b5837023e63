package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/rapidmidiex/chordstrainer"
	"github.com/rapidmidiex/chordstrainer/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "chordstrainer",
	Short: "Names the chords you play and quizzes you on them",
	Long: `chordstrainer listens to a MIDI input, a MIDI file, an RMX jam or the
qwerty keyboard, names the chord formed by the held notes and asks you
to play random chords.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var drv drivers.Driver
		rtm, err := rtmididrv.New()
		if err != nil {
			logrus.WithError(err).Warn("no MIDI driver, only the virtual keyboard, files and jams are available")
		} else {
			defer rtm.Close()
			drv = rtm
		}
		return chordstrainer.Run(cfg, drv)
	},
}

func init() {
	var err error
	cfg, err = config.Load()
	cobra.CheckErr(err)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Tier, "tier", cfg.Tier, "quiz difficulty: basic, intermediate or advanced")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "quiz seed, 0 for a random one")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	local := rootCmd.Flags()
	local.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames per second")
	local.StringVar(&cfg.Port, "port", cfg.Port, "MIDI input to listen to (substring of its name)")
	local.StringVar(&cfg.File, "file", cfg.File, "MIDI file to replay")
	local.Float64Var(&cfg.FileSpeed, "speed", cfg.FileSpeed, "MIDI file replay speed")
	local.BoolVar(&cfg.Loop, "loop", cfg.Loop, "replay the MIDI file forever")
	local.StringVar(&cfg.Jam, "jam", cfg.Jam, "RMX jam websocket URL to follow")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
