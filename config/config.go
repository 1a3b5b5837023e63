// Package config loads settings from the environment, an optional .env file
// and command line flags.
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rapidmidiex/chordstrainer/chords"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Quiz difficulty: basic, intermediate or advanced.
	Tier string
	// Frames per second of the UI.
	FPS int

	// Input selection. At most one of Port, File and Jam is used, in that
	// order. With none set the input picker is shown.
	Port      string  // MIDI input name, matched as a substring
	File      string  // Standard MIDI File to replay
	FileSpeed float64 // replay rate
	Loop      bool    // replay File forever
	Jam       string  // RMX jam websocket URL

	// Quiz seed; 0 seeds from the clock.
	Seed int64

	LogFile  string
	LogLevel string
}

// Load reads .env (if present) and the CHORDS_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	fps, err := getEnvInt("CHORDS_FPS", 30)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvInt("CHORDS_SEED", 0)
	if err != nil {
		return nil, err
	}
	speed, err := strconv.ParseFloat(getEnv("CHORDS_FILE_SPEED", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("CHORDS_FILE_SPEED: %w", err)
	}

	return &Config{
		Tier:      getEnv("CHORDS_TIER", chords.Advanced.String()),
		FPS:       fps,
		Port:      getEnv("CHORDS_PORT", ""),
		File:      getEnv("CHORDS_FILE", ""),
		FileSpeed: speed,
		Loop:      getEnv("CHORDS_LOOP", "false") == "true",
		Jam:       getEnv("CHORDS_JAM", ""),
		Seed:      int64(seed),
		LogFile:   getEnv("CHORDS_LOG_FILE", "chordstrainer.log"),
		LogLevel:  getEnv("CHORDS_LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func (c *Config) Validate() error {
	if _, err := chords.ParseTier(c.Tier); err != nil {
		return err
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.FileSpeed <= 0 {
		return fmt.Errorf("file speed must be positive, got %g", c.FileSpeed)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// QuizTier returns the parsed tier. Call Validate first.
func (c *Config) QuizTier() chords.Tier {
	t, _ := chords.ParseTier(c.Tier)
	return t
}

// FrameInterval is the time between UI frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Rand returns the quiz random source.
func (c *Config) Rand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// SetupLogging points logrus at LogFile. The terminal belongs to the UI, so
// nothing is logged to stdout. The returned file must be closed by the
// caller.
func (c *Config) SetupLogging() (*os.File, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return f, nil
}
