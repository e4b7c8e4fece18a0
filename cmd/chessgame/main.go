package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessgame/internal/board"
	"github.com/hailam/chessgame/internal/cli"
	"github.com/hailam/chessgame/internal/engine"
	"github.com/hailam/chessgame/internal/session"
	"github.com/hailam/chessgame/internal/storage"
)

var (
	depth      = flag.Int("depth", 0, "search depth in plies (overrides -difficulty)")
	difficulty = flag.String("difficulty", "medium", "easy, medium or hard")
	mode       = flag.String("mode", "hva", "hvh, hva or ava")
	color      = flag.String("color", "white", "the human side in hva")
	fen        = flag.String("fen", "", "start position (default: the standard one)")
	dataDir    = flag.String("data-dir", "", "database directory (default: per-user data directory)")
	memory     = flag.Bool("memory", false, "keep preferences and statistics in memory only")
	logLevel   = flag.String("log-level", "warn", "trace, debug, info, warn or error")
	seed       = flag.Int64("seed", 0, "move shuffling seed (default: time based)")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("chessgame stopped")
	}
}

// run returns instead of exiting so that the database is always closed.
func run(log zerolog.Logger) error {
	store, err := openStorage(log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("could not close storage")
		}
	}()

	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("using default preferences")
		prefs = storage.DefaultPreferences()
	}
	if err := applyFlags(prefs); err != nil {
		return fmt.Errorf("bad flags: %w", err)
	}

	src := *seed
	if src == 0 {
		src = time.Now().UnixNano()
	}
	human := board.White
	if prefs.PlayerColor == storage.ColorBlack {
		human = board.Black
	}
	m, err := session.ParseMode(prefs.GameMode.Key())
	if err != nil {
		return err
	}
	s, err := session.NewSession(session.Config{
		Mode:       m,
		Depth:      prefs.SearchDepth(),
		HumanColor: human,
		FEN:        *fen,
		Logger:     log.With().Str("component", "session").Logger(),
		Rand:       rand.New(rand.NewSource(src)),
	})
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	if err := store.SavePreferences(prefs); err != nil {
		log.Warn().Err(err).Msg("could not save preferences")
	}
	if first, err := store.IsFirstLaunch(); err == nil && first {
		fmt.Println("Welcome! Type help for the list of commands.")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			log.Warn().Err(err).Msg("could not mark first launch")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := cli.New(os.Stdin, os.Stdout, s,
		cli.WithStorage(store),
		cli.WithLogger(log.With().Str("component", "cli").Logger()),
	)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("command loop: %w", err)
	}
	return nil
}

func openStorage(log zerolog.Logger) (*storage.Storage, error) {
	if *memory {
		return storage.OpenInMemory(log)
	}
	return storage.Open(*dataDir, log)
}

// applyFlags overrides the stored preferences with the flags given on the
// command line.
func applyFlags(prefs *storage.UserPreferences) error {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["difficulty"] {
		d, err := engine.ParseDifficulty(*difficulty)
		if err != nil {
			return err
		}
		prefs.Difficulty = d
		prefs.Depth = 0
	}
	if set["depth"] {
		prefs.Depth = *depth
	}
	if set["mode"] {
		m, err := storage.ParseGameMode(strings.ToLower(*mode))
		if err != nil {
			return err
		}
		prefs.GameMode = m
	}
	if set["color"] {
		prefs.PlayerColor = storage.ColorWhite
		if strings.HasPrefix(strings.ToLower(*color), "b") {
			prefs.PlayerColor = storage.ColorBlack
		}
	}
	return nil
}
