package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/hailam/chessgame/internal/engine"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
)

// GameMode represents the game mode
type GameMode int

const (
	ModeHumanVsHuman GameMode = iota
	ModeHumanVsComputer
	ModeComputerVsComputer
)

// Key returns the short name used in statistics and on the command line.
func (m GameMode) Key() string {
	switch m {
	case ModeHumanVsComputer:
		return "hva"
	case ModeComputerVsComputer:
		return "ava"
	default:
		return "hvh"
	}
}

// ParseGameMode converts a short mode name ("hvh", "hva" or "ava") to a
// GameMode.
func ParseGameMode(key string) (GameMode, error) {
	for _, m := range []GameMode{ModeHumanVsHuman, ModeHumanVsComputer, ModeComputerVsComputer} {
		if m.Key() == key {
			return m, nil
		}
	}
	return ModeHumanVsComputer, fmt.Errorf("unknown game mode %q", key)
}

// PlayerColor represents which color the human plays
type PlayerColor int

const (
	ColorWhite PlayerColor = iota
	ColorBlack
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username    string            `json:"username"`
	Difficulty  engine.Difficulty `json:"difficulty"`
	Depth       int               `json:"depth,omitempty"` // overrides Difficulty when > 0
	GameMode    GameMode          `json:"game_mode"`
	PlayerColor PlayerColor       `json:"player_color"`
	LastPlayed  time.Time         `json:"last_played"`
}

// SearchDepth returns the AI depth the preferences ask for.
func (p *UserPreferences) SearchDepth() int {
	if p.Depth > 0 {
		return p.Depth
	}
	return p.Difficulty.Depth()
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:    "Player",
		Difficulty:  engine.Medium,
		GameMode:    ModeHumanVsComputer,
		PlayerColor: ColorWhite,
		LastPlayed:  time.Now(),
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByMode     map[string]int `json:"wins_by_mode"`
	WinsByDiff     map[string]int `json:"wins_by_difficulty"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByMode: make(map[string]int),
		WinsByDiff: make(map[string]int),
	}
}

// GameResult represents the result of a completed game from the point of
// view of the human (White in human-vs-human and computer-vs-computer play).
type GameResult struct {
	Won        bool
	Draw       bool
	Mode       GameMode
	Difficulty engine.Difficulty
	Duration   time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	log zerolog.Logger
}

// badgerLogger forwards badger's log lines to zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	l.log.Error().Msgf(f, v...)
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.log.Warn().Msgf(f, v...)
}

func (l badgerLogger) Infof(f string, v ...interface{}) {
	l.log.Debug().Msgf(f, v...)
}

func (l badgerLogger) Debugf(f string, v ...interface{}) {
	l.log.Trace().Msgf(f, v...)
}

// Open opens the database in dir, or in the per-user data directory when
// dir is empty.
func Open(dir string, log zerolog.Logger) (*Storage, error) {
	if dir == "" {
		var err error
		if dir, err = GetDatabaseDir(); err != nil {
			return nil, err
		}
	}
	log.Debug().Str("dir", dir).Msg("opening database")
	return open(badger.DefaultOptions(dir), log)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory(log zerolog.Logger) (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log zerolog.Logger) (*Storage, error) {
	log = log.With().Str("component", "storage").Logger()
	opts.Logger = badgerLogger{log: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Storage{db: db, log: log}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// put stores v as JSON under key.
func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the JSON stored under key into v, leaving v untouched when
// the key is missing.
func (s *Storage) get(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.get(keyStats, stats)
	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration

	switch {
	case result.Draw:
		stats.Draws++
		stats.CurrentStreak = 0
	case result.Won:
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		stats.WinsByMode[result.Mode.Key()]++
		stats.WinsByDiff[result.Difficulty.String()]++
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	s.log.Info().
		Int("games", stats.GamesPlayed).
		Bool("won", result.Won).
		Bool("draw", result.Draw).
		Dur("duration", result.Duration).
		Msg("game recorded")

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}
