package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Storage StorageConfig `mapstructure:"storage"`
	Judge   JudgeConfig   `mapstructure:"judge"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Verbose         bool          `mapstructure:"verbose"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// GameConfig holds room limits and rotation timings
type GameConfig struct {
	MaxPlayersPerRoom  int           `mapstructure:"maxPlayersPerRoom"`
	RoomCodeLength     int           `mapstructure:"roomCodeLength"`
	MaxHealth          int           `mapstructure:"maxHealth"`
	ProblemDeadline    time.Duration `mapstructure:"problemDeadline"`
	TimeoutPenalty     int           `mapstructure:"timeoutPenalty"`
	TimeoutResumeDelay time.Duration `mapstructure:"timeoutResumeDelay"`
	SolveResumeDelay   time.Duration `mapstructure:"solveResumeDelay"`
	ProblemsFile       string        `mapstructure:"problemsFile"`
}

// StorageConfig points at the optional problem store and cache.
// An empty MongoURI serves problems from ProblemsFile; an empty RedisAddr
// disables the problem pool and the leaderboard.
type StorageConfig struct {
	MongoURI      string `mapstructure:"mongoURI"`
	MongoDatabase string `mapstructure:"mongoDatabase"`
	RedisAddr     string `mapstructure:"redisAddr"`
}

// JudgeConfig configures the Judge0 client. An empty URL disables judging.
type JudgeConfig struct {
	URL               string        `mapstructure:"url"`
	APIKey            string        `mapstructure:"apiKey"`
	APIHost           string        `mapstructure:"apiHost"`
	DefaultLanguageID int           `mapstructure:"defaultLanguageId"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"maxRetries"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Game: GameConfig{
			MaxPlayersPerRoom:  10,
			RoomCodeLength:     5,
			MaxHealth:          100,
			ProblemDeadline:    10 * time.Second,
			TimeoutPenalty:     30,
			TimeoutResumeDelay: 3 * time.Second,
			SolveResumeDelay:   3 * time.Second,
			ProblemsFile:       "problems.json",
		},
		Storage: StorageConfig{
			MongoDatabase: "codeduel",
		},
		Judge: JudgeConfig{
			DefaultLanguageID: 71, // Python 3
			Timeout:           30 * time.Second,
			MaxRetries:        5,
		},
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if c.Game.MaxPlayersPerRoom < 1 {
		return errors.New("maxPlayersPerRoom must be at least 1")
	}
	if c.Game.RoomCodeLength < 4 || c.Game.RoomCodeLength > 10 {
		return errors.New("roomCodeLength must be between 4 and 10")
	}
	if c.Game.MaxHealth < 1 {
		return errors.New("maxHealth must be positive")
	}
	if c.Game.ProblemDeadline < time.Second {
		return errors.New("problemDeadline must be at least 1s")
	}
	if c.Game.TimeoutPenalty < 0 {
		return errors.New("timeoutPenalty must not be negative")
	}
	if c.Game.TimeoutResumeDelay < 0 || c.Game.SolveResumeDelay < 0 {
		return errors.New("resume delays must not be negative")
	}
	if c.Storage.MongoURI != "" && c.Storage.MongoDatabase == "" {
		return errors.New("mongoDatabase must be set when mongoURI is set")
	}
	if c.Judge.URL != "" && c.Judge.MaxRetries < 1 {
		return errors.New("judge maxRetries must be at least 1")
	}
	return nil
}
