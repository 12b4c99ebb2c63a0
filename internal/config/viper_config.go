package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CODEDUEL_GAME_MAXHEALTH
const EnvPrefix = "CODEDUEL"

// FlagKeys maps command-line flags to config keys
var FlagKeys = map[string]string{
	"host":           "server.host",
	"port":           "server.port",
	"verbose":        "server.verbose",
	"max-players":    "game.maxPlayersPerRoom",
	"deadline":       "game.problemDeadline",
	"problems":       "game.problemsFile",
	"mongo-uri":      "storage.mongoURI",
	"mongo-database": "storage.mongoDatabase",
	"redis-addr":     "storage.redisAddr",
	"judge-url":      "judge.url",
}

// LoadConfig reads defaults, then the optional YAML file at configPath, then
// CODEDUEL_* environment variables, then any flags changed on the command line.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.verbose", d.Server.Verbose)
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout)

	v.SetDefault("game.maxPlayersPerRoom", d.Game.MaxPlayersPerRoom)
	v.SetDefault("game.roomCodeLength", d.Game.RoomCodeLength)
	v.SetDefault("game.maxHealth", d.Game.MaxHealth)
	v.SetDefault("game.problemDeadline", d.Game.ProblemDeadline)
	v.SetDefault("game.timeoutPenalty", d.Game.TimeoutPenalty)
	v.SetDefault("game.timeoutResumeDelay", d.Game.TimeoutResumeDelay)
	v.SetDefault("game.solveResumeDelay", d.Game.SolveResumeDelay)
	v.SetDefault("game.problemsFile", d.Game.ProblemsFile)

	v.SetDefault("storage.mongoURI", d.Storage.MongoURI)
	v.SetDefault("storage.mongoDatabase", d.Storage.MongoDatabase)
	v.SetDefault("storage.redisAddr", d.Storage.RedisAddr)

	v.SetDefault("judge.url", d.Judge.URL)
	v.SetDefault("judge.apiKey", d.Judge.APIKey)
	v.SetDefault("judge.apiHost", d.Judge.APIHost)
	v.SetDefault("judge.defaultLanguageId", d.Judge.DefaultLanguageID)
	v.SetDefault("judge.timeout", d.Judge.Timeout)
	v.SetDefault("judge.maxRetries", d.Judge.MaxRetries)
}
