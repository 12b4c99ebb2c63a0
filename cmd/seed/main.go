package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"codeduel/internal/app"
	"codeduel/internal/cache"
	"codeduel/internal/config"
	"codeduel/internal/repository"
	"codeduel/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	var (
		configPath string
		drop       bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a problems.json corpus into MongoDB.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return seed(cmd.Context(), cfg, drop, dryRun)
		},
	}

	defaults := config.DefaultConfig()
	fs := cmd.Flags()
	fs.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	fs.StringP("problems", "f", defaults.Game.ProblemsFile, "problem corpus to load")
	fs.String("mongo-uri", "", "MongoDB URI, default mongodb://localhost:27017 (env: CODEDUEL_STORAGE_MONGOURI)")
	fs.String("mongo-database", defaults.Storage.MongoDatabase, "MongoDB database name (env: CODEDUEL_STORAGE_MONGODATABASE)")
	fs.String("redis-addr", "", "Redis address; the problem pool is cleared after seeding (env: CODEDUEL_STORAGE_REDISADDR)")
	fs.BoolVar(&drop, "drop", false, "delete existing problems before inserting")
	fs.BoolVar(&dryRun, "dry-run", false, "parse the corpus and report counts without writing")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func seed(ctx context.Context, cfg *config.Config, drop, dryRun bool) error {
	data, err := os.ReadFile(cfg.Game.ProblemsFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.Game.ProblemsFile, err)
	}

	problems, stats, err := service.ParseCorpus(data)
	if err != nil {
		return err
	}
	log.Printf("Parsed %d entries: %d playable, %d reverse, %d invalid", stats.Total, stats.Kept, stats.Reverse, stats.Invalid)
	if dryRun {
		return nil
	}
	if len(problems) == 0 {
		return errors.New("no playable problems in corpus")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	uri := cfg.Storage.MongoURI
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := app.ConnectMongo(ctx, uri)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewProblemRepo(client, cfg.Storage.MongoDatabase)
	if drop {
		if err := repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to drop problems: %w", err)
		}
		log.Println("Dropped existing problems")
	} else {
		fresh, err := service.FilterNewProblems(ctx, repo, problems)
		if err != nil {
			return err
		}
		if skipped := len(problems) - len(fresh); skipped > 0 {
			log.Printf("Skipping %d problems already in the collection", skipped)
		}
		problems = fresh
	}

	inserted, err := repo.InsertMany(ctx, problems)
	if err != nil {
		return err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count problems: %w", err)
	}
	log.Printf("Inserted %d problems (%d in collection)", inserted, total)

	if cfg.Storage.RedisAddr != "" {
		rdb, err := app.ConnectRedis(ctx, cfg.Storage.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		if err := cache.NewProblemCache(rdb).Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear problem pool: %w", err)
		}
		log.Println("Cleared problem pool")
	}
	return nil
}
