package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "codeduel/docs"
	"codeduel/internal/app"
	"codeduel/internal/config"
	"codeduel/internal/transport/rest"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const releaseVersion = "1.0.0"

// @title Code Duel API
// @version 1.0
// @description Real-time competitive coding game server
// @host localhost:8080
// @BasePath /v1
func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "codeduel",
		Short:   "Real-time competitive coding game server.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := config.DefaultConfig()
	fs.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	fs.StringP("host", "b", defaults.Server.Host, "address to bind to (env: CODEDUEL_SERVER_HOST)")
	fs.IntP("port", "p", defaults.Server.Port, "port to listen on (env: CODEDUEL_SERVER_PORT)")
	fs.BoolP("verbose", "v", false, "log every inbound message (env: CODEDUEL_SERVER_VERBOSE)")
	fs.Int("max-players", defaults.Game.MaxPlayersPerRoom, "players allowed per room (env: CODEDUEL_GAME_MAXPLAYERSPERROOM)")
	fs.Duration("deadline", defaults.Game.ProblemDeadline, "time allowed per problem (env: CODEDUEL_GAME_PROBLEMDEADLINE)")
	fs.String("problems", defaults.Game.ProblemsFile, "problem corpus file used without mongo (env: CODEDUEL_GAME_PROBLEMSFILE)")
	fs.String("mongo-uri", "", "MongoDB URI for the problem store (env: CODEDUEL_STORAGE_MONGOURI)")
	fs.String("mongo-database", defaults.Storage.MongoDatabase, "MongoDB database name (env: CODEDUEL_STORAGE_MONGODATABASE)")
	fs.String("redis-addr", "", "Redis address for the problem pool and leaderboard (env: CODEDUEL_STORAGE_REDISADDR)")
	fs.String("judge-url", "", "Judge0 base URL (env: CODEDUEL_JUDGE_URL)")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("codeduel v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           rest.NewRouter(a.Container()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Addr())
		log.Println("Endpoints:")
		log.Println("  WS   /ws")
		log.Println("  GET  /health")
		log.Println("  GET  /v1/rooms")
		log.Println("  GET  /v1/rooms/{code}/leaderboard")
		log.Println("  GET  /v1/cards")
		log.Println("  POST /v1/judge/submit")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			a.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	a.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
