package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"codeduel/internal/cache"
	"codeduel/internal/config"
	"codeduel/internal/repository"
	"codeduel/internal/service"
	"codeduel/internal/transport/rest"
	"codeduel/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// App owns every long-lived component of the server
type App struct {
	Config *config.Config

	Mongo *mongo.Client // nil when problems come from a file
	Redis *redis.Client // nil without a redis address

	ProblemRepo  repository.ProblemRepo
	ProblemCache cache.ProblemCache
	Leaderboard  cache.LeaderboardCache

	Hub      *ws.Hub
	Rooms    *service.RoomService
	Rotation *service.RotationService
	Cards    *service.CardService
	Judge    *service.JudgeService
	Problems *service.ProblemService // nil when problems come from a file
}

// New connects the optional stores and wires the game services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Storage.RedisAddr != "" {
		rdb, err := ConnectRedis(ctx, cfg.Storage.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.Redis = rdb
		a.ProblemCache = cache.NewProblemCache(rdb)
		a.Leaderboard = cache.NewLeaderboardCache(rdb)
		log.Println("Connected to Redis")
	}

	var problems service.ProblemSource
	if cfg.Storage.MongoURI != "" {
		client, err := ConnectMongo(ctx, cfg.Storage.MongoURI)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Mongo = client
		a.ProblemRepo = repository.NewProblemRepo(client, cfg.Storage.MongoDatabase)
		a.Problems = service.NewProblemService(a.ProblemRepo, a.ProblemCache)
		problems = a.Problems
		log.Println("Connected to MongoDB")
	} else {
		src, err := service.NewFileProblemSource(cfg.Game.ProblemsFile)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		problems = src
	}

	catalog := service.NewCatalog()
	a.Hub = ws.NewHub()
	a.Rooms = service.NewRoomService(service.RoomOptions{
		MaxPlayers: cfg.Game.MaxPlayersPerRoom,
		CodeLength: cfg.Game.RoomCodeLength,
		MaxHealth:  cfg.Game.MaxHealth,
	})
	a.Rotation = service.NewRotationService(a.Rooms, problems, catalog, service.DefaultRand, service.RotationOptions{
		Deadline:           cfg.Game.ProblemDeadline,
		TimeoutPenalty:     cfg.Game.TimeoutPenalty,
		TimeoutResumeDelay: cfg.Game.TimeoutResumeDelay,
		SolveResumeDelay:   cfg.Game.SolveResumeDelay,
	})
	a.Cards = service.NewCardService(a.Rooms, catalog, service.DefaultRand, cfg.Game.MaxHealth)

	if a.Leaderboard != nil {
		a.Rotation.SetScoreboard(a.Leaderboard)
	}

	if cfg.Judge.URL != "" {
		client := service.NewJudgeClient(service.JudgeOptions{
			URL:               cfg.Judge.URL,
			APIKey:            cfg.Judge.APIKey,
			APIHost:           cfg.Judge.APIHost,
			Timeout:           cfg.Judge.Timeout,
			MaxRetries:        cfg.Judge.MaxRetries,
			DefaultLanguageID: cfg.Judge.DefaultLanguageID,
		})
		a.Judge = service.NewJudgeService(client, cfg.Judge.DefaultLanguageID)
		a.Rotation.SetJudge(a.Judge)
		log.Printf("Judge0 configured at %s", cfg.Judge.URL)
	} else {
		log.Println("Warning: judge URL not set, submitSolution is disabled")
	}

	return a, nil
}

// Container returns the router dependencies
func (a *App) Container() *rest.Container {
	return &rest.Container{
		RoomService:     a.Rooms,
		RotationService: a.Rotation,
		CardService:     a.Cards,
		JudgeService:    a.Judge,
		Leaderboard:     a.Leaderboard,
		Problems:        a.Problems,
		WSHub:           a.Hub,
		Verbose:         a.Config.Server.Verbose,
	}
}

// Shutdown closes every socket, cancels all room timers and disconnects the stores
func (a *App) Shutdown(ctx context.Context) {
	if a.Hub != nil {
		a.Hub.CloseAll()
	}
	if a.Rooms != nil {
		a.Rooms.Shutdown()
	}
	a.Close(ctx)
}

// Close disconnects the stores
func (a *App) Close(ctx context.Context) {
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Printf("Warning: mongo disconnect: %v", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("Warning: redis close: %v", err)
		}
	}
}

// ConnectMongo connects and pings MongoDB
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// ConnectRedis connects and pings Redis. A redis:// prefix is accepted.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimPrefix(addr, "redis://")
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return rdb, nil
}
