package rest

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"codeduel/internal/cache"
	"codeduel/internal/service"
	"codeduel/internal/transport/rest/handler"
	"codeduel/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
)

// Container holds all dependencies for the router
type Container struct {
	RoomService     *service.RoomService
	RotationService *service.RotationService
	CardService     *service.CardService
	JudgeService    *service.JudgeService // nil when no judge is configured
	Leaderboard     cache.LeaderboardCache
	Problems        *service.ProblemService // nil when problems come from a file
	WSHub           *ws.Hub
	Verbose         bool
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.RoomService, c.Leaderboard)
	cardHandler := handler.NewCardHandler(c.CardService)
	judgeHandler := handler.NewJudgeHandler(c.JudgeService)
	wsHandler := ws.NewHandler(c.WSHub, c.RoomService, c.RotationService, c.CardService, c.Verbose)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Game socket
	r.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, r, c)
	}).Methods("GET")

	// API docs
	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/rooms", roomHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")
	v1.HandleFunc("/cards", cardHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/judge/submit", judgeHandler.Submit).Methods("POST", "OPTIONS")

	return r
}

func writeHealth(w http.ResponseWriter, r *http.Request, c *Container) {
	body := map[string]interface{}{
		"status":      "ok",
		"connections": c.WSHub.Count(),
		"rooms":       c.RoomService.RoomCount(),
	}
	if c.Problems != nil {
		if size, err := c.Problems.PoolSize(r.Context()); err != nil {
			log.Printf("[Health] problem pool unavailable: %v", err)
			body["problemPool"] = -1
		} else {
			body["problemPool"] = size
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
