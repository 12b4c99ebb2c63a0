package handler

import (
	"net/http"
	"strconv"
	"strings"

	"codeduel/internal/cache"
	"codeduel/internal/service"

	"github.com/gorilla/mux"
)

// RoomHandler exposes read-only views of the live rooms
type RoomHandler struct {
	roomSvc     *service.RoomService
	leaderboard cache.LeaderboardCache
}

// NewRoomHandler creates a new room handler. leaderboard may be nil.
func NewRoomHandler(roomSvc *service.RoomService, leaderboard cache.LeaderboardCache) *RoomHandler {
	return &RoomHandler{
		roomSvc:     roomSvc,
		leaderboard: leaderboard,
	}
}

// List handles GET /v1/rooms
// @Summary List live rooms
// @Produce json
// @Success 200 {array} model.RoomSummary
// @Router /rooms [get]
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.roomSvc.Rooms())
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
// @Summary Solve counts of the game running in a room
// @Produce json
// @Param code path string true "Room code"
// @Param limit query int false "Max entries" default(10)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /rooms/{code}/leaderboard [get]
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard is not configured")
		return
	}

	code := strings.ToUpper(mux.Vars(r)["code"])
	room := h.roomSvc.Room(code)
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.Top(r.Context(), room.GameID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roomCode": room.Code,
		"gameId":   room.GameID,
		"entries":  entries,
	})
}
