package model

import "time"

// RoomState is the lifecycle state of a room
type RoomState string

const (
	RoomStateLobby      RoomState = "Lobby"
	RoomStateInProgress RoomState = "InProgress"
)

// PlayerInfo is the public view of a room member
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerStatus is a member view including health, used by the room listing
type PlayerStatus struct {
	PlayerInfo
	HP int `json:"hp"`
}

// RoomSummary is a read-only snapshot of a live room
type RoomSummary struct {
	Code         string         `json:"code"`
	GameID       string         `json:"gameId"`
	HostPlayerID string         `json:"hostPlayerId"`
	State        RoomState      `json:"state"`
	Round        int            `json:"round"`
	Players      []PlayerStatus `json:"players"`
	CreatedAt    time.Time      `json:"createdAt"`
}
