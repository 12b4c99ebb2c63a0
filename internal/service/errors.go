package service

import (
	"errors"
	"fmt"

	"codeduel/internal/model"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrDuplicateIdentity = errors.New("player id or name already in room")
	ErrNotHost           = errors.New("only the host can start the game")
	ErrInvalidRoomState  = errors.New("invalid room state")
	ErrRegistryRace      = errors.New("registry insert lost a race")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNoProblem         = errors.New("no problem is active")
	ErrSubmissionBlocked = errors.New("submissions are blocked")
	ErrNoTestCases       = errors.New("problem has no judge cases")
)

// Failure codes carried in joinFailed replies
const (
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	CodeNotHost           = "NOT_HOST"
	CodeInvalidRoomState  = "INVALID_ROOM_STATE"
	CodeRetry             = "RETRY"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInternal          = "INTERNAL"
)

// StateError reports the state a room was in when an operation needed another
type StateError struct {
	State model.RoomState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("game is already %s", e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidRoomState
}

// FailureReply maps a registry error to the human reason and machine code sent to
// the client. create selects the retry wording for a failed CreateRoom.
func FailureReply(err error, create bool) (reason, code string) {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrPlayerNotFound):
		return "Room not found.", CodeRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return "Room is full.", CodeRoomFull
	case errors.Is(err, ErrDuplicateIdentity):
		return "Player ID or name already in room.", CodeDuplicateIdentity
	case errors.Is(err, ErrNotHost):
		return "Only the host can start the game.", CodeNotHost
	case errors.Is(err, ErrInvalidRoomState):
		state := model.RoomStateInProgress
		var se *StateError
		if errors.As(err, &se) {
			state = se.State
		}
		return fmt.Sprintf("Game is already %s.", state), CodeInvalidRoomState
	case errors.Is(err, ErrRegistryRace):
		if create {
			return "Failed to create room. Please try again.", CodeRetry
		}
		return "Failed to add player. Please try again.", CodeRetry
	default:
		return "Something went wrong.", CodeInternal
	}
}
