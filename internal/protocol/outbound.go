package protocol

import (
	"codeduel/internal/model"
)

// Outbound message types
const (
	TypeRoomCreated       = "roomCreated"
	TypeJoinSuccess       = "joinSuccess"
	TypeJoinFailed        = "joinFailed"
	TypePlayerJoinedLobby = "playerJoinedLobby"
	TypePlayerLeftLobby   = "playerLeftLobby"
	TypeGameStarted       = "gameStarted"
	TypeNewProblem        = "newProblem"
	TypeProblemTimeout    = "problemTimeout"
	TypePlayerHpUpdate    = "playerHpUpdate"
	TypeCardAwarded       = "cardAwarded"
	TypeProblemSolvedBy   = "problemSolved"
	TypeSubmissionResult  = "submissionResult"

	// card effects
	TypeDamage         = "damage"
	TypeVibeCode       = "vibeCode"
	TypeHeal           = "heal"
	TypeDefend         = "defend"
	TypeBlock          = "block"
	TypeCompilerAttack = "compilerAttack"
	TypeSyntaxScramble = "syntaxScramble"
	TypeLeak           = "leak"
)

// RoomCreatedPayload is sent only to the creator
type RoomCreatedPayload struct {
	RoomCode     string `json:"roomCode"`
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	GameID       string `json:"gameId"`
	HostPlayerID string `json:"hostPlayerId"`
}

// JoinSuccessPayload gives the joiner the full lobby state
type JoinSuccessPayload struct {
	RoomCode       string             `json:"roomCode"`
	PlayerID       string             `json:"playerId"`
	PlayerName     string             `json:"playerName"`
	GameID         string             `json:"gameId"`
	PlayersInLobby []model.PlayerInfo `json:"playersInLobby"`
	HostPlayerID   string             `json:"hostPlayerId"`
}

// JoinFailedPayload is the reply for every rejected request
type JoinFailedPayload struct {
	Reason string `json:"reason"`
	Code   string `json:"code,omitempty"`
}

// LobbyPlayerPayload announces a member entering or leaving
type LobbyPlayerPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// GameStartedPayload carries the roster at start time
type GameStartedPayload struct {
	PlayersInGame []model.PlayerInfo `json:"playersInGame"`
}

// NewProblemPayload is the problem broadcast at the start of a round
type NewProblemPayload struct {
	Round             int              `json:"round"`
	DeadlineSeconds   int              `json:"deadlineSeconds"`
	Title             string           `json:"title"`
	Statement         string           `json:"statement"`
	InputDescription  string           `json:"inputDescription"`
	OutputDescription string           `json:"outputDescription"`
	Constraints       string           `json:"constraints"`
	TestCases         []model.TestCase `json:"testCases"`
}

// ProblemTimeoutPayload marks the end of an unsolved round
type ProblemTimeoutPayload struct {
	Round   int `json:"round"`
	Penalty int `json:"penalty"`
}

// HpUpdatePayload is the authoritative health of one player
type HpUpdatePayload struct {
	PlayerID string `json:"playerId"`
	HP       int    `json:"hp"`
}

// CardAwardedPayload is sent privately to the solver
type CardAwardedPayload struct {
	CardName    string       `json:"cardName"`
	Rarity      model.Rarity `json:"rarity"`
	Description string       `json:"description"`
}

// ProblemSolvedPayload tells the room who closed the round
type ProblemSolvedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Round      int    `json:"round"`
}

// DamagePayload is sent for Attack and VibeCode
type DamagePayload struct {
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
	Damage         int    `json:"damage"`
	Absorbed       int    `json:"absorbed"`
	HP             int    `json:"hp"`
	CardName       string `json:"cardName"`
}

// HealPayload is sent for Heal
type HealPayload struct {
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
	Amount         int    `json:"amount"`
	HP             int    `json:"hp"`
	CardName       string `json:"cardName"`
}

// SignalPayload is sent for effects without health impact
type SignalPayload struct {
	PlayerID        string `json:"playerId"`
	TargetPlayerID  string `json:"targetPlayerId"`
	CardName        string `json:"cardName"`
	Shield          int    `json:"shield,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// LeakPayload reveals metadata of the problem queued after the current one
type LeakPayload struct {
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
	CardName       string `json:"cardName"`
	Title          string `json:"title,omitempty"`
	Constraints    string `json:"constraints,omitempty"`
	TestCaseCount  int    `json:"testCaseCount"`
}

func RoomCreated(roomCode, playerID, playerName, gameID, hostID string) Outbound {
	return Outbound{Type: TypeRoomCreated, Payload: RoomCreatedPayload{
		RoomCode:     roomCode,
		PlayerID:     playerID,
		PlayerName:   playerName,
		GameID:       gameID,
		HostPlayerID: hostID,
	}}
}

func JoinSuccess(roomCode, playerID, playerName, gameID, hostID string, others []model.PlayerInfo) Outbound {
	if others == nil {
		others = []model.PlayerInfo{}
	}
	return Outbound{Type: TypeJoinSuccess, Payload: JoinSuccessPayload{
		RoomCode:       roomCode,
		PlayerID:       playerID,
		PlayerName:     playerName,
		GameID:         gameID,
		PlayersInLobby: others,
		HostPlayerID:   hostID,
	}}
}

func JoinFailed(reason, code string) Outbound {
	return Outbound{Type: TypeJoinFailed, Payload: JoinFailedPayload{Reason: reason, Code: code}}
}

func PlayerJoinedLobby(playerID, playerName string) Outbound {
	return Outbound{Type: TypePlayerJoinedLobby, Payload: LobbyPlayerPayload{PlayerID: playerID, PlayerName: playerName}}
}

func PlayerLeftLobby(playerID, playerName string) Outbound {
	return Outbound{Type: TypePlayerLeftLobby, Payload: LobbyPlayerPayload{PlayerID: playerID, PlayerName: playerName}}
}

func GameStarted(players []model.PlayerInfo) Outbound {
	return Outbound{Type: TypeGameStarted, Payload: GameStartedPayload{PlayersInGame: players}}
}

// NewProblem substitutes defaults for any empty text field of p
func NewProblem(p model.Problem, round, deadlineSeconds int) Outbound {
	p = p.WithDefaults()
	return Outbound{Type: TypeNewProblem, Payload: NewProblemPayload{
		Round:             round,
		DeadlineSeconds:   deadlineSeconds,
		Title:             p.Title,
		Statement:         p.Statement,
		InputDescription:  p.InputDescription,
		OutputDescription: p.OutputDescription,
		Constraints:       p.Constraints,
		TestCases:         p.TestCases,
	}}
}

func ProblemTimeout(round, penalty int) Outbound {
	return Outbound{Type: TypeProblemTimeout, Payload: ProblemTimeoutPayload{Round: round, Penalty: penalty}}
}

func PlayerHpUpdate(playerID string, hp int) Outbound {
	return Outbound{Type: TypePlayerHpUpdate, Payload: HpUpdatePayload{PlayerID: playerID, HP: hp}}
}

func CardAwarded(card model.Card) Outbound {
	return Outbound{Type: TypeCardAwarded, Payload: CardAwardedPayload{
		CardName:    card.Name,
		Rarity:      card.Rarity,
		Description: card.Description,
	}}
}

func ProblemSolvedBy(playerID, playerName string, round int) Outbound {
	return Outbound{Type: TypeProblemSolvedBy, Payload: ProblemSolvedPayload{
		PlayerID:   playerID,
		PlayerName: playerName,
		Round:      round,
	}}
}

func SubmissionResult(result *model.SubmissionResult) Outbound {
	return Outbound{Type: TypeSubmissionResult, Payload: result}
}

// CardEffect wraps an effect payload under the given effect type
func CardEffect(msgType string, payload any) Outbound {
	return Outbound{Type: msgType, Payload: payload}
}
