package types

import "encoding/json"

// Event names, client -> server.
const (
	EvAuthenticate   = "authenticate"
	EvCreateGame     = "create-game"
	EvJoinGame       = "join-game"
	EvLeaveGame      = "leave-game"
	EvStartGame      = "start-game"
	EvSwitchTeam     = "switch-team"
	EvGameAction     = "game-action"
	EvJoinLobby      = "join-lobby"
	EvLeaveLobby     = "leave-lobby"
	EvGetActiveGames = "get-active-games"
	EvChatLobby      = "chat:lobby"
	EvChatGame       = "chat:game"
)

// Event names, server -> client.
const (
	EvAuthenticated          = "authenticated"
	EvGameCreated            = "game-created"
	EvGameStateUpdate        = "game-state-update"
	EvActionError            = "action-error"
	EvGameEnded              = "game-ended"
	EvGameReconnected        = "game-reconnected"
	EvWaitingRoomReconnected = "waiting-room-reconnected"
	EvSessionTerminated      = "session-terminated"
	EvChatMessage            = "chat:message"
	EvChatHistory            = "chat:history"
	EvGameListUpdated        = "game-list-updated"
	EvPlayerDisconnected     = "player-disconnected"
	EvPlayerLeft             = "player-left"
	EvError                  = "error"
)

// Client-local events, never sent on the wire.
const (
	EvConnectionStatusChanged = "connection-status-changed"
)

// Envelope frames every wire message as {event, data}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
)

// StatusChange is the payload of connection-status-changed.
type StatusChange struct {
	Status   ConnectionStatus `json:"status"`
	Attempts int              `json:"attempts"`
}

type AuthenticateRequest struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
}

type AuthenticatedReply struct {
	Success bool `json:"success"`
}

type GameCreated struct {
	GameID string `json:"gameId"`
}

type JoinGameRequest struct {
	GameID string `json:"gameId"`
}

type SwitchTeamRequest struct {
	TeamNumber int `json:"teamNumber"`
}

type JoinLobbyRequest struct {
	Username string `json:"username,omitempty"`
}

// ActionError rejects the most recent game-action. Data is present when the
// server needs a follow-up choice from the client (e.g. pick-card).
type ActionError struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type GameEnded struct {
	Winner int            `json:"winner"`
	Scores map[string]int `json:"scores"`
}

// GameReconnected / WaitingRoomReconnected share this shape: the post-replay
// snapshot fully replaces whatever the client cached before the drop.
type GameReconnected struct {
	GameID    string       `json:"gameId"`
	GameState GameSnapshot `json:"gameState"`
}

type SessionTerminated struct {
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type GameListing struct {
	ID          string   `json:"id"`
	PlayerCount int      `json:"playerCount"`
	Status      string   `json:"status"`
	Players     []string `json:"players"`
}

type PlayerLeft struct {
	PlayerID int    `json:"playerId,omitempty"`
	Username string `json:"username,omitempty"`
}

// ServerError is the generic error event: logged and republished, never a
// status change by itself.
type ServerError struct {
	Message string `json:"message"`
}
