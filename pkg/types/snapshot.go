package types

// Identity is the logged-in user as the server knows it. Replaced wholesale on
// login, never mutated.
type Identity struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"isAdmin"`
	GamesPlayed int    `json:"gamesPlayed"`
	GamesWon    int    `json:"gamesWon"`
}

type GamePhase string

const (
	PhaseWaiting       GamePhase = "waiting"
	PhasePlaying       GamePhase = "playing"
	PhaseRoundFinished GamePhase = "round-finished"
	PhaseMatchFinished GamePhase = "match-finished"
)

type Card struct {
	ID    string `json:"id"`
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

type Player struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Team      int    `json:"team"`
	Hand      []Card `json:"hand,omitempty"` // own hand only; others carry handCount
	HandCount int    `json:"handCount"`
	Connected bool   `json:"connected"`
}

// Meld is one laid-down sequence belonging to a team. Legality (wildcards,
// canastra status) is the server's call; the client just renders it.
type Meld struct {
	ID         int    `json:"id"`
	Cards      []Card `json:"cards"`
	IsCanastra bool   `json:"isCanastra"`
}

type TeamState struct {
	Number     int    `json:"number"`
	Melds      []Meld `json:"melds"`
	RoundScore int    `json:"roundScore"`
	MatchScore int    `json:"matchScore"`
	TookMorto  bool   `json:"tookMorto"`
}

type TurnState struct {
	PlayerIndex  int      `json:"playerIndex"`
	HasDrawn     bool     `json:"hasDrawn"`
	HasDiscarded bool     `json:"hasDiscarded"`
	DrawnCardIDs []string `json:"drawnCardIds,omitempty"`
}

// GameSnapshot is the authoritative, server-pushed state of one game. Every
// update is a full replacement; the client never patches one locally.
type GameSnapshot struct {
	GameID      string      `json:"gameId"`
	Phase       GamePhase   `json:"phase"`
	Players     []Player    `json:"players"`
	Teams       []TeamState `json:"teams"`
	DeckCount   int         `json:"deckCount"`
	DiscardPile []Card      `json:"discardPile"`
	Turn        TurnState   `json:"turn"`
	MortoCount  int         `json:"mortoCount"`
	Round       int         `json:"round"`
}

type ChatRoom string

const (
	RoomLobby ChatRoom = "lobby"
	RoomGame  ChatRoom = "game"
)

type ChatMessage struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
	Room      ChatRoom `json:"room"`
	GameID    string   `json:"gameId,omitempty"`
}

// ChatHistory replays the retained tail of a room's messages after (re)join.
type ChatHistory struct {
	Room     ChatRoom      `json:"room"`
	GameID   string        `json:"gameId,omitempty"`
	Messages []ChatMessage `json:"messages"`
}

type LobbyChatRequest struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

type GameChatRequest struct {
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}
