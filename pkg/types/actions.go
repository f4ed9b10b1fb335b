package types

import "encoding/json"

type ActionType string

const (
	ActionDraw            ActionType = "draw"
	ActionBaixar          ActionType = "baixar"
	ActionDiscard         ActionType = "discard"
	ActionBater           ActionType = "bater"
	ActionEndTurn         ActionType = "end-turn"
	ActionAddToSequence   ActionType = "add-to-sequence"
	ActionReplaceWildcard ActionType = "replace-wildcard"
	ActionPickCard        ActionType = "pick-card"
	ActionCheat           ActionType = "cheat"
)

// GameAction wraps one intent for the game-action wire event. The server owns
// every legality check; the client fills in Data and hopes.
type GameAction struct {
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type DrawSource string

const (
	DrawFromDeck    DrawSource = "deck"
	DrawFromDiscard DrawSource = "discard"
)

type DrawAction struct {
	Source          DrawSource `json:"source"`
	SelectedCardIDs []string   `json:"selectedCardIds,omitempty"`
}

// BaixarAction lays down one or more groups of hand cards, by index.
type BaixarAction struct {
	Groups [][]int `json:"groups"`
}

type DiscardAction struct {
	CardIndex int  `json:"cardIndex"`
	Cheat     bool `json:"cheat,omitempty"`
}

// BaterAction goes out. MortoChoice is only set when the server previously
// rejected a plain bater with a choice among available Mortos.
type BaterAction struct {
	MortoChoice *int `json:"mortoChoice,omitempty"`
}

type AddToSequenceAction struct {
	SequenceID  int   `json:"sequenceId"`
	CardIndices []int `json:"cardIndices"`
}

type ReplaceWildcardAction struct {
	SequenceID       int `json:"sequenceId"`
	WildcardIndex    int `json:"wildcardIndex"`
	ReplacementIndex int `json:"replacementIndex"`
}

type EndTurnAction struct {
	Cheat bool `json:"cheat,omitempty"`
}

type PickCardAction struct {
	CardID string `json:"cardId"`
}

type CheatAction struct {
	Code string `json:"code"`
}
