// Package actions turns user intents into outbound protocol messages. No
// legality checks live here — the server is the oracle, and the only feedback
// is a later game-state-update or action-error on the bus.
package actions

import (
	"encoding/json"
	"fmt"

	"github.com/mfagundes/tranca-client/pkg/types"
)

// Sender is the outbound half of the connection manager.
type Sender interface {
	Send(event string, data any) error
}

type Dispatcher struct {
	send Sender
}

func NewDispatcher(s Sender) *Dispatcher {
	return &Dispatcher{send: s}
}

func (d *Dispatcher) gameAction(t types.ActionType, data any) error {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("actions: marshal %s: %w", t, err)
		}
		raw = b
	}
	return d.send.Send(types.EvGameAction, types.GameAction{Type: t, Data: raw})
}

// Draw takes from the deck or the discard pile. SelectedCardIDs only matters
// for discard-pile draws where the server asks which cards justify the take.
func (d *Dispatcher) Draw(source types.DrawSource, selectedCardIDs []string) error {
	return d.gameAction(types.ActionDraw, types.DrawAction{
		Source:          source,
		SelectedCardIDs: selectedCardIDs,
	})
}

// Baixar lays down groups of hand cards as new melds.
func (d *Dispatcher) Baixar(groups [][]int) error {
	return d.gameAction(types.ActionBaixar, types.BaixarAction{Groups: groups})
}

func (d *Dispatcher) Discard(cardIndex int, cheat bool) error {
	return d.gameAction(types.ActionDiscard, types.DiscardAction{
		CardIndex: cardIndex,
		Cheat:     cheat,
	})
}

// Bater goes out. mortoChoice is nil unless a prior attempt came back with a
// choice of Mortos in the action-error data.
func (d *Dispatcher) Bater(mortoChoice *int) error {
	return d.gameAction(types.ActionBater, types.BaterAction{MortoChoice: mortoChoice})
}

func (d *Dispatcher) AddToSequence(sequenceID int, cardIndices []int) error {
	return d.gameAction(types.ActionAddToSequence, types.AddToSequenceAction{
		SequenceID:  sequenceID,
		CardIndices: cardIndices,
	})
}

func (d *Dispatcher) ReplaceWildcard(sequenceID, wildcardIndex, replacementIndex int) error {
	return d.gameAction(types.ActionReplaceWildcard, types.ReplaceWildcardAction{
		SequenceID:       sequenceID,
		WildcardIndex:    wildcardIndex,
		ReplacementIndex: replacementIndex,
	})
}

func (d *Dispatcher) EndTurn(cheat bool) error {
	return d.gameAction(types.ActionEndTurn, types.EndTurnAction{Cheat: cheat})
}

// PickCard answers a server-side choice, e.g. which drawn card to keep.
func (d *Dispatcher) PickCard(cardID string) error {
	return d.gameAction(types.ActionPickCard, types.PickCardAction{CardID: cardID})
}

func (d *Dispatcher) SendCheatCode(code string) error {
	return d.gameAction(types.ActionCheat, types.CheatAction{Code: code})
}

func (d *Dispatcher) CreateGame() error {
	return d.send.Send(types.EvCreateGame, nil)
}

func (d *Dispatcher) JoinGame(gameID string) error {
	return d.send.Send(types.EvJoinGame, types.JoinGameRequest{GameID: gameID})
}

func (d *Dispatcher) LeaveGame() error {
	return d.send.Send(types.EvLeaveGame, nil)
}

func (d *Dispatcher) StartGame() error {
	return d.send.Send(types.EvStartGame, nil)
}

func (d *Dispatcher) SwitchTeam(teamNumber int) error {
	return d.send.Send(types.EvSwitchTeam, types.SwitchTeamRequest{TeamNumber: teamNumber})
}

func (d *Dispatcher) JoinLobby(username string) error {
	return d.send.Send(types.EvJoinLobby, types.JoinLobbyRequest{Username: username})
}

func (d *Dispatcher) LeaveLobby() error {
	return d.send.Send(types.EvLeaveLobby, nil)
}

// RequestActiveGames asks for the lobby's game list; the reply arrives as a
// game-list-updated event.
func (d *Dispatcher) RequestActiveGames() error {
	return d.send.Send(types.EvGetActiveGames, nil)
}

func (d *Dispatcher) SendLobbyChat(username, text string) error {
	return d.send.Send(types.EvChatLobby, types.LobbyChatRequest{Username: username, Text: text})
}

func (d *Dispatcher) SendGameChat(gameID, message string) error {
	return d.send.Send(types.EvChatGame, types.GameChatRequest{GameID: gameID, Message: message})
}
