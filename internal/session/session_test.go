package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfagundes/tranca-client/pkg/types"
)

func TestSnapshotReplaceNotMerge(t *testing.T) {
	c := NewCache()

	a := &types.GameSnapshot{
		GameID:    "g1",
		Phase:     types.PhasePlaying,
		DeckCount: 80,
		Turn:      types.TurnState{PlayerIndex: 2, HasDrawn: true, DrawnCardIDs: []string{"c9"}},
		DiscardPile: []types.Card{
			{ID: "c1", Suit: "hearts", Value: "7"},
		},
	}
	c.ReplaceGameState(a)

	// B omits fields A had. None of A may shine through.
	b := &types.GameSnapshot{GameID: "g1", Phase: types.PhaseRoundFinished, DeckCount: 54}
	c.ReplaceGameState(b)

	got := c.CurrentGameState()
	require.NotNil(t, got)
	assert.Equal(t, types.PhaseRoundFinished, got.Phase)
	assert.Equal(t, 54, got.DeckCount)
	assert.Empty(t, got.DiscardPile)
	assert.False(t, got.Turn.HasDrawn)
	assert.Empty(t, got.Turn.DrawnCardIDs)
}

func TestClearResetsToLoggedOutBaseline(t *testing.T) {
	c := NewCache()
	c.SetUser(&types.Identity{ID: 1, Username: "alice"})
	c.SetStatus(types.StatusConnected, 0)
	c.ReplaceGameState(&types.GameSnapshot{GameID: "g1"})
	c.AppendChat(types.ChatMessage{ID: "m1", Room: types.RoomLobby, Text: "oi"})

	c.Clear()

	assert.Nil(t, c.CurrentUser())
	assert.Nil(t, c.CurrentGameState())
	assert.False(t, c.IsConnected())
	assert.Equal(t, types.StatusDisconnected, c.ConnectionStatus())
	assert.Empty(t, c.ChatHistory(types.RoomLobby))
}

func TestSetStatusKeepsUser(t *testing.T) {
	c := NewCache()
	c.SetUser(&types.Identity{ID: 7, Username: "bob"})

	sess := c.SetStatus(types.StatusConnecting, 2)
	assert.Equal(t, types.StatusConnecting, sess.Status)
	assert.Equal(t, 2, sess.ReconnectAttempts)
	require.NotNil(t, sess.User)
	assert.Equal(t, "bob", sess.User.Username)
}

func TestChatRetentionCap(t *testing.T) {
	c := NewCache()
	for i := 0; i < ChatRetention+25; i++ {
		c.AppendChat(types.ChatMessage{
			ID:   fmt.Sprintf("m%d", i),
			Room: types.RoomGame,
			Text: "spam",
		})
	}

	got := c.ChatHistory(types.RoomGame)
	require.Len(t, got, ChatRetention)
	// Oldest dropped, newest kept.
	assert.Equal(t, "m25", got[0].ID)
	assert.Equal(t, fmt.Sprintf("m%d", ChatRetention+24), got[len(got)-1].ID)
}

func TestChatRoomsAreIndependent(t *testing.T) {
	c := NewCache()
	c.AppendChat(types.ChatMessage{ID: "l1", Room: types.RoomLobby})
	c.AppendChat(types.ChatMessage{ID: "g1", Room: types.RoomGame})

	assert.Len(t, c.ChatHistory(types.RoomLobby), 1)
	assert.Len(t, c.ChatHistory(types.RoomGame), 1)
}

func TestSetChatHistoryReplacesLog(t *testing.T) {
	c := NewCache()
	c.AppendChat(types.ChatMessage{ID: "old", Room: types.RoomLobby})

	c.SetChatHistory(types.RoomLobby, []types.ChatMessage{
		{ID: "h1", Room: types.RoomLobby},
		{ID: "h2", Room: types.RoomLobby},
	})

	got := c.ChatHistory(types.RoomLobby)
	require.Len(t, got, 2)
	assert.Equal(t, "h1", got[0].ID)
}
