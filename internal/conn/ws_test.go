package conn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfagundes/tranca-client/internal/actions"
	"github.com/mfagundes/tranca-client/internal/bus"
	"github.com/mfagundes/tranca-client/internal/session"
	"github.com/mfagundes/tranca-client/pkg/types"
)

// miniGameServer is just enough server to exercise the real websocket
// transport end to end: it authenticates anyone and answers a couple of
// intents with canned pushes.
func miniGameServer() http.HandlerFunc {
	write := func(ctx context.Context, conn *websocket.Conn, event string, payload any) {
		data, _ := json.Marshal(payload)
		msg, _ := json.Marshal(types.Envelope{Event: event, Data: data})
		wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		_ = conn.Write(wctx, websocket.MessageText, msg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ctx := r.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var env types.Envelope
			if json.Unmarshal(data, &env) != nil {
				continue
			}

			switch env.Event {
			case types.EvAuthenticate:
				write(ctx, conn, types.EvAuthenticated, types.AuthenticatedReply{Success: true})

			case types.EvJoinGame:
				var req types.JoinGameRequest
				_ = json.Unmarshal(env.Data, &req)
				write(ctx, conn, types.EvGameStateUpdate, types.GameSnapshot{
					GameID:    req.GameID,
					Phase:     types.PhaseWaiting,
					DeckCount: 86,
				})

			case types.EvChatLobby:
				var req types.LobbyChatRequest
				_ = json.Unmarshal(env.Data, &req)
				write(ctx, conn, types.EvChatMessage, types.ChatMessage{
					ID:       "m1",
					Username: req.Username,
					Text:     req.Text,
					Room:     types.RoomLobby,
				})
			}
		}
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/ws", miniGameServer())
	srv := httptest.NewServer(r)
	defer srv.Close()

	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	b := bus.New(zap.NewNop())
	cache := session.NewCache()
	mgr := NewManager(context.Background(), endpoint, b, cache, zap.NewNop())
	defer mgr.Close()

	snapshots := make(chan *types.GameSnapshot, 4)
	b.Subscribe(types.EvGameStateUpdate, func(p any) {
		snapshots <- p.(*types.GameSnapshot)
	})
	chats := make(chan *types.ChatMessage, 4)
	b.Subscribe(types.EvChatMessage, func(p any) {
		chats <- p.(*types.ChatMessage)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, mgr.Connect(ctx, types.Identity{ID: 1, Username: "alice"}))
	assert.True(t, cache.IsConnected())

	d := actions.NewDispatcher(mgr)
	require.NoError(t, d.JoinGame("g42"))

	select {
	case snap := <-snapshots:
		assert.Equal(t, "g42", snap.GameID)
		assert.Equal(t, types.PhaseWaiting, snap.Phase)
		assert.Equal(t, 86, snap.DeckCount)
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot after join-game")
	}
	require.NotNil(t, cache.CurrentGameState())
	assert.Equal(t, "g42", cache.CurrentGameState().GameID)

	require.NoError(t, d.SendLobbyChat("alice", "bom jogo"))
	select {
	case cm := <-chats:
		assert.Equal(t, "alice", cm.Username)
		assert.Equal(t, "bom jogo", cm.Text)
	case <-time.After(3 * time.Second):
		t.Fatal("no chat echo")
	}
	assert.Len(t, cache.ChatHistory(types.RoomLobby), 1)
}

func TestWebsocketDialRefused(t *testing.T) {
	b := bus.New(zap.NewNop())
	mgr := NewManager(context.Background(), "ws://127.0.0.1:1/ws", b, session.NewCache(), zap.NewNop(),
		WithHandshakeTimeout(500*time.Millisecond))
	defer mgr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := mgr.Connect(ctx, types.Identity{ID: 1, Username: "alice"})
	assert.Error(t, err)
}
