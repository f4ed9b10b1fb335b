package conn

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mfagundes/tranca-client/pkg/types"
)

// handleInbound translates one server message into cache updates and a bus
// publish. Runs on the loop goroutine; frames from torn-down transports never
// reach here.
func (m *Manager) handleInbound(env types.Envelope) {
	switch env.Event {
	case types.EvGameStateUpdate:
		var snap types.GameSnapshot
		if !m.decode(env, &snap) {
			return
		}
		m.cache.ReplaceGameState(&snap)
		m.bus.Publish(env.Event, &snap)

	case types.EvGameReconnected, types.EvWaitingRoomReconnected:
		var rec types.GameReconnected
		if !m.decode(env, &rec) {
			return
		}
		// Authoritative replay: whatever we cached before the drop is gone.
		snap := rec.GameState
		m.cache.ReplaceGameState(&snap)
		m.bus.Publish(env.Event, &rec)

	case types.EvActionError:
		var ae types.ActionError
		if !m.decode(env, &ae) {
			return
		}
		m.bus.Publish(env.Event, &ae)

	case types.EvGameEnded:
		var ge types.GameEnded
		if !m.decode(env, &ge) {
			return
		}
		m.bus.Publish(env.Event, &ge)

	case types.EvGameCreated:
		var gc types.GameCreated
		if !m.decode(env, &gc) {
			return
		}
		m.bus.Publish(env.Event, &gc)

	case types.EvSessionTerminated:
		var st types.SessionTerminated
		if !m.decode(env, &st) {
			return
		}
		m.handleSessionTerminated(st)

	case types.EvChatMessage:
		var cm types.ChatMessage
		if !m.decode(env, &cm) {
			return
		}
		m.cache.AppendChat(cm)
		m.bus.Publish(env.Event, &cm)

	case types.EvChatHistory:
		var ch types.ChatHistory
		if !m.decode(env, &ch) {
			return
		}
		m.cache.SetChatHistory(ch.Room, ch.Messages)
		m.bus.Publish(env.Event, &ch)

	case types.EvGameListUpdated:
		var list []types.GameListing
		if !m.decode(env, &list) {
			return
		}
		m.bus.Publish(env.Event, list)

	case types.EvPlayerDisconnected, types.EvPlayerLeft:
		var pl types.PlayerLeft
		if !m.decode(env, &pl) {
			return
		}
		m.bus.Publish(env.Event, &pl)

	case types.EvError:
		var se types.ServerError
		if !m.decode(env, &se) {
			return
		}
		// Logged and republished; not a status change by itself.
		m.log.Warn("server error", zap.String("message", se.Message))
		m.bus.Publish(env.Event, &se)

	case types.EvAuthenticated:
		// Handshake acks are consumed before the read pump starts; a late one
		// is harmless.

	default:
		m.log.Debug("unhandled event", zap.String("event", env.Event))
	}
}

// handleSessionTerminated is the forced, non-retryable teardown: same identity
// logged in elsewhere, or the server killed the session outright.
func (m *Manager) handleSessionTerminated(st types.SessionTerminated) {
	m.log.Warn("session terminated by server",
		zap.String("reason", st.Reason),
		zap.String("message", st.Message))

	m.stopRetryTimer()
	m.teardownTransport("session terminated")
	m.identity = nil
	m.attempts = 0
	m.cache.Clear()
	m.setStatus(types.StatusDisconnected)
	m.bus.Publish(types.EvSessionTerminated, &st)
}

func (m *Manager) decode(env types.Envelope, into any) bool {
	if err := json.Unmarshal(env.Data, into); err != nil {
		m.log.Warn("bad payload", zap.String("event", env.Event), zap.Error(err))
		return false
	}
	return true
}
