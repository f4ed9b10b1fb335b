// Package session caches the last-known authoritative state so late-joining
// consumers can read it synchronously instead of waiting for the next push.
// Only the connection manager writes here; everyone else reads.
package session

import (
	"sync"

	"github.com/mfagundes/tranca-client/pkg/types"
)

// ChatRetention bounds per-room chat history to the most recent N messages.
const ChatRetention = 100

// Session is the client-local connectivity record. It is an immutable value:
// every change replaces it wholesale.
type Session struct {
	User              *types.Identity
	Status            types.ConnectionStatus
	ReconnectAttempts int
}

type Cache struct {
	mu   sync.RWMutex
	sess Session
	game *types.GameSnapshot
	chat map[types.ChatRoom][]types.ChatMessage
}

func NewCache() *Cache {
	return &Cache{
		sess: Session{Status: types.StatusDisconnected},
		chat: make(map[types.ChatRoom][]types.ChatMessage),
	}
}

func (c *Cache) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

func (c *Cache) CurrentUser() *types.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.User
}

func (c *Cache) ConnectionStatus() types.ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.Status
}

func (c *Cache) IsConnected() bool {
	return c.ConnectionStatus() == types.StatusConnected
}

// CurrentGameState returns the cached snapshot, or nil when not in a game.
func (c *Cache) CurrentGameState() *types.GameSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.game
}

func (c *Cache) SetStatus(status types.ConnectionStatus, attempts int) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = Session{User: c.sess.User, Status: status, ReconnectAttempts: attempts}
	return c.sess
}

func (c *Cache) SetUser(u *types.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = Session{User: u, Status: c.sess.Status, ReconnectAttempts: c.sess.ReconnectAttempts}
}

// ReplaceGameState swaps in a new authoritative snapshot. Replace, never
// merge: nothing of the previous snapshot survives.
func (c *Cache) ReplaceGameState(g *types.GameSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.game = g
}

// ClearGameState drops the snapshot, e.g. on leave-game.
func (c *Cache) ClearGameState() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.game = nil
}

// Clear resets everything to the logged-out baseline. Used on explicit logout
// and on forced session termination.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = Session{Status: types.StatusDisconnected}
	c.game = nil
	c.chat = make(map[types.ChatRoom][]types.ChatMessage)
}

func (c *Cache) AppendChat(m types.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := append(c.chat[m.Room], m)
	if len(msgs) > ChatRetention {
		msgs = msgs[len(msgs)-ChatRetention:]
	}
	c.chat[m.Room] = msgs
}

// SetChatHistory replaces a room's log with the server's replay.
func (c *Cache) SetChatHistory(room types.ChatRoom, msgs []types.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(msgs) > ChatRetention {
		msgs = msgs[len(msgs)-ChatRetention:]
	}
	c.chat[room] = append([]types.ChatMessage(nil), msgs...)
}

func (c *Cache) ChatHistory(room types.ChatRoom) []types.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.ChatMessage, len(c.chat[room]))
	copy(out, c.chat[room])
	return out
}
