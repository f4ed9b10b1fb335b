// Package conn owns the single logical connection to the game server: the
// authenticate handshake, the reconnect schedule, and the translation of wire
// messages into bus events and cache updates.
//
// The manager is an actor. Every mutation of connection state happens on its
// loop goroutine; callers talk to it through typed messages on the inbox.
package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mfagundes/tranca-client/internal/bus"
	"github.com/mfagundes/tranca-client/internal/session"
	"github.com/mfagundes/tranca-client/pkg/types"
)

var (
	ErrClosed            = errors.New("conn: manager closed")
	ErrNotConnected      = errors.New("conn: not connected")
	ErrAuthRejected      = errors.New("conn: authentication rejected")
	ErrHandshakeTimeout  = errors.New("conn: authentication timed out")
	ErrAlreadyConnecting = errors.New("conn: connect already in progress for another identity")
	ErrNoIdentity        = errors.New("conn: no identity to reconnect with")
)

const defaultHandshakeTimeout = 5 * time.Second

type managerMsg interface{ isManagerMsg() }

type connectReq struct {
	identity types.Identity
	reply    chan error
}

type manualReconnectReq struct {
	reply chan error
}

type disconnectReq struct {
	reply chan struct{}
}

type attemptResult struct {
	gen       uint64
	transport Transport
	err       error
}

type inboundFrame struct {
	gen uint64
	env types.Envelope
}

type transportClosed struct {
	gen uint64
	err error
}

type retryFire struct {
	seq uint64
}

// liveTransport wraps the current transport for atomic publication to Send.
type liveTransport struct {
	tr Transport
}

func (connectReq) isManagerMsg()         {}
func (manualReconnectReq) isManagerMsg() {}
func (disconnectReq) isManagerMsg()      {}
func (attemptResult) isManagerMsg()      {}
func (inboundFrame) isManagerMsg()       {}
func (transportClosed) isManagerMsg()    {}
func (retryFire) isManagerMsg()          {}

type Option func(*Manager)

func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dial = d }
}

func WithHandshakeTimeout(d time.Duration) Option {
	return func(m *Manager) { m.handshakeTimeout = d }
}

type Manager struct {
	inbox            chan managerMsg
	bus              *bus.Bus
	cache            *session.Cache
	log              *zap.Logger
	dial             Dialer
	endpoint         string
	handshakeTimeout time.Duration
	ctx              context.Context
	cancel           context.CancelFunc

	// cur mirrors the live transport for Send, which deliberately bypasses
	// the loop so subscribers can dispatch actions from inside a publish.
	cur atomic.Pointer[liveTransport]

	// Everything below is owned by the loop goroutine. Nobody else touches it.
	status    types.ConnectionStatus
	identity  *types.Identity
	transport Transport
	gen       uint64 // current transport generation; stale frames are dropped
	attempts  int    // automatic attempts this disconnect episode
	retryTmr  *time.Timer
	retrySeq  uint64 // identifies the currently scheduled attempt
	pending   []chan error
}

func NewManager(parent context.Context, endpoint string, b *bus.Bus, cache *session.Cache, log *zap.Logger, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(parent)
	m := &Manager{
		inbox:            make(chan managerMsg, 64),
		bus:              b,
		cache:            cache,
		log:              log,
		endpoint:         endpoint,
		handshakeTimeout: defaultHandshakeTimeout,
		ctx:              ctx,
		cancel:           cancel,
		status:           types.StatusDisconnected,
	}
	m.dial = dialWebsocket(log)
	for _, o := range opts {
		o(m)
	}
	go m.loop()
	return m
}

// Connect authenticates identity over a fresh transport. Calling it again
// with the same identity while connected is a successful no-op.
func (m *Manager) Connect(ctx context.Context, id types.Identity) error {
	reply := make(chan error, 1)
	if !m.post(connectReq{identity: id, reply: reply}) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ManualReconnect resets the attempt counter, cancels any scheduled attempt,
// and connects immediately with the last identity.
func (m *Manager) ManualReconnect(ctx context.Context) error {
	reply := make(chan error, 1)
	if !m.post(manualReconnectReq{reply: reply}) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect is the explicit logout: tears down the transport, clears the
// session cache, and cancels any scheduled reconnect. The manager stays
// usable for a later Connect.
func (m *Manager) Disconnect() {
	reply := make(chan struct{}, 1)
	if !m.post(disconnectReq{reply: reply}) {
		return
	}
	<-reply
}

// Close disconnects and stops the loop for good.
func (m *Manager) Close() {
	m.Disconnect()
	m.cancel()
}

// Send serializes one outbound message. Fire-and-forget: the only feedback is
// a later game-state-update or action-error event.
func (m *Manager) Send(event string, data any) error {
	lt := m.cur.Load()
	if lt == nil {
		return ErrNotConnected
	}
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("conn: marshal %s: %w", event, err)
		}
		raw = b
	}
	// Leaving a game invalidates the cached snapshot right away; the server
	// will not push another update for it.
	if event == types.EvLeaveGame {
		m.cache.ClearGameState()
	}
	return lt.tr.Send(types.Envelope{Event: event, Data: raw})
}

func (m *Manager) post(msg managerMsg) bool {
	select {
	case m.inbox <- msg:
		return true
	case <-m.ctx.Done():
		return false
	}
}

func (m *Manager) loop() {
	for {
		select {
		case <-m.ctx.Done():
			m.teardownTransport("shutdown")
			m.stopRetryTimer()
			m.failPending(ErrClosed)
			return

		case msg := <-m.inbox:
			switch v := msg.(type) {
			case connectReq:
				m.handleConnect(v)
			case manualReconnectReq:
				m.handleManualReconnect(v)
			case disconnectReq:
				m.handleDisconnect(v)
			case attemptResult:
				m.handleAttemptResult(v)
			case inboundFrame:
				if v.gen == m.gen {
					m.handleInbound(v.env)
				}
			case transportClosed:
				m.handleTransportClosed(v)
			case retryFire:
				m.handleRetryFire(v)
			}
		}
	}
}

func (m *Manager) handleConnect(req connectReq) {
	switch m.status {
	case types.StatusConnected:
		if m.identity != nil && m.identity.ID == req.identity.ID {
			req.reply <- nil // idempotent connect
			return
		}
		// New identity displaces the live connection.
		m.teardownTransport("superseded")

	case types.StatusConnecting:
		if m.identity != nil && m.identity.ID == req.identity.ID {
			m.pending = append(m.pending, req.reply)
			return
		}
		req.reply <- ErrAlreadyConnecting
		return
	}

	m.stopRetryTimer()
	m.attempts = 0
	id := req.identity
	m.identity = &id
	m.pending = append(m.pending, req.reply)
	m.beginAttempt()
}

func (m *Manager) handleManualReconnect(req manualReconnectReq) {
	if m.identity == nil {
		req.reply <- ErrNoIdentity
		return
	}
	m.stopRetryTimer()
	m.attempts = 0
	if m.status == types.StatusConnected || m.status == types.StatusConnecting {
		m.teardownTransport("manual reconnect")
	}
	m.pending = append(m.pending, req.reply)
	m.beginAttempt()
}

func (m *Manager) handleDisconnect(req disconnectReq) {
	m.stopRetryTimer()
	m.teardownTransport("logout")
	m.failPending(ErrClosed)
	m.identity = nil
	m.attempts = 0
	m.cache.Clear()
	m.setStatus(types.StatusDisconnected)
	req.reply <- struct{}{}
}

func (m *Manager) beginAttempt() {
	m.gen++
	gen := m.gen
	id := *m.identity
	m.setStatus(types.StatusConnecting)

	go func() {
		tr, err := m.connectAndAuthenticate(id)
		res := attemptResult{gen: gen, transport: tr, err: err}
		if !m.post(res) && tr != nil {
			tr.Close("manager gone")
		}
	}()
}

// connectAndAuthenticate runs off-loop: dial, send the authenticate intent,
// and wait out the bounded ack.
func (m *Manager) connectAndAuthenticate(id types.Identity) (Transport, error) {
	dialCtx, cancel := context.WithTimeout(m.ctx, m.handshakeTimeout)
	defer cancel()

	tr, err := m.dial(dialCtx, m.endpoint)
	if err != nil {
		return nil, fmt.Errorf("conn: dial %s: %w", m.endpoint, err)
	}

	auth, _ := json.Marshal(types.AuthenticateRequest{UserID: id.ID, Username: id.Username})
	if err := tr.Send(types.Envelope{Event: types.EvAuthenticate, Data: auth}); err != nil {
		tr.Close("handshake send failed")
		return nil, err
	}

	ackCtx, cancelAck := context.WithTimeout(m.ctx, m.handshakeTimeout)
	defer cancelAck()
	for {
		env, err := tr.Read(ackCtx)
		if err != nil {
			tr.Close("handshake read failed")
			if ackCtx.Err() != nil {
				return nil, ErrHandshakeTimeout
			}
			return nil, err
		}
		if env.Event != types.EvAuthenticated {
			continue // server may push unrelated traffic before the ack
		}
		var ack types.AuthenticatedReply
		if err := json.Unmarshal(env.Data, &ack); err != nil || !ack.Success {
			tr.Close("rejected")
			return nil, ErrAuthRejected
		}
		return tr, nil
	}
}

func (m *Manager) handleAttemptResult(res attemptResult) {
	if res.gen != m.gen {
		if res.transport != nil {
			res.transport.Close("stale attempt")
		}
		return
	}

	if res.err != nil {
		m.log.Warn("connect attempt failed", zap.Error(res.err))
		if len(m.pending) > 0 {
			// Caller-initiated connect: the failure is theirs to handle.
			m.failPending(res.err)
			m.setStatus(types.StatusDisconnected)
			return
		}
		m.scheduleRetry()
		return
	}

	m.transport = res.transport
	m.cur.Store(&liveTransport{tr: res.transport})
	m.attempts = 0
	if m.identity != nil {
		u := *m.identity
		m.cache.SetUser(&u)
	}
	m.setStatus(types.StatusConnected)
	m.flushPending()
	go m.readPump(res.gen, res.transport)
	m.log.Info("connected", zap.String("endpoint", m.endpoint))
}

func (m *Manager) readPump(gen uint64, tr Transport) {
	for {
		env, err := tr.Read(m.ctx)
		if err != nil {
			m.post(transportClosed{gen: gen, err: err})
			return
		}
		m.post(inboundFrame{gen: gen, env: env})
	}
}

func (m *Manager) handleTransportClosed(ev transportClosed) {
	if ev.gen != m.gen {
		return
	}
	m.cur.Store(nil)
	if m.transport != nil {
		m.transport.Close("read ended")
		m.transport = nil
	}
	m.gen++

	if serverClosed(ev.err) {
		m.log.Info("server closed the connection", zap.Error(ev.err))
		m.setStatus(types.StatusDisconnected)
		return
	}

	m.log.Warn("transport dropped", zap.Error(ev.err))
	m.scheduleRetry()
}

// scheduleRetry moves to disconnected and, within the attempt budget, arms
// the one retry timer.
func (m *Manager) scheduleRetry() {
	if m.attempts >= maxAutoAttempts {
		m.log.Warn("reconnect attempts exhausted", zap.Int("attempts", m.attempts))
		m.setStatus(types.StatusDisconnected)
		return
	}
	m.attempts++
	plan := planReconnect(m.attempts)
	m.setStatus(types.StatusDisconnected)

	m.retrySeq++
	seq := m.retrySeq
	m.retryTmr = time.AfterFunc(plan.delay, func() {
		m.post(retryFire{seq: seq})
	})
	m.log.Info("reconnect scheduled",
		zap.Int("attempt", plan.attempt),
		zap.Duration("delay", plan.delay))
}

func (m *Manager) handleRetryFire(ev retryFire) {
	if ev.seq != m.retrySeq || m.retryTmr == nil {
		return // canceled or superseded
	}
	m.retryTmr = nil
	if m.status != types.StatusDisconnected || m.identity == nil {
		return
	}
	m.beginAttempt()
}

func (m *Manager) stopRetryTimer() {
	if m.retryTmr != nil {
		m.retryTmr.Stop()
		m.retryTmr = nil
	}
	m.retrySeq++
}

func (m *Manager) teardownTransport(reason string) {
	m.cur.Store(nil)
	if m.transport != nil {
		m.transport.Close(reason)
		m.transport = nil
	}
	// Invalidate in-flight attempts and pumps either way.
	m.gen++
}

func (m *Manager) setStatus(s types.ConnectionStatus) {
	if m.status == s {
		m.cache.SetStatus(s, m.attempts)
		return
	}
	m.status = s
	sess := m.cache.SetStatus(s, m.attempts)
	m.bus.Publish(types.EvConnectionStatusChanged, types.StatusChange{
		Status:   s,
		Attempts: sess.ReconnectAttempts,
	})
}

func (m *Manager) failPending(err error) {
	for _, ch := range m.pending {
		ch <- err
	}
	m.pending = nil
}

func (m *Manager) flushPending() {
	for _, ch := range m.pending {
		ch <- nil
	}
	m.pending = nil
}
