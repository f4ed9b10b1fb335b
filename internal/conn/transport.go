package conn

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mfagundes/tranca-client/pkg/types"
)

var (
	errSendBufferFull  = errors.New("conn: send buffer full")
	errTransportClosed = errors.New("conn: transport closed")
)

const (
	writeTimeout = 3 * time.Second
	sendChanSize = 32
)

// Transport is one live wire to the server. The websocket implementation is
// below; tests substitute their own.
type Transport interface {
	// Read blocks for the next inbound envelope. The returned error ends the
	// transport's useful life.
	Read(ctx context.Context) (types.Envelope, error)
	Send(env types.Envelope) error
	Close(reason string)
}

// Dialer opens a transport to the endpoint. Swapped out in tests.
type Dialer func(ctx context.Context, endpoint string) (Transport, error)

// serverClosed reports whether the read error means the server hung up on
// purpose, as opposed to the wire failing underneath us. Clean closes get no
// automatic reconnect.
func serverClosed(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}

type wsTransport struct {
	id   string // log correlation only
	conn *websocket.Conn
	log  *zap.Logger

	sendCh chan types.Envelope
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func dialWebsocket(log *zap.Logger) Dialer {
	return func(ctx context.Context, endpoint string) (Transport, error) {
		conn, _, err := websocket.Dial(ctx, endpoint, nil)
		if err != nil {
			return nil, err
		}
		tctx, cancel := context.WithCancel(context.Background())
		id := uuid.NewString()
		t := &wsTransport{
			id:     id,
			conn:   conn,
			log:    log.With(zap.String("transport", id)),
			sendCh: make(chan types.Envelope, sendChanSize),
			ctx:    tctx,
			cancel: cancel,
		}
		go t.writePump()
		return t, nil
	}
}

func (t *wsTransport) Read(ctx context.Context) (types.Envelope, error) {
	for {
		_, data, err := t.conn.Read(ctx)
		if err != nil {
			return types.Envelope{}, err
		}
		var env types.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Bad frame, not a broken wire. Skip it.
			t.log.Warn("dropping unparseable frame", zap.Error(err))
			continue
		}
		return env, nil
	}
}

// Send enqueues for the write pump. Fire-and-forget callers only learn about
// a full buffer or a dead transport.
func (t *wsTransport) Send(env types.Envelope) error {
	select {
	case <-t.ctx.Done():
		return errTransportClosed
	default:
	}
	select {
	case t.sendCh <- env:
		return nil
	default:
		return errSendBufferFull
	}
}

func (t *wsTransport) writePump() {
	for {
		select {
		case <-t.ctx.Done():
			return
		case env := <-t.sendCh:
			payload, err := json.Marshal(env)
			if err != nil {
				t.log.Error("marshal outbound", zap.String("event", env.Event), zap.Error(err))
				continue
			}
			ctx, cancel := context.WithTimeout(t.ctx, writeTimeout)
			err = t.conn.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				t.log.Warn("write failed", zap.String("event", env.Event), zap.Error(err))
			}
		}
	}
}

func (t *wsTransport) Close(reason string) {
	t.once.Do(func() {
		t.cancel()
		_ = t.conn.Close(websocket.StatusNormalClosure, reason)
	})
}
