package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/airsplit/airsplit/internal/run"
	"github.com/gorilla/websocket"
)

// ErrTooManyConnections is returned by AddClient when the connection limit
// has been reached.
var ErrTooManyConnections = errors.New("too many websocket connections")

type client struct {
	conn *websocket.Conn
	b    *Broadcaster
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.b.RemoveClient(c)
			return
		}
	}
}

// Broadcaster fans status, events and snapshots out to websocket clients.
// Status updates are coalesced: only the latest pending status is sent per
// throttle window. Events are sent immediately.
type Broadcaster struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	store    *run.Store
	throttle time.Duration
	maxConns int

	seq atomic.Uint64

	snapshotTicker *time.Ticker
	stop           chan struct{}
	stopOnce       sync.Once

	flushMu       sync.Mutex
	pendingStatus *run.Status
	flushTimer    *time.Timer
}

// NewBroadcaster starts the periodic snapshot loop. maxConns of zero means
// unlimited.
func NewBroadcaster(store *run.Store, throttle, snapshotInterval time.Duration, maxConns int) *Broadcaster {
	b := &Broadcaster{
		clients:  make(map[*client]bool),
		store:    store,
		throttle: throttle,
		maxConns: maxConns,
		stop:     make(chan struct{}),
	}

	b.snapshotTicker = time.NewTicker(snapshotInterval)
	go b.snapshotLoop()

	return b
}

func (b *Broadcaster) AddClient(conn *websocket.Conn) (*client, error) {
	c := &client{
		conn: conn,
		b:    b,
		send: make(chan []byte, 64),
	}

	data, _ := b.encode(b.snapshotMessage())

	b.mu.Lock()
	if b.maxConns > 0 && len(b.clients) >= b.maxConns {
		b.mu.Unlock()
		return nil, ErrTooManyConnections
	}
	b.clients[c] = true
	if data != nil {
		c.send <- data
	}
	b.mu.Unlock()

	go c.writePump()

	return c, nil
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

// QueueStatus schedules st for the next flush, replacing any status not
// yet sent.
func (b *Broadcaster) QueueStatus(st *run.Status) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.pendingStatus = st

	if b.flushTimer == nil {
		b.flushTimer = time.AfterFunc(b.throttle, b.flush)
	}
}

func (b *Broadcaster) PublishEvent(ev run.Event) {
	b.broadcast(WSMessage{Type: MsgEvent, Payload: EventPayload{Event: ev}})
}

func (b *Broadcaster) PublishError(message string) {
	b.broadcast(WSMessage{Type: MsgError, Payload: ErrorPayload{Message: message}})
}

func (b *Broadcaster) flush() {
	b.flushMu.Lock()
	st := b.pendingStatus
	b.pendingStatus = nil
	b.flushTimer = nil
	b.flushMu.Unlock()

	if st == nil {
		return
	}
	b.broadcast(WSMessage{Type: MsgStatus, Payload: StatusPayload{Status: st}})
}

func (b *Broadcaster) snapshotMessage() WSMessage {
	return WSMessage{
		Type: MsgSnapshot,
		Payload: SnapshotPayload{
			Status: b.store.Status(),
			Events: b.store.Events(),
		},
	}
}

func (b *Broadcaster) snapshotLoop() {
	for {
		select {
		case <-b.stop:
			return
		case <-b.snapshotTicker.C:
			b.broadcast(b.snapshotMessage())
		}
	}
}

func (b *Broadcaster) encode(msg WSMessage) ([]byte, error) {
	msg.Seq = b.seq.Add(1)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[ws] broadcast marshal error: %v", err)
		return nil, err
	}
	return data, nil
}

func (b *Broadcaster) broadcast(msg WSMessage) {
	data, err := b.encode(msg)
	if err != nil {
		return
	}

	// Sends happen under the read lock so RemoveClient cannot close a
	// channel mid-send.
	var slow []*client
	b.mu.RLock()
	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		// Client can't keep up, disconnect it
		log.Printf("[ws] client too slow, disconnecting")
		b.RemoveClient(c)
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Stop ends the snapshot loop and any pending flush. Connected clients are
// left to the server to close.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() {
		b.snapshotTicker.Stop()
		close(b.stop)
		b.flushMu.Lock()
		if b.flushTimer != nil {
			b.flushTimer.Stop()
			b.flushTimer = nil
		}
		b.flushMu.Unlock()
	})
}
