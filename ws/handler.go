package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/gorilla/websocket"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

const heartbeatInterval = 30 * time.Second

// Payload is one emitted item of a subscription stream.
type Payload struct {
	Data interface{}
	Err  error
}

// Executor runs a parsed operation against the gateway. Subscribe returns a
// channel that the handler drains until it closes or ctx is cancelled;
// retrying a broken stream is the handler's job, not the executor's.
type Executor interface {
	Subscribe(ctx context.Context, query string, variables map[string]interface{}, opName string) (<-chan Payload, error)
}

var upgrader = websocket.Upgrader{
	Subprotocols:    []string{Subprotocol},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to graphql-transport-ws connections.
type Handler struct {
	exec Executor
	log  *zap.SugaredLogger
}

func NewHandler(exec Executor, log *zap.SugaredLogger) *Handler {
	return &Handler{exec: exec, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("ws: upgrade failed", "error", err)
		return
	}
	c := &connection{conn: conn, exec: h.exec, log: h.log, ops: map[string]context.CancelFunc{}}
	c.run()
}

type connection struct {
	conn *websocket.Conn
	exec Executor
	log  *zap.SugaredLogger

	mu   sync.Mutex
	ops  map[string]context.CancelFunc
	wmu  sync.Mutex
	init bool
}

func (c *connection) run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.closeAllOps()
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var m message
		if err := json.Unmarshal(data, &m); err != nil {
			c.writeError("", err)
			continue
		}

		switch m.Type {
		case typeConnectionInit:
			c.init = true
			c.write(message{Type: typeConnectionAck})
		case typePing:
			c.write(message{Type: typePong})
		case typePong:
			// no-op
		case typeSubscribe:
			c.handleSubscribe(ctx, m)
		case typeComplete:
			c.cancelOp(m.ID)
		}
	}
}

func (c *connection) handleSubscribe(ctx context.Context, m message) {
	var p subscribePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		c.writeError(m.ID, err)
		return
	}

	opCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.ops[m.ID] = cancel
	c.mu.Unlock()

	go c.streamWithRetry(opCtx, m.ID, p)
}

// streamWithRetry drains the executor's subscription channel, merged with a
// 30-second heartbeat, and restarts the subscription with exponential
// backoff (base 1s, cap 30s) if the stream ends early due to an error —
// so a transient CDC outage never terminates the client's subscription.
func (c *connection) streamWithRetry(ctx context.Context, id string, p subscribePayload) {
	defer c.cancelOp(id)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	err := retry.Do(func() error {
		stream, err := c.exec.Subscribe(ctx, p.Query, p.Variables, p.OperationName)
		if err != nil {
			return err
		}
		return c.drain(ctx, id, stream, heartbeat)
	},
		retry.Context(ctx),
		retry.Attempts(0), // unlimited — bounded only by ctx cancellation
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil && ctx.Err() == nil {
		c.writeError(id, err)
		return
	}
	c.write(message{ID: id, Type: typeComplete})
}

func (c *connection) drain(ctx context.Context, id string, stream <-chan Payload, heartbeat *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			b, _ := json.Marshal(nextPayload{Data: map[string]interface{}{"operation": "HEARTBEAT", "data": nil}})
			c.write(message{ID: id, Type: typeNext, Payload: b})
		case item, ok := <-stream:
			if !ok {
				return nil
			}
			if item.Err != nil {
				return item.Err
			}
			b, _ := json.Marshal(nextPayload{Data: item.Data})
			c.write(message{ID: id, Type: typeNext, Payload: b})
		}
	}
}

func (c *connection) cancelOp(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.ops[id]; ok {
		cancel()
		delete(c.ops, id)
	}
}

func (c *connection) closeAllOps() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, cancel := range c.ops {
		cancel()
		delete(c.ops, id)
	}
}

func (c *connection) write(m message) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.WriteJSON(m)
}

func (c *connection) writeError(id string, err error) {
	b, _ := json.Marshal([]string{err.Error()})
	c.write(message{ID: id, Type: typeError, Payload: b})
}

// newOpID is used by callers that need a server-generated operation id
// (the client normally supplies one on `subscribe`).
func newOpID() string { return xid.New().String() }
