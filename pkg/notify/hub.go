// Package notify pushes notebook changes to websocket subscribers.
//
// A Hub is the server side; it is an http.Handler that upgrades requests
// to websocket connections and broadcasts messages to all of them.
// A Listener is the client side.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akeil/notebook/internal/logging"
)

const writeTimeout = 5 * time.Second

// Hub broadcasts messages to all connected subscribers.
type Hub struct {
	upgrader websocket.Upgrader
	mx       sync.Mutex
	conns    map[*websocket.Conn]*subscriber
	closed   bool
}

// subscriber serializes writes to one connection.
type subscriber struct {
	conn *websocket.Conn
	mx   sync.Mutex
}

func (s *subscriber) write(msgs []Message) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	for _, m := range msgs {
		s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := s.conn.WriteJSON(m)
		if err != nil {
			return err
		}
	}
	return nil
}

// NewHub creates a hub without subscribers.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*websocket.Conn]*subscriber),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an error
		logging.Warning("Websocket upgrade from %v failed: %v", r.RemoteAddr, err)
		return
	}

	h.mx.Lock()
	if h.closed {
		h.mx.Unlock()
		conn.Close()
		return
	}
	h.conns[conn] = &subscriber{conn: conn}
	h.mx.Unlock()

	logging.Info("Subscriber connected from %v", r.RemoteAddr)
	go h.read(conn)
}

// read consumes incoming messages, which is required to process control
// frames. Subscribers are not expected to send anything else.
func (h *Hub) read(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			logging.Debug("Subscriber %v gone: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
}

// Publish sends the messages to every subscriber.
// Subscribers are written concurrently, so a slow one does not hold up
// the others. Subscribers that cannot be written to are dropped.
func (h *Hub) Publish(msgs ...Message) {
	h.mx.Lock()
	subs := make([]*subscriber, 0, len(h.conns))
	for _, s := range h.conns {
		subs = append(subs, s)
	}
	h.mx.Unlock()

	var wg sync.WaitGroup
	for _, s := range subs {
		wg.Add(1)
		go func(s *subscriber) {
			defer wg.Done()
			err := s.write(msgs)
			if err != nil {
				logging.Warning("Drop subscriber %v: %v", s.conn.RemoteAddr(), err)
				h.remove(s.conn)
			}
		}(s)
	}
	wg.Wait()
	logging.Debug("Published %d message(s) to %d subscriber(s)", len(msgs), len(subs))
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mx.Lock()
	defer h.mx.Unlock()
	return len(h.conns)
}

// Close disconnects all subscribers.
// Later connection attempts are rejected.
func (h *Hub) Close() {
	h.mx.Lock()
	defer h.mx.Unlock()

	h.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	deadline := time.Now().Add(writeTimeout)
	for conn := range h.conns {
		conn.WriteControl(websocket.CloseMessage, msg, deadline)
		conn.Close()
		delete(h.conns, conn)
	}
}
