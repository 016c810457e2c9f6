package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akeil/notebook/internal/logging"
)

// MessageHandler is called for every received message.
type MessageHandler func(Message)

// Listener receives messages from a Hub.
type Listener struct {
	url  string
	conn *websocket.Conn
	done chan struct{}
	exit chan struct{}
	mx   sync.Mutex
	hdl  MessageHandler
}

// NewListener creates a listener for the websocket at url.
func NewListener(url string) *Listener {
	return &Listener{
		url: url,
	}
}

// Connect opens the connection and starts receiving messages.
func (l *Listener) Connect() error {
	l.mx.Lock()
	defer l.mx.Unlock()
	if l.conn != nil {
		return fmt.Errorf("already connected to %q", l.url)
	}

	logging.Info("Connecting to notifications at %q", l.url)
	conn, res, err := websocket.DefaultDialer.Dial(l.url, nil)
	if err != nil {
		if res != nil {
			return fmt.Errorf("websocket connection failed with status %v: %w", res.StatusCode, err)
		}
		return fmt.Errorf("websocket connection failed: %w", err)
	}

	l.conn = conn
	l.done = make(chan struct{})
	l.exit = make(chan struct{})

	go l.loop(conn, l.done, l.exit)
	go l.read(conn, l.done)

	return nil
}

// Disconnect closes the connection.
// It returns immediately, use Done to wait for the connection to close.
func (l *Listener) Disconnect() {
	l.mx.Lock()
	defer l.mx.Unlock()
	if l.exit == nil {
		return
	}
	select {
	case <-l.exit:
	default:
		close(l.exit)
	}
}

// Done is closed when the connection is closed, from either side.
func (l *Listener) Done() <-chan struct{} {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.done
}

func (l *Listener) onDisconnected() {
	logging.Info("Notifications disconnected")
	l.mx.Lock()
	defer l.mx.Unlock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
}

func (l *Listener) loop(conn *websocket.Conn, done, exit <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer l.onDisconnected()

	for {
		select {
		case <-done:
			return
		case <-exit:
			// close the connection by sending a close message
			close := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			err := conn.WriteMessage(websocket.CloseMessage, close)
			if err != nil {
				logging.Warning("write close: %v", err)
				return
			}
			// wait for server to close the connection (or timeout)
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			if err != nil {
				logging.Warning("ping: %v", err)
				return
			}
		}
	}
}

func (l *Listener) read(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// server closed connection
			logging.Debug("read: %v", err)
			return
		}

		var m Message
		err = json.Unmarshal(data, &m)
		if err != nil {
			logging.Warning("Discard invalid message: %v", err)
			continue
		}
		l.onMessage(m)
	}
}

func (l *Listener) onMessage(m Message) {
	l.mx.Lock()
	hdl := l.hdl
	l.mx.Unlock()

	if hdl != nil {
		hdl(m)
	}
}

// OnMessage sets the handler for received messages.
func (l *Listener) OnMessage(f MessageHandler) {
	l.mx.Lock()
	defer l.mx.Unlock()
	l.hdl = f
}
