package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound messages; subscribers only send pongs
	maxMessageSize = 1024
)

// Subscriber represents a single websocket connection receiving frames.
type Subscriber struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewSubscriber creates a subscriber and registers it with the hub.
func NewSubscriber(h *Hub, conn *websocket.Conn) *Subscriber {
	sub := &Subscriber{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.send)
	}
	return sub
}

// Run starts the subscriber's read and write pumps.
// This should be called in the websocket handler; it blocks until the
// connection closes.
func (s *Subscriber) Run() {
	go s.writePump()
	s.readPump()
}

// readPump drains the connection to detect disconnection and service pongs.
func (s *Subscriber) readPump() {
	defer func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Subscribers never send data frames; reading only detects close.
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes frames to the connection. Only this goroutine writes,
// so no write lock is needed.
func (s *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
