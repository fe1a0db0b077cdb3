package websocket

import (
	"encoding/json"
	"time"

	"coreader-client/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Answerer turns one query into the frames written back to the peer.
type Answerer interface {
	// Frames returns nil, false when the inbound message carries no query.
	Frames(inbound map[string]json.RawMessage) (frames []string, ok bool)
	// NoQuery is the frame sent before closing when a message has no query.
	NoQuery() string
}

// Session owns one streaming connection: the handler goroutine reads
// queries, writePump is the only writer.
type Session struct {
	Id   string
	Conn *websocket.Conn

	// Buffered channel of outbound frames, one websocket message each.
	Send chan string

	answerer   Answerer
	tokenDelay time.Duration
	logger     logger.ILogger
}

func NewSession(conn *websocket.Conn, answerer Answerer, tokenDelay time.Duration, log logger.ILogger) *Session {
	return &Session{
		Id:         uuid.NewString(),
		Conn:       conn,
		Send:       make(chan string, 256),
		answerer:   answerer,
		tokenDelay: tokenDelay,
		logger:     log,
	}
}

// Serve runs until the peer goes away or sends a message without a query.
func (s *Session) Serve() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump()
	}()

	s.readPump()
	close(s.Send)
	<-done
}

// readPump reads query messages and queues their answers.
func (s *Session) readPump() {
	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("StreamSession", "Read failed", map[string]interface{}{"session_id": s.Id, "error": err})
			}
			return
		}
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))

		var inbound map[string]json.RawMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			s.logger.Warn("StreamSession", "Inbound message is not a JSON object", map[string]interface{}{"session_id": s.Id})
			s.Send <- s.answerer.NoQuery()
			return
		}

		frames, ok := s.answerer.Frames(inbound)
		if !ok {
			s.logger.Info("StreamSession", "Message without query", map[string]interface{}{"session_id": s.Id})
			s.Send <- s.answerer.NoQuery()
			return
		}

		for _, f := range frames {
			s.Send <- f
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The reader is done.
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = s.Conn.WriteMessage(websocket.CloseMessage, msg)
				return
			}

			if err := s.Conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				s.logger.Debug("StreamSession", "Write failed", map[string]interface{}{"session_id": s.Id, "error": err})
				s.drain()
				return
			}
			if s.tokenDelay > 0 {
				time.Sleep(s.tokenDelay)
			}
		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drain()
				return
			}
		}
	}
}

// drain discards queued frames so the reader never blocks on a dead writer.
func (s *Session) drain() {
	for range s.Send {
	}
}
