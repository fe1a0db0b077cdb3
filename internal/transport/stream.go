package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coreader-client/internal/dto"

	"github.com/fasthttp/websocket"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	writeWait    = 10 * time.Second
	maxFrameSize = 1 << 20
)

// Stream is one duplex channel carrying a single query and its answer.
type Stream interface {
	// Send writes the query frame.
	Send(req dto.StreamRequest) error
	// Receive blocks for the next raw frame. A clean close by the server
	// yields ErrStreamClosed.
	Receive() (string, error)
	// Close is idempotent and safe to call concurrently with Receive.
	Close() error
}

// OpenStream dials the streaming endpoint. The dial is bounded by ctx and the
// handshake timeout; ctx does not govern the stream afterwards.
func (c *Client) OpenStream(ctx context.Context) (Stream, error) {
	ctx, span := c.tracer.Start(ctx, "transport.OpenStream", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	conn, resp, err := c.dialer.DialContext(ctx, c.streamURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		c.logger.Warn("Transport", "Stream dial failed", map[string]interface{}{"url": c.streamURL, "error": err})
		if resp != nil {
			return nil, fmt.Errorf("dial stream: HTTP %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial stream: %w", err)
	}
	conn.SetReadLimit(maxFrameSize)

	c.logger.Debug("Transport", "Stream opened", map[string]interface{}{"url": c.streamURL})
	return &wsStream{conn: conn, idleTimeout: c.idleTimeout}, nil
}

type wsStream struct {
	conn        *websocket.Conn
	idleTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

func (s *wsStream) Send(req dto.StreamRequest) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send query frame: %w", err)
	}
	return nil
}

func (s *wsStream) Receive() (string, error) {
	if s.idleTimeout > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
	}

	_, data, err := s.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return "", ErrStreamClosed
		}
		return "", fmt.Errorf("read frame: %w", err)
	}
	return string(data), nil
}

func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
