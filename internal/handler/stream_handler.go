package handler

import (
	"context"
	"encoding/json"
	"time"

	"coreader-client/internal/constant"
	"coreader-client/internal/dto"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/service"
	internalWS "coreader-client/internal/websocket"
	"coreader-client/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type StreamHandler struct {
	documentService service.IDocumentService
	tokenDelay      time.Duration
	logger          logger.ILogger
}

func NewStreamHandler(documentService service.IDocumentService, tokenDelay time.Duration, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		documentService: documentService,
		tokenDelay:      tokenDelay,
		logger:          log,
	}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	r.Use("/ws", h.RequireUpgrade)
	r.Get("/ws/stream", websocket.New(h.ServeStream))
}

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func (h *StreamHandler) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ServeStream answers queries on one connection until the peer leaves.
func (h *StreamHandler) ServeStream(c *websocket.Conn) {
	answerer := &documentAnswerer{
		documentService: h.documentService,
		tagged:          c.Query("protocol") == constant.StreamProtocolTagged,
		logger:          h.logger,
	}

	session := internalWS.NewSession(c, answerer, h.tokenDelay, h.logger)
	h.logger.Info("StreamHandler", "Stream session started", map[string]interface{}{"session_id": session.Id, "tagged": answerer.tagged})
	session.Serve()
	h.logger.Info("StreamHandler", "Stream session ended", map[string]interface{}{"session_id": session.Id})
}

type documentAnswerer struct {
	documentService service.IDocumentService
	tagged          bool
	logger          logger.ILogger
}

// Frames requires a string "query" key; any other shape counts as no query.
func (a *documentAnswerer) Frames(inbound map[string]json.RawMessage) ([]string, bool) {
	raw, ok := inbound["query"]
	if !ok {
		return nil, false
	}
	var query string
	if err := json.Unmarshal(raw, &query); err != nil {
		return nil, false
	}

	answer, err := a.documentService.Answer(context.Background(), query)
	if err != nil {
		a.logger.Error("StreamHandler", "Failed to answer query", map[string]interface{}{"error": err})
		if a.tagged {
			return []string{a.encode(dto.TaggedFrame{Type: dto.FrameTypeError, Payload: err.Error()})}, true
		}
		return []string{"Error: " + err.Error(), constant.StreamEndSentinel}, true
	}

	tokens := utils.StreamTokens(answer.Text)
	frames := make([]string, 0, len(tokens)+1)
	for _, tok := range tokens {
		if a.tagged {
			frames = append(frames, a.encode(dto.TaggedFrame{Type: dto.FrameTypeChunk, Payload: tok}))
		} else {
			frames = append(frames, tok)
		}
	}

	if a.tagged {
		frames = append(frames, a.encode(dto.TaggedFrame{Type: dto.FrameTypeEnd, Citations: answer.Citations}))
	} else {
		frames = append(frames, constant.StreamEndSentinel)
	}
	return frames, true
}

func (a *documentAnswerer) NoQuery() string {
	if a.tagged {
		return a.encode(dto.TaggedFrame{Type: dto.FrameTypeError, Payload: constant.StreamNoQueryCode})
	}
	return constant.StreamNoQuerySentinel
}

func (a *documentAnswerer) encode(f dto.TaggedFrame) string {
	b, _ := json.Marshal(f)
	return string(b)
}
