package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"coreader-client/internal/constant"
	"coreader-client/internal/dto"
	"coreader-client/internal/entity"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/transport"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseOpening   Phase = "OPENING"
	PhaseStreaming Phase = "STREAMING"
	PhaseClosed    Phase = "CLOSED"
)

type ISessionService interface {
	Submit(ctx context.Context, rawQuery string) (*Submission, error)
	NewChat(ctx context.Context) error
	SetDraft(q string)
	Draft() string
	Transcript() []entity.ChatMessage
	Phase() Phase
	IsBusy() bool
	Close()
}

// Submission tracks one submitted query until its answer is frozen.
type Submission struct {
	Id          string
	AssistantId string
	done        chan struct{}
}

func newSubmission(assistantId string) *Submission {
	return &Submission{
		Id:          uuid.Must(uuid.NewV7()).String(),
		AssistantId: assistantId,
		done:        make(chan struct{}),
	}
}

func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the submission is closed or ctx ends.
func (s *Submission) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type SessionOption func(*sessionService)

// WithChangeHook registers fn to receive a copy of every message after it changes.
func WithChangeHook(fn func(entity.ChatMessage)) SessionOption {
	return func(s *sessionService) {
		s.onChange = fn
	}
}

type sessionService struct {
	backend  SessionBackend
	files    ActiveFileChecker
	decoder  transport.FrameDecoder
	sink     NotificationSink
	logger   logger.ILogger
	onChange func(entity.ChatMessage)

	mu         sync.Mutex
	draft      string
	transcript []entity.ChatMessage
	phase      Phase
	cancel     context.CancelFunc
	current    *Submission
}

func NewSessionService(backend SessionBackend, files ActiveFileChecker, decoder transport.FrameDecoder, sink NotificationSink, log logger.ILogger, opts ...SessionOption) ISessionService {
	s := &sessionService{
		backend: backend,
		files:   files,
		decoder: decoder,
		sink:    sink,
		logger:  log,
		phase:   PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit returns nil, nil for a blank query. The answer streams in the
// background; ctx governs the channel for its whole life.
func (s *sessionService) Submit(ctx context.Context, rawQuery string) (*Submission, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.busyLocked() {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}

	// 1. User message always lands
	user := s.appendLocked(entity.ChatRoleUser, rawQuery)

	// 2. Short-circuit when nothing could answer
	if !s.files.IsAnyActive() {
		reply := s.appendLocked(entity.ChatRoleAssistant, constant.ReplyNoActiveFile)
		s.draft = ""
		s.phase = PhaseIdle
		s.mu.Unlock()

		s.changed(user, reply)
		s.logger.Info("Session", "Query answered locally, no active file", nil)

		sub := newSubmission(reply.Id)
		close(sub.done)
		return sub, nil
	}

	// 3. Pending assistant bubble, then open the channel
	pending := s.appendLocked(entity.ChatRoleAssistant, "")
	s.phase = PhaseOpening
	sub := newSubmission(pending.Id)
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.current = sub
	s.mu.Unlock()

	s.changed(user, pending)
	s.logger.Info("Session", "Submitting query", map[string]interface{}{"submission_id": sub.Id})

	go s.run(runCtx, cancel, sub, rawQuery)
	return sub, nil
}

func (s *sessionService) run(ctx context.Context, cancel context.CancelFunc, sub *Submission, query string) {
	defer close(sub.done)
	defer cancel()

	stream, err := s.backend.OpenStream(ctx)
	if err != nil {
		s.fail(sub, err)
		return
	}

	var closeOnce sync.Once
	closeStream := func() {
		closeOnce.Do(func() {
			if err := stream.Close(); err != nil {
				s.logger.Debug("Session", "Stream close returned error", map[string]interface{}{"error": err})
			}
		})
	}
	defer closeStream()
	stop := context.AfterFunc(ctx, closeStream)
	defer stop()

	if err := stream.Send(dto.StreamRequest{Query: query}); err != nil {
		closeStream()
		s.fail(sub, err)
		return
	}

	s.mu.Lock()
	s.draft = ""
	s.phase = PhaseStreaming
	s.mu.Unlock()

	for {
		raw, err := stream.Receive()
		if err != nil {
			closeStream()
			if errors.Is(err, transport.ErrStreamClosed) && ctx.Err() == nil {
				s.finish(sub, nil)
				s.logger.Warn("Session", "Stream closed without end marker", map[string]interface{}{"submission_id": sub.Id})
				return
			}
			s.fail(sub, err)
			return
		}

		frame, err := s.decoder.Decode(raw)
		if err != nil {
			closeStream()
			s.fail(sub, err)
			return
		}

		switch frame.Kind {
		case transport.FrameChunk:
			s.update(sub.AssistantId, func(m *entity.ChatMessage) {
				m.Content += frame.Text
			})

		case transport.FrameEnd:
			closeStream()
			s.finish(sub, func(m *entity.ChatMessage) {
				for _, c := range frame.Citations {
					m.Citations = append(m.Citations, entity.ChatCitation{
						Content:  c.Content,
						Filename: c.Filename,
						FileId:   c.FileId,
					})
				}
			})
			s.logger.Info("Session", "Answer complete", map[string]interface{}{"submission_id": sub.Id})
			return

		case transport.FrameNoQuery:
			closeStream()
			s.finish(sub, func(m *entity.ChatMessage) {
				m.Content = constant.ReplyNoQueryError
			})
			s.logger.Warn("Session", "Backend did not receive the query", map[string]interface{}{"submission_id": sub.Id})
			return

		default:
			closeStream()
			s.fail(sub, fmt.Errorf("backend error frame: %s", frame.Text))
			return
		}
	}
}

// fail overwrites the answer with the connection error and closes the submission.
func (s *sessionService) fail(sub *Submission, cause error) {
	s.logger.Warn("Session", "Stream failed", map[string]interface{}{"submission_id": sub.Id, "error": cause})
	s.finish(sub, func(m *entity.ChatMessage) {
		m.Content = constant.ReplyConnectionError
	})
}

// finish applies the last edit and moves the phase to CLOSED in one step.
func (s *sessionService) finish(sub *Submission, edit func(m *entity.ChatMessage)) {
	s.mu.Lock()
	var (
		msg   entity.ChatMessage
		found bool
	)
	if i := s.indexLocked(sub.AssistantId); i >= 0 {
		if edit != nil {
			edit(&s.transcript[i])
		}
		msg, found = s.transcript[i].Clone(), true
	}
	if s.current == sub {
		s.phase = PhaseClosed
		s.cancel = nil
		s.current = nil
	}
	s.mu.Unlock()

	if found && edit != nil {
		s.changed(msg)
	}
}

func (s *sessionService) update(id string, edit func(m *entity.ChatMessage)) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	edit(&s.transcript[i])
	msg := s.transcript[i].Clone()
	s.mu.Unlock()

	s.changed(msg)
}

// NewChat stops any in-flight answer, then clears the transcript whether or
// not the backend forgets too.
func (s *sessionService) NewChat(ctx context.Context) error {
	s.mu.Lock()
	for s.busyLocked() {
		cancel, sub := s.cancel, s.current
		s.mu.Unlock()

		cancel()
		select {
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	s.transcript = nil
	s.phase = PhaseIdle
	s.mu.Unlock()

	if err := s.backend.ClearMemory(ctx); err != nil {
		s.logger.Warn("Session", "Failed to clear backend memory", map[string]interface{}{"error": err})
		s.notify(entity.NotificationWarning, fmt.Sprintf(constant.NotifyChatClearedLocalOnly, transport.Reason(err)))
		return nil
	}

	s.logger.Info("Session", "Chat cleared", nil)
	s.notify(entity.NotificationSuccess, constant.NotifyChatCleared)
	return nil
}

func (s *sessionService) SetDraft(q string) {
	s.mu.Lock()
	s.draft = q
	s.mu.Unlock()
}

func (s *sessionService) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *sessionService) Transcript() []entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ChatMessage, 0, len(s.transcript))
	for i := range s.transcript {
		out = append(out, s.transcript[i].Clone())
	}
	return out
}

func (s *sessionService) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *sessionService) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busyLocked()
}

// Close cancels the in-flight submission, if any, and waits for its channel to close.
func (s *sessionService) Close() {
	s.mu.Lock()
	cancel, sub := s.cancel, s.current
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-sub.done
}

func (s *sessionService) busyLocked() bool {
	return s.phase == PhaseOpening || s.phase == PhaseStreaming
}

func (s *sessionService) appendLocked(role entity.ChatRole, content string) entity.ChatMessage {
	msg := entity.ChatMessage{
		Id:        uuid.Must(uuid.NewV7()).String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.transcript = append(s.transcript, msg)
	return msg
}

func (s *sessionService) indexLocked(id string) int {
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Id == id {
			return i
		}
	}
	return -1
}

func (s *sessionService) changed(msgs ...entity.ChatMessage) {
	if s.onChange == nil {
		return
	}
	for _, m := range msgs {
		s.onChange(m)
	}
}

func (s *sessionService) notify(level entity.NotificationLevel, message string) {
	if s.sink == nil {
		return
	}
	s.sink.Notify(entity.Notification{
		Level:      level,
		Source:     entity.NotificationSourceSession,
		Message:    message,
		OccurredAt: time.Now(),
	})
}
