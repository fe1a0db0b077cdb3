package service

import (
	"context"
	"errors"
	"sync"

	"coreader-client/internal/dto"
	"coreader-client/internal/entity"
	"coreader-client/internal/transport"
)

type recordingSink struct {
	mu    sync.Mutex
	items []entity.Notification
}

func (r *recordingSink) Notify(n entity.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingSink) All() []entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Notification, len(r.items))
	copy(out, r.items)
	return out
}

type fakeFileBackend struct {
	mu sync.Mutex

	listResp   []dto.UploadedFileDTO
	listErr    error
	uploadResp *dto.UploadFileResponse
	uploadErr  error
	toggleErr  error
	deleteErr  error

	// block, when set, holds every mutating call until it is closed.
	block   chan struct{}
	entered chan struct{}

	calls []string
}

func (f *fakeFileBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeFileBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeFileBackend) ListFiles(ctx context.Context) ([]dto.UploadedFileDTO, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "list")
	f.mu.Unlock()
	return f.listResp, f.listErr
}

func (f *fakeFileBackend) UploadFile(ctx context.Context, name string, content []byte) (*dto.UploadFileResponse, error) {
	f.record("upload:" + name)
	return f.uploadResp, f.uploadErr
}

func (f *fakeFileBackend) ToggleFileStatus(ctx context.Context, fileID string, isActive bool) error {
	f.record("toggle:" + fileID)
	return f.toggleErr
}

func (f *fakeFileBackend) DeleteFile(ctx context.Context, fileID string) error {
	f.record("delete:" + fileID)
	return f.deleteErr
}

type staticActive bool

func (a staticActive) IsAnyActive() bool { return bool(a) }

// fakeStream replays frames pushed on its channel. A closed channel reads as a
// clean server close.
type fakeStream struct {
	frames  chan string
	readErr error

	mu         sync.Mutex
	sent       []dto.StreamRequest
	closeCalls int
	closed     chan struct{}
	closeOnce  sync.Once
}

func newFakeStream(frames ...string) *fakeStream {
	s := &fakeStream{frames: make(chan string, len(frames)+8), closed: make(chan struct{})}
	for _, f := range frames {
		s.frames <- f
	}
	return s
}

func (s *fakeStream) Send(req dto.StreamRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return nil
}

func (s *fakeStream) Receive() (string, error) {
	select {
	case f, ok := <-s.frames:
		if !ok {
			if s.readErr != nil {
				return "", s.readErr
			}
			return "", transport.ErrStreamClosed
		}
		return f, nil
	case <-s.closed:
		return "", errors.New("use of closed network connection")
	}
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	s.closeCalls++
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeStream) Sent() []dto.StreamRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.StreamRequest, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *fakeStream) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

type fakeSessionBackend struct {
	mu       sync.Mutex
	stream   *fakeStream
	openErr  error
	opens    int
	clearErr error
	clears   int
}

func (b *fakeSessionBackend) OpenStream(ctx context.Context) (transport.Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opens++
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.stream, nil
}

func (b *fakeSessionBackend) ClearMemory(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clears++
	return b.clearErr
}

func (b *fakeSessionBackend) Opens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens
}
