package service

import (
	"context"
	"errors"

	"coreader-client/internal/dto"
	"coreader-client/internal/entity"
	"coreader-client/internal/transport"
)

var (
	ErrSessionBusy  = errors.New("an answer is still streaming")
	ErrFileBusy     = errors.New("file has an operation in progress")
	ErrFileNotFound = errors.New("file not found in registry")
)

// FileBackend is the request/response half of the transport used by the registry.
type FileBackend interface {
	ListFiles(ctx context.Context) ([]dto.UploadedFileDTO, error)
	UploadFile(ctx context.Context, name string, content []byte) (*dto.UploadFileResponse, error)
	ToggleFileStatus(ctx context.Context, fileID string, isActive bool) error
	DeleteFile(ctx context.Context, fileID string) error
}

// SessionBackend is what the session needs from the transport.
type SessionBackend interface {
	OpenStream(ctx context.Context) (transport.Stream, error)
	ClearMemory(ctx context.Context) error
}

// ActiveFileChecker gates submissions.
type ActiveFileChecker interface {
	IsAnyActive() bool
}

// NotificationSink receives transient status lines. It must not block.
type NotificationSink interface {
	Notify(n entity.Notification)
}
