package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coreader-client/internal/constant"
	"coreader-client/internal/entity"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/transport"
)

type IFileRegistryService interface {
	LoadAll(ctx context.Context) error
	Upload(ctx context.Context, name string, content []byte) (*entity.UploadedFile, error)
	ToggleActive(ctx context.Context, fileID string) (*entity.UploadedFile, error)
	Delete(ctx context.Context, fileID string) error
	IsAnyActive() bool
	Files() []entity.UploadedFile
}

// fileRegistryService holds the backend-confirmed file list. Local state only
// changes after the backend answers; mutations on the same file id (or the
// same upload name) are serialized by rejecting the second caller.
type fileRegistryService struct {
	backend FileBackend
	sink    NotificationSink
	logger  logger.ILogger

	mu       sync.RWMutex
	files    []entity.UploadedFile
	inFlight map[string]struct{}
}

func NewFileRegistryService(backend FileBackend, sink NotificationSink, log logger.ILogger) IFileRegistryService {
	return &fileRegistryService{
		backend:  backend,
		sink:     sink,
		logger:   log,
		inFlight: make(map[string]struct{}),
	}
}

func idKey(id string) string     { return "id:" + id }
func nameKey(name string) string { return "name:" + name }

// LoadAll replaces the local set with the backend's. On failure the local set
// is emptied, since nothing in it is backend-confirmed any more.
func (s *fileRegistryService) LoadAll(ctx context.Context) error {
	files, err := s.backend.ListFiles(ctx)
	if err != nil {
		s.mu.Lock()
		s.files = nil
		s.mu.Unlock()

		s.logger.Error("FileRegistry", "Failed to load uploaded files", map[string]interface{}{"error": err})
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileLoadFailed, transport.Reason(err)))
		return fmt.Errorf("load files: %w", err)
	}

	loaded := make([]entity.UploadedFile, 0, len(files))
	for _, f := range files {
		loaded = append(loaded, entity.UploadedFile{Id: f.Id, Name: f.Name, IsActive: f.IsActive})
	}

	s.mu.Lock()
	s.files = loaded
	s.mu.Unlock()

	s.logger.Info("FileRegistry", "Loaded uploaded files", map[string]interface{}{"count": len(loaded)})
	return nil
}

func (s *fileRegistryService) Upload(ctx context.Context, name string, content []byte) (*entity.UploadedFile, error) {
	// 1. Reserve the name and, if it is already listed, the id it replaces
	keys := []string{nameKey(name)}
	s.mu.RLock()
	if i := s.indexByNameLocked(name); i >= 0 {
		keys = append(keys, idKey(s.files[i].Id))
	}
	s.mu.RUnlock()

	if !s.acquire(keys...) {
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileBusy, name))
		return nil, ErrFileBusy
	}
	defer s.release(keys...)

	// 2. Send bytes
	resp, err := s.backend.UploadFile(ctx, name, content)
	if err != nil {
		s.logger.Warn("FileRegistry", "Upload rejected", map[string]interface{}{"name": name, "error": err})
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileUploadFailed, name, transport.Reason(err)))
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	// 3. Commit: same canonical name replaces in place, new name appends
	uploaded := entity.UploadedFile{Id: resp.FileId, Name: resp.Filename, IsActive: true}
	s.mu.Lock()
	replaced := false
	if i := s.indexByNameLocked(uploaded.Name); i >= 0 {
		s.files[i] = uploaded
		replaced = true
	} else {
		s.files = append(s.files, uploaded)
	}
	s.mu.Unlock()

	s.logger.Info("FileRegistry", "File uploaded", map[string]interface{}{
		"file_id": uploaded.Id, "name": uploaded.Name, "replaced": replaced,
	})
	if replaced {
		s.notify(entity.NotificationSuccess, fmt.Sprintf(constant.NotifyFileReplaced, uploaded.Name))
	} else {
		s.notify(entity.NotificationSuccess, fmt.Sprintf(constant.NotifyFileUploaded, uploaded.Name))
	}
	return &uploaded, nil
}

// ToggleActive returns the updated entry on success. On a 404 the entry is
// dropped locally and ErrFileNotFound is returned alongside the backend error.
func (s *fileRegistryService) ToggleActive(ctx context.Context, fileID string) (*entity.UploadedFile, error) {
	current, ok := s.lookup(fileID)
	if !ok {
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileUnknown, fileID))
		return nil, ErrFileNotFound
	}

	if !s.acquire(idKey(fileID)) {
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileBusy, current.Name))
		return nil, ErrFileBusy
	}
	defer s.release(idKey(fileID))

	// Re-read under the reservation; a finished mutation may have changed it.
	current, ok = s.lookup(fileID)
	if !ok {
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileUnknown, fileID))
		return nil, ErrFileNotFound
	}
	target := !current.IsActive

	err := s.backend.ToggleFileStatus(ctx, fileID, target)
	switch {
	case err == nil:
		s.mu.Lock()
		i := s.indexByIdLocked(fileID)
		var updated entity.UploadedFile
		if i >= 0 {
			s.files[i].IsActive = target
			updated = s.files[i]
		}
		s.mu.Unlock()

		// A reload while the call was in flight dropped the entry.
		if i < 0 {
			s.logger.Warn("FileRegistry", "File left the local set during toggle", map[string]interface{}{"file_id": fileID})
			s.notify(entity.NotificationWarning, fmt.Sprintf(constant.NotifyFileVanished, current.Name))
			return nil, fmt.Errorf("toggle %s: %w", fileID, ErrFileNotFound)
		}

		s.logger.Info("FileRegistry", "File status changed", map[string]interface{}{"file_id": fileID, "is_active": target})
		s.notify(entity.NotificationSuccess, fmt.Sprintf(constant.NotifyFileToggled, updated.Name, updated.StatusLabel()))
		return &updated, nil

	case transport.IsNotFound(err):
		s.removeById(fileID)
		s.logger.Warn("FileRegistry", "File missing on backend, removed locally", map[string]interface{}{"file_id": fileID})
		s.notify(entity.NotificationWarning, fmt.Sprintf(constant.NotifyFileVanished, current.Name))
		return nil, fmt.Errorf("toggle %s: %w: %w", fileID, ErrFileNotFound, err)

	default:
		s.logger.Warn("FileRegistry", "Toggle rejected", map[string]interface{}{"file_id": fileID, "error": err})
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileToggleFailed, current.Name, transport.Reason(err)))
		return nil, fmt.Errorf("toggle %s: %w", fileID, err)
	}
}

func (s *fileRegistryService) Delete(ctx context.Context, fileID string) error {
	current, ok := s.lookup(fileID)
	if !ok {
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileUnknown, fileID))
		return ErrFileNotFound
	}

	if !s.acquire(idKey(fileID)) {
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileBusy, current.Name))
		return ErrFileBusy
	}
	defer s.release(idKey(fileID))

	if err := s.backend.DeleteFile(ctx, fileID); err != nil {
		s.logger.Warn("FileRegistry", "Delete rejected", map[string]interface{}{"file_id": fileID, "error": err})
		s.notify(entity.NotificationError, fmt.Sprintf(constant.NotifyFileDeleteFailed, current.Name, transport.Reason(err)))
		return fmt.Errorf("delete %s: %w", fileID, err)
	}

	s.removeById(fileID)
	s.logger.Info("FileRegistry", "File deleted", map[string]interface{}{"file_id": fileID})
	s.notify(entity.NotificationSuccess, fmt.Sprintf(constant.NotifyFileDeleted, current.Name))
	return nil
}

func (s *fileRegistryService) IsAnyActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.IsActive {
			return true
		}
	}
	return false
}

func (s *fileRegistryService) Files() []entity.UploadedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.UploadedFile, len(s.files))
	copy(out, s.files)
	return out
}

func (s *fileRegistryService) lookup(fileID string) (entity.UploadedFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexByIdLocked(fileID); i >= 0 {
		return s.files[i], true
	}
	return entity.UploadedFile{}, false
}

func (s *fileRegistryService) removeById(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexByIdLocked(fileID); i >= 0 {
		s.files = append(s.files[:i], s.files[i+1:]...)
	}
}

func (s *fileRegistryService) indexByIdLocked(fileID string) int {
	for i, f := range s.files {
		if f.Id == fileID {
			return i
		}
	}
	return -1
}

func (s *fileRegistryService) indexByNameLocked(name string) int {
	for i, f := range s.files {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// acquire reserves all keys or none.
func (s *fileRegistryService) acquire(keys ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if _, busy := s.inFlight[k]; busy {
			return false
		}
	}
	for _, k := range keys {
		s.inFlight[k] = struct{}{}
	}
	return true
}

func (s *fileRegistryService) release(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.inFlight, k)
	}
}

func (s *fileRegistryService) notify(level entity.NotificationLevel, message string) {
	if s.sink == nil {
		return
	}
	s.sink.Notify(entity.Notification{
		Level:      level,
		Source:     entity.NotificationSourceFiles,
		Message:    message,
		OccurredAt: time.Now(),
	})
}
