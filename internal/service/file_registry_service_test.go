package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"coreader-client/internal/dto"
	"coreader-client/internal/entity"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedRegistry(t *testing.T, backend *fakeFileBackend, files ...dto.UploadedFileDTO) (IFileRegistryService, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	backend.listResp = files
	registry := NewFileRegistryService(backend, sink, logger.NewNopLogger())
	require.NoError(t, registry.LoadAll(context.Background()))
	return registry, sink
}

func TestLoadAllReplacesLocalSet(t *testing.T) {
	backend := &fakeFileBackend{}
	registry, sink := newLoadedRegistry(t, backend,
		dto.UploadedFileDTO{Id: "a", Name: "x.pdf", IsActive: false},
		dto.UploadedFileDTO{Id: "b", Name: "y.pdf", IsActive: true},
	)

	assert.Equal(t, []entity.UploadedFile{
		{Id: "a", Name: "x.pdf", IsActive: false},
		{Id: "b", Name: "y.pdf", IsActive: true},
	}, registry.Files())
	assert.True(t, registry.IsAnyActive())
	assert.Empty(t, sink.All())
}

func TestLoadAllFailureEmptiesSetAndNotifies(t *testing.T) {
	backend := &fakeFileBackend{}
	registry, sink := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf", IsActive: true})

	backend.listErr = errors.New("connection refused")
	err := registry.LoadAll(context.Background())

	require.Error(t, err)
	assert.Empty(t, registry.Files())
	assert.False(t, registry.IsAnyActive())
	require.Len(t, sink.All(), 1)
	assert.Equal(t, entity.NotificationError, sink.All()[0].Level)
}

func TestIsAnyActive(t *testing.T) {
	backend := &fakeFileBackend{}
	registry, _ := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf", IsActive: false})
	assert.False(t, registry.IsAnyActive())

	_, err := registry.ToggleActive(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, registry.IsAnyActive())
}

func TestUploadAppendsNewName(t *testing.T) {
	backend := &fakeFileBackend{uploadResp: &dto.UploadFileResponse{FileId: "b", Filename: "y.pdf"}}
	registry, sink := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf"})

	got, err := registry.Upload(context.Background(), "y.pdf", []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, entity.UploadedFile{Id: "b", Name: "y.pdf", IsActive: true}, *got)
	assert.Len(t, registry.Files(), 2)
	require.Len(t, sink.All(), 1)
	assert.Equal(t, entity.NotificationSuccess, sink.All()[0].Level)
}

func TestUploadReplacesSameName(t *testing.T) {
	backend := &fakeFileBackend{uploadResp: &dto.UploadFileResponse{FileId: "new", Filename: "x.pdf"}}
	registry, sink := newLoadedRegistry(t, backend,
		dto.UploadedFileDTO{Id: "old", Name: "x.pdf", IsActive: false},
		dto.UploadedFileDTO{Id: "b", Name: "y.pdf", IsActive: false},
	)

	_, err := registry.Upload(context.Background(), "x.pdf", []byte("v2"))
	require.NoError(t, err)

	assert.Equal(t, []entity.UploadedFile{
		{Id: "new", Name: "x.pdf", IsActive: true},
		{Id: "b", Name: "y.pdf", IsActive: false},
	}, registry.Files())
	assert.Len(t, sink.All(), 1)
}

func TestUploadFailureLeavesSetUnchanged(t *testing.T) {
	backend := &fakeFileBackend{uploadErr: &transport.StatusError{Code: http.StatusUnsupportedMediaType, Detail: "File is not valid UTF-8 text"}}
	registry, sink := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf"})
	before := registry.Files()

	_, err := registry.Upload(context.Background(), "bin.dat", []byte{0xff})
	require.Error(t, err)

	assert.Equal(t, before, registry.Files())
	require.Len(t, sink.All(), 1)
	assert.Equal(t, entity.NotificationError, sink.All()[0].Level)
	assert.Contains(t, sink.All()[0].Message, "File is not valid UTF-8 text")
}

func TestToggleActive(t *testing.T) {
	files := []dto.UploadedFileDTO{
		{Id: "a", Name: "x.pdf", IsActive: false},
		{Id: "b", Name: "y.pdf", IsActive: true},
	}

	tests := []struct {
		name      string
		toggleErr error
		wantErr   error
		wantFiles []entity.UploadedFile
		wantLevel entity.NotificationLevel
	}{
		{
			name: "success flips only the target",
			wantFiles: []entity.UploadedFile{
				{Id: "a", Name: "x.pdf", IsActive: true},
				{Id: "b", Name: "y.pdf", IsActive: true},
			},
			wantLevel: entity.NotificationSuccess,
		},
		{
			name:      "not found removes only the target",
			toggleErr: &transport.StatusError{Code: http.StatusNotFound, Detail: "File not found"},
			wantErr:   ErrFileNotFound,
			wantFiles: []entity.UploadedFile{
				{Id: "b", Name: "y.pdf", IsActive: true},
			},
			wantLevel: entity.NotificationWarning,
		},
		{
			name:      "other failure leaves set unchanged",
			toggleErr: &transport.StatusError{Code: http.StatusInternalServerError},
			wantFiles: []entity.UploadedFile{
				{Id: "a", Name: "x.pdf", IsActive: false},
				{Id: "b", Name: "y.pdf", IsActive: true},
			},
			wantLevel: entity.NotificationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeFileBackend{toggleErr: tt.toggleErr}
			registry, sink := newLoadedRegistry(t, backend, files...)

			_, err := registry.ToggleActive(context.Background(), "a")
			if tt.toggleErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			assert.Equal(t, tt.wantFiles, registry.Files())
			require.Len(t, sink.All(), 1)
			assert.Equal(t, tt.wantLevel, sink.All()[0].Level)
		})
	}
}

func TestToggleUnknownIdMakesNoCall(t *testing.T) {
	backend := &fakeFileBackend{}
	registry, sink := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf"})

	_, err := registry.ToggleActive(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, []string{"list"}, backend.Calls())
	assert.Len(t, sink.All(), 1)
}

func TestDelete(t *testing.T) {
	t.Run("success removes entry", func(t *testing.T) {
		backend := &fakeFileBackend{}
		registry, sink := newLoadedRegistry(t, backend,
			dto.UploadedFileDTO{Id: "a", Name: "x.pdf"},
			dto.UploadedFileDTO{Id: "b", Name: "y.pdf"},
		)

		require.NoError(t, registry.Delete(context.Background(), "a"))
		assert.Equal(t, []entity.UploadedFile{{Id: "b", Name: "y.pdf"}}, registry.Files())
		require.Len(t, sink.All(), 1)
		assert.Equal(t, entity.NotificationSuccess, sink.All()[0].Level)
	})

	t.Run("failure keeps entry", func(t *testing.T) {
		backend := &fakeFileBackend{deleteErr: &transport.StatusError{Code: http.StatusInternalServerError, Detail: "disk full"}}
		registry, sink := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf"})

		err := registry.Delete(context.Background(), "a")
		require.Error(t, err)
		assert.Len(t, registry.Files(), 1)
		require.Len(t, sink.All(), 1)
		assert.Contains(t, sink.All()[0].Message, "disk full")
	})
}

func TestSameIdMutationIsRejectedWhileInFlight(t *testing.T) {
	backend := &fakeFileBackend{}
	registry, sink := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf"})

	backend.block = make(chan struct{})
	backend.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := registry.ToggleActive(context.Background(), "a")
		done <- err
	}()

	select {
	case <-backend.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("toggle never reached the backend")
	}

	err := registry.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, ErrFileBusy)

	close(backend.block)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"list", "toggle:a"}, backend.Calls())
	assert.Len(t, sink.All(), 2)
	assert.True(t, registry.Files()[0].IsActive)
}

func TestUploadReservesReplacedId(t *testing.T) {
	backend := &fakeFileBackend{uploadResp: &dto.UploadFileResponse{FileId: "new", Filename: "x.pdf"}}
	registry, _ := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf"})

	backend.block = make(chan struct{})
	backend.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := registry.Upload(context.Background(), "x.pdf", []byte("v2"))
		done <- err
	}()
	<-backend.entered

	_, err := registry.ToggleActive(context.Background(), "a")
	assert.ErrorIs(t, err, ErrFileBusy)

	close(backend.block)
	require.NoError(t, <-done)
	assert.Equal(t, "new", registry.Files()[0].Id)
}

func TestToggleAfterReloadDroppedEntryReportsNotFound(t *testing.T) {
	backend := &fakeFileBackend{}
	registry, sink := newLoadedRegistry(t, backend, dto.UploadedFileDTO{Id: "a", Name: "x.pdf", IsActive: true})

	backend.block = make(chan struct{})
	backend.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := registry.ToggleActive(context.Background(), "a")
		done <- err
	}()
	<-backend.entered

	backend.mu.Lock()
	backend.listResp = nil
	backend.mu.Unlock()
	require.NoError(t, registry.LoadAll(context.Background()))

	close(backend.block)
	err := <-done

	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Empty(t, registry.Files())
	require.Len(t, sink.All(), 1)
	assert.Equal(t, entity.NotificationWarning, sink.All()[0].Level)
	assert.Contains(t, sink.All()[0].Message, "x.pdf")
}
