package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"coreader-client/internal/model"
	"coreader-client/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReplacesSameName(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &model.StoredFile{Id: "old", Name: "x.txt", UploadedAt: time.Now()}))
	require.NoError(t, repo.Save(ctx, &model.StoredFile{Id: "new", Name: "x.txt", UploadedAt: time.Now()}))

	found, err := repo.FindByName(ctx, "x.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", found.Id)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.FindByName(ctx, "missing.txt")
	assert.ErrorIs(t, err, contract.ErrDocumentNotFound)
}

func TestSetActiveDoesNotMutateReaders(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &model.StoredFile{Id: "a", Name: "x.txt", IsActive: true}))

	before, err := repo.FindByName(ctx, "x.txt")
	require.NoError(t, err)

	updated, err := repo.SetActive(ctx, "a", false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.True(t, before.IsActive)

	_, err = repo.SetActive(ctx, "missing", true)
	assert.ErrorIs(t, err, contract.ErrDocumentNotFound)
}

func TestSetActiveNeverResurrectsDeleted(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		repo := NewDocumentRepository()
		require.NoError(t, repo.Save(ctx, &model.StoredFile{Id: "a", Name: "x.txt"}))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.SetActive(ctx, "a", true)
		}()
		go func() {
			defer wg.Done()
			_ = repo.Delete(ctx, "a")
		}()
		wg.Wait()

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	}
}
