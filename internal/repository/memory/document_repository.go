package memory

import (
	"context"
	"sort"
	"sync"

	"coreader-client/internal/model"
	"coreader-client/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// DocumentRepository keeps uploaded documents for the dev backend. Entries
// never expire; they live until deleted or the process exits.
type DocumentRepository struct {
	cache *cache.Cache
	// mu serializes writers so read-modify-write sequences are atomic.
	mu sync.Mutex
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Save stores file, replacing any document with the same name.
func (r *DocumentRepository) Save(ctx context.Context, file *model.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.cache.Items() {
		existing := item.Object.(*model.StoredFile)
		if existing.Name == file.Name && id != file.Id {
			r.cache.Delete(id)
		}
	}
	r.cache.Set(file.Id, file, cache.NoExpiration)
	return nil
}

func (r *DocumentRepository) FindByName(ctx context.Context, name string) (*model.StoredFile, error) {
	for _, item := range r.cache.Items() {
		if f := item.Object.(*model.StoredFile); f.Name == name {
			return f, nil
		}
	}
	return nil, contract.ErrDocumentNotFound
}

// FindAll returns documents oldest upload first.
func (r *DocumentRepository) FindAll(ctx context.Context) ([]*model.StoredFile, error) {
	items := r.cache.Items()
	files := make([]*model.StoredFile, 0, len(items))
	for _, item := range items {
		files = append(files, item.Object.(*model.StoredFile))
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].Id < files[j].Id
		}
		return files[i].UploadedAt.Before(files[j].UploadedAt)
	})
	return files, nil
}

// SetActive flips the flag on a copy, so readers holding the old pointer never
// see it change.
func (r *DocumentRepository) SetActive(ctx context.Context, id string, isActive bool) (*model.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id)
	if !found {
		return nil, contract.ErrDocumentNotFound
	}
	updated := *x.(*model.StoredFile)
	updated.IsActive = isActive
	r.cache.Set(id, &updated, cache.NoExpiration)
	return &updated, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.cache.Get(id); !found {
		return contract.ErrDocumentNotFound
	}
	r.cache.Delete(id)
	return nil
}
