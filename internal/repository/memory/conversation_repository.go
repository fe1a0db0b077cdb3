package memory

import (
	"context"
	"sync"
	"time"

	"coreader-client/internal/model"

	"github.com/patrickmn/go-cache"
)

const conversationKey = "conversation"

// ConversationRepository is the dev backend's chat memory. A single
// conversation is kept; it expires after an hour of inactivity.
type ConversationRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewConversationRepository() *ConversationRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Append(ctx context.Context, turn model.ConversationTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var history []model.ConversationTurn
	if x, found := r.cache.Get(conversationKey); found {
		history = x.([]model.ConversationTurn)
	}
	history = append(history[:len(history):len(history)], turn)
	r.cache.Set(conversationKey, history, cache.DefaultExpiration)
	return nil
}

func (r *ConversationRepository) Clear(ctx context.Context) error {
	r.cache.Delete(conversationKey)
	return nil
}
