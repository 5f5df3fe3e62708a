package repository

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache keeps the most recent predictions in process memory.
type LRUCache struct {
	cache *lru.Cache[string, string]
}

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: c}, nil
}

func (l *LRUCache) Get(_ context.Context, key string) (string, bool) {
	return l.cache.Get(key)
}

func (l *LRUCache) Set(_ context.Context, key string, value string) error {
	l.cache.Add(key, value)
	return nil
}

func (l *LRUCache) Len() int {
	return l.cache.Len()
}
