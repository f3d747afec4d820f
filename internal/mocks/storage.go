package mocks

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/service"
)

var (
	_ service.FileStore = (*MockFileStore)(nil)
	_ cache.Store       = (*MockCache)(nil)
)

// MockFileStore records saved and removed attachment URLs
type MockFileStore struct {
	Saved   []string
	Removed []string
	// FailAfter makes Save fail once this many files were stored; negative disables
	FailAfter int
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{FailAfter: -1}
}

func (m *MockFileStore) Save(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if m.FailAfter >= 0 && len(m.Saved) >= m.FailAfter {
		return "", errors.New("disk full")
	}
	url := "/uploads/" + folder + "/" + fh.Filename
	m.Saved = append(m.Saved, url)
	return url, nil
}

func (m *MockFileStore) Remove(ctx context.Context, url string) error {
	m.Removed = append(m.Removed, url)
	return nil
}

// MockCache is an in-memory cache.Store without expiry
type MockCache struct {
	Entries       map[string][]byte
	Tags          map[string][]string
	Invalidations []string
	Err           error
}

func NewMockCache() *MockCache {
	return &MockCache{
		Entries: make(map[string][]byte),
		Tags:    make(map[string][]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	data, ok := m.Entries[key]
	return data, ok, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Entries[key] = value
	for _, tag := range tags {
		m.Tags[tag] = append(m.Tags[tag], key)
	}
	return nil
}

func (m *MockCache) Invalidate(ctx context.Context, tags ...string) error {
	m.Invalidations = append(m.Invalidations, tags...)
	if m.Err != nil {
		return m.Err
	}
	for _, tag := range tags {
		for _, key := range m.Tags[tag] {
			delete(m.Entries, key)
		}
		delete(m.Tags, tag)
	}
	return nil
}

func (m *MockCache) Ping(ctx context.Context) error { return m.Err }

func (m *MockCache) Close() error { return nil }
