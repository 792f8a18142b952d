package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tetraeducacao/leadtracker/internal/entity"
)

// MockLeadLookup
type MockLeadLookup struct {
	mock.Mock
}

func (m *MockLeadLookup) Lookup(ctx context.Context, searchValue string, searchType entity.SearchType) (any, error) {
	args := m.Called(ctx, searchValue, searchType)
	return args.Get(0), args.Error(1)
}

// MockSearchLogRecorder
type MockSearchLogRecorder struct {
	mock.Mock
}

func (m *MockSearchLogRecorder) Record(ctx context.Context, log *entity.SearchLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// MockLeadSearcher
type MockLeadSearcher struct {
	mock.Mock
}

func (m *MockLeadSearcher) Execute(ctx context.Context, input SearchLeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *memoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

type observation struct {
	searchType entity.SearchType
	outcome    string
}

type recordingMetrics struct {
	mu           sync.Mutex
	observations []observation
}

func (r *recordingMetrics) ObserveSearch(searchType entity.SearchType, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations = append(r.observations, observation{searchType, outcome})
}
