package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

// ProposalRecord is what a proposal store keeps: the generated proposal and
// the request that produced it, so the proposal can be regenerated.
type ProposalRecord struct {
	Proposal dto.TimetableProposal        `json:"proposal"`
	Request  dto.GenerateTimetableRequest `json:"request"`
}

// ProposalStore keeps unsaved proposals for a limited time.
type ProposalStore interface {
	Save(ctx context.Context, record ProposalRecord) error
	Get(ctx context.Context, id string) (*ProposalRecord, bool, error)
	Delete(ctx context.Context, id string) error
}

type memoryProposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]ProposalRecord
}

// NewMemoryProposalStore keeps proposals in process memory.
func NewMemoryProposalStore(ttl time.Duration) ProposalStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &memoryProposalStore{ttl: ttl, now: time.Now, items: make(map[string]ProposalRecord)}
}

func (s *memoryProposalStore) Save(_ context.Context, record ProposalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	s.items[record.Proposal.ProposalID] = record
	return nil
}

func (s *memoryProposalStore) Get(ctx context.Context, id string) (*ProposalRecord, bool, error) {
	s.mu.RLock()
	record, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().Sub(record.Proposal.GeneratedAt) > s.ttl {
		_ = s.Delete(ctx, id)
		return nil, false, nil
	}
	return &record, true, nil
}

func (s *memoryProposalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// evictExpired drops stale proposals; callers hold the write lock.
func (s *memoryProposalStore) evictExpired() {
	cutoff := s.now().Add(-s.ttl)
	for id, record := range s.items {
		if record.Proposal.GeneratedAt.Before(cutoff) {
			delete(s.items, id)
		}
	}
}

type proposalCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisProposalStore shares proposals between API replicas through Redis.
type RedisProposalStore struct {
	cache proposalCache
	ttl   time.Duration
}

// NewRedisProposalStore wraps a JSON cache repository.
func NewRedisProposalStore(cache proposalCache, ttl time.Duration) *RedisProposalStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisProposalStore{cache: cache, ttl: ttl}
}

// Save stores the record with the configured TTL.
func (s *RedisProposalStore) Save(ctx context.Context, record ProposalRecord) error {
	return s.cache.Set(ctx, record.Proposal.ProposalID, record, s.ttl)
}

// Get loads a record; expiry is left to Redis.
func (s *RedisProposalStore) Get(ctx context.Context, id string) (*ProposalRecord, bool, error) {
	var record ProposalRecord
	if err := s.cache.Get(ctx, id, &record); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &record, true, nil
}

// Delete removes a record.
func (s *RedisProposalStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, id)
}
