// Package autosave snapshots a running attempt's navigation state at a
// fixed interval so an interrupted session can resume where it left off.
// Answers themselves are persisted synchronously on every save; the snapshot
// only carries the cursor, question statuses and warning count.
package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/examsecure/examsecure-backend/internal/config"
	"github.com/examsecure/examsecure-backend/internal/presentation"
)

// ErrNoSnapshot is returned when no usable snapshot exists for an attempt.
var ErrNoSnapshot = errors.New("no snapshot available")

// Snapshot is the periodically persisted resume state of one attempt.
type Snapshot struct {
	AttemptID    uuid.UUID             `json:"attempt_id"`
	ExamID       uuid.UUID             `json:"exam_id"`
	StudentID    int                   `json:"student_id"`
	CurrentIndex int                   `json:"current_index"`
	Statuses     []presentation.Status `json:"statuses"`
	WarningCount int                   `json:"warning_count"`
	SavedAt      time.Time             `json:"saved_at"`
}

// Store persists and retrieves attempt snapshots.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, attemptID uuid.UUID) (Snapshot, error)
	Clear(ctx context.Context, attemptID uuid.UUID) error
}

// RedisStore keeps snapshots in Redis keyed by attempt.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore builds a store whose entries expire after ttl. A zero ttl
// keeps snapshots until explicitly cleared.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	key := config.CacheKey.AttemptSnapshotKey(snap.AttemptID.String())
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, attemptID uuid.UUID) (Snapshot, error) {
	key := config.CacheKey.AttemptSnapshotKey(attemptID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) Clear(ctx context.Context, attemptID uuid.UUID) error {
	key := config.CacheKey.AttemptSnapshotKey(attemptID.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store used by tests and single-node setups.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[uuid.UUID]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[uuid.UUID]Snapshot)}
}

func (s *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.AttemptID] = snap
	return nil
}

func (s *MemoryStore) Load(_ context.Context, attemptID uuid.UUID) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[attemptID]
	if !ok {
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}

func (s *MemoryStore) Clear(_ context.Context, attemptID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, attemptID)
	return nil
}
