package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/config"
	"github.com/examsecure/examsecure-backend/internal/model"
)

// AuditService queues session lifecycle events for asynchronous persistence
// by the audit worker. The session loop never waits on PostgreSQL for an
// audit write.
type AuditService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(rdb *redis.Client, log zerolog.Logger) *AuditService {
	return &AuditService{
		rdb: rdb,
		log: log.With().Str("component", "audit_service").Logger(),
	}
}

// Record pushes one audit entry onto the persistence queue.
func (s *AuditService) Record(ctx context.Context, entry model.AuditLog) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, data).Err(); err != nil {
		s.log.Error().Err(err).Str("event", entry.Event).Msg("Failed to enqueue audit entry")
		return fmt.Errorf("enqueue audit entry: %w", err)
	}
	return nil
}
