package integrity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/config"
)

// Recorder persists violation reports out-of-band from the session loop.
type Recorder interface {
	Record(ctx context.Context, v Violation) error
}

// QueueRecorder pushes violations onto a Redis list for asynchronous
// persistence by the violation worker.
type QueueRecorder struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewQueueRecorder(rdb *redis.Client, log zerolog.Logger) *QueueRecorder {
	return &QueueRecorder{
		rdb: rdb,
		log: log.With().Str("component", "integrity_recorder").Logger(),
	}
}

func (r *QueueRecorder) Record(ctx context.Context, v Violation) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode violation: %w", err)
	}
	if err := r.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data).Err(); err != nil {
		r.log.Error().Err(err).
			Str("attempt_id", v.AttemptID.String()).
			Msg("Failed to enqueue violation")
		return fmt.Errorf("enqueue violation: %w", err)
	}
	return nil
}
