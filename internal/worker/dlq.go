package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DeadLetterQueue is the Redis list where alert jobs land after exhausting
// their attempts. An operator can inspect entries with LRANGE and replay one
// by pushing its payload back onto QueueStockAlert.
const DeadLetterQueue = "dlq:" + QueueStockAlert

// deadLetter freezes a failed job together with the error that killed it.
type deadLetter struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// parkDeadLetter moves an exhausted job onto the dead-letter list. Failures
// here are logged and dropped; there is nowhere further to escalate.
func parkDeadLetter(ctx context.Context, rdb *redis.Client, job Job, reason string) {
	entry := deadLetter{
		Queue:    QueueStockAlert,
		Type:     job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("type", job.Type).Msg("dead letter marshal failed")
		return
	}
	if err := rdb.LPush(ctx, DeadLetterQueue, data).Err(); err != nil {
		log.Error().Err(err).Str("key", DeadLetterQueue).Msg("dead letter push failed")
		return
	}
	log.Warn().
		Str("type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("job moved to dead letter queue")
}
