package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// QueueRelog carries audit records whose first append failed after the
	// product write had already landed (partial commits).
	QueueRelog = "jobs:relog"

	maxRelogAttempts = 5
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRelog pushes an unjournaled change record for reconciliation.
func (d *Dispatcher) EnqueueRelog(ctx context.Context, rec *model.ChangeRecord) error {
	return d.enqueue(ctx, QueueRelog, "relog", rec, 0)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}, attempts int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data, Attempts: attempts})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers groups the job processors wired at the composition root.
type WorkerHandlers struct {
	Relog *RelogWorker
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueRelog}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch job.Type {
	case "relog":
		err = handlers.Relog.Process(ctx, job.Payload)
	default:
		log.Error().Str("type", job.Type).Msg("unknown job type")
		return
	}

	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxRelogAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	log.Warn().Str("type", job.Type).Int("attempts", job.Attempts).Err(err).
		Msg("job failed, re-queueing")
	encoded, merr := json.Marshal(job)
	if merr != nil {
		log.Error().Err(merr).Msg("failed to re-marshal job")
		return
	}
	if perr := rdb.LPush(ctx, queue, encoded).Err(); perr != nil {
		log.Error().Err(perr).Msg("failed to re-queue job")
	}
}

// RelogWorker retries audit trail appends that failed at commit time.
type RelogWorker struct {
	changes repository.ChangeRecordRepository
}

func NewRelogWorker(changes repository.ChangeRecordRepository) *RelogWorker {
	return &RelogWorker{changes: changes}
}

func (w *RelogWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var rec model.ChangeRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return err
	}
	if err := w.changes.Create(ctx, &rec); err != nil {
		return err
	}
	log.Info().Str("product_id", rec.ProductID.String()).Str("type", rec.Type).
		Msg("audit record reconciled")
	return nil
}
