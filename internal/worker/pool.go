package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"killrvideo-backend/internal/models"
	"killrvideo-backend/internal/repository"
	"killrvideo-backend/internal/services"
)

const backfillQueueKey = "queue:embedding-backfill"

// Queue enqueues embedding backfill jobs for videos whose embedding step
// failed during submission.
type Queue struct {
	redis *redis.Client
}

func NewQueue(redisClient *redis.Client) *Queue {
	return &Queue{redis: redisClient}
}

func (q *Queue) Enqueue(ctx context.Context, videoID uuid.UUID) error {
	return q.push(ctx, models.EmbeddingJob{VideoID: videoID})
}

func (q *Queue) push(ctx context.Context, job models.EmbeddingJob) error {
	payload, _ := json.Marshal(job)
	return q.redis.LPush(ctx, backfillQueueKey, string(payload)).Err()
}

// Pool retries embedding computation for PENDING videos. A video becomes
// READY once a vector lands, or FAILED after the attempt budget runs out;
// both states are terminal for the pipeline.
type Pool struct {
	redis       *redis.Client
	queue       *Queue
	videoRepo   *repository.VideoRepo
	embedder    services.EmbeddingProvider
	maxRetries  int
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	videoRepo *repository.VideoRepo,
	embedder services.EmbeddingProvider,
	maxRetries int,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		queue:       NewQueue(redisClient),
		videoRepo:   videoRepo,
		embedder:    embedder,
		maxRetries:  maxRetries,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d embedding backfill workers", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, backfillQueueKey).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.EmbeddingJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock so only one worker reprocesses a video
		lockKey := fmt.Sprintf("backfill_lock:%s", job.VideoID)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		log.Printf("Worker %d: backfilling embedding for video %s (attempt %d)", id, job.VideoID, job.Attempts+1)

		if err := p.process(ctx, &job); err != nil {
			p.handleFailure(ctx, &job, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) process(ctx context.Context, job *models.EmbeddingJob) error {
	video, err := p.videoRepo.GetByVideoID(ctx, job.VideoID, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("video %s gone, dropping backfill job", job.VideoID)
			return nil
		}
		return fmt.Errorf("failed to load video: %w", err)
	}

	// READY and FAILED are terminal; a stale job must not regress them
	if video.ProcessingStatus != models.StatusPending {
		return nil
	}

	vector, err := p.embedder.Embed(ctx, services.EmbeddingText(video))
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	if err := p.videoRepo.SetEmbedding(ctx, video.VideoID, vector, models.StatusReady); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	log.Printf("Video %s is READY", video.VideoID)
	return nil
}

func (p *Pool) handleFailure(ctx context.Context, job *models.EmbeddingJob, cause error) {
	job.Attempts++
	if job.Attempts >= p.maxRetries {
		log.Printf("video %s exhausted %d embedding attempts, marking FAILED: %v", job.VideoID, job.Attempts, cause)
		if err := p.videoRepo.SetStatus(ctx, job.VideoID, models.StatusFailed); err != nil {
			log.Printf("failed to mark video %s FAILED: %v", job.VideoID, err)
		}
		return
	}

	log.Printf("embedding backfill for %s failed (attempt %d/%d), requeueing: %v", job.VideoID, job.Attempts, p.maxRetries, cause)
	if err := p.queue.push(ctx, *job); err != nil {
		log.Printf("failed to requeue backfill job for %s: %v", job.VideoID, err)
	}
}
