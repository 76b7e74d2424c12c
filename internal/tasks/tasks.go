package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif" // register decoders for uploaded formats
	"image/jpeg"
	_ "image/png"
	"log"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"househunt/server/internal/config"
	"househunt/server/internal/storage"
)

// TypeImageThumbnail downsizes a stored property image and writes a
// _thumb.jpg sibling next to it.
const TypeImageThumbnail = "image:thumbnail"

// ImageThumbnailPayload identifies the stored image to process.
type ImageThumbnailPayload struct {
	Filename string `json:"filename"`
}

// --- Task Client (enqueuing tasks) ---

// NewClient creates an asynq client over the shared Redis connection.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// NewImageThumbnailTask builds the task for a freshly stored image.
func NewImageThumbnailTask(filename string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageThumbnailPayload{Filename: filename})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal thumbnail payload: %w", err)
	}
	return asynq.NewTask(TypeImageThumbnail, payload), nil
}

// --- Task Server (processing tasks) ---

// TaskProcessor holds the dependencies task handlers need.
type TaskProcessor struct {
	cfg   *config.Config
	store storage.Storage
}

// NewTaskProcessor creates a TaskProcessor.
func NewTaskProcessor(cfg *config.Config, store storage.Storage) *TaskProcessor {
	return &TaskProcessor{cfg: cfg, store: store}
}

// HandleImageThumbnailTask reads the original image from storage, scales it
// down to the configured bounding box and stores the JPEG thumbnail.
// A payload that cannot be parsed or an image that cannot be decoded is not
// retryable; storage errors are, under asynq's default retry policy.
func (p *TaskProcessor) HandleImageThumbnailTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal thumbnail payload: %v: %w", err, asynq.SkipRetry)
	}

	rc, err := p.store.Open(ctx, payload.Filename)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", payload.Filename, err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %v: %w", payload.Filename, err, asynq.SkipRetry)
	}

	dim := uint(p.cfg.ThumbMaxDimension)
	thumb := resize.Thumbnail(dim, dim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode thumbnail for %s: %v: %w", payload.Filename, err, asynq.SkipRetry)
	}

	thumbName := storage.ThumbName(payload.Filename)
	if err := p.store.Put(ctx, thumbName, &buf); err != nil {
		return fmt.Errorf("failed to store thumbnail %s: %w", thumbName, err)
	}

	log.Printf("Stored thumbnail %s for %s", thumbName, payload.Filename)
	return nil
}

// SetupServer creates the asynq server for the image worker.
func SetupServer(rdb *redis.Client) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     rdb.Options().Addr,
			Password: rdb.Options().Password,
			DB:       rdb.Options().DB,
		},
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
}
