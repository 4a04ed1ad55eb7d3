package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/tasktrace/tasktrace/internal/config"
	"github.com/tasktrace/tasktrace/pkg/logger"
)

const (
	TaskTypeActivity = "activity:record"
)

// ActivityQueue decouples activity recording from the request path.
type ActivityQueue interface {
	// Enqueue adds an entry to the queue
	Enqueue(entry *ActivityEntry) error
	// IsAsync returns true if entries are processed asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

var (
	globalActivityQueue ActivityQueue
	activityQueueOnce   sync.Once
)

// InitActivityQueue initializes the global activity queue based on config.
// With Redis enabled, entries go through asynq; otherwise a sync queue
// writes them in a goroutine.
func InitActivityQueue(cfg *config.Config) ActivityQueue {
	activityQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncActivityQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[ActivityQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalActivityQueue = NewSyncActivityQueue()
			} else {
				logger.Infof("[ActivityQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalActivityQueue = queue
			}
		} else {
			logger.Infof("[ActivityQueue] Sync queue initialized (Redis disabled)")
			globalActivityQueue = NewSyncActivityQueue()
		}
	})
	return globalActivityQueue
}

// GetActivityQueue returns the global activity queue instance
func GetActivityQueue() ActivityQueue {
	return globalActivityQueue
}

// AsyncActivityQueue implements ActivityQueue using asynq (Redis-based)
type AsyncActivityQueue struct {
	client *asynq.Client
}

func NewAsyncActivityQueue(cfg *config.RedisConfig) (*AsyncActivityQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncActivityQueue{client: client}, nil
}

func (q *AsyncActivityQueue) Enqueue(entry *ActivityEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeActivity, payload)
	_, err = q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	return err
}

func (q *AsyncActivityQueue) IsAsync() bool {
	return true
}

func (q *AsyncActivityQueue) Close() error {
	return q.client.Close()
}

// SyncActivityQueue processes entries without Redis. Writes happen in a
// goroutine so recording never blocks the response.
type SyncActivityQueue struct {
	processor func(context.Context, *ActivityEntry) error
}

func NewSyncActivityQueue() *SyncActivityQueue {
	return &SyncActivityQueue{}
}

func (q *SyncActivityQueue) SetProcessor(processor func(context.Context, *ActivityEntry) error) {
	q.processor = processor
}

func (q *SyncActivityQueue) Enqueue(entry *ActivityEntry) error {
	if q.processor == nil {
		logger.Infof("[SyncActivityQueue] Warning: no processor set, entry will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, entry); err != nil {
			logger.Infof("[SyncActivityQueue] Entry processing failed: %v", err)
		}
	}()

	return nil
}

func (q *SyncActivityQueue) IsAsync() bool {
	return false
}

func (q *SyncActivityQueue) Close() error {
	return nil
}
