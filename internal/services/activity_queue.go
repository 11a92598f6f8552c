package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/config"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/logger"
)

const TaskTypeEngagement = "engagement:record"

// ActivityQueue accepts engagement-log entries for eventual persistence.
// Enqueue failures are always swallowed by the caller; a lost entry must
// never fail the workflow that produced it.
type ActivityQueue interface {
	// Enqueue hands an entry to the queue.
	Enqueue(entry *models.EngagementLog) error
	// IsAsync returns true if entries are written out of process.
	IsAsync() bool
	// Close gracefully shuts down the queue.
	Close() error
}

var (
	globalActivityQueue ActivityQueue
	activityQueueOnce   sync.Once
)

// InitActivityQueue initializes the global activity queue based on config.
// With Redis enabled an asynq-backed queue is used; otherwise, or when Redis
// is unreachable, entries are written synchronously.
func InitActivityQueue(cfg *config.Config, db *gorm.DB) ActivityQueue {
	activityQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncActivityQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[ActivityQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalActivityQueue = NewSyncActivityQueue(db)
			} else {
				logger.Infof("[ActivityQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalActivityQueue = queue
			}
		} else {
			logger.Infof("[ActivityQueue] Sync queue initialized (Redis disabled)")
			globalActivityQueue = NewSyncActivityQueue(db)
		}
	})
	return globalActivityQueue
}

// GetActivityQueue returns the global activity queue instance.
func GetActivityQueue() ActivityQueue {
	return globalActivityQueue
}

// SyncActivityQueue writes entries directly to the database.
type SyncActivityQueue struct {
	db *gorm.DB
}

func NewSyncActivityQueue(db *gorm.DB) *SyncActivityQueue {
	return &SyncActivityQueue{db: db}
}

func (q *SyncActivityQueue) Enqueue(entry *models.EngagementLog) error {
	return q.db.Create(entry).Error
}

func (q *SyncActivityQueue) IsAsync() bool { return false }

func (q *SyncActivityQueue) Close() error { return nil }

// AsyncActivityQueue hands entries to asynq (Redis-based); an
// EngagementWorker on the consuming side performs the insert.
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

func (q *AsyncActivityQueue) Enqueue(entry *models.EngagementLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeEngagement, payload)
	_, err = q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	return err
}

func (q *AsyncActivityQueue) IsAsync() bool { return true }

func (q *AsyncActivityQueue) Close() error { return q.client.Close() }

// EngagementWorker consumes engagement entries from asynq and persists them.
type EngagementWorker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	db      *gorm.DB
	running bool
	mu      sync.Mutex
}

// NewEngagementWorker returns nil when Redis is disabled; the sync queue
// needs no worker.
func NewEngagementWorker(cfg *config.RedisConfig, db *gorm.DB) *EngagementWorker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warnf("[EngagementWorker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &EngagementWorker{
		server: server,
		mux:    asynq.NewServeMux(),
		db:     db,
	}
}

// Start begins consuming tasks.
func (w *EngagementWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeEngagement, w.handleEngagementTask)
	w.running = true

	go func() {
		logger.Infof("[EngagementWorker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[EngagementWorker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker.
func (w *EngagementWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.server.Shutdown()
	w.running = false
}

func (w *EngagementWorker) handleEngagementTask(ctx context.Context, t *asynq.Task) error {
	var entry models.EngagementLog
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return err
	}
	entry.ID = 0
	return w.db.WithContext(ctx).Create(&entry).Error
}
