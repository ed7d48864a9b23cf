package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/scraper"
	"swipeboard-utils/pkg/models"
	"swipeboard-utils/pkg/utils"
)

// JobResult represents the result of a resolution job
type JobResult struct {
	Ad        *models.NormalizedAd
	Cached    bool
	Error     error
	RequestID string
	Duration  time.Duration
}

// ResolveJob represents a job to be processed by workers
type ResolveJob struct {
	ID         string
	AdURL      string
	Options    *models.ResolveOptions
	ResultChan chan JobResult
	Context    context.Context
	CreatedAt  time.Time
}

// Worker represents a single worker goroutine
type Worker struct {
	ID       int
	JobChan  chan ResolveJob
	QuitChan chan bool
	Pool     *WorkerPool
	logger   logging.Logger
}

// WorkerPool manages multiple worker goroutines and a job queue
type WorkerPool struct {
	config      *config.Config
	workers     []*Worker
	jobQueue    chan ResolveJob
	dispatcher  *Dispatcher
	rateLimiter *RateLimiter
	resolver    *scraper.Resolver
	logger      logging.Logger
	mu          sync.RWMutex
	running     bool
	stats       *PoolStats
}

// PoolStats tracks worker pool statistics
type PoolStats struct {
	mu                    sync.RWMutex
	JobsQueued            int64
	JobsProcessed         int64
	JobsSuccessful        int64
	JobsFailed            int64
	TotalProcessingTime   time.Duration
	AverageProcessingTime time.Duration
}

// PoolStatsData is the exported snapshot of pool statistics
type PoolStatsData struct {
	JobsQueued            int64         `json:"jobs_queued"`
	JobsProcessed         int64         `json:"jobs_processed"`
	JobsSuccessful        int64         `json:"jobs_successful"`
	JobsFailed            int64         `json:"jobs_failed"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
}

// NewWorkerPool creates a new worker pool instance
func NewWorkerPool(cfg *config.Config, resolver *scraper.Resolver) *WorkerPool {
	logger := logging.GetGlobalLogger()

	pool := &WorkerPool{
		config:      cfg,
		jobQueue:    make(chan ResolveJob, cfg.Workers.QueueSize),
		rateLimiter: NewRateLimiter(cfg),
		resolver:    resolver,
		logger:      logger,
		stats:       &PoolStats{},
	}

	pool.workers = make([]*Worker, cfg.Workers.PoolSize)
	for i := 0; i < cfg.Workers.PoolSize; i++ {
		pool.workers[i] = &Worker{
			ID:       i + 1,
			JobChan:  make(chan ResolveJob),
			QuitChan: make(chan bool),
			Pool:     pool,
			logger:   logger.WithField("worker_id", i+1),
		}
	}

	pool.dispatcher = NewDispatcher(pool.jobQueue, pool.workers)

	logger.Info("Worker pool initialized", map[string]interface{}{
		"pool_size": cfg.Workers.PoolSize,
	})
	return pool
}

// Start starts the worker pool
func (wp *WorkerPool) Start() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return fmt.Errorf("worker pool is already running")
	}

	wp.logger.Info("Starting worker pool")

	wp.dispatcher.Start()
	for _, worker := range wp.workers {
		go worker.Start()
	}

	wp.running = true
	wp.logger.Info("Worker pool started", map[string]interface{}{
		"workers": len(wp.workers),
	})
	return nil
}

// Stop stops the worker pool gracefully
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return nil
	}

	wp.logger.Info("Stopping worker pool")

	wp.dispatcher.Stop()
	for _, worker := range wp.workers {
		worker.Stop()
	}
	close(wp.jobQueue)

	wp.running = false
	wp.logger.Info("Worker pool stopped")
	return nil
}

// SubmitJob submits a new resolution job to the pool and waits for its result
func (wp *WorkerPool) SubmitJob(ctx context.Context, adURL string, options *models.ResolveOptions) (*JobResult, error) {
	if !wp.IsRunning() {
		return nil, fmt.Errorf("worker pool is not running")
	}

	host := extractHost(adURL)
	if !wp.rateLimiter.Allow(host) {
		return nil, fmt.Errorf("rate limit exceeded for host: %s", host)
	}

	job := ResolveJob{
		ID:         utils.GenerateRequestID(),
		AdURL:      adURL,
		Options:    options,
		ResultChan: make(chan JobResult, 1),
		Context:    ctx,
		CreatedAt:  time.Now(),
	}

	wp.stats.mu.Lock()
	wp.stats.JobsQueued++
	wp.stats.mu.Unlock()

	select {
	case wp.jobQueue <- job:
		wp.logger.Debug("Job submitted to queue", map[string]interface{}{
			"job_id": job.ID,
			"url":    adURL,
		})
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("job queue is full, request timed out")
	}

	timeout := wp.config.Workers.Timeout
	if options != nil && options.Timeout > 0 {
		timeout = options.Timeout
	}

	select {
	case result := <-job.ResultChan:
		return &result, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("job processing timed out after %v", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsRunning returns true if the worker pool is running
func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

// GetStats returns a snapshot of pool statistics
func (wp *WorkerPool) GetStats() PoolStatsData {
	wp.stats.mu.RLock()
	defer wp.stats.mu.RUnlock()

	data := PoolStatsData{
		JobsQueued:     wp.stats.JobsQueued,
		JobsProcessed:  wp.stats.JobsProcessed,
		JobsSuccessful: wp.stats.JobsSuccessful,
		JobsFailed:     wp.stats.JobsFailed,
	}
	if wp.stats.JobsProcessed > 0 {
		data.AverageProcessingTime = wp.stats.TotalProcessingTime / time.Duration(wp.stats.JobsProcessed)
	}
	return data
}

// Start starts the worker goroutine
func (w *Worker) Start() {
	w.logger.Debug("Worker started")

	for {
		select {
		case job := <-w.JobChan:
			w.processJob(job)
		case <-w.QuitChan:
			w.logger.Debug("Worker stopping")
			return
		}
	}
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.QuitChan <- true
}

// processJob resolves a single ad URL
func (w *Worker) processJob(job ResolveJob) {
	startTime := time.Now()

	w.logger.Debug("Processing job", map[string]interface{}{
		"job_id": job.ID,
		"url":    job.AdURL,
	})

	ctx := job.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ad, cached, err := w.Pool.resolver.Resolve(ctx, job.AdURL, job.Options)
	duration := time.Since(startTime)

	w.Pool.stats.mu.Lock()
	w.Pool.stats.JobsProcessed++
	w.Pool.stats.TotalProcessingTime += duration
	if err != nil {
		w.Pool.stats.JobsFailed++
	} else {
		w.Pool.stats.JobsSuccessful++
	}
	w.Pool.stats.mu.Unlock()

	job.ResultChan <- JobResult{
		Ad:        ad,
		Cached:    cached,
		Error:     err,
		RequestID: job.ID,
		Duration:  duration,
	}
}
