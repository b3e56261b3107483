package tracker

import (
	"QRLink-Backend/internal/domain"
	"QRLink-Backend/internal/repository"
	"QRLink-Backend/pkg/useragent"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scan represents request metadata captured for one resolved redirect.
// ShortLinkID is zero when the redirect was served from cache; the
// worker resolves it from the short code off the hot path.
type Scan struct {
	ShortCode   string
	ShortLinkID int64
	IPAddress   string
	UserAgent   string
	Referer     string
}

// Config holds configuration for the scan tracker
type Config struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Bounded retry attempts for failed jobs
	RetryDelay      time.Duration // Base delay between retries
	AttemptTimeout  time.Duration // Ceiling for a single processing attempt
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount:     3,
		BufferSize:      1024,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		AttemptTimeout:  10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Tracker records scan analytics fully detached from the request path.
// Workers run on the tracker's own context, so completing an HTTP
// response never cancels an in-flight recording.
type Tracker struct {
	config   Config
	storage  repository.Storage
	log      *zap.Logger
	jobQueue chan *Scan
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// New creates a new scan tracker
func New(storage repository.Storage, log *zap.Logger, config Config) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Tracker{
		config:   config,
		storage:  storage,
		log:      log,
		jobQueue: make(chan *Scan, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("tracker already started")
	}

	t.log.Info("starting scan tracker",
		zap.Int("workers", t.config.WorkerCount),
		zap.Int("buffer_size", t.config.BufferSize),
	)

	for i := 0; i < t.config.WorkerCount; i++ {
		t.wg.Add(1)
		go t.worker(i)
	}

	t.started = true
	return nil
}

// Stop gracefully shuts down the tracker
func (t *Tracker) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return fmt.Errorf("tracker not started")
	}

	t.log.Info("stopping scan tracker")

	t.cancel()
	close(t.jobQueue)

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.log.Info("scan tracker stopped gracefully")
	case <-time.After(t.config.ShutdownTimeout):
		t.log.Warn("scan tracker shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	t.started = false
	return nil
}

// Track enqueues a scan for asynchronous recording. It never blocks:
// a full queue drops the scan with an error log, and the caller is
// expected to have already written the redirect response.
func (t *Tracker) Track(scan *Scan) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.started {
		return fmt.Errorf("tracker not started")
	}

	select {
	case t.jobQueue <- scan:
		return nil
	case <-t.ctx.Done():
		return fmt.Errorf("tracker is shutting down")
	default:
		t.log.Error("scan queue is full, dropping scan",
			zap.String("short_code", scan.ShortCode),
			zap.Int("queue_size", len(t.jobQueue)),
		)
		return fmt.Errorf("scan queue is full")
	}
}

// worker processes scans with bounded retry
func (t *Tracker) worker(workerID int) {
	defer t.wg.Done()

	log := t.log.With(zap.Int("worker_id", workerID))
	log.Info("scan worker started")

	for {
		select {
		case scan := <-t.jobQueue:
			if scan == nil {
				// Channel closed, worker should exit
				log.Info("scan worker stopped")
				return
			}

			t.processScanWithRetry(log, scan)

		case <-t.ctx.Done():
			log.Info("scan worker received shutdown signal")
			return
		}
	}
}

// processScanWithRetry processes a single scan with bounded retry.
// Exhausted retries drop the scan with an error log; tracking failures
// never surface anywhere else.
func (t *Tracker) processScanWithRetry(log *zap.Logger, scan *Scan) {
	var lastErr error

	for attempt := 1; attempt <= t.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(t.ctx, t.config.AttemptTimeout)
		err := t.processScan(ctx, scan)
		cancel()

		if err == nil {
			return
		}
		if errors.Is(err, repository.ErrCodeNotFound) {
			// Link deleted between redirect and recording, nothing to do
			log.Debug("short link gone before scan recording", zap.String("short_code", scan.ShortCode))
			return
		}

		lastErr = err
		log.Warn("scan recording failed",
			zap.String("short_code", scan.ShortCode),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", t.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == t.config.RetryAttempts {
			break
		}

		// Exponential backoff delay
		delay := t.config.RetryDelay * time.Duration(1<<(attempt-1))

		select {
		case <-time.After(delay):
		case <-t.ctx.Done():
			log.Info("worker shutdown during retry delay")
			return
		}
	}

	log.Error("scan recording failed after all retries",
		zap.String("short_code", scan.ShortCode),
		zap.Int("attempts", t.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

// processScan derives scan attributes and performs the two durable
// writes: the scan event insert and the atomic counter increment.
func (t *Tracker) processScan(ctx context.Context, scan *Scan) error {
	linkID := scan.ShortLinkID
	if linkID == 0 {
		// Cache-hit redirects carry only the short code
		link, err := t.storage.FindByShortCode(ctx, scan.ShortCode)
		if err != nil {
			return err
		}
		linkID = link.ID
	}

	info := useragent.Classify(scan.UserAgent)
	utmSource, utmMedium, utmCampaign := parseUTM(scan.Referer)

	event := &domain.ScanEvent{
		ShortLinkID: linkID,
		IPAddress:   optional(scan.IPAddress),
		UserAgent:   optional(scan.UserAgent),
		Referer:     optional(scan.Referer),
		DeviceType:  info.DeviceType,
		OS:          info.OS,
		Browser:     info.Browser,
		UTMSource:   utmSource,
		UTMMedium:   utmMedium,
		UTMCampaign: utmCampaign,
	}

	if err := t.storage.InsertScanEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to insert scan event: %w", err)
	}

	if err := t.storage.IncrementScan(ctx, linkID); err != nil {
		return fmt.Errorf("failed to increment scan count: %w", err)
	}

	t.log.Debug("scan recorded",
		zap.String("short_code", scan.ShortCode),
		zap.String("device_type", info.DeviceType),
	)

	return nil
}

// QueueStats returns tracker queue statistics
func (t *Tracker) QueueStats() map[string]interface{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return map[string]interface{}{
		"started":        t.started,
		"queue_length":   len(t.jobQueue),
		"queue_capacity": cap(t.jobQueue),
		"worker_count":   t.config.WorkerCount,
	}
}

// parseUTM extracts campaign attribution parameters from the referer.
// A missing or malformed referer yields no attribution.
func parseUTM(referer string) (source, medium, campaign *string) {
	if referer == "" {
		return nil, nil, nil
	}

	u, err := url.Parse(referer)
	if err != nil {
		return nil, nil, nil
	}

	query := u.Query()
	return optional(query.Get("utm_source")),
		optional(query.Get("utm_medium")),
		optional(query.Get("utm_campaign"))
}

// optional returns a pointer for non-empty strings, nil otherwise
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
