// Package worker measures preview clips in the background so the snippet
// schedule can be checked against what a track actually offers.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/songle/internal/core/ports"
)

const jobTimeout = 30 * time.Second

// Job represents a background task for track processing.
type Job struct {
	TrackID    string
	PreviewURL string
}

// Pool manages background workers for async jobs.
type Pool struct {
	repo    ports.PlaylistRepository
	workers int
	jobs    chan Job
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
}

// compile-time interface assertion
var _ ports.PreviewQueue = (*Pool)(nil)

// NewPool creates a worker pool with the given worker count and queue size.
func NewPool(repo ports.PlaylistRepository, workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{repo: repo, workers: workers, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines. Jobs in flight are canceled with ctx.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(ctx, job)
			}
		}()
	}
	log.Debug("worker: pool started", "workers", p.workers, "queue", cap(p.jobs))
}

// Stop closes the queue and waits for workers to drain it. Later submissions
// are dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		log.Warn("worker: queue full, dropping job", "track", job.TrackID)
		return false
	}
}

// Enqueue schedules a preview measurement for a track.
func (p *Pool) Enqueue(trackID, previewURL string) {
	p.Submit(Job{TrackID: trackID, PreviewURL: previewURL})
}

func (p *Pool) processJob(ctx context.Context, job Job) {
	if job.PreviewURL == "" {
		log.Debug("worker: no preview url, skipping", "track", job.TrackID)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	seconds, err := AnalyzePreviewFunc(ctx, job.PreviewURL)
	if err != nil {
		log.Warn("worker: preview analysis failed", "track", job.TrackID, "err", err)
		return
	}
	if err := p.repo.UpdatePreviewSeconds(ctx, job.TrackID, seconds); err != nil {
		log.Warn("worker: failed to update track", "track", job.TrackID, "err", err)
		return
	}
	log.Debug("worker: preview measured", "track", job.TrackID, "seconds", seconds)
}
