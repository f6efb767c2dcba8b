// Package worker runs periodic maintenance jobs in the background, one
// goroutine per job.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNothingToDo lets a job report an idle run without it being logged as a
// failure.
var ErrNothingToDo = errors.New("nothing to do")

type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Pool struct {
	jobs   []Job
	logger *zap.Logger
	wg     sync.WaitGroup
	stop   chan struct{}
	once   sync.Once
}

func NewPool(logger *zap.Logger, jobs ...Job) *Pool {
	return &Pool{
		jobs:   jobs,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("jobs", len(p.jobs)))

	for _, job := range p.jobs {
		if job.Interval <= 0 || job.Run == nil {
			p.logger.Warn("skipping job", zap.String("job", job.Name))
			continue
		}
		p.wg.Add(1)
		go p.worker(ctx, job)
	}
}

// Stop is safe to call more than once.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.stop)
		p.wg.Wait()
		p.logger.Info("Worker pool stopped")
	})
}

func (p *Pool) worker(ctx context.Context, job Job) {
	defer p.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx, job)
		}
	}
}

func (p *Pool) runOnce(ctx context.Context, job Job) {
	start := time.Now()
	err := job.Run(ctx)

	switch {
	case err == nil:
		p.logger.Debug("job completed", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
	case errors.Is(err, ErrNothingToDo), errors.Is(err, context.Canceled):
	default:
		p.logger.Error("worker error", zap.String("job", job.Name), zap.Error(err))
	}
}
