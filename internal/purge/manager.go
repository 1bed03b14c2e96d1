package purge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"whiskr/internal/storage"
)

// ErrNotRunning is returned by Enqueue before Start or after Shutdown.
var ErrNotRunning = errors.New("purge manager is not running")

// Job names the photo objects to remove. Exactly one of Key and Prefix is set.
type Job struct {
	Key    string
	Prefix string
}

func (j Job) String() string {
	if j.Prefix != "" {
		return j.Prefix + "/*"
	}
	return j.Key
}

// Manager removes photo objects in the background on a bounded pool.
type Manager interface {
	Start(ctx context.Context) error
	// Shutdown stops accepting jobs and waits for queued ones until ctx is done.
	Shutdown(ctx context.Context) error
	Enqueue(job Job) error
}

type Config struct {
	MaxConcurrent int
	JobTimeout    time.Duration
	Logger        *logrus.Logger
	// Observe, when set, is called after every job with its outcome.
	Observe func(job Job, err error)
}

type manager struct {
	cfg   Config
	store storage.PhotoStore

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	open   bool
}

func NewManager(cfg Config, store storage.PhotoStore) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:   cfg,
		store: store,
		sem:   make(chan struct{}, cfg.MaxConcurrent),
	}
}

func (m *manager) Start(ctx context.Context) error {
	if m.store == nil {
		return fmt.Errorf("purge manager needs a photo store")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return nil
	}
	// detached so queued jobs survive the request that enqueued them
	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	m.open = true
	m.cfg.Logger.Infof("photo purge manager started, workers: %d", m.cfg.MaxConcurrent)
	return nil
}

func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return nil
	}
	m.open = false
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	m.cancel()
	m.wg.Wait()
	m.cfg.Logger.Info("photo purge manager stopped")
	return err
}

func (m *manager) Enqueue(job Job) error {
	if job.Key == "" && job.Prefix == "" {
		return fmt.Errorf("purge job needs a key or prefix")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return ErrNotRunning
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-m.ctx.Done():
			m.finish(job, m.ctx.Err())
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
			m.finish(job, m.run(job))
		}
	}()
	return nil
}

func (m *manager) run(job Job) error {
	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.JobTimeout)
	defer cancel()

	if job.Prefix != "" {
		return m.store.DeletePrefix(ctx, job.Prefix)
	}
	return m.store.Delete(ctx, job.Key)
}

func (m *manager) finish(job Job, err error) {
	logger := m.cfg.Logger.WithField("object", job.String())
	if err != nil {
		logger.Warnf("purge failed: %v", err)
	} else {
		logger.Debug("purged")
	}
	if m.cfg.Observe != nil {
		m.cfg.Observe(job, err)
	}
}
