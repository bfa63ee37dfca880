package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"keyderiv/internal/crypto"
)

// Config contains configuration for the batch deriver
type Config struct {
	Rounds    int
	KeyLength int
	Workers   int
}

// Request is a single password to derive a key for
type Request struct {
	ID       string
	Password []byte
	Salt     []byte
}

// Result holds the outcome of one request, at the same index as its request
type Result struct {
	ID       string
	Key      []byte
	Err      error
	Duration time.Duration
}

// Statistics contains counters for completed derivations
type Statistics struct {
	Derived       uint64
	Failed        uint64
	Cancelled     uint64
	TotalDuration time.Duration
}

// Deriver runs derivations on a pool of workers sharing one engine
type Deriver struct {
	engine *crypto.Engine
	config Config
	log    *logrus.Entry

	mu    sync.RWMutex
	stats Statistics
}

type job struct {
	index   int
	request Request
}

// New creates a batch deriver
func New(engine *crypto.Engine, config Config, log *logrus.Entry) (*Deriver, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if config.Rounds < 1 {
		return nil, &crypto.InvalidRoundsError{Rounds: config.Rounds}
	}
	if config.KeyLength < 0 {
		return nil, &crypto.InvalidKeyLengthError{KeyLength: config.KeyLength}
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Deriver{
		engine: engine,
		config: config,
		log:    log.WithField("component", "batch"),
	}, nil
}

// Derive processes all requests and returns their results in request order.
// Cancelling ctx stops dispatching; requests already running complete and
// the rest are marked with ctx.Err(), which is also returned.
func (d *Deriver) Derive(ctx context.Context, requests []Request) ([]Result, error) {
	results := make([]Result, len(requests))
	if len(requests) == 0 {
		return results, nil
	}

	workerCount := d.config.Workers
	if workerCount > len(requests) {
		workerCount = len(requests)
	}

	d.log.WithFields(logrus.Fields{
		"requests":   len(requests),
		"workers":    workerCount,
		"digest":     d.engine.Digest().String(),
		"rounds":     d.config.Rounds,
		"key_length": d.config.KeyLength,
	}).Info("Starting batch derivation")

	jobs := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.worker(id, jobs, results)
		}(i + 1)
	}

	dispatched := 0
dispatch:
	for dispatched < len(requests) {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- job{index: dispatched, request: requests[dispatched]}:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	if dispatched < len(requests) {
		err := ctx.Err()
		for i := dispatched; i < len(requests); i++ {
			results[i] = Result{ID: requests[i].ID, Err: err}
		}

		d.mu.Lock()
		d.stats.Cancelled += uint64(len(requests) - dispatched)
		d.mu.Unlock()

		d.log.WithFields(logrus.Fields{
			"dispatched": dispatched,
			"cancelled":  len(requests) - dispatched,
		}).Warn("Batch derivation cancelled")
		return results, err
	}

	d.log.WithField("requests", len(requests)).Info("Batch derivation complete")
	return results, nil
}

func (d *Deriver) worker(id int, jobs <-chan job, results []Result) {
	log := d.log.WithField("worker_id", id)
	log.Debug("Worker started")

	for j := range jobs {
		start := time.Now()
		key, err := d.engine.DeriveKeyBytes(j.request.Password, j.request.Salt, d.config.Rounds, d.config.KeyLength)
		elapsed := time.Since(start)

		results[j.index] = Result{ID: j.request.ID, Key: key, Err: err, Duration: elapsed}
		d.record(err, elapsed)

		if err != nil {
			log.WithError(err).WithField("request_id", j.request.ID).Error("Derivation failed")
			continue
		}
		log.WithFields(logrus.Fields{
			"request_id": j.request.ID,
			"duration":   elapsed,
		}).Debug("Derivation complete")
	}

	log.Debug("Worker stopped")
}

func (d *Deriver) record(err error, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.stats.Failed++
		return
	}
	d.stats.Derived++
	d.stats.TotalDuration += elapsed
}

// GetStatistics returns a snapshot of the deriver's counters
func (d *Deriver) GetStatistics() Statistics {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.stats
}
