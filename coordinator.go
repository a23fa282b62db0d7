// Package cafepow searches for a 4-byte nonce that, prepended to a payload,
// gives a SHA-256 digest ending in 0xCA 0xFE.
//
// The first nonce byte is split into contiguous ranges, one per worker. Every
// worker walks its range and polls a shared write-once result slot before each
// hash, so the first committed solution stops the others.
package cafepow

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Coordinator struct {
	workers int
	log     logrus.FieldLogger
	tracer  Tracer
	match   func(digest []byte) bool
}

type Option func(*Coordinator)

// WithWorkers sets the number of workers. Values are clamped into
// [1, MaxWorkers]; zero selects one worker per logical processor.
func WithWorkers(n int) Option {
	return func(co *Coordinator) {
		co.workers = ClampWorkers(n)
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(co *Coordinator) {
		if log != nil {
			co.log = log
		}
	}
}

func WithTracer(tracer Tracer) Option {
	return func(co *Coordinator) {
		if tracer != nil {
			co.tracer = tracer
		}
	}
}

func NewCoordinator(opts ...Option) *Coordinator {
	co := &Coordinator{
		workers: ClampWorkers(0),
		log:     logrus.StandardLogger(),
		tracer:  noopTracer{},
		match:   HasTargetSuffix,
	}
	for _, opt := range opts {
		opt(co)
	}
	return co
}

// Workers returns the number of workers a search will use.
func (co *Coordinator) Workers() int {
	return co.workers
}

func (co *Coordinator) Tracer() Tracer {
	return co.tracer
}

// Search runs one worker per range over payload and blocks until all of them
// have returned. It returns ErrNoSolution if no worker found a match,
// ErrWorkerPanic if any worker panicked, or ctx.Err() if ctx was done before
// a solution was committed.
func (co *Coordinator) Search(ctx context.Context, payload []byte) (Solution, error) {
	return co.search(ctx, payload, Ranges(co.workers))
}

func (co *Coordinator) search(ctx context.Context, payload []byte, ranges []Range) (Solution, error) {
	co.tracer.RecordAction(SearchBegin{
		Payload:    payload,
		NumWorkers: uint(len(ranges)),
	})
	co.log.WithFields(logrus.Fields{
		"workers": len(ranges),
		"payload": len(payload),
	}).Info("starting search")

	buf := make([]byte, NonceSize+len(payload))
	copy(buf[NonceSize:], payload)

	slot := new(resultSlot)
	var attempts atomic.Uint64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		w := &searchWorker{
			index: i,
			rng:   r,
			buf:   bytes.Clone(buf),
			slot:  slot,
			match: co.match,
		}
		g.Go(func() (err error) {
			defer func() {
				attempts.Add(w.attempts)
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: worker %d: %v\n%s", ErrWorkerPanic, w.index, p, debug.Stack())
				}
			}()
			co.tracer.RecordAction(WorkerSearch{
				WorkerIndex: uint(w.index),
				Begin:       w.rng.Begin,
				End:         w.rng.End,
			})
			exit := w.run(gctx)
			co.recordExit(w, exit)
			return nil
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)
	total := attempts.Load()

	fields := logrus.Fields{
		"attempts": total,
		"elapsed":  elapsed,
		"hashrate": hashRate(total, elapsed),
	}
	if err != nil {
		co.fail(payload, err, total, fields)
		return Solution{}, err
	}

	sol, ok := slot.load()
	if !ok {
		err = ErrNoSolution
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		co.fail(payload, err, total, fields)
		return Solution{}, err
	}

	co.tracer.RecordAction(SearchSuccess{
		Payload:  payload,
		Nonce:    sol.Nonce[:],
		Digest:   sol.Digest[:],
		Attempts: total,
	})
	co.log.WithFields(fields).WithField("nonce", fmt.Sprintf("%x", sol.Nonce)).Info("search solved")
	return sol, nil
}

func (co *Coordinator) recordExit(w *searchWorker, exit workerExit) {
	switch exit {
	case exitWon, exitLost:
		co.tracer.RecordAction(WorkerResult{
			WorkerIndex: uint(w.index),
			Nonce:       w.found.Nonce[:],
			Digest:      w.found.Digest[:],
			Committed:   exit == exitWon,
		})
	case exitPreempted, exitCanceled:
		co.tracer.RecordAction(WorkerCancel{
			WorkerIndex: uint(w.index),
			Attempts:    w.attempts,
		})
	default:
		co.tracer.RecordAction(WorkerExhausted{
			WorkerIndex: uint(w.index),
			Attempts:    w.attempts,
		})
	}
	co.log.WithFields(logrus.Fields{
		"worker":   w.index,
		"begin":    w.rng.Begin,
		"end":      w.rng.End,
		"attempts": w.attempts,
	}).Debugf("worker %s", exit)
}

func (co *Coordinator) fail(payload []byte, err error, attempts uint64, fields logrus.Fields) {
	co.tracer.RecordAction(SearchFailure{
		Payload:  payload,
		Reason:   err.Error(),
		Attempts: attempts,
	})
	co.log.WithFields(fields).WithError(err).Warn("search failed")
}

func hashRate(attempts uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(attempts) / elapsed.Seconds()
}
