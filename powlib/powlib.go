// Package powlib provides an asynchronous API around a cafepow.Coordinator.
// Searches are started with Mine and their results delivered on the notify
// channel returned by Initialize.
package powlib

import (
	"context"
	"errors"
	"sync"

	cafepow "example.org/cpsc416/cafepow"
)

var (
	ErrNotInitialized = errors.New("powlib: not initialized")
	ErrClosed         = errors.New("powlib: closed")
)

type PowlibMiningBegin struct {
	Payload []uint8
}

type PowlibMiningComplete struct {
	Payload []uint8
	Nonce   []uint8
	Digest  []uint8
	Err     string
}

// MineResult contains the result of a mining request. Err is set when the
// search failed, e.g. with cafepow.ErrNoSolution.
type MineResult struct {
	Payload  []uint8
	Solution cafepow.Solution
	Err      error
}

// NotifyChannel is used for notifying the client about a mining result.
type NotifyChannel chan MineResult

// POW struct represents an instance of the powlib.
type POW struct {
	Notifications NotifyChannel

	mu          sync.Mutex
	coordinator *cafepow.Coordinator
	tracer      cafepow.Tracer
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	wg          sync.WaitGroup
	closed      bool
}

func NewPOW() *POW {
	return &POW{}
}

// Initialize prepares the POW to run searches on coordinator. The returned
// notify channel has capacity chCapacity and receives one MineResult per Mine
// call. Cancelling ctx cancels every search in flight; their results still
// arrive, carrying the context error. A nil tracer selects the coordinator's.
func (d *POW) Initialize(ctx context.Context, coordinator *cafepow.Coordinator, tracer cafepow.Tracer, chCapacity uint) (NotifyChannel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.coordinator != nil {
		return nil, errors.New("powlib: already initialized")
	}
	if coordinator == nil {
		return nil, errors.New("powlib: nil coordinator")
	}
	if tracer == nil {
		tracer = coordinator.Tracer()
	}
	d.Notifications = make(NotifyChannel, chCapacity)
	d.coordinator = coordinator
	d.tracer = tracer
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	return d.Notifications, nil
}

// Mine is a non-blocking request to solve payload. The result is delivered
// on the notify channel unless the POW is closed first.
func (d *POW) Mine(payload []uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.coordinator == nil {
		return ErrNotInitialized
	}
	if d.closed {
		return ErrClosed
	}
	d.tracer.RecordAction(PowlibMiningBegin{Payload: payload})

	d.wg.Add(1)
	go d.mine(payload)
	return nil
}

func (d *POW) mine(payload []uint8) {
	defer d.wg.Done()
	sol, err := d.coordinator.Search(d.ctx, payload)

	complete := PowlibMiningComplete{Payload: payload}
	if err != nil {
		complete.Err = err.Error()
	} else {
		complete.Nonce = sol.Nonce[:]
		complete.Digest = sol.Digest[:]
	}
	d.tracer.RecordAction(complete)

	select {
	case d.Notifications <- MineResult{Payload: payload, Solution: sol, Err: err}:
	case <-d.done:
	}
}

// Close cancels searches in flight, waits for them to return and closes the
// notify channel. Results not yet delivered are dropped.
func (d *POW) Close() error {
	d.mu.Lock()
	if d.coordinator == nil {
		d.mu.Unlock()
		return ErrNotInitialized
	}
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.cancel()
	d.wg.Wait()
	close(d.Notifications)
	return nil
}
