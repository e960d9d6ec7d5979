package worker

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrSuperseded is returned for a duplicate check cancelled by a newer check
// from the same intake session.
var ErrSuperseded = errors.New("duplicate check superseded")

// DuplicateCheckPool bounds how many duplicate checks scan the corpus at once.
// Checks sharing a session key are last-write-wins: starting one cancels the
// one still in flight.
type DuplicateCheckPool struct {
	sem *semaphore.Weighted

	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflightCheck
}

type inflightCheck struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// NewDuplicateCheckPool creates a pool running at most concurrency checks.
func NewDuplicateCheckPool(concurrency int) *DuplicateCheckPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DuplicateCheckPool{
		sem:      semaphore.NewWeighted(int64(concurrency)),
		inflight: make(map[string]inflightCheck),
	}
}

// Run executes fn once a slot is free. An empty session never supersedes.
func (p *DuplicateCheckPool) Run(ctx context.Context, session string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if session != "" {
		id := p.register(session, cancel)
		defer p.release(session, id)
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return superseded(ctx, err)
	}
	defer p.sem.Release(1)

	if err := fn(ctx); err != nil {
		return superseded(ctx, err)
	}
	// A result finished after a newer check started is stale.
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		return ErrSuperseded
	}
	return nil
}

func (p *DuplicateCheckPool) register(session string, cancel context.CancelCauseFunc) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.inflight[session]; ok {
		prev.cancel(ErrSuperseded)
	}
	p.seq++
	p.inflight[session] = inflightCheck{id: p.seq, cancel: cancel}
	return p.seq
}

func (p *DuplicateCheckPool) release(session string, id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.inflight[session]; ok && cur.id == id {
		delete(p.inflight, session)
	}
}

func superseded(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		return ErrSuperseded
	}
	return err
}
