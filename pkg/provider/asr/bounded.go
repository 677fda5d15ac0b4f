package asr

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultMaxConcurrent = 2
)

// Compile-time interface check.
var _ Provider = (*Bounded)(nil)

// Bounded wraps a Provider with a per-call timeout and a concurrency limit.
//
// Transcription is a blocking, CPU/GPU-bound call; without a bound a burst of
// audio submissions would queue up inside the backend and stall every other
// request behind it. Bounded admits at most maxConcurrent transcriptions and
// cancels each one after timeout.
type Bounded struct {
	inner   Provider
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewBounded wraps inner. A non-positive maxConcurrent defaults to 2; a
// non-positive timeout defaults to 30 seconds.
func NewBounded(inner Provider, maxConcurrent int, timeout time.Duration) *Bounded {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Bounded{
		inner:   inner,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		timeout: timeout,
	}
}

// Transcribe implements [Provider]. Waiting for an admission slot respects
// ctx; the timeout covers only the transcription itself.
func (b *Bounded) Transcribe(ctx context.Context, sample Sample) (Result, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("asr: waiting for transcription slot: %w", err)
	}
	defer b.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return b.inner.Transcribe(ctx, sample)
}
