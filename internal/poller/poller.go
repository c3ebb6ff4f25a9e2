// Package poller implements the submit-then-poll pattern shared by the
// asynchronous intake jobs (OCR, transcription): a job id is obtained from an
// upload, then status is requested at a fixed interval until it is terminal.
package poller

import (
	"context"
	"errors"
	"time"

	"medinote-gateway/internal/metrics"
)

var (
	// ErrJobFailed means the job itself reported a terminal error status, as
	// opposed to a transport failure on a single poll request.
	ErrJobFailed = errors.New("job failed")

	// ErrAttemptsExhausted means the attempt cap was reached before the job
	// became terminal.
	ErrAttemptsExhausted = errors.New("poll attempts exhausted")
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 150
)

// Verdict classifies one status response.
type Verdict int

const (
	Pending Verdict = iota
	Done
	Failed
)

// CheckFunc performs one status request. It is only ever called after the
// previous call has fully returned, so polls never overlap for the same job.
type CheckFunc[T any] func(ctx context.Context) (T, Verdict, error)

type Poller[T any] struct {
	// Kind labels the job in metrics ("stt", "ocr").
	Kind string

	// Interval between polls. No backoff is applied; the interval is constant.
	Interval time.Duration

	// MaxAttempts caps the number of status requests so an abandoned flow
	// cannot keep polling forever. Zero means DefaultMaxAttempts.
	MaxAttempts int

	Check CheckFunc[T]
}

// Wait polls until the job is terminal, the attempt cap is reached, or ctx is
// cancelled. The first check is issued immediately; subsequent checks wait one
// interval each. A transport error from Check aborts polling and is returned
// as-is.
func (p *Poller[T]) Wait(ctx context.Context) (T, error) {
	var zero T

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-timer.C:
		}

		if p.Kind != "" {
			metrics.CountPollAttempt(p.Kind)
		}

		result, verdict, err := p.Check(ctx)
		if err != nil {
			return zero, err
		}

		switch verdict {
		case Done:
			return result, nil
		case Failed:
			return zero, ErrJobFailed
		}

		timer.Reset(interval)
	}

	return zero, ErrAttemptsExhausted
}
