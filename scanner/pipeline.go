package scanner

import (
	"context"
	"crypto/tls"
	"log/slog"
	"time"
)

// DefaultMaxConcurrentScans bounds the number of scans running at once
// when a pipeline caller doesn't override it.
const DefaultMaxConcurrentScans = 50000

// outputBufferSize is the capacity of both the ordering queue and the
// returned output channel.
const outputBufferSize = 10000

// RunPipeline scans targets read from in with at most maxConcurrent
// scans in flight, and emits one RadarOutput per target on the returned
// channel in the same order the targets were read from in. A single
// target's failure never aborts the pipeline: it is shaped into its own
// error record instead (see ShapeOutput).
//
// Ordering is preserved without serializing the scans themselves: each
// target is assigned a single-slot result channel before its scan is
// dispatched, and those slot channels are drained strictly in arrival
// order, so a fast scan for target N+1 simply waits behind a slower
// scan for target N rather than reordering the stream.
func RunPipeline(ctx context.Context, in <-chan Target, probes []ServiceProbe, tlsConfig *tls.Config, maxConcurrent int, logger *slog.Logger) <-chan RadarOutput {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentScans
	}
	if logger == nil {
		logger = slog.Default()
	}

	out := make(chan RadarOutput, outputBufferSize)
	sem := make(chan struct{}, maxConcurrent)
	order := make(chan chan RadarOutput, outputBufferSize)

	go dispatch(ctx, in, order, sem, probes, tlsConfig, logger)
	go drain(ctx, order, out)

	return out
}

func dispatch(ctx context.Context, in <-chan Target, order chan<- chan RadarOutput, sem chan struct{}, probes []ServiceProbe, tlsConfig *tls.Config, logger *slog.Logger) {
	defer close(order)

	for target := range in {
		slot := make(chan RadarOutput, 1)
		select {
		case order <- slot:
		case <-ctx.Done():
			close(slot)
			return
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			slot <- RadarOutput{Target: target, Timestamp: nowUnix(), Error: ctx.Err().Error()}
			continue
		}

		go func(target Target, slot chan<- RadarOutput) {
			defer func() { <-sem }()
			detection, scanErr := Scan(ctx, target, probes, tlsConfig, logger)
			slot <- ShapeOutput(target, detection, scanErr, nowUnix())
		}(target, slot)
	}
}

func drain(ctx context.Context, order <-chan chan RadarOutput, out chan<- RadarOutput) {
	defer close(out)

	for slot := range order {
		result, ok := <-slot
		if !ok {
			continue
		}
		select {
		case out <- result:
		case <-ctx.Done():
			return
		}
	}
}

func nowUnix() int64 {
	return time.Now().Unix()
}
