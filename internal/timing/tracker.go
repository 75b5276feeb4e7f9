// Package timing records how long each pipeline stage takes.
package timing

import (
	"context"
	"sync"
	"time"
)

type timingKey struct{}

// Observer receives every completed measurement.
type Observer interface {
	ObserveStage(stage string, d time.Duration)
}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

type Tracker struct {
	timings  map[string][]time.Duration
	mu       sync.RWMutex
	observer Observer
	now      func() time.Time
}

func NewTracker(observer Observer) *Tracker {
	return &Tracker{
		timings:  make(map[string][]time.Duration),
		observer: observer,
		now:      time.Now,
	}
}

// StartTiming returns a child of ctx carrying the operation start time.
func (tt *Tracker) StartTiming(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: tt.now(),
	})
}

// EndTiming records the duration of the operation started on ctx.
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	info, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	duration := tt.now().Sub(info.StartTime)

	tt.mu.Lock()
	tt.timings[info.Operation] = append(tt.timings[info.Operation], duration)
	tt.mu.Unlock()

	if tt.observer != nil {
		tt.observer.ObserveStage(info.Operation, duration)
	}
	return duration
}

// Time runs fn as the named operation.
func (tt *Tracker) Time(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	tctx := tt.StartTiming(ctx, operation)
	defer tt.EndTiming(tctx)
	return fn(tctx)
}

// Summary returns the total time per operation.
func (tt *Tracker) Summary() map[string]time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	result := make(map[string]time.Duration, len(tt.timings))
	for operation, timings := range tt.timings {
		var total time.Duration
		for _, d := range timings {
			total += d
		}
		result[operation] = total
	}
	return result
}
