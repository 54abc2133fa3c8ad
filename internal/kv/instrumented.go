package kv

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented wraps a Store and records operation counts and latencies
type Instrumented struct {
	next     Store
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewInstrumented wraps next and registers its collectors with reg
func NewInstrumented(next Store, reg prometheus.Registerer) (*Instrumented, error) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kwoatle",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Key-value store operations by operation, key and result.",
	}, []string{"op", "key", "result"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kwoatle",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Key-value store operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	for _, c := range []prometheus.Collector{ops, duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &Instrumented{next: next, ops: ops, duration: duration}, nil
}

// Get delegates to the wrapped store
func (s *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := s.next.Get(ctx, key)
	s.observe("get", key, start, err)
	return v, err
}

// Set delegates to the wrapped store
func (s *Instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observe("set", key, start, err)
	return err
}

// SetBatch keeps the wrapped store's atomicity when it has one
func (s *Instrumented) SetBatch(ctx context.Context, entries map[string][]byte) error {
	start := time.Now()
	err := SetAll(ctx, s.next, entries)
	for key := range entries {
		s.ops.WithLabelValues("set_batch", key, result(err)).Inc()
	}
	s.duration.WithLabelValues("set_batch").Observe(time.Since(start).Seconds())
	return err
}

func (s *Instrumented) observe(op, key string, start time.Time, err error) {
	s.ops.WithLabelValues(op, key, result(err)).Inc()
	s.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
