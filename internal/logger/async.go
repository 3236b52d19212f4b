package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Closer flushes and stops a logger's async handler. Synchronous loggers
// return a no-op Closer.
type Closer interface {
	Close()
}

type nopCloser struct{}

func (nopCloser) Close() {}

// entry pairs a record with the handler that emits it, so attributes added
// through WithAttrs survive the queue hop.
type entry struct {
	h   slog.Handler
	rec slog.Record
}

// AsyncHandler decouples record emission from the logging call site. A
// single goroutine drains the queue; when the queue is full, records are
// dropped and counted instead of blocking the caller.
type AsyncHandler struct {
	inner   slog.Handler
	queue   chan entry
	done    chan struct{}
	dropped *atomic.Int64
}

// NewAsyncHandler wraps inner with a drop-when-full queue of the given size.
func NewAsyncHandler(inner slog.Handler, queueSize int) *AsyncHandler {
	h := &AsyncHandler{
		inner:   inner,
		queue:   make(chan entry, queueSize),
		done:    make(chan struct{}),
		dropped: &atomic.Int64{},
	}
	go h.drain()
	return h
}

func (h *AsyncHandler) drain() {
	for e := range h.queue {
		_ = e.h.Handle(context.Background(), e.rec)
	}
	if n := h.dropped.Load(); n > 0 {
		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "async log queue overflowed", 0)
		rec.AddAttrs(slog.Int64("dropped", n))
		_ = h.inner.Handle(context.Background(), rec)
	}
	close(h.done)
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it when the queue is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error {
	select {
	case h.queue <- entry{h: h.inner, rec: rec}:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs derives the inner handler and shares the queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), queue: h.queue, done: h.done, dropped: h.dropped}
}

// WithGroup derives the inner handler and shares the queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), queue: h.queue, done: h.done, dropped: h.dropped}
}

// DroppedCount returns the number of records dropped so far.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.dropped.Load()
}

// Close stops intake and blocks until every queued record is flushed. The
// handler must not be used afterwards.
func (h *AsyncHandler) Close() {
	close(h.queue)
	<-h.done
}
