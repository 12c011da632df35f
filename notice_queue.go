package trackAdmin

import (
	"context"
	"sync"
	"sync/atomic"
)

// noticeQueue delivers notices to a sink from one background goroutine.
//
// Error notices (session expired, server unreachable) are what the operator
// must see, so they go on an unbounded list that ignores DropIfFull and the
// caller's context and is delivered ahead of routine notices. Everything else
// shares a bounded buffer governed by DropIfFull.
type noticeQueue struct {
	cfg  NoticeConfig
	sink NoticeSink

	routine chan Notice
	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	urgent  []Notice
	closing bool

	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newNoticeQueue(cfg NoticeConfig, sink NoticeSink) *noticeQueue {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpNoticeSink{}
	}

	q := &noticeQueue{
		cfg:     cfg,
		sink:    sink,
		routine: make(chan Notice, cfg.BufferSize),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	q.wg.Add(1)
	go q.run()

	return q
}

func (q *noticeQueue) run() {
	defer q.wg.Done()

	for {
		q.flushUrgent()
		select {
		case <-q.wake:
		case notice := <-q.routine:
			q.deliver(notice)
		case <-q.done:
			q.flushUrgent()
			for {
				select {
				case notice := <-q.routine:
					q.deliver(notice)
				default:
					return
				}
			}
		}
	}
}

func (q *noticeQueue) flushUrgent() {
	for {
		q.mu.Lock()
		if len(q.urgent) == 0 {
			q.mu.Unlock()
			return
		}
		notice := q.urgent[0]
		q.urgent = q.urgent[1:]
		q.mu.Unlock()

		q.deliver(notice)
	}
}

func (q *noticeQueue) deliver(notice Notice) {
	q.sink.Emit(context.Background(), notice)
}

// Emit queues a notice.
//
// Error notices are never dropped: once the queue is closing they are handed
// to the sink inline. Other notices follow DropIfFull: a full buffer either
// drops and counts the notice, or blocks until there is room or ctx ends.
func (q *noticeQueue) Emit(ctx context.Context, notice Notice) {
	if q == nil {
		return
	}
	if notice.Level == NoticeError {
		q.emitUrgent(notice)
		return
	}
	if q.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if q.cfg.DropIfFull {
		select {
		case q.routine <- notice:
		case <-q.done:
		default:
			q.dropped.Add(1)
		}
		return
	}

	select {
	case q.routine <- notice:
	case <-ctx.Done():
		q.dropped.Add(1)
	case <-q.done:
	}
}

func (q *noticeQueue) emitUrgent(notice Notice) {
	q.mu.Lock()
	if q.closing {
		q.mu.Unlock()
		q.deliver(notice)
		return
	}
	q.urgent = append(q.urgent, notice)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close delivers everything still queued and stops the worker.
func (q *noticeQueue) Close() {
	if q == nil {
		return
	}
	q.closeOnce.Do(func() {
		q.closed.Store(true)
		q.mu.Lock()
		q.closing = true
		q.mu.Unlock()
		close(q.done)
		q.wg.Wait()
	})
}

// Dropped counts routine notices lost to a full buffer or a cancelled caller.
func (q *noticeQueue) Dropped() uint64 {
	if q == nil {
		return 0
	}
	return q.dropped.Load()
}
