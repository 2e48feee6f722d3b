package docstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/noah-isme/school-ledger-api/pkg/jobs"
)

// Querier is the read surface the hub needs to recompute subscriber result
// sets. The Store handed to Start satisfies it.
type Querier interface {
	Query(ctx context.Context, collection string, filters []Filter) ([]Document, error)
}

// HubConfig tunes the fan-out worker pool.
type HubConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	Logger     *zap.Logger
}

type subscriber struct {
	id         uint64
	collection string
	filters    []Filter
	fn         OnChange
}

// Hub dispatches collection changes to live query subscribers. Each change
// enqueues a refresh job; workers re-run every matching subscriber's query
// and push the full result set. Subscribers receive pushes from a single
// goroutine at a time but not necessarily the same one.
type Hub struct {
	queue   *jobs.Queue
	querier Querier
	logger  *zap.Logger

	mu        sync.RWMutex
	subs      map[uint64]*subscriber
	nextID    uint64
	broadcast func(collection string)
}

type refreshPayload struct {
	collection string
	// subID targets one subscriber for its initial snapshot; zero means
	// refresh every subscriber of the collection.
	subID uint64
}

// NewHub constructs the hub. Start must be called before changes flow.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	h := &Hub{
		subs:   make(map[uint64]*subscriber),
		logger: cfg.Logger,
	}
	h.queue = jobs.NewQueue("docstore-refresh", h.handleRefresh, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		Logger:     cfg.Logger,
	})
	return h
}

// Start binds the hub to its read surface and launches the workers.
func (h *Hub) Start(ctx context.Context, q Querier) {
	h.querier = q
	h.queue.Start(ctx)
}

// Stop drains the worker pool.
func (h *Hub) Stop() {
	h.queue.Stop()
}

// Subscribe registers a live query. The subscriber receives an initial
// snapshot and then the full matching set after every collection change.
// The returned handle must be called to release the subscription.
func (h *Hub) Subscribe(collection string, filters []Filter, fn OnChange) (Unsubscribe, error) {
	if fn == nil {
		return nil, fmt.Errorf("docstore: subscribe requires a callback")
	}
	id := atomic.AddUint64(&h.nextID, 1)
	sub := &subscriber{id: id, collection: collection, filters: filters, fn: fn}

	h.mu.Lock()
	h.subs[id] = sub
	h.mu.Unlock()

	if err := h.queue.Enqueue(jobs.Job{
		ID:      fmt.Sprintf("snapshot-%d", id),
		Type:    "snapshot",
		Payload: refreshPayload{collection: collection, subID: id},
	}); err != nil {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		return nil, err
	}

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}, nil
}

// Notify schedules a refresh for every subscriber of the collection and, if
// a relay is attached, re-broadcasts the change to other instances. Safe to
// call from any goroutine; failures are logged, not returned, because writes
// must not fail on fan-out backpressure.
func (h *Hub) Notify(collection string) {
	h.notifyLocal(collection)
	if h.broadcast != nil {
		h.broadcast(collection)
	}
}

func (h *Hub) setBroadcast(fn func(collection string)) {
	h.broadcast = fn
}

func (h *Hub) notifyLocal(collection string) {
	err := h.queue.Enqueue(jobs.Job{
		ID:      "refresh-" + collection,
		Type:    "refresh",
		Payload: refreshPayload{collection: collection},
	})
	if err != nil {
		h.logger.Warn("docstore refresh dropped", zap.String("collection", collection), zap.Error(err))
	}
}

func (h *Hub) handleRefresh(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(refreshPayload)
	if !ok {
		return fmt.Errorf("docstore: unexpected refresh payload %T", job.Payload)
	}

	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.collection != payload.collection {
			continue
		}
		if payload.subID != 0 && sub.id != payload.subID {
			continue
		}
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		docs, err := h.querier.Query(ctx, sub.collection, sub.filters)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", sub.collection, err)
		}
		sub.fn(docs)
	}
	return nil
}
