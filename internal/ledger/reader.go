package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MarwanIssa100/SparkUp/internal/logger"
	"github.com/MarwanIssa100/SparkUp/internal/model"
	"github.com/panjf2000/ants/v2"
)

// Backend is the read side of the SparkUp contract.
type Backend interface {
	TotalIdeas(ctx context.Context) (uint64, error)
	GetIdea(ctx context.Context, id uint64) (model.Idea, bool, error)
}

// Sink receives snapshot results. BeginFetch hands out a generation token;
// CommitSnapshot must discard results whose token is no longer the latest.
type Sink interface {
	BeginFetch() uint64
	CommitSnapshot(gen uint64, ideas []model.Idea, err error)
}

// Reader rebuilds the local snapshot from the contract: one count read,
// then one record read per id issued through a shared worker pool.
type Reader struct {
	backend Backend
	pool    *ants.Pool
	timeout time.Duration
}

func NewReader(backend Backend, workers int, timeout time.Duration) (*Reader, error) {
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch pool: %w", err)
	}
	return &Reader{
		backend: backend,
		pool:    pool,
		timeout: timeout,
	}, nil
}

// Close releases the worker pool.
func (r *Reader) Close() {
	r.pool.Release()
}

// Refresh runs one full fetch and commits it under a fresh generation
// token, so a batch superseded mid-flight can never clobber newer state.
func (r *Reader) Refresh(ctx context.Context, sink Sink) error {
	gen := sink.BeginFetch()
	ideas, err := r.Snapshot(ctx)
	sink.CommitSnapshot(gen, ideas, err)
	return err
}

// Snapshot fetches every record up to the contract's totalIdeas. The batch
// is all-or-nothing: the first failing read cancels the rest and fails the
// whole fetch. Absent records are filtered out; the result is ordered by
// ascending id.
func (r *Reader) Snapshot(ctx context.Context) ([]model.Idea, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	total, err := r.backend.TotalIdeas(ctx)
	if err != nil {
		return nil, &model.ReadError{Err: err}
	}
	if total == 0 {
		return []model.Idea{}, nil
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make([]*model.Idea, total)
	var wg sync.WaitGroup
	var once sync.Once
	var batchErr error

	fail := func(err error) {
		once.Do(func() {
			batchErr = err
			cancel()
		})
	}

	for id := uint64(1); id <= total; id++ {
		id := id
		wg.Add(1)
		task := func() {
			defer wg.Done()
			idea, ok, err := r.backend.GetIdea(fetchCtx, id)
			if err != nil {
				fail(fmt.Errorf("getIdea(%d): %w", id, err))
				return
			}
			if ok {
				records[id-1] = &idea
			}
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to schedule getIdea(%d): %w", id, err))
		}
	}
	wg.Wait()

	if batchErr != nil {
		logger.Error("Snapshot fetch failed (total=%d): %v", total, batchErr)
		return nil, &model.ReadError{Err: batchErr}
	}

	ideas := make([]model.Idea, 0, total)
	for _, rec := range records {
		if rec != nil {
			ideas = append(ideas, *rec)
		}
	}
	logger.Debug("Snapshot fetched %d of %d records", len(ideas), total)
	return ideas, nil
}

// FetchOne reads a single record, used when reconciling a confirmed write.
func (r *Reader) FetchOne(ctx context.Context, id uint64) (model.Idea, bool, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	idea, ok, err := r.backend.GetIdea(ctx, id)
	if err != nil {
		return model.Idea{}, false, &model.ReadError{Err: err}
	}
	return idea, ok, nil
}
