package state

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/MarwanIssa100/SparkUp/internal/config"
	"github.com/MarwanIssa100/SparkUp/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = common.HexToAddress("0x00000000000000000000000000000000000000cc")

type minedResult struct {
	ok  bool
	err error
}

type fakeWriter struct {
	mu        sync.Mutex
	noAccount bool
	submitErr error
	mined     chan minedResult
	submitted []string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{mined: make(chan minedResult, 1)}
}

func (w *fakeWriter) record(op string) (common.Hash, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitErr != nil {
		return common.Hash{}, w.submitErr
	}
	w.submitted = append(w.submitted, op)
	return crypto.Keccak256Hash([]byte(op)), nil
}

func (w *fakeWriter) CreateIdea(ctx context.Context, title, description string, fundGoal *big.Int, deadline uint64) (common.Hash, error) {
	return w.record("create")
}

func (w *fakeWriter) FundIdea(ctx context.Context, id uint64, amount *big.Int) (common.Hash, error) {
	return w.record("fund")
}

func (w *fakeWriter) Withdraw(ctx context.Context, id uint64) (common.Hash, error) {
	return w.record("withdraw")
}

func (w *fakeWriter) CompleteIdea(ctx context.Context, id uint64) (common.Hash, error) {
	return w.record("complete")
}

func (w *fakeWriter) Refund(ctx context.Context, id uint64) (common.Hash, error) {
	return w.record("refund")
}

func (w *fakeWriter) WaitMined(ctx context.Context, txHash common.Hash) (bool, error) {
	select {
	case res := <-w.mined:
		return res.ok, res.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (w *fakeWriter) Account() (common.Address, bool) {
	if w.noAccount {
		return common.Address{}, false
	}
	return testAccount, true
}

type fakeFetcher struct {
	mu    sync.Mutex
	idea  model.Idea
	found bool
	err   error
}

func (f *fakeFetcher) FetchOne(ctx context.Context, id uint64) (model.Idea, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idea, f.found, f.err
}

func testPolicy() config.PolicyConfig {
	return config.PolicyConfig{
		CampaignDuration: 720 * time.Hour,
		ReconcileTimeout: time.Minute,
	}
}

func newTestCommander(writer *fakeWriter, fetcher *fakeFetcher) (*Commander, *Store) {
	store := NewStore()
	return NewCommander(store, writer, fetcher, testPolicy()), store
}

func seeded(store *Store) {
	store.CommitSnapshot(store.BeginFetch(), []model.Idea{rec(1, "A")}, nil)
}

func noPending(c *Commander) func() bool {
	return func() bool {
		_, ok := c.Pending()
		return !ok
	}
}

func TestSubmitCreateAppendsSyntheticRecordImmediately(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})

	_, err := commander.SubmitCreate(context.Background(), "A", "desc", "1")
	require.NoError(t, err)

	// The record is visible before any confirmation arrives.
	require.Equal(t, 1, store.Len())
	got, ok := store.Get(1)
	require.True(t, ok)
	assert.True(t, got.Synthetic)
	assert.Equal(t, testAccount, got.Owner)
	assert.Equal(t, "1000000000000000000", got.FundGoal.String())
	assert.Equal(t, int64(0), got.AmountCollected.Int64())
	assert.False(t, got.Completed)
}

func TestSubmitCreateValidatesInput(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})

	cases := []struct{ title, desc, goal string }{
		{"", "desc", "1"},
		{"A", "", "1"},
		{"A", "desc", ""},
	}
	for _, tc := range cases {
		_, err := commander.SubmitCreate(context.Background(), tc.title, tc.desc, tc.goal)

		var validationErr *model.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}

	assert.Zero(t, store.Len(), "validation failures leave no state behind")
	assert.Empty(t, writer.submitted, "validation failures reach no remote call")
}

func TestSubmitCreateRejectsMalformedGoal(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})

	_, err := commander.SubmitCreate(context.Background(), "A", "desc", "1.2.3")

	var convErr *model.ConversionError
	assert.ErrorAs(t, err, &convErr)
	assert.Zero(t, store.Len())
}

func TestSubmitCreateRequiresAccount(t *testing.T) {
	writer := newFakeWriter()
	writer.noAccount = true
	commander, store := newTestCommander(writer, &fakeFetcher{})

	_, err := commander.SubmitCreate(context.Background(), "A", "desc", "1")
	assert.ErrorIs(t, err, model.ErrNoAccount)
	assert.Zero(t, store.Len())
}

func TestSubmitCreateRollsBackOnRejection(t *testing.T) {
	writer := newFakeWriter()
	writer.submitErr = errors.New("user declined")
	commander, store := newTestCommander(writer, &fakeFetcher{})

	_, err := commander.SubmitCreate(context.Background(), "A", "desc", "1")

	var writeErr *model.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Zero(t, store.Len(), "optimistic record removed, list back to pre-creation length")

	_, pending := commander.Pending()
	assert.False(t, pending)
}

func TestSubmitCreateReconcilesOnConfirmation(t *testing.T) {
	writer := newFakeWriter()
	authoritative := rec(1, "authoritative title")
	authoritative.Owner = testAccount
	authoritative.AmountCollected = big.NewInt(42)
	fetcher := &fakeFetcher{idea: authoritative, found: true}
	commander, store := newTestCommander(writer, fetcher)

	_, err := commander.SubmitCreate(context.Background(), "local title", "desc", "1")
	require.NoError(t, err)

	writer.mined <- minedResult{ok: true}

	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)
	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "authoritative title", got.Title, "synthetic fields fully superseded")
	assert.Equal(t, int64(42), got.AmountCollected.Int64())
	assert.False(t, got.Synthetic)
}

func TestSubmitCreateRollsBackOnRevertedReceipt(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})

	_, err := commander.SubmitCreate(context.Background(), "A", "desc", "1")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	writer.mined <- minedResult{ok: false}

	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)
	assert.Zero(t, store.Len())
}

func TestOnlyOneCommandPending(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})
	seeded(store)

	_, err := commander.Complete(context.Background(), 1)
	require.NoError(t, err)

	_, err = commander.Fund(context.Background(), 1, "1")
	assert.ErrorIs(t, err, model.ErrBusy)

	writer.mined <- minedResult{ok: false}
	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)
}

func TestFundAppliesAndRollsBackDelta(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})
	seeded(store)

	_, err := commander.Fund(context.Background(), 1, "0.5")
	require.NoError(t, err)

	got, _ := store.Get(1)
	assert.Equal(t, "500000000000000000", got.AmountCollected.String(), "aggregate bumped optimistically")

	writer.mined <- minedResult{ok: false}

	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)
	got, _ = store.Get(1)
	assert.Equal(t, int64(0), got.AmountCollected.Int64(), "reverted funding rolled back")
}

func TestFundValidation(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})
	seeded(store)

	var validationErr *model.ValidationError

	_, err := commander.Fund(context.Background(), 0, "1")
	assert.ErrorAs(t, err, &validationErr)

	_, err = commander.Fund(context.Background(), 1, "")
	assert.ErrorAs(t, err, &validationErr)

	_, err = commander.Fund(context.Background(), 99, "1")
	assert.ErrorAs(t, err, &validationErr)
}

func TestWithdrawZeroesThenReconciles(t *testing.T) {
	writer := newFakeWriter()
	drained := rec(1, "A")
	fetcher := &fakeFetcher{idea: drained, found: true}
	commander, store := newTestCommander(writer, fetcher)

	funded := rec(1, "A")
	funded.AmountCollected = big.NewInt(700)
	store.CommitSnapshot(store.BeginFetch(), []model.Idea{funded}, nil)

	_, err := commander.Withdraw(context.Background(), 1)
	require.NoError(t, err)

	got, _ := store.Get(1)
	assert.Equal(t, int64(0), got.AmountCollected.Int64())

	writer.mined <- minedResult{ok: true}
	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)

	got, _ = store.Get(1)
	assert.Equal(t, int64(0), got.AmountCollected.Int64())
}

func TestCompleteAppliesOptimistically(t *testing.T) {
	writer := newFakeWriter()
	done := rec(1, "A")
	done.Completed = true
	commander, store := newTestCommander(writer, &fakeFetcher{idea: done, found: true})
	seeded(store)

	_, err := commander.Complete(context.Background(), 1)
	require.NoError(t, err)

	got, _ := store.Get(1)
	assert.True(t, got.Completed)

	writer.mined <- minedResult{ok: true}
	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)
}

func TestRefundLeavesAggregateUntouched(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{idea: rec(1, "A"), found: true})

	funded := rec(1, "A")
	funded.AmountCollected = big.NewInt(300)
	store.CommitSnapshot(store.BeginFetch(), []model.Idea{funded}, nil)

	_, err := commander.Refund(context.Background(), 1)
	require.NoError(t, err)

	got, _ := store.Get(1)
	assert.Equal(t, int64(300), got.AmountCollected.Int64(), "per-contributor share is contract-side only")

	writer.mined <- minedResult{ok: true}
	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)
}

func TestSweepStaleFlagsUnconfirmedRecord(t *testing.T) {
	writer := newFakeWriter()
	fetcher := &fakeFetcher{} // contract has nothing to reconcile against
	commander, store := newTestCommander(writer, fetcher)

	_, err := commander.SubmitCreate(context.Background(), "A", "desc", "1")
	require.NoError(t, err)

	// Confirmation never arrives; jump past the reconcile window.
	commander.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	commander.SweepStale(context.Background())

	_, pending := commander.Pending()
	assert.False(t, pending)

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.True(t, got.Stale)
}

func TestSweepStaleReconcilesWhenRecordLanded(t *testing.T) {
	writer := newFakeWriter()
	landed := rec(1, "landed")
	fetcher := &fakeFetcher{idea: landed, found: true}
	commander, store := newTestCommander(writer, fetcher)

	_, err := commander.SubmitCreate(context.Background(), "A", "desc", "1")
	require.NoError(t, err)

	commander.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	commander.SweepStale(context.Background())

	got, _ := store.Get(1)
	assert.Equal(t, "landed", got.Title)
	assert.False(t, got.Synthetic)
	assert.False(t, got.Stale)
}

func TestSweepStaleIgnoresFreshCommand(t *testing.T) {
	writer := newFakeWriter()
	commander, store := newTestCommander(writer, &fakeFetcher{})
	seeded(store)

	_, err := commander.Complete(context.Background(), 1)
	require.NoError(t, err)

	commander.SweepStale(context.Background())

	_, pending := commander.Pending()
	assert.True(t, pending, "command within the window stays pending")

	writer.mined <- minedResult{ok: false}
	require.Eventually(t, noPending(commander), time.Second, 10*time.Millisecond)
}
