package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/MarwanIssa100/SparkUp/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	total    uint64
	totalErr error
	absent   map[uint64]bool
	failAt   map[uint64]error
	calls    int
}

func (f *fakeBackend) TotalIdeas(ctx context.Context) (uint64, error) {
	return f.total, f.totalErr
}

func (f *fakeBackend) GetIdea(ctx context.Context, id uint64) (model.Idea, bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err := f.failAt[id]; err != nil {
		return model.Idea{}, false, err
	}
	if f.absent[id] {
		return model.Idea{}, false, nil
	}
	return model.Idea{
		Id:              id,
		Title:           fmt.Sprintf("idea-%d", id),
		Owner:           common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		FundGoal:        big.NewInt(1000),
		Deadline:        100,
		AmountCollected: big.NewInt(0),
	}, true, nil
}

func newTestReader(t *testing.T, backend Backend) *Reader {
	t.Helper()
	reader, err := NewReader(backend, 4, time.Second)
	require.NoError(t, err)
	t.Cleanup(reader.Close)
	return reader
}

func TestSnapshotReturnsAllRecordsInOrder(t *testing.T) {
	reader := newTestReader(t, &fakeBackend{total: 5})

	ideas, err := reader.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, ideas, 5)
	for i, idea := range ideas {
		assert.Equal(t, uint64(i+1), idea.Id)
	}
}

func TestSnapshotEmptyLedger(t *testing.T) {
	reader := newTestReader(t, &fakeBackend{total: 0})

	ideas, err := reader.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ideas)
	assert.Empty(t, ideas)
}

func TestSnapshotFiltersAbsentRecords(t *testing.T) {
	reader := newTestReader(t, &fakeBackend{
		total:  2,
		absent: map[uint64]bool{2: true},
	})

	ideas, err := reader.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, uint64(1), ideas[0].Id)
	assert.Equal(t, "idea-1", ideas[0].Title)
}

func TestSnapshotFailsWholeBatchOnSingleError(t *testing.T) {
	reader := newTestReader(t, &fakeBackend{
		total:  10,
		failAt: map[uint64]error{7: errors.New("rpc timeout")},
	})

	ideas, err := reader.Snapshot(context.Background())
	require.Error(t, err)
	assert.Nil(t, ideas)

	var readErr *model.ReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestSnapshotFailsWhenCountReadFails(t *testing.T) {
	backend := &fakeBackend{totalErr: errors.New("rpc down")}
	reader := newTestReader(t, backend)

	_, err := reader.Snapshot(context.Background())
	require.Error(t, err)
	assert.Zero(t, backend.calls, "no record reads after a failed count read")
}

type sinkRecorder struct {
	mu      sync.Mutex
	gen     uint64
	commits []uint64
	ideas   []model.Idea
	err     error
}

func (s *sinkRecorder) BeginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *sinkRecorder) CommitSnapshot(gen uint64, ideas []model.Idea, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits = append(s.commits, gen)
	s.ideas = ideas
	s.err = err
}

func TestRefreshCommitsUnderFreshGeneration(t *testing.T) {
	reader := newTestReader(t, &fakeBackend{total: 3})
	sink := &sinkRecorder{}

	require.NoError(t, reader.Refresh(context.Background(), sink))
	require.NoError(t, reader.Refresh(context.Background(), sink))

	assert.Equal(t, []uint64{1, 2}, sink.commits)
	assert.Len(t, sink.ideas, 3)
	assert.NoError(t, sink.err)
}

func TestRefreshReportsReadError(t *testing.T) {
	reader := newTestReader(t, &fakeBackend{
		total:  2,
		failAt: map[uint64]error{1: errors.New("boom")},
	})
	sink := &sinkRecorder{}

	err := reader.Refresh(context.Background(), sink)
	require.Error(t, err)
	assert.Equal(t, err, sink.err)
}
