package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/logic/processor"
	"batch-transfer-sol/internal/logic/progress"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvoker struct {
	calls int
	err   error
}

func (c *countingInvoker) Invoke(_ context.Context, _ *cpi.Invocation) error {
	c.calls++
	return c.err
}

func newRedisStore(t *testing.T) (*progress.RedisProgressStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return progress.NewRedisProgressStore(rdb), mr
}

func TestRunner_ProcessesOnce(t *testing.T) {
	inv := &countingInvoker{}
	store, _ := newRedisStore(t)
	runner := NewRunner(processor.NewProcessor(processor.DefaultPrograms(), inv), store, time.Second)

	j, err := ParseJob(tokenJobBytes())
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background(), j))
	assert.Equal(t, 2, inv.calls)

	status, err := store.GetJobStatus(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.JobProcessed, status)

	err = runner.Run(context.Background(), j)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, 2, inv.calls, "重复提交不应再次调用下游")
}

func TestRunner_FailedJobIsNotRetried(t *testing.T) {
	inv := &countingInvoker{err: errors.New("insufficient funds")}
	store, _ := newRedisStore(t)
	runner := NewRunner(processor.NewProcessor(processor.DefaultPrograms(), inv), store, time.Second)

	j, err := ParseJob(tokenJobBytes())
	require.NoError(t, err)

	err = runner.Run(context.Background(), j)
	assert.ErrorIs(t, err, processor.ErrDownstreamTransfer)

	status, err := store.GetJobStatus(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.JobFailed, status)

	err = runner.Run(context.Background(), j)
	assert.ErrorIs(t, err, ErrJobNotRunnable)
	assert.Equal(t, 1, inv.calls)
}

func TestRunner_WithoutStore(t *testing.T) {
	inv := &countingInvoker{}
	runner := NewRunner(processor.NewProcessor(processor.DefaultPrograms(), inv), nil, 0)

	j, err := ParseJob(tokenJobBytes())
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), j))
	require.NoError(t, runner.Run(context.Background(), j))
	assert.Equal(t, 4, inv.calls)
}

func TestRunner_InvalidJobNotMarked(t *testing.T) {
	store, _ := newRedisStore(t)
	runner := NewRunner(processor.NewProcessor(processor.DefaultPrograms(), &countingInvoker{}), store, 0)

	err := runner.Run(context.Background(), &Job{ID: "bad", Kind: "nft"})
	assert.ErrorIs(t, err, ErrInvalidJob)

	status, err := store.GetJobStatus(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, progress.JobUnknown, status)
}

func TestRunner_StalePendingIsNotRerun(t *testing.T) {
	inv := &countingInvoker{}
	store, mr := newRedisStore(t)
	runner := NewRunner(processor.NewProcessor(processor.DefaultPrograms(), inv), store, time.Second)

	j, err := ParseJob(tokenJobBytes())
	require.NoError(t, err)

	// 上一个进程抢占后在落状态前退出
	ok, err := store.MarkJobPending(context.Background(), j.ID)
	require.NoError(t, err)
	require.True(t, ok)
	mr.FastForward(24 * time.Hour)

	err = runner.Run(context.Background(), j)
	assert.ErrorIs(t, err, ErrJobNotRunnable)
	assert.Equal(t, 0, inv.calls)
}

func TestRunner_ReleaseAllowsRerun(t *testing.T) {
	inv := &countingInvoker{err: errors.New("insufficient funds")}
	store, _ := newRedisStore(t)
	runner := NewRunner(processor.NewProcessor(processor.DefaultPrograms(), inv), store, time.Second)

	j, err := ParseJob(tokenJobBytes())
	require.NoError(t, err)
	require.Error(t, runner.Run(context.Background(), j))

	require.NoError(t, runner.Release(context.Background(), j.ID))
	status, err := store.GetJobStatus(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.JobUnknown, status)

	inv.err = nil
	require.NoError(t, runner.Run(context.Background(), j))
	assert.Equal(t, 3, inv.calls)
}

func TestRunner_ReleaseWithoutStore(t *testing.T) {
	runner := NewRunner(processor.NewProcessor(processor.DefaultPrograms(), &countingInvoker{}), nil, 0)
	assert.ErrorIs(t, runner.Release(context.Background(), "any"), ErrNoProgressStore)
}
