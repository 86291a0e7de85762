package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"batch-transfer-sol/internal/logic/core"
	"batch-transfer-sol/internal/logic/processor"
	"batch-transfer-sol/internal/logic/progress"
	"batch-transfer-sol/internal/pkg/logger"
	"batch-transfer-sol/internal/types"
)

var (
	ErrAlreadyProcessed = errors.New("job already processed")
	ErrJobNotRunnable   = errors.New("job not runnable")
	ErrNoProgressStore  = errors.New("no progress store configured")
)

// ProgressStore 任务幂等状态存储
type ProgressStore interface {
	GetJobStatus(ctx context.Context, jobID string) (progress.JobStatus, error)
	MarkJobPending(ctx context.Context, jobID string) (bool, error)
	MarkJobProcessed(ctx context.Context, jobID string) error
	MarkJobFailed(ctx context.Context, jobID string) error
	Release(ctx context.Context, jobID string) error
}

// InstructionProcessor 由 *processor.Processor 实现
type InstructionProcessor interface {
	ProcessInstruction(ctx context.Context, programID types.Pubkey, accounts []core.AccountHandle, data []byte) error
}

// Runner 执行 job：判重 → 处理 → 落状态。
// 失败或中途崩溃（停留在 pending）的任务不会自动重试（前几笔可能已经生效），
// 需要人工确认后 Release。
type Runner struct {
	processor InstructionProcessor
	store     ProgressStore // 为 nil 时不做判重
	timeout   time.Duration
}

func NewRunner(p InstructionProcessor, store ProgressStore, timeout time.Duration) *Runner {
	return &Runner{
		processor: p,
		store:     store,
		timeout:   timeout,
	}
}

func (r *Runner) Run(ctx context.Context, j *Job) error {
	programID, accounts, data, err := j.Resolve()
	if err != nil {
		return fmt.Errorf("job %s: %w", j.ID, err)
	}

	if err := r.acquire(ctx, j.ID); err != nil {
		return err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	perr := r.processor.ProcessInstruction(ctx, programID, accounts, data)
	if perr != nil {
		logger.Errorf("[job::Run] job=%s failed (%s) after %v: %v", j.ID, processor.Kind(perr), time.Since(start), perr)
		r.mark(context.WithoutCancel(ctx), j.ID, progress.JobFailed)
		return fmt.Errorf("job %s: %w", j.ID, perr)
	}

	logger.Infof("[job::Run] job=%s processed, accounts=%d, cost=%v", j.ID, len(accounts), time.Since(start))
	r.mark(context.WithoutCancel(ctx), j.ID, progress.JobProcessed)
	return nil
}

// acquire 抢占任务，已处理返回 ErrAlreadyProcessed，其它已有状态返回 ErrJobNotRunnable
func (r *Runner) acquire(ctx context.Context, jobID string) error {
	if r.store == nil {
		return nil
	}
	ok, err := r.store.MarkJobPending(ctx, jobID)
	if err != nil {
		return fmt.Errorf("job %s: acquire: %w", jobID, err)
	}
	if ok {
		return nil
	}

	status, err := r.store.GetJobStatus(ctx, jobID)
	if err != nil {
		return fmt.Errorf("job %s: status: %w", jobID, err)
	}
	if status == progress.JobProcessed {
		return fmt.Errorf("job %s: %w", jobID, ErrAlreadyProcessed)
	}
	return fmt.Errorf("job %s: %w: status=%s", jobID, ErrJobNotRunnable, status)
}

func (r *Runner) mark(ctx context.Context, jobID string, status progress.JobStatus) {
	if r.store == nil {
		return
	}
	var err error
	switch status {
	case progress.JobProcessed:
		err = r.store.MarkJobProcessed(ctx, jobID)
	case progress.JobFailed:
		err = r.store.MarkJobFailed(ctx, jobID)
	}
	if err != nil {
		logger.Errorf("[job::mark] job=%s status=%s: %v", jobID, status, err)
	}
}

// Release 清除任务状态，使其可以再次运行
func (r *Runner) Release(ctx context.Context, jobID string) error {
	if r.store == nil {
		return ErrNoProgressStore
	}
	status, err := r.store.GetJobStatus(ctx, jobID)
	if err != nil {
		return fmt.Errorf("job %s: status: %w", jobID, err)
	}
	if err := r.store.Release(ctx, jobID); err != nil {
		return fmt.Errorf("job %s: release: %w", jobID, err)
	}
	logger.Warnf("[job::Release] job=%s released, previous status=%s", jobID, status)
	return nil
}
