package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProgressStore 管理 Redis 中的任务状态记录（幂等控制）
type RedisProgressStore struct {
	rdb *redis.Client
}

const jobPrefix = "progress:transfer:job"

// 每类状态的 TTL（可调）。
// pending 不过期：进程中途崩溃时部分转账可能已投递，只能人工确认后 Release。
const (
	processedTTL = 7 * 24 * time.Hour
	failedTTL    = 3 * 24 * time.Hour
	pendingTTL   = time.Duration(0)
)

// NewRedisProgressStore 创建 Redis 判重管理器
func NewRedisProgressStore(rdb *redis.Client) *RedisProgressStore {
	return &RedisProgressStore{rdb: rdb}
}

func (r *RedisProgressStore) getKey(jobID string) string {
	return fmt.Sprintf("%s:%s", jobPrefix, jobID)
}

func (r *RedisProgressStore) getTTL(status JobStatus) time.Duration {
	switch status {
	case JobProcessed:
		return processedTTL
	case JobFailed:
		return failedTTL
	default:
		return pendingTTL
	}
}

// GetJobStatus 获取任务状态（Unknown / Processed / Failed / Pending）
func (r *RedisProgressStore) GetJobStatus(ctx context.Context, jobID string) (JobStatus, error) {
	val, err := r.rdb.Get(ctx, r.getKey(jobID)).Int()
	switch {
	case errors.Is(err, redis.Nil):
		return JobUnknown, nil
	case err != nil:
		return JobUnknown, fmt.Errorf("redis get error: %w", err)
	case val == int(JobProcessed):
		return JobProcessed, nil
	case val == int(JobFailed):
		return JobFailed, nil
	case val == int(JobPending):
		return JobPending, nil
	default:
		return JobUnknown, nil // 容错处理
	}
}

// MarkJobStatus 通用设置任务状态
func (r *RedisProgressStore) MarkJobStatus(ctx context.Context, jobID string, status JobStatus) error {
	if err := r.rdb.Set(ctx, r.getKey(jobID), int(status), r.getTTL(status)).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// MarkJobPending 仅当任务不存在时标记为处理中，返回是否抢占成功
func (r *RedisProgressStore) MarkJobPending(ctx context.Context, jobID string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.getKey(jobID), int(JobPending), pendingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx error: %w", err)
	}
	return ok, nil
}

// MarkJobProcessed 标记任务为已处理
func (r *RedisProgressStore) MarkJobProcessed(ctx context.Context, jobID string) error {
	return r.MarkJobStatus(ctx, jobID, JobProcessed)
}

// MarkJobFailed 标记任务为失败
func (r *RedisProgressStore) MarkJobFailed(ctx context.Context, jobID string) error {
	return r.MarkJobStatus(ctx, jobID, JobFailed)
}

// Release 删除任务状态，允许重新提交（failed 或崩溃遗留的 pending 需人工确认后调用）
func (r *RedisProgressStore) Release(ctx context.Context, jobID string) error {
	return r.rdb.Del(ctx, r.getKey(jobID)).Err()
}
