package progress

// JobStatus 表示一个转账任务的处理状态（Redis 中以整数存储）
type JobStatus int

const (
	JobUnknown   JobStatus = 0 // Redis 不存在
	JobProcessed JobStatus = 1 // ✅ 批次全部成功
	JobFailed    JobStatus = 2 // ❌ 批次失败（解码、校验或下游拒绝）
	JobPending   JobStatus = 3 // 🕒 正在处理
)

func (s JobStatus) String() string {
	switch s {
	case JobProcessed:
		return "processed"
	case JobFailed:
		return "failed"
	case JobPending:
		return "pending"
	default:
		return "unknown"
	}
}
