package config

import (
	"fmt"
	"time"

	"batch-transfer-sol/internal/consts"
	"batch-transfer-sol/internal/mq"
	"batch-transfer-sol/internal/pkg/logger"
	"batch-transfer-sol/internal/types"
)

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`       // 日志目录（可为相对路径或绝对路径），为空只输出 stdout
	Level    string `json:"level,default=info"`     // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`      // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// ProgramsConfig 下游原语所属程序地址（base58），启动时注入，默认主网地址
type ProgramsConfig struct {
	SystemProgram string `json:"system_program,optional"` // System Program
	TokenProgram  string `json:"token_program,optional"`  // SPL Token Program（可配置为 Token-2022）
}

// Resolve 解析为公钥，空值使用默认地址
func (c *ProgramsConfig) Resolve() (system, token types.Pubkey, err error) {
	system, token = consts.SystemProgram, consts.TokenProgram
	if c.SystemProgram != "" {
		if system, err = types.TryPubkeyFromBase58(c.SystemProgram); err != nil {
			return system, token, fmt.Errorf("programs.system_program: %w", err)
		}
	}
	if c.TokenProgram != "" {
		if token, err = types.TryPubkeyFromBase58(c.TokenProgram); err != nil {
			return system, token, fmt.Errorf("programs.token_program: %w", err)
		}
	}
	return system, token, nil
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers    string `json:"brokers"`              // Kafka broker 地址，多个用英文逗号分隔
	BatchSize  int    `json:"batch_size,optional"`  // 批处理大小（单位字节）
	LingerMs   int    `json:"linger_ms,default=0"`  // 批处理最大延迟（毫秒），逐笔同步发送取 0
	Topic      string `json:"topic"`                // 下游调用消息的 topic
	Partitions int    `json:"partitions,default=8"` // topic 分区数，按 source 账户分区
}

func (c *KafkaProducerConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		Topics: []mq.TopicOption{
			{Topic: c.Topic, Partitions: c.Partitions},
		},
	}
}

// RedisConfig 任务进度存储
type RedisConfig struct {
	Addr     string `json:"addr,optional"`     // Redis 地址，为空时不做任务判重
	Password string `json:"password,optional"` // 密码
	DB       int    `json:"db,optional"`       // 库编号
}

// TimeConfig 表示各种超时配置（单位：毫秒）
type TimeConfig struct {
	InvokeTimeoutMs int `json:"invoke_timeout_ms,default=5000"` // 单次下游调用投递到 Kafka 并等待 ack 的超时时间
	JobTimeoutMs    int `json:"job_timeout_ms,default=60000"`   // 单个任务（整批）的处理最大耗时
}

func (c *TimeConfig) InvokeTimeout() time.Duration {
	return time.Duration(c.InvokeTimeoutMs) * time.Millisecond
}

func (c *TimeConfig) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutMs) * time.Millisecond
}

// ProcessorConfig 是主配置结构体
type ProcessorConfig struct {
	LogConf           LogConfig           `json:"logger"`            // 日志配置
	ProgramsConf      ProgramsConfig      `json:"programs,optional"` // 程序地址
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer"`    // Kafka 生产者配置
	RedisConf         RedisConfig         `json:"redis,optional"`    // Redis 配置
	TimeConf          TimeConfig          `json:"time_conf"`         // 时间相关配置
}
