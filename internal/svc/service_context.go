package svc

import (
	"fmt"

	"batch-transfer-sol/internal/config"
	"batch-transfer-sol/internal/logic/job"
	"batch-transfer-sol/internal/logic/processor"
	"batch-transfer-sol/internal/logic/progress"
	"batch-transfer-sol/internal/mq"
	"batch-transfer-sol/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含处理器运行所需的全部资源
type ServiceContext struct {
	Config    config.ProcessorConfig
	Producer  *kafka.Producer
	Redis     *redis.Client
	Processor *processor.Processor
	Runner    *job.Runner
}

// NewServiceContext 按配置初始化资源
func NewServiceContext(c config.ProcessorConfig) (*ServiceContext, error) {
	// 1. 解析程序地址（进程内只读）
	system, token, err := c.ProgramsConf.Resolve()
	if err != nil {
		return nil, err
	}
	programs := processor.Programs{System: system, Token: token}

	// 2. 初始化 Kafka 生产者，下游调用经 Kafka 投递
	producer, err := mq.NewKafkaProducer(c.KafkaProducerConf.ToKafkaOption())
	if err != nil {
		logger.Errorf("[svc] Kafka producer 初始化失败: %v", err)
		return nil, err
	}
	invoker := mq.NewKafkaInvoker(producer, c.KafkaProducerConf.Topic, c.KafkaProducerConf.Partitions, c.TimeConf.InvokeTimeout())

	// 3. Redis 任务判重，未配置时不判重
	var (
		rdb   *redis.Client
		store job.ProgressStore
	)
	if c.RedisConf.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     c.RedisConf.Addr,
			Password: c.RedisConf.Password,
			DB:       c.RedisConf.DB,
		})
		store = progress.NewRedisProgressStore(rdb)
	} else {
		logger.Warnf("[svc] redis.addr 未配置，任务不做判重")
	}

	p := processor.NewProcessor(programs, invoker)
	logger.Infof("[svc] system_program=%s token_program=%s", p.Programs().System, p.Programs().Token)
	ctx := &ServiceContext{
		Config:    c,
		Producer:  producer,
		Redis:     rdb,
		Processor: p,
		Runner:    job.NewRunner(p, store, c.TimeConf.JobTimeout()),
	}

	logger.Infof("[svc] 服务上下文初始化完成")
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() error {
	var errs []error
	if ctx.Producer != nil {
		if remaining := ctx.Producer.Flush(5000); remaining > 0 {
			errs = append(errs, fmt.Errorf("kafka: %d messages not flushed", remaining))
		}
		ctx.Producer.Close()
	}
	if ctx.Redis != nil {
		if err := ctx.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close service context: %v", errs)
	}
	return nil
}
