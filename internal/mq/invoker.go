package mq

import (
	"context"
	"time"

	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/pkg/logger"
	"batch-transfer-sol/internal/pkg/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const defaultInvokeTimeout = 5 * time.Second

// KafkaInvoker 将每次下游调用同步投递到 Kafka，由执行端按分区顺序消费。
// 以 source 账户做分区 key，保证同一来源账户的转账有序。
// 投递失败或超时即视为下游失败，批次中止。
type KafkaInvoker struct {
	producer   Producer
	topic      string
	partitions uint32
	timeout    time.Duration
}

func NewKafkaInvoker(producer Producer, topic string, partitions int, timeout time.Duration) *KafkaInvoker {
	if timeout <= 0 {
		timeout = defaultInvokeTimeout
	}
	if partitions < 0 {
		partitions = 0
	}
	return &KafkaInvoker{
		producer:   producer,
		topic:      topic,
		partitions: uint32(partitions),
		timeout:    timeout,
	}
}

func (k *KafkaInvoker) Invoke(ctx context.Context, inv *cpi.Invocation) error {
	partition := kafka.PartitionAny
	if k.partitions > 0 {
		partition = int32(utils.PartitionHashBytes(inv.Source[:], k.partitions))
	}

	job := &KafkaJob{
		Topic:     k.topic,
		Partition: partition,
		Key:       inv.Source[:],
		Value:     EncodeInvocation(inv),
	}

	start := time.Now()
	_, failed := SendKafkaJobs(ctx, k.producer, []*KafkaJob{job}, k.timeout)
	if len(failed) > 0 {
		logger.Errorf("[mq::KafkaInvoker] %s transfer %d to %s/%d failed: %v",
			inv.Primitive, inv.Index, k.topic, partition, failed[0].Err)
		return failed[0].Err
	}

	logger.Debugf("[mq::KafkaInvoker] %s transfer %d delivered to %s/%d in %v",
		inv.Primitive, inv.Index, k.topic, partition, time.Since(start))
	return nil
}
