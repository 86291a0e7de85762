package mq

import (
	"context"
	"testing"
	"time"

	"batch-transfer-sol/internal/consts"
	"batch-transfer-sol/internal/logic/core"
	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/pkg/utils"
	"batch-transfer-sol/internal/types"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenInvocation() *cpi.Invocation {
	src := core.AccountHandle{Key: types.Pubkey{9, 9, 9}, IsWritable: true}
	dst := core.AccountHandle{Key: types.Pubkey{8}, IsWritable: true}
	auth := core.AccountHandle{Key: types.Pubkey{7}, IsSigner: true}
	return cpi.BuildTokenTransfer(3, core.AccountHandle{Key: consts.TokenProgram}, src, dst, auth, 250)
}

func TestEncodeDecodeInvocation(t *testing.T) {
	inv := tokenInvocation()
	msg, err := DecodeInvocation(EncodeInvocation(inv))
	require.NoError(t, err)

	assert.Equal(t, uint64(3), msg.Index)
	assert.Equal(t, cpi.PrimitiveToken, msg.Primitive)
	assert.Equal(t, consts.TokenProgram, msg.ProgramID)
	assert.Equal(t, uint64(250), msg.Amount)
	assert.Equal(t, inv.Instruction.Data, msg.Data)

	require.Len(t, msg.Accounts, 3)
	assert.Equal(t, AccountMeta{Pubkey: inv.Source, IsWritable: true}, msg.Accounts[0])
	assert.Equal(t, AccountMeta{Pubkey: inv.Destination, IsWritable: true}, msg.Accounts[1])
	assert.Equal(t, AccountMeta{Pubkey: *inv.Authority, IsSigner: true}, msg.Accounts[2])
}

func TestDecodeInvocation_Malformed(t *testing.T) {
	_, err := DecodeInvocation([]byte{1, 0})
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = DecodeInvocation([]byte{2, 0, 0, 0})
	assert.ErrorIs(t, err, ErrMalformedMessage)

	data := EncodeInvocation(tokenInvocation())
	_, err = DecodeInvocation(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestKafkaInvoker_Delivered(t *testing.T) {
	producer := &fakeProducer{}
	invoker := NewKafkaInvoker(producer, "transfer-invocations", 8, time.Second)
	inv := tokenInvocation()

	require.NoError(t, invoker.Invoke(context.Background(), inv))

	sent := producer.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "transfer-invocations", *sent[0].TopicPartition.Topic)
	assert.Equal(t, int32(utils.PartitionHashBytes(inv.Source[:], 8)), sent[0].TopicPartition.Partition)
	assert.Equal(t, inv.Source[:], sent[0].Key)
	assert.Equal(t, EncodeInvocation(inv), sent[0].Value)
}

func TestKafkaInvoker_NoPartitionCount(t *testing.T) {
	producer := &fakeProducer{}
	invoker := NewKafkaInvoker(producer, "t", 0, 0)

	require.NoError(t, invoker.Invoke(context.Background(), tokenInvocation()))
	assert.Equal(t, kafka.PartitionAny, producer.sent()[0].TopicPartition.Partition)
}

func TestKafkaInvoker_DeliveryFailureIsDownstreamFailure(t *testing.T) {
	producer := &fakeProducer{silent: true}
	invoker := NewKafkaInvoker(producer, "t", 1, 10*time.Millisecond)

	err := invoker.Invoke(context.Background(), tokenInvocation())
	assert.ErrorIs(t, err, ErrDeliveryTimeout)
}
