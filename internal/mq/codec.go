package mq

import (
	"encoding/binary"
	"errors"
	"fmt"

	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/types"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageTypeInvocation 消息前缀，标识下游调用消息
const MessageTypeInvocation uint32 = 1

var ErrMalformedMessage = errors.New("malformed invocation message")

// InvocationMessage 字段编号
//
//	1 index       varint
//	2 primitive   varint
//	3 program_id  bytes
//	4 accounts    repeated AccountMeta { 1 pubkey bytes, 2 is_signer varint, 3 is_writable varint }
//	5 data        bytes
//	6 amount      varint
const (
	fieldIndex     protowire.Number = 1
	fieldPrimitive protowire.Number = 2
	fieldProgramID protowire.Number = 3
	fieldAccounts  protowire.Number = 4
	fieldData      protowire.Number = 5
	fieldAmount    protowire.Number = 6

	fieldMetaPubkey   protowire.Number = 1
	fieldMetaSigner   protowire.Number = 2
	fieldMetaWritable protowire.Number = 3
)

// AccountMeta 是下游指令中的账户元信息
type AccountMeta struct {
	Pubkey     types.Pubkey
	IsSigner   bool
	IsWritable bool
}

// InvocationMessage 是 Kafka 上传输的下游调用
type InvocationMessage struct {
	Index     uint64
	Primitive cpi.Primitive
	ProgramID types.Pubkey
	Accounts  []AccountMeta
	Data      []byte
	Amount    uint64
}

// EncodeInvocation 编码为带消息类型前缀的二进制：
// - 前 4 字节为消息类型（uint32，小端序）
// - 后续为 protobuf wire 格式的消息体
func EncodeInvocation(inv *cpi.Invocation) []byte {
	ix := inv.Instruction

	buf := make([]byte, 4, 128)
	binary.LittleEndian.PutUint32(buf[:4], MessageTypeInvocation)

	buf = protowire.AppendTag(buf, fieldIndex, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(inv.Index))
	buf = protowire.AppendTag(buf, fieldPrimitive, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(inv.Primitive))
	buf = protowire.AppendTag(buf, fieldProgramID, protowire.BytesType)
	buf = protowire.AppendBytes(buf, ix.ProgramID[:])

	for _, meta := range ix.Accounts {
		var m []byte
		m = protowire.AppendTag(m, fieldMetaPubkey, protowire.BytesType)
		m = protowire.AppendBytes(m, meta.PubKey[:])
		m = protowire.AppendTag(m, fieldMetaSigner, protowire.VarintType)
		m = protowire.AppendVarint(m, protowire.EncodeBool(meta.IsSigner))
		m = protowire.AppendTag(m, fieldMetaWritable, protowire.VarintType)
		m = protowire.AppendVarint(m, protowire.EncodeBool(meta.IsWritable))

		buf = protowire.AppendTag(buf, fieldAccounts, protowire.BytesType)
		buf = protowire.AppendBytes(buf, m)
	}

	buf = protowire.AppendTag(buf, fieldData, protowire.BytesType)
	buf = protowire.AppendBytes(buf, ix.Data)
	buf = protowire.AppendTag(buf, fieldAmount, protowire.VarintType)
	buf = protowire.AppendVarint(buf, inv.Amount)
	return buf
}

// DecodeInvocation 解析 EncodeInvocation 的输出，供下游消费者使用
func DecodeInvocation(b []byte) (*InvocationMessage, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: too short", ErrMalformedMessage)
	}
	if t := binary.LittleEndian.Uint32(b[:4]); t != MessageTypeInvocation {
		return nil, fmt.Errorf("%w: unexpected message type %d", ErrMalformedMessage, t)
	}

	msg := &InvocationMessage{}
	err := consumeFields(b[4:], func(num protowire.Number, typ protowire.Type, v uint64, raw []byte) error {
		switch num {
		case fieldIndex:
			msg.Index = v
		case fieldPrimitive:
			msg.Primitive = cpi.Primitive(v)
		case fieldProgramID:
			pk, err := types.PubkeyFromBytes(raw)
			if err != nil {
				return err
			}
			msg.ProgramID = pk
		case fieldAccounts:
			meta, err := decodeAccountMeta(raw)
			if err != nil {
				return err
			}
			msg.Accounts = append(msg.Accounts, meta)
		case fieldData:
			msg.Data = append([]byte(nil), raw...)
		case fieldAmount:
			msg.Amount = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeAccountMeta(b []byte) (AccountMeta, error) {
	var meta AccountMeta
	err := consumeFields(b, func(num protowire.Number, _ protowire.Type, v uint64, raw []byte) error {
		switch num {
		case fieldMetaPubkey:
			pk, err := types.PubkeyFromBytes(raw)
			if err != nil {
				return err
			}
			meta.Pubkey = pk
		case fieldMetaSigner:
			meta.IsSigner = protowire.DecodeBool(v)
		case fieldMetaWritable:
			meta.IsWritable = protowire.DecodeBool(v)
		}
		return nil
	})
	return meta, err
}

// consumeFields 逐个读取 varint / bytes 字段，其余 wire 类型直接跳过
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, v uint64, raw []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(n))
		}
		b = b[n:]

		var (
			v   uint64
			raw []byte
		)
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			raw, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformedMessage, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(num, typ, v, raw); err != nil {
			return fmt.Errorf("%w: field %d: %v", ErrMalformedMessage, num, err)
		}
	}
	return nil
}
