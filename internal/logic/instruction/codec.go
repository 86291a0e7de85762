package instruction

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/near/borsh-go"
)

var (
	ErrDecode      = errors.New("instruction decode error")
	ErrUnknownKind = errors.New("unknown instruction kind")
)

// borsh 布局:
//
//	[0]    variant (u8)
//	[1:5]  transfer 数量 (u32 LE)
//	[5:]   数量 × amount (u64 LE)
const (
	headerSize   = 1 + 4
	transferSize = 8
)

type transferList struct {
	Transfers []TransferRequest
}

// wireInstruction 对应链上 borsh 枚举，字段顺序即变体序号
type wireInstruction struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	TokenTransfer  transferList
	NativeTransfer transferList
}

// Decode 将 instruction data 解码为 Instruction。
// 与 try_from_slice 一致：截断、未知变体、尾部多余字节都视为错误。
func Decode(data []byte) (ix Instruction, err error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: buffer too short: got %d bytes, want >= %d", ErrDecode, len(data), headerSize)
	}
	kind := Kind(data[0])
	if kind != KindTokenTransfer && kind != KindNativeTransfer {
		return nil, fmt.Errorf("%w: %w: tag=%d", ErrDecode, ErrUnknownKind, data[0])
	}

	// 先按长度前缀校验总长，避免恶意 count 触发超大分配
	count := binary.LittleEndian.Uint32(data[1:headerSize])
	want := uint64(headerSize) + uint64(count)*transferSize
	switch {
	case uint64(len(data)) < want:
		return nil, fmt.Errorf("%w: truncated: %d transfers need %d bytes, got %d", ErrDecode, count, want, len(data))
	case uint64(len(data)) > want:
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrDecode, uint64(len(data))-want)
	}

	defer func() {
		if r := recover(); r != nil {
			ix = nil
			err = fmt.Errorf("%w: borsh panic: %v", ErrDecode, r)
		}
	}()

	var wire wireInstruction
	if err := borsh.Deserialize(&wire, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch Kind(wire.Enum) {
	case KindTokenTransfer:
		return &TokenTransfer{Transfers: nonNil(wire.TokenTransfer.Transfers)}, nil
	case KindNativeTransfer:
		return &NativeTransfer{Transfers: nonNil(wire.NativeTransfer.Transfers)}, nil
	default:
		return nil, fmt.Errorf("%w: %w: tag=%d", ErrDecode, ErrUnknownKind, wire.Enum)
	}
}

// Encode 是 Decode 的逆操作，供客户端与 job 文件构造 instruction data
func Encode(ix Instruction) ([]byte, error) {
	var wire wireInstruction
	switch v := ix.(type) {
	case *TokenTransfer:
		wire.Enum = borsh.Enum(KindTokenTransfer)
		wire.TokenTransfer.Transfers = v.Transfers
	case *NativeTransfer:
		wire.Enum = borsh.Enum(KindNativeTransfer)
		wire.NativeTransfer.Transfers = v.Transfers
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, ix)
	}
	if uint64(len(ix.Requests())) > math.MaxUint32 {
		return nil, fmt.Errorf("too many transfers: %d", len(ix.Requests()))
	}
	return borsh.Serialize(wire)
}

func nonNil(transfers []TransferRequest) []TransferRequest {
	if transfers == nil {
		return []TransferRequest{}
	}
	return transfers
}
