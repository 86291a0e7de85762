package cpi

import (
	"context"

	"batch-transfer-sol/internal/logic/core"
	"batch-transfer-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Primitive 表示下游转账原语
type Primitive uint8

const (
	PrimitiveNative Primitive = 1 // System Program Transfer
	PrimitiveToken  Primitive = 2 // SPL Token Transfer
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveNative:
		return "native"
	case PrimitiveToken:
		return "token"
	default:
		return "unknown"
	}
}

// Invocation 是发往下游原语的一次子调用
type Invocation struct {
	Index       int                  // 在批次中的序号
	Primitive   Primitive            // 下游原语
	Source      types.Pubkey         // 来源账户
	Destination types.Pubkey         // 目标账户
	Authority   *types.Pubkey        // token 转账的 authority，native 为 nil
	Amount      uint64               // 原样透传的数量
	Instruction sdktypes.Instruction // 已编码的下游指令
	Accounts    []core.AccountHandle // 下游所需的最小账户集合
}

// Invoker 同步执行一次下游调用，返回 error 即表示下游拒绝。
// 成功的含义取决于实现：mq.KafkaInvoker 只保证投递已被 Kafka 确认，
// 原语自身的拒绝（如余额不足）发生在消费端，不会以 ErrDownstreamTransfer 返回给调用方。
type Invoker interface {
	Invoke(ctx context.Context, inv *Invocation) error
}

// InvokerFunc 允许普通函数作为 Invoker
type InvokerFunc func(ctx context.Context, inv *Invocation) error

func (f InvokerFunc) Invoke(ctx context.Context, inv *Invocation) error {
	return f(ctx, inv)
}

// BuildNativeTransfer 构造 System Program 转账。
// 账户集合: [source, destination, system_program]
func BuildNativeTransfer(index int, program, src, dst core.AccountHandle, amount uint64) *Invocation {
	ix := system.Transfer(system.TransferParam{
		From:   src.Key.ToPublicKey(),
		To:     dst.Key.ToPublicKey(),
		Amount: amount,
	})
	ix.ProgramID = program.Key.ToPublicKey()

	return &Invocation{
		Index:       index,
		Primitive:   PrimitiveNative,
		Source:      src.Key,
		Destination: dst.Key,
		Amount:      amount,
		Instruction: ix,
		Accounts:    []core.AccountHandle{src, dst, program},
	}
}

// BuildTokenTransfer 构造 SPL Token Transfer（单签 authority，无 multisig signers）。
// 账户集合: [source, destination, authority, token_program]
func BuildTokenTransfer(index int, program, src, dst, authority core.AccountHandle, amount uint64) *Invocation {
	ix := token.Transfer(token.TransferParam{
		From:    src.Key.ToPublicKey(),
		To:      dst.Key.ToPublicKey(),
		Auth:    authority.Key.ToPublicKey(),
		Signers: []common.PublicKey{},
		Amount:  amount,
	})
	// 兼容 Token-2022 等同布局的 token program
	ix.ProgramID = program.Key.ToPublicKey()

	auth := authority.Key
	return &Invocation{
		Index:       index,
		Primitive:   PrimitiveToken,
		Source:      src.Key,
		Destination: dst.Key,
		Authority:   &auth,
		Amount:      amount,
		Instruction: ix,
		Accounts:    []core.AccountHandle{src, dst, authority, program},
	}
}
