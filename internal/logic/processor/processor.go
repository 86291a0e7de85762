package processor

import (
	"context"
	"fmt"

	"batch-transfer-sol/internal/consts"
	"batch-transfer-sol/internal/logic/core"
	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/logic/instruction"
	"batch-transfer-sol/internal/pkg/logger"
	"batch-transfer-sol/internal/types"
)

// Programs 是下游原语所属程序的公认地址，启动时注入，之后只读
type Programs struct {
	System types.Pubkey
	Token  types.Pubkey
}

// DefaultPrograms 主网地址
func DefaultPrograms() Programs {
	return Programs{
		System: consts.SystemProgram,
		Token:  consts.TokenProgram,
	}
}

// Stage 表示一次处理所处的阶段
type Stage uint8

const (
	StageDecoding Stage = iota
	StageBinding
	StageValidating
	StageInvoking
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageDecoding:
		return "decoding"
	case StageBinding:
		return "binding"
	case StageValidating:
		return "validating"
	case StageInvoking:
		return "invoking"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Processor 解码指令、校验账户并按序驱动下游转账。
// 本身无状态，可被多个 goroutine 共享；同一批账户的并发由外部串行化。
type Processor struct {
	programs Programs
	invoker  cpi.Invoker
}

func NewProcessor(programs Programs, invoker cpi.Invoker) *Processor {
	return &Processor{
		programs: programs,
		invoker:  invoker,
	}
}

// Programs 返回注入的程序地址
func (p *Processor) Programs() Programs {
	return p.programs
}

// ProcessInstruction 是唯一入口：解码 → 分发 → 绑定 → 校验 → 逐笔调用。
// 任意一步失败立即返回，不做重试与回滚。
func (p *Processor) ProcessInstruction(
	ctx context.Context,
	programID types.Pubkey,
	list []core.AccountHandle,
	data []byte,
) error {
	logger.Debugf("[Processor::ProcessInstruction] program=%s stage=%s bytes=%d", programID, StageDecoding, len(data))
	ix, err := instruction.Decode(data)
	if err != nil {
		logger.Warnf("[Processor::ProcessInstruction] program=%s stage=%s reason=%s: %v",
			programID, StageFailed, Kind(err), err)
		return err
	}

	logger.Debugf("[Processor::ProcessInstruction] program=%s kind=%s transfers=%d accounts=%d",
		programID, ix.Kind(), len(ix.Requests()), len(list))

	switch v := ix.(type) {
	case *instruction.TokenTransfer:
		err = p.processTokenTransfers(ctx, list, v)
	case *instruction.NativeTransfer:
		err = p.processNativeTransfers(ctx, list, v)
	default:
		err = fmt.Errorf("%w: %w: %T", ErrDecode, instruction.ErrUnknownKind, ix)
	}

	if err != nil {
		logger.Warnf("[Processor::ProcessInstruction] program=%s kind=%s stage=%s reason=%s: %v",
			programID, ix.Kind(), StageFailed, Kind(err), err)
		return err
	}
	return nil
}

func (p *Processor) invoke(ctx context.Context, inv *cpi.Invocation) error {
	logger.Debugf("[Processor::invoke] %s transfer %d: %s -> %s amount=%d",
		inv.Primitive, inv.Index, inv.Source, inv.Destination, inv.Amount)

	if err := p.invoker.Invoke(ctx, inv); err != nil {
		return &TransferError{Index: inv.Index, Primitive: inv.Primitive, Err: err}
	}
	return nil
}

func trace(kind instruction.Kind, stage Stage) {
	logger.Debugf("[Processor::%s] stage=%s", kind, stage)
}
