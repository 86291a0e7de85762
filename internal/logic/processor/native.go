package processor

import (
	"context"
	"fmt"

	"batch-transfer-sol/internal/logic/accounts"
	"batch-transfer-sol/internal/logic/core"
	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/logic/instruction"
)

// processNativeTransfers 处理原生 SOL 批量转账。
// 账户: [system_program, (src, dst) × n]，每笔转账的 source 各自签名，
// 因此签名在循环内逐笔检查：第 i 笔缺签时，前 i 笔已经调用完成。
func (p *Processor) processNativeTransfers(ctx context.Context, list []core.AccountHandle, ix *instruction.NativeTransfer) error {
	kind := ix.Kind()

	trace(kind, StageBinding)
	b, err := accounts.NativeTransferScheme.Bind(list, len(ix.Transfers))
	if err != nil {
		return err
	}

	trace(kind, StageValidating)
	systemProgram := b.Fixed(accounts.RoleSystemProgram)
	if systemProgram.Key != p.programs.System {
		return fmt.Errorf("%w: system program is %s, want %s", ErrInvalidProgramIdentity, systemProgram.Key, p.programs.System)
	}

	trace(kind, StageInvoking)
	for i, n := 0, b.Len(); i < n; i++ {
		src, dst := b.Pair(i)
		if !src.IsSigner {
			return fmt.Errorf("%w: source %s of transfer %d", ErrMissingSignature, src.Key, i)
		}
		inv := cpi.BuildNativeTransfer(i, systemProgram, src, dst, ix.Transfers[i].Amount)
		if err := p.invoke(ctx, inv); err != nil {
			return err
		}
	}

	trace(kind, StageDone)
	return nil
}
