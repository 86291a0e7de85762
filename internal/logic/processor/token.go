package processor

import (
	"context"
	"fmt"

	"batch-transfer-sol/internal/logic/accounts"
	"batch-transfer-sol/internal/logic/core"
	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/logic/instruction"
)

// processTokenTransfers 处理 SPL Token 批量转账。
// 账户: [authority, token_program, (src, dst) × n]，authority 为所有转账统一签名。
func (p *Processor) processTokenTransfers(ctx context.Context, list []core.AccountHandle, ix *instruction.TokenTransfer) error {
	kind := ix.Kind()

	trace(kind, StageBinding)
	b, err := accounts.TokenTransferScheme.Bind(list, len(ix.Transfers))
	if err != nil {
		return err
	}

	// 循环外一次性校验 token program 与 authority
	trace(kind, StageValidating)
	authority := b.Fixed(accounts.RoleAuthority)
	tokenProgram := b.Fixed(accounts.RoleTokenProgram)
	if tokenProgram.Key != p.programs.Token {
		return fmt.Errorf("%w: token program is %s, want %s", ErrInvalidProgramIdentity, tokenProgram.Key, p.programs.Token)
	}
	if !authority.IsSigner {
		return fmt.Errorf("%w: authority %s", ErrMissingSignature, authority.Key)
	}

	trace(kind, StageInvoking)
	for i, n := 0, b.Len(); i < n; i++ {
		src, dst := b.Pair(i)
		inv := cpi.BuildTokenTransfer(i, tokenProgram, src, dst, authority, ix.Transfers[i].Amount)
		if err := p.invoke(ctx, inv); err != nil {
			return err
		}
	}

	trace(kind, StageDone)
	return nil
}
