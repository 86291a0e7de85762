package processor

import (
	"errors"
	"fmt"

	"batch-transfer-sol/internal/logic/accounts"
	"batch-transfer-sol/internal/logic/cpi"
	"batch-transfer-sol/internal/logic/instruction"
)

// 错误分类，调用方用 errors.Is 判断
var (
	ErrDecode                 = instruction.ErrDecode
	ErrAccountCountMismatch   = accounts.ErrAccountCountMismatch
	ErrInvalidProgramIdentity = errors.New("invalid program identity")
	ErrMissingSignature       = errors.New("missing required signature")
	ErrDownstreamTransfer     = errors.New("downstream transfer failed")
)

// TransferError 包装下游原语返回的错误，Unwrap 得到原始错误
type TransferError struct {
	Index     int
	Primitive cpi.Primitive
	Err       error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s transfer %d: %v", e.Primitive, e.Index, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func (e *TransferError) Is(target error) bool {
	return target == ErrDownstreamTransfer
}

// Kind 返回错误类别名，用于日志与任务状态
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrAccountCountMismatch):
		return "account_count_mismatch"
	case errors.Is(err, ErrInvalidProgramIdentity):
		return "invalid_program_identity"
	case errors.Is(err, ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, ErrDownstreamTransfer):
		return "downstream_transfer_failure"
	default:
		return "unknown"
	}
}
