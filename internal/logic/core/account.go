package core

import (
	"fmt"

	"batch-transfer-sol/internal/types"
)

// AccountHandle 表示调用方传入的一个账户引用。
// 处理器只读取其中的字段，从不修改。
type AccountHandle struct {
	Key        types.Pubkey // 账户地址
	IsSigner   bool         // 本次调用是否已由该账户签名
	IsWritable bool         // 本次调用中该账户是否可写
}

func (a AccountHandle) String() string {
	return fmt.Sprintf("%s(signer=%v,writable=%v)", a.Key, a.IsSigner, a.IsWritable)
}
