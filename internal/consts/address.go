package consts

import "batch-transfer-sol/internal/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	SystemProgramStr    = "11111111111111111111111111111111"
	TokenProgramStr     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
)

// 公钥形式的地址常量，进程内只读，启动后不再修改
var (
	SystemProgram    = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram     = types.PubkeyFromBase58(TokenProgramStr)
	TokenProgram2022 = types.PubkeyFromBase58(TokenProgram2022Str)
)
