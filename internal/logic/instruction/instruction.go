package instruction

// Kind 为指令变体的 borsh 枚举序号
type Kind uint8

const (
	KindTokenTransfer  Kind = 0
	KindNativeTransfer Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindTokenTransfer:
		return "TokenTransfer"
	case KindNativeTransfer:
		return "NativeTransfer"
	default:
		return "Unknown"
	}
}

// TransferRequest 表示批次中的一笔转账。
// 来源与目标账户不在 payload 中，而是按位置从账户列表中取。
// Amount 原样透传给下游，本系统不做余额检查。
type TransferRequest struct {
	Amount uint64
}

// Instruction 是解码后的指令，只有 *TokenTransfer 与 *NativeTransfer 两种实现
type Instruction interface {
	Kind() Kind
	Requests() []TransferRequest
	isInstruction()
}

// TokenTransfer 由同一个 authority 签名的一批 SPL Token 转账
type TokenTransfer struct {
	Transfers []TransferRequest
}

func (*TokenTransfer) Kind() Kind { return KindTokenTransfer }
func (t *TokenTransfer) Requests() []TransferRequest { return t.Transfers }
func (*TokenTransfer) isInstruction() {}

// NativeTransfer 一批原生 SOL 转账，每笔由各自的来源账户签名
type NativeTransfer struct {
	Transfers []TransferRequest
}

func (*NativeTransfer) Kind() Kind { return KindNativeTransfer }
func (n *NativeTransfer) Requests() []TransferRequest { return n.Transfers }
func (*NativeTransfer) isInstruction() {}

// New 按变体构造指令，amounts 依次对应每笔转账
func New(kind Kind, amounts ...uint64) (Instruction, error) {
	transfers := make([]TransferRequest, len(amounts))
	for i, amount := range amounts {
		transfers[i] = TransferRequest{Amount: amount}
	}
	switch kind {
	case KindTokenTransfer:
		return &TokenTransfer{Transfers: transfers}, nil
	case KindNativeTransfer:
		return &NativeTransfer{Transfers: transfers}, nil
	default:
		return nil, ErrUnknownKind
	}
}
