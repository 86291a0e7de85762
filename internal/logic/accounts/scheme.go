package accounts

import (
	"errors"
	"fmt"

	"batch-transfer-sol/internal/logic/core"
)

var (
	ErrAccountCountMismatch = errors.New("account count mismatch")
	ErrRoleNotInScheme      = errors.New("role not in scheme")
	ErrTransferOutOfRange   = errors.New("transfer index out of range")
)

// Role 表示账户在列表中的语义角色
type Role uint8

const (
	RoleAuthority Role = iota
	RoleTokenProgram
	RoleSystemProgram
	RoleSource
	RoleDestination
)

func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleTokenProgram:
		return "token_program"
	case RoleSystemProgram:
		return "system_program"
	case RoleSource:
		return "source"
	case RoleDestination:
		return "destination"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Scheme 描述账户列表的位置约定：先是固定角色，之后每笔转账依次占用 (source, destination) 两个位置
type Scheme struct {
	Name  string
	Fixed []Role
}

var (
	// TokenTransferScheme 布局: [authority, token_program, (src, dst) × n]
	TokenTransferScheme = Scheme{Name: "token_transfer", Fixed: []Role{RoleAuthority, RoleTokenProgram}}

	// NativeTransferScheme 布局: [system_program, (src, dst) × n]
	NativeTransferScheme = Scheme{Name: "native_transfer", Fixed: []Role{RoleSystemProgram}}
)

// Expected 返回 n 笔转账所需的账户数
func (s Scheme) Expected(n int) int {
	return len(s.Fixed) + 2*n
}

// Position 将 (role, 转账序号) 映射为账户列表下标。
// 固定角色忽略 i；source / destination 要求 0 <= i < n。
func (s Scheme) Position(role Role, i, n int) (int, error) {
	switch role {
	case RoleSource, RoleDestination:
		if i < 0 || i >= n {
			return -1, fmt.Errorf("%w: %d not in [0, %d)", ErrTransferOutOfRange, i, n)
		}
		pos := len(s.Fixed) + 2*i
		if role == RoleDestination {
			pos++
		}
		return pos, nil
	default:
		for pos, r := range s.Fixed {
			if r == role {
				return pos, nil
			}
		}
		return -1, fmt.Errorf("%w: %s in %s", ErrRoleNotInScheme, role, s.Name)
	}
}

// Bind 校验账户数与 n 笔转账严格匹配，返回按角色访问的绑定结果
func (s Scheme) Bind(list []core.AccountHandle, n int) (*Binding, error) {
	if want := s.Expected(n); len(list) != want {
		return nil, fmt.Errorf("%w: %s with %d transfers needs %d accounts, got %d",
			ErrAccountCountMismatch, s.Name, n, want, len(list))
	}
	return &Binding{scheme: s, accounts: list, n: n}, nil
}

// Binding 是长度已校验过的账户列表，访问不会越界
type Binding struct {
	scheme   Scheme
	accounts []core.AccountHandle
	n        int
}

// Len 返回转账笔数
func (b *Binding) Len() int {
	return b.n
}

// Fixed 返回固定角色账户，角色不属于该布局时 panic（属于编程错误）
func (b *Binding) Fixed(role Role) core.AccountHandle {
	pos, err := b.scheme.Position(role, 0, b.n)
	if err != nil {
		panic(err)
	}
	return b.accounts[pos]
}

// Pair 返回第 i 笔转账的 (source, destination)
func (b *Binding) Pair(i int) (src, dst core.AccountHandle) {
	srcPos, err := b.scheme.Position(RoleSource, i, b.n)
	if err != nil {
		panic(err)
	}
	return b.accounts[srcPos], b.accounts[srcPos+1]
}
