package types

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryPubkeyFromBase58(t *testing.T) {
	p, err := TryPubkeyFromBase58("11111111111111111111111111111111")
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	assert.Equal(t, "11111111111111111111111111111111", p.String())

	_, err = TryPubkeyFromBase58("0OIl")
	assert.Error(t, err, "非法 base58 字符应报错")

	_, err = TryPubkeyFromBase58("abc")
	assert.Error(t, err, "长度不足 32 字节应报错")
}

func TestPubkeyFromBytes(t *testing.T) {
	raw := make([]byte, PubkeySize)
	raw[0] = 7
	p, err := PubkeyFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(7), p[0])

	_, err = PubkeyFromBytes(raw[:31])
	assert.Error(t, err)
}

func TestPubkey_SDKConversion(t *testing.T) {
	p := PubkeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	assert.Equal(t, common.TokenProgramID, p.ToPublicKey())
	assert.Equal(t, p, Pubkey(common.TokenProgramID))
}
