package instruction

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawInstruction 按 borsh 布局手工拼装 instruction data
func rawInstruction(tag byte, amounts ...uint64) []byte {
	buf := make([]byte, headerSize+len(amounts)*transferSize)
	buf[0] = tag
	binary.LittleEndian.PutUint32(buf[1:headerSize], uint32(len(amounts)))
	for i, amount := range amounts {
		off := headerSize + i*transferSize
		binary.LittleEndian.PutUint64(buf[off:off+transferSize], amount)
	}
	return buf
}

func TestDecode_TokenTransfer(t *testing.T) {
	ix, err := Decode(rawInstruction(0, 100, 250))
	require.NoError(t, err)

	token, ok := ix.(*TokenTransfer)
	require.True(t, ok, "应解码为 TokenTransfer，实际 %T", ix)
	assert.Equal(t, KindTokenTransfer, token.Kind())
	assert.Equal(t, []TransferRequest{{Amount: 100}, {Amount: 250}}, token.Transfers)
}

func TestDecode_NativeTransfer(t *testing.T) {
	ix, err := Decode(rawInstruction(1, ^uint64(0)))
	require.NoError(t, err)

	native, ok := ix.(*NativeTransfer)
	require.True(t, ok, "应解码为 NativeTransfer，实际 %T", ix)
	assert.Equal(t, []TransferRequest{{Amount: ^uint64(0)}}, native.Transfers)
}

func TestDecode_EmptyBatch(t *testing.T) {
	ix, err := Decode(rawInstruction(0))
	require.NoError(t, err)
	assert.Empty(t, ix.Requests())
	assert.NotNil(t, ix.Requests())
}

func TestDecode_Errors(t *testing.T) {
	valid := rawInstruction(0, 1, 2)

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only tag", []byte{0}},
		{"unknown tag", rawInstruction(2, 1)},
		{"truncated record", valid[:len(valid)-1]},
		{"missing record", valid[:headerSize+transferSize]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x00)},
		{"huge count", []byte{1, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ix, err := Decode(tc.data)
			assert.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, ix)
		})
	}
}

func TestDecode_UnknownTagIsKindError(t *testing.T) {
	_, err := Decode(rawInstruction(7))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecode_Idempotent(t *testing.T) {
	data := rawInstruction(1, 5, 6, 7)
	first, err := Decode(data)
	require.NoError(t, err)
	second, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncode_MatchesWireLayout(t *testing.T) {
	ix, err := New(KindTokenTransfer, 100, 250)
	require.NoError(t, err)

	data, err := Encode(ix)
	require.NoError(t, err)
	assert.Equal(t, rawInstruction(0, 100, 250), data)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ix, decoded)
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(Kind(9), 1)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
