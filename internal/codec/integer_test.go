package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
)

func TestParseDecimal(t *testing.T) {
	n, err := codec.ParseDecimal("000123")
	require.NoError(t, err)
	assert.Equal(t, int64(123), n.Int64())

	for _, input := range []string{"", "-1", "+1", "1.5", "1e3", "0x10", " 1", "1_000"} {
		_, err := codec.ParseDecimal(input)
		assert.ErrorIs(t, err, codec.ErrInvalidInteger, "input %q", input)
	}
}

func TestParseUint96(t *testing.T) {
	limit := "79228162514264337593543950335" // 2**96 - 1
	n, err := codec.ParseUint96(limit)
	require.NoError(t, err)
	assert.Equal(t, limit, n.String())

	_, err = codec.ParseUint96("79228162514264337593543950336")
	assert.ErrorIs(t, err, codec.ErrOutOfRange)
}

func TestParseUint32(t *testing.T) {
	n, err := codec.ParseUint32("4294967295")
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), n)

	_, err = codec.ParseUint32("4294967296")
	assert.ErrorIs(t, err, codec.ErrOutOfRange)

	_, err = codec.ParseUint32("abc")
	assert.ErrorIs(t, err, codec.ErrInvalidInteger)
}
