package codec

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexCodec decodes 0x-prefixed hexadecimal byte strings. Zero values of
// MinLength and MaxLength leave that bound unset.
type HexCodec struct {
	MinLength  int
	MaxLength  int
	AllowBlank bool
}

// Hash32Codec accepts exactly 32 bytes.
var Hash32Codec = HexCodec{MinLength: common.HashLength, MaxLength: common.HashLength}

// Decode normalizes input and returns the decoded bytes. Accepted inputs are
// []byte, string and nil. A blank input yields (nil, nil) when AllowBlank is
// set.
func (c HexCodec) Decode(input any) ([]byte, error) {
	var data []byte
	switch v := input.(type) {
	case nil:
	case []byte:
		data = v
	case string:
		s := strings.TrimSpace(v)
		if has0xPrefix(s) {
			s = s[2:]
		}
		if s != "" {
			decoded, err := hexutil.Decode("0x" + s)
			if err != nil {
				return nil, newError(ErrInvalidHex, v)
			}
			data = decoded
		}
	default:
		return nil, newError(ErrInvalidHex, fmt.Sprintf("%v", v))
	}

	if len(data) == 0 {
		if c.AllowBlank {
			return nil, nil
		}
		return nil, newError(ErrBlankNotAllowed, "")
	}

	if c.MinLength > 0 && len(data) < c.MinLength {
		return nil, &ValidationError{Kind: ErrTooShort, Limit: c.MinLength}
	}
	if c.MaxLength > 0 && len(data) > c.MaxLength {
		return nil, &ValidationError{Kind: ErrTooLong, Limit: c.MaxLength}
	}
	return data, nil
}

// Encode is EncodeHex; it exists so a codec can be passed around as a pair.
func (c HexCodec) Encode(b []byte) string {
	return EncodeHex(b)
}

// EncodeHex renders b as 0x followed by lowercase hex digits. Empty input
// renders as "0x".
func EncodeHex(b []byte) string {
	return hexutil.Encode(b)
}

// DecodeHash decodes a 32 byte hash.
func DecodeHash(input any) (common.Hash, error) {
	b, err := Hash32Codec.Decode(input)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
