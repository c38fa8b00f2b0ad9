package codec

import (
	"bytes"
	"encoding/json"
	"math/big"
	"regexp"

	"github.com/holiman/uint256"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+$`)

// Range is an inclusive [Min, Max] bound.
type Range struct {
	Min, Max *uint256.Int
}

// Check returns an ErrOutOfRange error naming field when v falls outside r.
func (r Range) Check(field string, v *big.Int) error {
	lo, hi := r.Min.ToBig(), r.Max.ToBig()
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		return &ValidationError{
			Kind:  ErrOutOfRange,
			Field: field,
			Value: v.String(),
			Min:   lo,
			Max:   hi,
		}
	}
	return nil
}

var (
	Uint32Range = Range{Min: uint256.NewInt(0), Max: uint256.NewInt(1<<32 - 1)}
	Uint96Range = Range{
		Min: uint256.NewInt(0),
		Max: new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 96), uint256.NewInt(1)),
	}
)

// ParseDecimal parses a non-negative base 10 integer of any size.
func ParseDecimal(s string) (*big.Int, error) {
	if !decimalPattern.MatchString(s) {
		return nil, newError(ErrInvalidInteger, s)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, newError(ErrInvalidInteger, s)
	}
	return n, nil
}

// ParseUint96 parses a decimal value that must fit in 96 bits.
func ParseUint96(s string) (*big.Int, error) {
	return parseBounded(s, Uint96Range)
}

// ParseUint32 parses a decimal value that must fit in 32 bits.
func ParseUint32(s string) (uint32, error) {
	n, err := parseBounded(s, Uint32Range)
	if err != nil {
		return 0, err
	}
	return uint32(n.Uint64()), nil
}

func parseBounded(s string, r Range) (*big.Int, error) {
	n, err := ParseDecimal(s)
	if err != nil {
		return nil, err
	}
	if err := r.Check("", n); err != nil {
		return nil, err
	}
	return n, nil
}

// decodeJSONInteger reads a non-negative integer from a raw JSON value. A
// bare number is always accepted; a quoted decimal string only when quoted
// is set.
func decodeJSONInteger(raw json.RawMessage, quoted bool) (*big.Int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, newError(ErrMissingField, "")
	}
	if raw[0] == '"' {
		if !quoted {
			return nil, newError(ErrInvalidInteger, string(raw))
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, newError(ErrInvalidInteger, string(raw))
		}
		return ParseDecimal(s)
	}
	return ParseDecimal(string(raw))
}

// decodeJSONString reads a JSON string value, failing with kind when raw is
// some other JSON type.
func decodeJSONString(raw json.RawMessage, kind error) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", newError(ErrMissingField, "")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", newError(kind, string(raw))
	}
	return s, nil
}
