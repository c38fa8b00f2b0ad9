package codec

import (
	"encoding/json"
	"math/big"

	"github.com/holiman/uint256"
)

// secp256k1N is the order of the secp256k1 curve.
var secp256k1N = uint256.MustFromHex("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

// SignatureBounds holds the inclusive range of each signature component.
type SignatureBounds struct {
	V, R, S Range
}

// DefaultSignatureBounds accepts recovery ids 27 and 28, r in [1, n-1] and a
// low s in [1, n/2].
var DefaultSignatureBounds = SignatureBounds{
	V: Range{Min: uint256.NewInt(27), Max: uint256.NewInt(28)},
	R: Range{Min: uint256.NewInt(1), Max: new(uint256.Int).SubUint64(secp256k1N, 1)},
	S: Range{Min: uint256.NewInt(1), Max: new(uint256.Int).Rsh(secp256k1N, 1)},
}

// SignatureComponents is a range checked (v, r, s) triple.
type SignatureComponents struct {
	V uint64
	R *uint256.Int
	S *uint256.Int
}

// ValidateSignature checks v, r and s against DefaultSignatureBounds.
func ValidateSignature(v, r, s *big.Int) (*SignatureComponents, error) {
	return DefaultSignatureBounds.Validate(v, r, s)
}

// Validate checks every component independently and reports all of the ones
// that are out of range.
func (b SignatureBounds) Validate(v, r, s *big.Int) (*SignatureComponents, error) {
	errs := FieldErrors{}
	errs.add("v", checkComponent(b.V, "v", v))
	errs.add("r", checkComponent(b.R, "r", r))
	errs.add("s", checkComponent(b.S, "s", s))
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	return &SignatureComponents{
		V: v.Uint64(),
		R: uint256.MustFromBig(r),
		S: uint256.MustFromBig(s),
	}, nil
}

func checkComponent(r Range, field string, v *big.Int) error {
	if v == nil {
		return &ValidationError{Kind: ErrMissingField, Field: field}
	}
	return r.Check(field, v)
}

// MarshalJSON renders the components as decimal JSON numbers. A nil R or S
// renders as 0.
func (sc SignatureComponents) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		V uint64          `json:"v"`
		R json.RawMessage `json:"r"`
		S json.RawMessage `json:"s"`
	}{
		V: sc.V,
		R: json.RawMessage(uint256Dec(sc.R)),
		S: json.RawMessage(uint256Dec(sc.S)),
	})
}

func uint256Dec(n *uint256.Int) string {
	if n == nil {
		return "0"
	}
	return n.Dec()
}

// DecodeSignature decodes a {"v", "r", "s"} JSON object, whose values may be
// numbers or decimal strings, and validates it against DefaultSignatureBounds.
func DecodeSignature(data []byte) (*SignatureComponents, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	errs := FieldErrors{}
	values := make(map[string]*big.Int, 3)
	for _, field := range []string{"v", "r", "s"} {
		n, err := decodeJSONInteger(raw[field], true)
		if err != nil {
			errs.add(field, withField(err, field))
			continue
		}
		values[field] = n
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return ValidateSignature(values["v"], values["r"], values["s"])
}
