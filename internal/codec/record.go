package codec

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
)

// recordDecoder reads the fields of a JSON object by internal name and
// collects the failures keyed by wire name.
type recordDecoder struct {
	names map[string]string
	raw   map[string]json.RawMessage
	errs  FieldErrors
}

func newRecordDecoder(data []byte, names map[string]string) (*recordDecoder, error) {
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	raw := make(map[string]json.RawMessage, len(names))
	for name, key := range names {
		if v, ok := wire[key]; ok {
			raw[name] = v
		}
	}
	return &recordDecoder{names: names, raw: raw, errs: FieldErrors{}}, nil
}

func (d *recordDecoder) fail(name string, err error) {
	wire := d.names[name]
	d.errs.add(wire, withField(err, wire))
}

// null reports whether the field is absent or explicitly null.
func (d *recordDecoder) null(name string) bool {
	raw := bytes.TrimSpace(d.raw[name])
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func (d *recordDecoder) address(name string, opts AddressOptions) string {
	s, err := decodeJSONString(d.raw[name], ErrMalformedAddress)
	if err == nil {
		s, err = ValidateAddress(s, opts)
	}
	d.fail(name, err)
	return s
}

// optionalAddress is address for a nullable field. Absent and null both
// decode to "".
func (d *recordDecoder) optionalAddress(name string, opts AddressOptions) string {
	if d.null(name) {
		return ""
	}
	return d.address(name, opts)
}

func (d *recordDecoder) integer(name string) *big.Int {
	n, err := decodeJSONInteger(d.raw[name], false)
	d.fail(name, err)
	return n
}

func (d *recordDecoder) uint64Field(name string) uint64 {
	n := d.integer(name)
	if n == nil {
		return 0
	}
	if err := uint64Range.Check("", n); err != nil {
		d.fail(name, err)
		return 0
	}
	return n.Uint64()
}

func (d *recordDecoder) decimalString(name string) string {
	s, err := decodeJSONString(d.raw[name], ErrInvalidInteger)
	if err == nil {
		_, err = ParseDecimal(s)
	}
	d.fail(name, err)
	return s
}

// nonBlankString reads a plain JSON string that must carry something other
// than whitespace.
func (d *recordDecoder) nonBlankString(name string) string {
	s, err := decodeJSONString(d.raw[name], ErrInvalidHex)
	if err == nil && strings.TrimSpace(s) == "" {
		err = newError(ErrBlankNotAllowed, "")
	}
	d.fail(name, err)
	return s
}

func (d *recordDecoder) hex(name string, c HexCodec) []byte {
	raw, ok := d.raw[name]
	if !ok {
		d.fail(name, newError(ErrMissingField, ""))
		return nil
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		d.fail(name, newError(ErrInvalidHex, string(raw)))
		return nil
	}
	b, err := c.Decode(input)
	d.fail(name, err)
	return b
}

// optionalHex is hex for a nullable field.
func (d *recordDecoder) optionalHex(name string, c HexCodec) []byte {
	if d.null(name) {
		return nil
	}
	return d.hex(name, c)
}
