package codec

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
)

var (
	ErrMalformedAddress        = errors.New("address is not checksummed")
	ErrZeroAddressRejected     = errors.New("0x0 address is not allowed")
	ErrSentinelAddressRejected = errors.New("0x1 address is not allowed")
	ErrInvalidHex              = errors.New("not a hexadecimal value")
	ErrBlankNotAllowed         = errors.New("this field may not be blank")
	ErrTooShort                = errors.New("value is too short")
	ErrTooLong                 = errors.New("value is too long")
	ErrOutOfRange              = errors.New("value is out of range")
	ErrInvalidInteger          = errors.New("not a valid non-negative integer")
	ErrMissingField            = errors.New("this field is required")
)

// ValidationError describes a single rejected value. Kind is one of the Err*
// sentinels above and is what errors.Is matches against.
type ValidationError struct {
	Kind  error
	Field string
	Value string
	// Limit is the byte bound violated by ErrTooShort/ErrTooLong.
	Limit int
	// Min and Max are the inclusive bounds violated by ErrOutOfRange.
	Min, Max *big.Int
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	switch {
	case errors.Is(e.Kind, ErrTooShort):
		fmt.Fprintf(&b, "ensure this field has at least %d bytes", e.Limit)
	case errors.Is(e.Kind, ErrTooLong):
		fmt.Fprintf(&b, "ensure this field has no more than %d bytes", e.Limit)
	case errors.Is(e.Kind, ErrOutOfRange):
		fmt.Fprintf(&b, "%s is not in range [%s, %s]", e.Value, e.Min, e.Max)
	case e.Value != "":
		fmt.Fprintf(&b, "%s: %s", e.Kind, e.Value)
	default:
		b.WriteString(e.Kind.Error())
	}
	return b.String()
}

// Message is the error text without the field prefix.
func (e *ValidationError) Message() string {
	cp := *e
	cp.Field = ""
	return cp.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newError(kind error, value string) *ValidationError {
	return &ValidationError{Kind: kind, Value: value}
}

// withField returns err annotated with the field name when it is a
// *ValidationError. Other errors are returned untouched.
func withField(err error, field string) error {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Field == "" {
		cp := *ve
		cp.Field = field
		return &cp
	}
	return err
}

// FieldErrors maps a wire field name to the error that field failed with.
// Composite decoders return it so every problem can be reported at once.
type FieldErrors map[string]error

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, messageOf(fe[k])))
	}
	return strings.Join(parts, "; ")
}

// Is reports whether any field failed with target.
func (fe FieldErrors) Is(target error) bool {
	for _, err := range fe {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Messages renders the errors as a field → message map, ready to be encoded
// in an API response.
func (fe FieldErrors) Messages() map[string]string {
	out := make(map[string]string, len(fe))
	for k, err := range fe {
		out[k] = messageOf(err)
	}
	return out
}

func (fe FieldErrors) add(field string, err error) {
	if err != nil {
		fe[field] = err
	}
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// messageOf drops the field prefix already carried by the map key.
func messageOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return err.Error()
}
