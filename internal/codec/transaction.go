package codec

import (
	"encoding/json"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// transactionWireNames maps the internal name of every transaction field to
// the key it uses on the wire. Both encodings go through it on encode and on
// decode.
var transactionWireNames = map[string]string{
	"sender":    "from",
	"value":     "value",
	"data":      "data",
	"gas":       "gas",
	"gas_price": "gas_price",
	"nonce":     "nonce",
}

var (
	uint64Range = Range{Min: uint256.NewInt(0), Max: uint256.NewInt(math.MaxUint64)}

	transactionDataCodec = HexCodec{}
)

// Transaction is the numeric encoding: value, gas and gas_price are JSON
// numbers of arbitrary precision and data is 0x-prefixed hex.
type Transaction struct {
	From     string
	Value    *big.Int
	Data     []byte
	Gas      *big.Int
	GasPrice *big.Int
	Nonce    uint64
}

// TransactionResponse is the string encoding, for consumers whose numbers
// cannot hold 256 bit integers: value, gas and gas_price are decimal strings
// and data is passed through as plain text.
type TransactionResponse struct {
	From     string
	Value    string
	Data     string
	Gas      string
	GasPrice string
	Nonce    uint64
}

// DecodeTransaction decodes and validates a numeric encoded transaction. On
// failure the error is a FieldErrors keyed by wire name.
func DecodeTransaction(data []byte) (*Transaction, error) {
	d, err := newRecordDecoder(data, transactionWireNames)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{}
	tx.From = d.address("sender", AddressOptions{})
	tx.Value = d.integer("value")
	tx.Data = d.hex("data", transactionDataCodec)
	tx.Gas = d.integer("gas")
	tx.GasPrice = d.integer("gas_price")
	tx.Nonce = d.uint64Field("nonce")

	if err := d.errs.orNil(); err != nil {
		return nil, err
	}
	return tx, nil
}

// DecodeTransactionResponse decodes and validates a string encoded
// transaction.
func DecodeTransactionResponse(data []byte) (*TransactionResponse, error) {
	d, err := newRecordDecoder(data, transactionWireNames)
	if err != nil {
		return nil, err
	}

	tx := &TransactionResponse{}
	tx.From = d.address("sender", AddressOptions{})
	tx.Value = d.decimalString("value")
	tx.Data = d.nonBlankString("data")
	tx.Gas = d.decimalString("gas")
	tx.GasPrice = d.decimalString("gas_price")
	tx.Nonce = d.uint64Field("nonce")

	if err := d.errs.orNil(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Response converts tx to its string encoding.
func (tx *Transaction) Response() *TransactionResponse {
	return &TransactionResponse{
		From:     tx.From,
		Value:    decimal(tx.Value),
		Data:     EncodeHex(tx.Data),
		Gas:      decimal(tx.Gas),
		GasPrice: decimal(tx.GasPrice),
		Nonce:    tx.Nonce,
	}
}

// Transaction parses the string encoding back into native integers.
func (r *TransactionResponse) Transaction() (*Transaction, error) {
	errs := FieldErrors{}
	check := func(name string, err error) {
		wire := transactionWireNames[name]
		errs.add(wire, withField(err, wire))
	}

	tx := &Transaction{Nonce: r.Nonce}
	var err error
	tx.From, err = ValidateAddress(r.From, AddressOptions{})
	check("sender", err)
	tx.Value, err = ParseDecimal(r.Value)
	check("value", err)
	tx.Data, err = transactionDataCodec.Decode(r.Data)
	check("data", err)
	tx.Gas, err = ParseDecimal(r.Gas)
	check("gas", err)
	tx.GasPrice, err = ParseDecimal(r.GasPrice)
	check("gas_price", err)

	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(transactionWireNames, map[string]any{
		"sender":    tx.From,
		"value":     json.RawMessage(decimal(tx.Value)),
		"data":      EncodeHex(tx.Data),
		"gas":       json.RawMessage(decimal(tx.Gas)),
		"gas_price": json.RawMessage(decimal(tx.GasPrice)),
		"nonce":     tx.Nonce,
	}))
}

func (tx *Transaction) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeTransaction(data)
	if err != nil {
		return err
	}
	*tx = *decoded
	return nil
}

func (r TransactionResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(transactionWireNames, map[string]any{
		"sender":    r.From,
		"value":     r.Value,
		"data":      r.Data,
		"gas":       r.Gas,
		"gas_price": r.GasPrice,
		"nonce":     r.Nonce,
	}))
}

func (r *TransactionResponse) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeTransactionResponse(data)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

func toWire(names map[string]string, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for name, v := range fields {
		out[names[name]] = v
	}
	return out
}

func decimal(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
