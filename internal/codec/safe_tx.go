package codec

import (
	"encoding/json"
	"errors"
	"math/big"
)

var (
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrCreateNotSupported = errors.New("operation CREATE not supported, use the Safe CreateLib")
	ErrMissingDataAndTo   = errors.New("`data` and `to` cannot both be null")
)

// NonFieldErrors is the FieldErrors key for failures that involve more than
// one field.
const NonFieldErrors = "non_field_errors"

// SafeOperation is the kind of call a Safe makes when it executes a
// multisig transaction.
type SafeOperation uint8

const (
	OperationCall SafeOperation = iota
	OperationDelegateCall
	OperationCreate
)

func (o SafeOperation) String() string {
	switch o {
	case OperationCall:
		return "CALL"
	case OperationDelegateCall:
		return "DELEGATE_CALL"
	case OperationCreate:
		return "CREATE"
	default:
		return "UNKNOWN"
	}
}

var safeTxWireNames = map[string]string{
	"safe":            "safe",
	"to":              "to",
	"value":           "value",
	"data":            "data",
	"operation":       "operation",
	"gas_token":       "gas_token",
	"safe_tx_gas":     "safe_tx_gas",
	"base_gas":        "base_gas",
	"gas_price":       "gas_price",
	"refund_receiver": "refund_receiver",
	"nonce":           "nonce",
}

var (
	// safeTxDataCodec accepts a blank payload, as in a plain value transfer.
	safeTxDataCodec = HexCodec{AllowBlank: true}

	nullableZeroAddress = AddressOptions{AllowZero: true}
)

// SafeMultisigEstimateTx is the request for a Safe transaction gas
// estimation. To and GasToken are "" when null. Data is nil when null or
// blank.
type SafeMultisigEstimateTx struct {
	Safe      string
	To        string
	Value     *big.Int
	Data      []byte
	Operation SafeOperation
	GasToken  string
}

// SafeMultisigTx is a fully specified Safe multisig transaction.
type SafeMultisigTx struct {
	SafeMultisigEstimateTx
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	RefundReceiver string
	Nonce          uint64
}

// DecodeSafeMultisigEstimateTx decodes and validates a gas estimation
// request. On failure the error is a FieldErrors keyed by wire name, with
// cross-field failures under NonFieldErrors.
func DecodeSafeMultisigEstimateTx(data []byte) (*SafeMultisigEstimateTx, error) {
	d, err := newRecordDecoder(data, safeTxWireNames)
	if err != nil {
		return nil, err
	}

	tx := decodeEstimateFields(d)
	if err := d.errs.orNil(); err != nil {
		return nil, err
	}
	if err := tx.check(); err != nil {
		return nil, FieldErrors{NonFieldErrors: err}
	}
	return tx, nil
}

// DecodeSafeMultisigTx decodes and validates a Safe multisig transaction.
func DecodeSafeMultisigTx(data []byte) (*SafeMultisigTx, error) {
	d, err := newRecordDecoder(data, safeTxWireNames)
	if err != nil {
		return nil, err
	}

	tx := &SafeMultisigTx{SafeMultisigEstimateTx: *decodeEstimateFields(d)}
	tx.SafeTxGas = d.integer("safe_tx_gas")
	tx.BaseGas = d.integer("base_gas")
	tx.GasPrice = d.integer("gas_price")
	tx.RefundReceiver = d.optionalAddress("refund_receiver", nullableZeroAddress)
	tx.Nonce = d.uint64Field("nonce")

	if err := d.errs.orNil(); err != nil {
		return nil, err
	}
	if err := tx.check(); err != nil {
		return nil, FieldErrors{NonFieldErrors: err}
	}
	return tx, nil
}

func decodeEstimateFields(d *recordDecoder) *SafeMultisigEstimateTx {
	tx := &SafeMultisigEstimateTx{}
	tx.Safe = d.address("safe", AddressOptions{})
	tx.To = d.optionalAddress("to", AddressOptions{})
	tx.Value = d.integer("value")
	tx.Data = d.optionalHex("data", safeTxDataCodec)
	tx.Operation = d.operation("operation")
	tx.GasToken = d.optionalAddress("gas_token", nullableZeroAddress)
	return tx
}

func (d *recordDecoder) operation(name string) SafeOperation {
	n := d.integer(name)
	if n == nil {
		return 0
	}
	if !n.IsUint64() || n.Uint64() > uint64(OperationCreate) {
		d.fail(name, newError(ErrUnknownOperation, n.String()))
		return 0
	}
	return SafeOperation(n.Uint64())
}

// check runs the rules that span several fields. It only makes sense once
// every field decoded.
func (tx *SafeMultisigEstimateTx) check() error {
	if tx.To == "" && len(tx.Data) == 0 {
		return newError(ErrMissingDataAndTo, "")
	}
	if tx.Operation == OperationCreate {
		return newError(ErrCreateNotSupported, "")
	}
	return nil
}

func (tx *SafeMultisigEstimateTx) wireFields() map[string]any {
	return map[string]any{
		"safe":      tx.Safe,
		"to":        nullable(tx.To),
		"value":     json.RawMessage(decimal(tx.Value)),
		"data":      nullableHex(tx.Data),
		"operation": uint8(tx.Operation),
		"gas_token": nullable(tx.GasToken),
	}
}

func (tx SafeMultisigEstimateTx) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(safeTxWireNames, tx.wireFields()))
}

func (tx SafeMultisigTx) MarshalJSON() ([]byte, error) {
	fields := tx.wireFields()
	fields["safe_tx_gas"] = json.RawMessage(decimal(tx.SafeTxGas))
	fields["base_gas"] = json.RawMessage(decimal(tx.BaseGas))
	fields["gas_price"] = json.RawMessage(decimal(tx.GasPrice))
	fields["refund_receiver"] = nullable(tx.RefundReceiver)
	fields["nonce"] = tx.Nonce
	return json.Marshal(toWire(safeTxWireNames, fields))
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableHex(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	return nullable(EncodeHex(b))
}
