package codec_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
)

const numericTx = `{
	"from": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"value": 115792089237316195423570985008687907853269984665640564039457584007913129639935,
	"data": "0xa9059cbb",
	"gas": 21000,
	"gas_price": 30000000000,
	"nonce": 7
}`

func TestDecodeTransaction(t *testing.T) {
	tx, err := codec.DecodeTransaction([]byte(numericTx))
	require.NoError(t, err)

	maxUint256, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", tx.From)
	assert.Equal(t, 0, maxUint256.Cmp(tx.Value))
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, tx.Data)
	assert.Equal(t, int64(21000), tx.Gas.Int64())
	assert.Equal(t, int64(30000000000), tx.GasPrice.Int64())
	assert.Equal(t, uint64(7), tx.Nonce)
}

func TestDecodeTransactionCollectsFieldErrors(t *testing.T) {
	_, err := codec.DecodeTransaction([]byte(`{
		"from": "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"value": -1,
		"data": "0x123",
		"gas": "21000",
		"nonce": 18446744073709551616
	}`))
	require.Error(t, err)

	var fe codec.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 6)
	assert.ErrorIs(t, fe["from"], codec.ErrMalformedAddress)
	assert.ErrorIs(t, fe["value"], codec.ErrInvalidInteger)
	assert.ErrorIs(t, fe["data"], codec.ErrInvalidHex)
	assert.ErrorIs(t, fe["gas"], codec.ErrInvalidInteger)
	assert.ErrorIs(t, fe["gas_price"], codec.ErrMissingField)
	assert.ErrorIs(t, fe["nonce"], codec.ErrOutOfRange)
	assert.ErrorIs(t, err, codec.ErrMalformedAddress)

	// Errors are keyed and labelled by wire name.
	var ve *codec.ValidationError
	require.ErrorAs(t, fe["from"], &ve)
	assert.Equal(t, "from", ve.Field)
	assert.NotContains(t, fe.Messages(), "sender")
}

func TestDecodeTransactionRejectsZeroSender(t *testing.T) {
	_, err := codec.DecodeTransaction([]byte(`{
		"from": "0x0000000000000000000000000000000000000000",
		"value": 0, "data": "0x", "gas": 0, "gas_price": 0, "nonce": 0
	}`))
	assert.ErrorIs(t, err, codec.ErrZeroAddressRejected)
}

func TestTransactionEncodings(t *testing.T) {
	tx, err := codec.DecodeTransaction([]byte(numericTx))
	require.NoError(t, err)

	numeric, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, numericTx, string(numeric))

	resp := tx.Response()
	str, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"from": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"value": "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		"data": "0xa9059cbb",
		"gas": "21000",
		"gas_price": "30000000000",
		"nonce": 7
	}`, string(str))

	var decodedResp codec.TransactionResponse
	require.NoError(t, json.Unmarshal(str, &decodedResp))
	assert.Equal(t, *resp, decodedResp)

	back, err := decodedResp.Transaction()
	require.NoError(t, err)
	assert.Equal(t, tx.From, back.From)
	assert.Equal(t, tx.Nonce, back.Nonce)
	assert.Equal(t, 0, tx.Value.Cmp(back.Value))
	assert.Equal(t, 0, tx.Gas.Cmp(back.Gas))
	assert.Equal(t, 0, tx.GasPrice.Cmp(back.GasPrice))
	assert.Equal(t, tx.Data, back.Data)

	var roundTrip codec.Transaction
	require.NoError(t, json.Unmarshal(numeric, &roundTrip))
	assert.Equal(t, tx.From, roundTrip.From)
}

func TestTransactionRejectsBlankData(t *testing.T) {
	for name, data := range map[string]string{
		"prefix only": `"0x"`,
		"empty":       `""`,
		"null":        `null`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.DecodeTransaction([]byte(`{
				"from": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
				"value": 1, "data": ` + data + `, "gas": 21000, "gas_price": 1, "nonce": 0
			}`))
			var fe codec.FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Len(t, fe, 1)
			assert.ErrorIs(t, fe["data"], codec.ErrBlankNotAllowed)
		})
	}
}

func TestTransactionResponseRejectsBlankData(t *testing.T) {
	for _, data := range []string{`""`, `"   "`} {
		_, err := codec.DecodeTransactionResponse([]byte(`{
			"from": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
			"value": "1", "data": ` + data + `, "gas": "2", "gas_price": "3", "nonce": 4
		}`))
		var fe codec.FieldErrors
		require.ErrorAs(t, err, &fe, data)
		assert.ErrorIs(t, fe["data"], codec.ErrBlankNotAllowed, data)
	}

	resp := codec.TransactionResponse{
		From: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		Value: "1", Data: "0x", Gas: "2", GasPrice: "3",
	}
	_, err := resp.Transaction()
	var fe codec.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, fe["data"], codec.ErrBlankNotAllowed)
}

func TestDecodeTransactionResponse(t *testing.T) {
	_, err := codec.DecodeTransactionResponse([]byte(`{
		"from": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"value": 1,
		"data": "anything goes",
		"gas": "12x",
		"gas_price": "1",
		"nonce": 1
	}`))
	var fe codec.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 2)
	assert.ErrorIs(t, fe["value"], codec.ErrInvalidInteger)
	assert.ErrorIs(t, fe["gas"], codec.ErrInvalidInteger)

	resp, err := codec.DecodeTransactionResponse([]byte(`{
		"from": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"value": "1", "data": "anything goes", "gas": "2", "gas_price": "3", "nonce": 4
	}`))
	require.NoError(t, err)
	assert.Equal(t, "anything goes", resp.Data)

	_, err = resp.Transaction()
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, fe["data"], codec.ErrInvalidHex)
}
