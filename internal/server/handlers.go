package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
)

const maxBodySize = 1 << 20

type errorResp struct {
	Errors map[string]string `json:"errors"`
}

type addressReq struct {
	Address              string `json:"address"`
	AllowZeroAddress     bool   `json:"allow_zero_address"`
	AllowSentinelAddress bool   `json:"allow_sentinel_address"`
}

type hexReq struct {
	Value      *string `json:"value"`
	MinLength  int     `json:"min_length"`
	MaxLength  int     `json:"max_length"`
	AllowBlank bool    `json:"allow_blank"`
}

type hexResp struct {
	Value  *string `json:"value"`
	Length int     `json:"length"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) validateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressReq
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := codec.ValidateAddress(req.Address, codec.AddressOptions{
		AllowZero:     req.AllowZeroAddress,
		AllowSentinel: req.AllowSentinelAddress,
	})
	if err != nil {
		sendValidationError(w, "address", err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"address": address})
}

func (s *Server) validateHex(w http.ResponseWriter, r *http.Request) {
	var req hexReq
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MinLength < 0 || req.MaxLength < 0 {
		sendJSON(w, http.StatusBadRequest, errorResp{Errors: map[string]string{"body": "lengths must not be negative"}})
		return
	}
	s.decodeHex(w, req, codec.HexCodec{MinLength: req.MinLength, MaxLength: req.MaxLength, AllowBlank: req.AllowBlank})
}

func (s *Server) validateHash(w http.ResponseWriter, r *http.Request) {
	var req hexReq
	if !decodeBody(w, r, &req) {
		return
	}
	s.decodeHex(w, req, codec.Hash32Codec)
}

func (s *Server) decodeHex(w http.ResponseWriter, req hexReq, c codec.HexCodec) {
	var input any
	if req.Value != nil {
		input = *req.Value
	}

	b, err := c.Decode(input)
	if err != nil {
		sendValidationError(w, "value", err)
		return
	}

	resp := hexResp{Length: len(b)}
	if b != nil {
		value := codec.EncodeHex(b)
		resp.Value = &value
	}
	sendJSON(w, http.StatusOK, resp)
}

func (s *Server) validateSignature(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	sig, err := codec.DecodeSignature(body)
	if err != nil {
		sendValidationError(w, "signature", err)
		return
	}
	sendJSON(w, http.StatusOK, sig)
}

// validateTransaction accepts the numeric form and answers with the string form.
func (s *Server) validateTransaction(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	tx, err := codec.DecodeTransaction(body)
	if err != nil {
		sendValidationError(w, "transaction", err)
		return
	}
	sendJSON(w, http.StatusOK, tx.Response())
}

func (s *Server) validateSafeTransaction(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	tx, err := codec.DecodeSafeMultisigTx(body)
	if err != nil {
		sendValidationError(w, "transaction", err)
		return
	}
	sendJSON(w, http.StatusOK, tx)
}

func (s *Server) validateSafeEstimate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	tx, err := codec.DecodeSafeMultisigEstimateTx(body)
	if err != nil {
		sendValidationError(w, "transaction", err)
		return
	}
	sendJSON(w, http.StatusOK, tx)
}

func (s *Server) contractMetadata(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		sendJSON(w, http.StatusNotImplemented, errorResp{Errors: map[string]string{"lookup": "no explorer configured"}})
		return
	}

	address, err := codec.ValidateAddress(mux.Vars(r)["address"], codec.AddressOptions{})
	if err != nil {
		sendValidationError(w, "address", err)
		return
	}

	metadata, err := s.lookup.ContractMetadata(r.Context(), address)
	switch {
	case err == nil:
		sendJSON(w, http.StatusOK, metadata)
	case errors.Is(err, explorer.ErrNotFound):
		sendJSON(w, http.StatusNotFound, errorResp{Errors: map[string]string{"address": "contract metadata not found"}})
	default:
		slog.Error("Contract lookup failed", "address", address, "error", err)
		sendJSON(w, http.StatusBadGateway, errorResp{Errors: map[string]string{"lookup": err.Error()}})
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		sendJSON(w, http.StatusBadRequest, errorResp{Errors: map[string]string{"body": err.Error()}})
		return nil, false
	}
	return body, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResp{Errors: map[string]string{"body": fmt.Sprintf("invalid JSON: %v", err)}})
		return false
	}
	return true
}

// sendValidationError reports a FieldErrors map as is and any other error under field.
func sendValidationError(w http.ResponseWriter, field string, err error) {
	var fe codec.FieldErrors
	if errors.As(err, &fe) {
		sendJSON(w, http.StatusBadRequest, errorResp{Errors: fe.Messages()})
		return
	}

	message := err.Error()
	var ve *codec.ValidationError
	if errors.As(err, &ve) {
		if ve.Field != "" {
			field = ve.Field
		}
		message = ve.Message()
	}
	sendJSON(w, http.StatusBadRequest, errorResp{Errors: map[string]string{field: message}})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
