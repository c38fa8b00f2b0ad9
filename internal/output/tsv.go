package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

const metadataTSV = "metadata.tsv"

// TSVHeader is the first line of metadata.tsv.
const TSVHeader = "address\tname\tpartial_match\timplementation\tsource\tupdated_at\tabi"

// tsvEscaper keeps a text value inside its cell. The ABI column needs none,
// compact JSON has no raw tabs or newlines.
var tsvEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// TSVOutputHandler appends one line per contract to metadata.tsv. It is safe
// for concurrent use.
type TSVOutputHandler struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func NewTSVOutputHandler(outDir string) (*TSVOutputHandler, error) {
	err := os.MkdirAll(outDir, 0755)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create output directory")
	}

	file, err := os.Create(filepath.Join(outDir, metadataTSV))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create metadata TSV file")
	}

	h := &TSVOutputHandler{
		file:   file,
		writer: bufio.NewWriter(file),
	}
	if _, err := h.writer.WriteString(TSVHeader + "\n"); err != nil {
		file.Close()
		return nil, errors.WithMessage(err, "failed to write TSV header")
	}
	return h, nil
}

func (h *TSVOutputHandler) WriteMetadata(_ context.Context, metadata *models.ContractMetadata) error {
	abi, err := compactABI(metadata.ABI)
	if err != nil {
		return errors.WithMessage(err, "failed to compact abi")
	}

	line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		tsvEscaper.Replace(metadata.Address),
		tsvEscaper.Replace(metadata.Name),
		strconv.FormatBool(metadata.PartialMatch),
		tsvEscaper.Replace(metadata.Implementation),
		tsvEscaper.Replace(metadata.Source),
		tsvTime(metadata.UpdatedAt),
		abi,
	)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.WriteString(line)
	return err
}

func (h *TSVOutputHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.writer.Flush(); err != nil {
		slog.Error("failed to flush metadata writer", "error", err)
		return err
	}
	if err := h.file.Close(); err != nil {
		slog.Error("failed to close metadata file", "error", err)
		return err
	}
	return nil
}

// tsvTime leaves the cell empty for a zero time.
func tsvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// compactABI keeps the ABI on a single line so it fits one TSV column.
func compactABI(abi json.RawMessage) (string, error) {
	if len(abi) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, abi); err != nil {
		return "", err
	}
	return buf.String(), nil
}
