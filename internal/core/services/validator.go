package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"dataset-artifact-service/internal/core/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Validate parses raw as comma-separated text with a header row and checks
// the column invariant. It does no type inference; cells stay strings.
func Validate(raw []byte) (*domain.TabularDataset, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrMalformedInput)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: file is not valid UTF-8", domain.ErrMalformedInput)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrMalformedInput, err)
	}
	if len(header) < domain.MinColumns {
		return nil, fmt.Errorf("%w: found %d, need at least %d", domain.ErrInsufficientColumns, len(header), domain.MinColumns)
	}

	// FieldsPerRecord is fixed by the header read above.
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
		}
		rows = append(rows, record)
	}

	return &domain.TabularDataset{Header: header, Rows: rows}, nil
}
