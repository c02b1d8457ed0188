package normalizer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"tariff-observer/src/models"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// -----------------------------------------------------------------------------

// ReadTable parses a comma separated table. The first record is the header.
// encoding may be "" / "utf-8" or "iso-8859-1" / "latin1".
func ReadTable(name string, r io.Reader, encoding string) (models.MRawTable, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
	case "iso-8859-1", "latin1", "latin-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return models.MRawTable{}, fmt.Errorf("table %s: unsupported encoding %q", name, encoding)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return models.MRawTable{}, fmt.Errorf("table %s: %w", name, err)
	}
	if len(records) == 0 {
		return models.MRawTable{Name: name}, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := records[1:]
	// drop blank trailing lines that some exports carry
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	return models.MRawTable{Name: name, Header: header, Rows: rows}, nil
}

// ReadTableBytes is ReadTable over an in-memory payload.
func ReadTableBytes(name string, data []byte, encoding string) (models.MRawTable, error) {
	return ReadTable(name, bytes.NewReader(data), encoding)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
