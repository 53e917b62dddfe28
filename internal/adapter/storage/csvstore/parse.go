package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// table is a CSV file addressed by header name rather than position.
type table struct {
	path   string
	header map[string]int
	rows   [][]string
}

func readTable(path string, required ...string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s is empty, expected a header row", path)
		}
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}

	t := &table{path: path, header: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := t.header[name]; !dup {
			t.header[name] = i
		}
	}
	for _, column := range required {
		if _, ok := t.header[column]; !ok {
			return nil, fmt.Errorf("%s is missing column %q", path, column)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// value returns the cell of the named column, or "" when the row is short.
func (t *table) value(row []string, column string) string {
	i, ok := t.header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// normalizePhone renders integral numeric values (including scientific
// notation such as 3.1612345678E10) as plain digit strings and keeps any
// other text untouched.
func normalizePhone(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return ""
	}
	value, err := decimal.NewFromString(candidate)
	if err != nil {
		return candidate
	}
	integral := value.Truncate(0)
	if value.Equal(integral) {
		return integral.String()
	}
	return candidate
}

var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-1-2 15:04:05Z07:00",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

// parseDate returns the calendar date at midnight UTC, or the zero time when
// the value cannot be read. It never fails.
func parseDate(raw string) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return domain.NormalizeDate(t)
		}
	}
	return time.Time{}
}

// parseAmount coerces anything unparseable to 0.0 so a single bad row never
// fails the load. NaN and infinite literals count as unparseable: they would
// poison running balances and cannot be encoded as JSON.
func parseAmount(raw string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0.0
	}
	return amount
}

type titler struct {
	caser cases.Caser
}

func newTitler() *titler {
	return &titler{caser: cases.Title(language.Und)}
}

func (t *titler) transactionType(raw string) domain.TransactionType {
	return domain.TransactionType(t.caser.String(strings.TrimSpace(raw)))
}

// signedAmount applies the ledger sign: credits add, everything else subtracts.
func signedAmount(amount float64, txType domain.TransactionType) float64 {
	if strings.ToLower(string(txType)) == "credit" {
		return amount
	}
	return -amount
}
