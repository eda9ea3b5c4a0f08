package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/model"
)

// Header is the CSV header for jurnal.csv.
const Header = "entry_id,transaction_id,date,account,debit,credit,memo"

// DateFormat is how journal dates are written. The offset is kept so a
// line reads back as the same instant.
const DateFormat = time.RFC3339

const (
	numFields  = 7
	colEntryID = 0
	colTxnID   = 1
	colDate    = 2
	colAccount = 3
	colDebit   = 4
	colCredit  = 5
	colMemo    = 6
)

// ReadLines reads all lines from a jurnal.csv reader.
func ReadLines(r io.Reader) ([]model.JournalLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var lines []model.JournalLine
	for i, rec := range records[1:] {
		line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines writes lines to a jurnal.csv writer (including header).
func WriteLines(w io.Writer, lines []model.JournalLine) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, line := range lines {
		if err := cw.Write(MarshalLine(line)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts a JournalLine to a CSV row.
func MarshalLine(line model.JournalLine) []string {
	row := make([]string, numFields)
	row[colEntryID] = line.EntryID
	row[colTxnID] = line.TransactionID
	row[colDate] = line.Date.Format(DateFormat)
	row[colAccount] = line.Account
	if !line.Debit.IsZero() {
		row[colDebit] = line.Debit.StringFixed(2)
	}
	if !line.Credit.IsZero() {
		row[colCredit] = line.Credit.StringFixed(2)
	}
	row[colMemo] = line.Memo
	return row
}

// UnmarshalLine converts a CSV row to a JournalLine.
func UnmarshalLine(record []string) (model.JournalLine, error) {
	if len(record) != numFields {
		return model.JournalLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(DateFormat, record[colDate])
	if err != nil {
		return model.JournalLine{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	var debit, credit decimal.Decimal
	if record[colDebit] != "" {
		debit, err = decimal.NewFromString(record[colDebit])
		if err != nil {
			return model.JournalLine{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}
	if record[colCredit] != "" {
		credit, err = decimal.NewFromString(record[colCredit])
		if err != nil {
			return model.JournalLine{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	return model.JournalLine{
		EntryID:       record[colEntryID],
		TransactionID: record[colTxnID],
		Date:          date,
		Account:       record[colAccount],
		Debit:         debit,
		Credit:        credit,
		Memo:          record[colMemo],
	}, nil
}
