package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/model"
)

// TransactionHeader is the CSV header shared by pemasukan.csv and
// pengeluaran.csv.
const TransactionHeader = "id,date,category,sub_category,amount,method,memo,owner"

const (
	txnNumFields = 8
	colID        = 0
	colDate      = 1
	colCategory  = 2
	colSub       = 3
	colAmount    = 4
	colMethod    = 5
	colMemo      = 6
	colOwner     = 7
)

// ReadTransactions reads a transaction collection. Kind is not stored per
// row; it comes from the file the rows were read from.
func ReadTransactions(r io.Reader, kind model.Kind) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txnNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec, kind)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes a transaction collection including the header.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(TransactionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, txnNumFields)
	row[colID] = t.ID
	row[colDate] = t.Date.Format(time.RFC3339)
	row[colCategory] = t.Category
	row[colSub] = t.SubCategory
	row[colAmount] = t.Amount.String()
	row[colMethod] = string(t.Method)
	row[colMemo] = t.Memo
	row[colOwner] = t.Owner
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction of kind.
func UnmarshalTransaction(record []string, kind model.Kind) (model.Transaction, error) {
	if len(record) != txnNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txnNumFields, len(record))
	}

	date, err := time.Parse(time.RFC3339, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Transaction{
		ID:          record[colID],
		Date:        date,
		Kind:        kind,
		Category:    record[colCategory],
		SubCategory: record[colSub],
		Amount:      amount,
		Method:      model.Method(record[colMethod]),
		Memo:        record[colMemo],
		Owner:       record[colOwner],
	}, nil
}
