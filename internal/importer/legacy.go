package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/model"
)

// Legacy files store timestamps as local wall-clock time.
const (
	legacyDateTimeFormat = "2006-01-02 15:04:05"
	legacyDateFormat     = "2006-01-02"
)

// Legacy column names.
const (
	colTanggal     = "Tanggal"
	colSumber      = "Sumber"
	colKategori    = "Kategori"
	colSubKategori = "Sub Kategori"
	colJumlah      = "Jumlah"
	colMetode      = "Metode"
	colKeterangan  = "Keterangan"
	colUsername    = "Username"
)

// IncomeParser parses pemasukan.csv:
// Tanggal,Sumber,Jumlah,Metode,Keterangan,Username.
type IncomeParser struct {
	// Location interprets legacy timestamps; nil means UTC.
	Location *time.Location
}

// Format returns the parser name.
func (p *IncomeParser) Format() string { return string(model.KindIncome) }

// Parse reads an income CSV.
func (p *IncomeParser) Parse(r io.Reader) ([]model.Transaction, error) {
	return parseLegacy(r, model.KindIncome, p.Location,
		[]string{colTanggal, colSumber, colJumlah, colMetode})
}

// ExpenseParser parses pengeluaran.csv:
// Tanggal,Kategori,Sub Kategori,Jumlah,Keterangan,Metode,Username.
type ExpenseParser struct {
	// Location interprets legacy timestamps; nil means UTC.
	Location *time.Location
}

// Format returns the parser name.
func (p *ExpenseParser) Format() string { return string(model.KindExpense) }

// Parse reads an expense CSV.
func (p *ExpenseParser) Parse(r io.Reader) ([]model.Transaction, error) {
	return parseLegacy(r, model.KindExpense, p.Location,
		[]string{colTanggal, colKategori, colSubKategori, colJumlah, colMetode})
}

// parseLegacy locates columns by header name, since the files were
// written by a dataframe library that may reorder or add columns.
func parseLegacy(r io.Reader, kind model.Kind, loc *time.Location, required []string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", kind, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	if loc == nil {
		loc = time.UTC
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		txn, err := parseLegacyRow(rec, cols, kind, loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseLegacyRow(rec []string, cols map[string]int, kind model.Kind, loc *time.Location) (model.Transaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		v := strings.TrimSpace(rec[i])
		if v == "nan" || v == "NaN" {
			return ""
		}
		return v
	}

	date, err := parseLegacyDate(field(colTanggal), loc)
	if err != nil {
		return model.Transaction{}, err
	}

	raw := field(colJumlah)
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}

	method, err := model.ParseMethod(field(colMetode))
	if err != nil {
		return model.Transaction{}, err
	}

	txn := model.Transaction{
		Date:   date,
		Kind:   kind,
		Amount: amount,
		Method: method,
		Memo:   field(colKeterangan),
		Owner:  field(colUsername),
	}
	if kind == model.KindIncome {
		txn.Category = field(colSumber)
	} else {
		txn.Category = field(colKategori)
		txn.SubCategory = field(colSubKategori)
	}
	return txn, nil
}

func parseLegacyDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{legacyDateTimeFormat, legacyDateFormat, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
