// Package importer reads transactions exported by the legacy spreadsheet
// bookkeeping files and records them through the ledger.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bukutani/bukutani/internal/ledger"
	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/store"
)

// Parser converts a legacy CSV file into transactions.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name   string
	Path   string
	Size   int64
	Format string // detected from the file name; empty if unknown
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&IncomeParser{})
	r.Register(&ExpenseParser{})
	return r
}

// DetectFormat guesses the parser format from a file name such as
// "pemasukan.csv" or "pengeluaran_2024.csv".
func DetectFormat(name string) string {
	base := strings.ToLower(filepath.Base(name))
	for _, kind := range []model.Kind{model.KindIncome, model.KindExpense} {
		if strings.HasPrefix(base, string(kind)) {
			return string(kind)
		}
	}
	return ""
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Size:   info.Size(),
			Format: DetectFormat(e.Name()),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// Recorder records one transaction; *ledger.Service satisfies it.
type Recorder interface {
	Record(ctx context.Context, txn model.Transaction) (model.Transaction, error)
}

// RowError is a row the ledger rejected.
type RowError struct {
	Row int // 1-based data row, header excluded
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Result summarizes an import run.
type Result struct {
	Imported   int
	Duplicates int // rows already recorded by an earlier import
	Skipped    int // rows belonging to another owner
	Rejected   []RowError
}

var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bukutani:import-row"))

// rowKey joins the fields that identify an imported row.
func rowKey(owner string, t model.Transaction) string {
	return strings.Join([]string{
		owner,
		string(t.Kind),
		t.Date.UTC().Truncate(time.Second).Format(time.RFC3339),
		strings.TrimSpace(t.Category),
		strings.TrimSpace(t.SubCategory),
		t.Amount.String(),
		string(t.Method),
		t.Memo,
	}, "\x1f")
}

// RowID derives the transaction ID of an imported row from its fields.
// n counts earlier identical rows in the same file, so repeated rows stay
// distinct while the same file always yields the same IDs.
func RowID(owner string, t model.Transaction, n int) string {
	key := rowKey(owner, t) + "\x1f" + strconv.Itoa(n)
	return uuid.NewSHA1(rowNamespace, []byte(key)).String()
}

// Import records txns for owner. Rows naming a different owner are
// skipped and rows without one are assigned to owner. Rows without an ID
// get one from RowID, so rows already recorded by an earlier run are
// counted as duplicates instead of posted twice. Rows the ledger rejects
// as invalid are collected and the run continues; any other error stops
// it.
func Import(ctx context.Context, rec Recorder, txns []model.Transaction, owner string) (Result, error) {
	var res Result
	seen := make(map[string]int)
	for i, txn := range txns {
		if txn.Owner != "" && txn.Owner != owner {
			res.Skipped++
			continue
		}
		txn.Owner = owner
		if txn.ID == "" {
			key := rowKey(owner, txn)
			txn.ID = RowID(owner, txn, seen[key])
			seen[key]++
		}
		if _, err := rec.Record(ctx, txn); err != nil {
			if errors.Is(err, store.ErrDuplicateTransaction) {
				res.Duplicates++
				continue
			}
			if errors.Is(err, ledger.ErrInvalidTransaction) {
				res.Rejected = append(res.Rejected, RowError{Row: i + 1, Err: err})
				continue
			}
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		res.Imported++
	}
	return res, nil
}
