package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/store"
)

// Store is a SQLite-backed store.Store.
type Store struct {
	db     *sql.DB
	dbPath string
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath in WAL mode and
// initializes the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time keeps batches serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close implements store.Store.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Transaction runs fn inside a database transaction, committing if fn
// returns nil and rolling back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadTransactions implements store.Store.
func (s *Store) LoadTransactions(ctx context.Context, owner string, kind model.Kind) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, category, sub_category, amount, method, memo
		FROM transactions
		WHERE owner = ? AND collection = ?
		ORDER BY seq`, owner, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date, amount, method string
		if err := rows.Scan(&t.ID, &date, &t.Category, &t.SubCategory, &amount, &method, &t.Memo); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing date %q: %w", t.ID, date, err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing amount %q: %w", t.ID, amount, err)
		}
		t.Kind = kind
		t.Method = model.Method(method)
		t.Owner = owner
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// LoadJournal implements store.Store.
func (s *Store) LoadJournal(ctx context.Context, owner string) ([]model.JournalLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, transaction_id, date, account, debit, credit, memo
		FROM journal_lines
		WHERE owner = ?
		ORDER BY seq`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var lines []model.JournalLine
	for rows.Next() {
		var l model.JournalLine
		var date, debit, credit string
		if err := rows.Scan(&l.EntryID, &l.TransactionID, &date, &l.Account, &debit, &credit, &l.Memo); err != nil {
			return nil, fmt.Errorf("scanning journal line: %w", err)
		}
		if l.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("line %s: parsing date %q: %w", l.EntryID, date, err)
		}
		if l.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("line %s: parsing debit %q: %w", l.EntryID, debit, err)
		}
		if l.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("line %s: parsing credit %q: %w", l.EntryID, credit, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Apply implements store.Store.
func (s *Store) Apply(ctx context.Context, owner string, b store.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := model.ValidateOwner(owner); err != nil {
		return err
	}

	return s.Transaction(ctx, func(tx *sql.Tx) error {
		for _, txnID := range b.Delete {
			res, err := tx.ExecContext(ctx,
				`DELETE FROM transactions WHERE id = ? AND owner = ? AND collection = ?`,
				txnID, owner, string(b.Kind))
			if err != nil {
				return fmt.Errorf("deleting transaction %s: %w", txnID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("deleting transaction %s: %w", txnID, err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", store.ErrUnknownTransaction, txnID)
			}
		}

		for _, t := range b.Append {
			var n int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM transactions WHERE id = ? AND owner = ? AND collection = ?`,
				t.ID, owner, string(b.Kind)).Scan(&n)
			if err != nil {
				return fmt.Errorf("checking transaction %s: %w", t.ID, err)
			}
			if n > 0 {
				return fmt.Errorf("%w: %s", store.ErrDuplicateTransaction, t.ID)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO transactions (id, owner, collection, date, category, sub_category, amount, method, memo)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, owner, string(b.Kind), t.Date.Format(time.RFC3339),
				t.Category, t.SubCategory, t.Amount.String(), string(t.Method), t.Memo)
			if err != nil {
				return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
			}
		}

		for _, l := range b.Lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO journal_lines (owner, entry_id, transaction_id, date, account, debit, credit, memo)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				owner, l.EntryID, l.TransactionID, l.Date.Format(time.RFC3339),
				l.Account, l.Debit.String(), l.Credit.String(), l.Memo)
			if err != nil {
				return fmt.Errorf("inserting journal line %s: %w", l.EntryID, err)
			}
		}
		return nil
	})
}
