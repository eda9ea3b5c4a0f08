// Package sqlite provides a store.Store backed by a SQLite database.
package sqlite

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Income and expense transactions; collection is 'pemasukan' or 'pengeluaran'
CREATE TABLE IF NOT EXISTS transactions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,  -- insertion order
    id TEXT NOT NULL,
    owner TEXT NOT NULL,
    collection TEXT NOT NULL,
    date TEXT NOT NULL,                     -- RFC 3339
    category TEXT NOT NULL,
    sub_category TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,                   -- decimal string
    method TEXT NOT NULL,
    memo TEXT NOT NULL DEFAULT '',
    UNIQUE (owner, collection, id)
);

-- General journal lines; never updated or deleted
CREATE TABLE IF NOT EXISTS journal_lines (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    owner TEXT NOT NULL,
    entry_id TEXT NOT NULL,
    transaction_id TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    account TEXT NOT NULL,
    debit TEXT NOT NULL DEFAULT '0',
    credit TEXT NOT NULL DEFAULT '0',
    memo TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_journal_lines_owner
    ON journal_lines(owner);
`
