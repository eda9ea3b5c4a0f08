// Package csvstore keeps each owner's collections as CSV files under
// <root>/<owner>/: pemasukan.csv, pengeluaran.csv and jurnal.csv.
package csvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bukutani/bukutani/internal/journal"
	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/store"
)

// Store is a file-backed store.Store.
type Store struct {
	root string
	mu   sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) path(owner, collection string) (string, error) {
	if err := model.ValidateOwner(owner); err != nil {
		return "", err
	}
	return filepath.Join(s.root, owner, collection+".csv"), nil
}

// LoadTransactions implements store.Store.
func (s *Store) LoadTransactions(_ context.Context, owner string, kind model.Kind) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTransactions(owner, kind)
}

// LoadJournal implements store.Store.
func (s *Store) LoadJournal(_ context.Context, owner string) ([]model.JournalLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readJournal(owner)
}

func (s *Store) readTransactions(owner string, kind model.Kind) ([]model.Transaction, error) {
	path, err := s.path(owner, string(kind))
	if err != nil {
		return nil, err
	}
	data, err := readIfExists(path)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	txns, err := ReadTransactions(bytes.NewReader(data), kind)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return txns, nil
}

func (s *Store) readJournal(owner string) ([]model.JournalLine, error) {
	path, err := s.path(owner, model.CollectionJournal)
	if err != nil {
		return nil, err
	}
	data, err := readIfExists(path)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	lines, err := journal.ReadLines(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// Apply implements store.Store. New file contents are staged in temp
// files next to their targets and renamed into place; if a later rename
// fails, files already replaced are restored.
func (s *Store) Apply(_ context.Context, owner string, b store.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var txns []model.Transaction
	var err error
	touchTxns := len(b.Append) > 0 || len(b.Delete) > 0
	if touchTxns {
		if txns, err = s.readTransactions(owner, b.Kind); err != nil {
			return err
		}
	}
	var lines []model.JournalLine
	if len(b.Lines) > 0 {
		if lines, err = s.readJournal(owner); err != nil {
			return err
		}
	}

	nextTxns, nextLines, err := store.ApplyToSlices(txns, lines, b)
	if err != nil {
		return err
	}

	var pending []*stagedFile
	defer func() {
		for _, p := range pending {
			p.discard()
		}
	}()

	if touchTxns {
		var buf bytes.Buffer
		if err := WriteTransactions(&buf, nextTxns); err != nil {
			return err
		}
		path, _ := s.path(owner, string(b.Kind))
		f, err := stage(path, buf.Bytes())
		if err != nil {
			return err
		}
		pending = append(pending, f)
	}
	if len(b.Lines) > 0 {
		var buf bytes.Buffer
		if err := journal.WriteLines(&buf, nextLines); err != nil {
			return err
		}
		path, _ := s.path(owner, model.CollectionJournal)
		f, err := stage(path, buf.Bytes())
		if err != nil {
			return err
		}
		pending = append(pending, f)
	}

	for i, p := range pending {
		if err := p.commit(); err != nil {
			for _, done := range pending[:i] {
				if rbErr := done.restore(); rbErr != nil {
					return fmt.Errorf("%v; rollback of %s failed: %w", err, done.path, rbErr)
				}
			}
			return err
		}
	}
	pending = nil
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

type stagedFile struct {
	path    string
	tmp     string
	prev    []byte
	existed bool
}

func stage(path string, data []byte) (*stagedFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	prev, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("staging %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("staging %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("staging %s: %w", path, err)
	}
	return &stagedFile{path: path, tmp: tmp.Name(), prev: prev, existed: existed}, nil
}

func (f *stagedFile) commit() error {
	if err := os.Rename(f.tmp, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	f.tmp = ""
	return nil
}

func (f *stagedFile) restore() error {
	if !f.existed {
		return os.Remove(f.path)
	}
	return os.WriteFile(f.path, f.prev, 0o644)
}

func (f *stagedFile) discard() {
	if f.tmp != "" {
		os.Remove(f.tmp)
	}
}

func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return data, nil
}
