package store

import (
	"context"
	"sync"

	"github.com/bukutani/bukutani/internal/model"
)

type ownerData struct {
	txns  map[model.Kind][]model.Transaction
	lines []model.JournalLine
}

// Memory is a Store kept entirely in process memory.
type Memory struct {
	mu     sync.RWMutex
	owners map[string]*ownerData
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{owners: make(map[string]*ownerData)}
}

// LoadTransactions implements Store.
func (m *Memory) LoadTransactions(_ context.Context, owner string, kind model.Kind) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.owners[owner]
	if !ok {
		return nil, nil
	}
	return append([]model.Transaction(nil), d.txns[kind]...), nil
}

// LoadJournal implements Store.
func (m *Memory) LoadJournal(_ context.Context, owner string) ([]model.JournalLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.owners[owner]
	if !ok {
		return nil, nil
	}
	return append([]model.JournalLine(nil), d.lines...), nil
}

// Apply implements Store.
func (m *Memory) Apply(_ context.Context, owner string, b Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.owners[owner]
	if !ok {
		d = &ownerData{txns: make(map[model.Kind][]model.Transaction)}
	}
	txns, lines, err := ApplyToSlices(d.txns[b.Kind], d.lines, b)
	if err != nil {
		return err
	}
	if b.Kind != "" {
		d.txns[b.Kind] = txns
	}
	d.lines = lines
	m.owners[owner] = d
	return nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
