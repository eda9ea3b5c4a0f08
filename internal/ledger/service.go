// Package ledger records and reverses transactions for an owner and
// answers journal, ledger and statement queries over what was recorded.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bukutani/bukutani/internal/accounts"
	"github.com/bukutani/bukutani/internal/id"
	"github.com/bukutani/bukutani/internal/journal"
	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/store"
)

// ErrInvalidTransaction is returned by Record when a transaction fails
// validation. Nothing is written.
var ErrInvalidTransaction = errors.New("invalid transaction")

// ReversalMemoPrefix starts the memo of every reversing entry.
const ReversalMemoPrefix = "Pembatalan: "

// ReversalDate selects the date stamped on reversing entries.
type ReversalDate string

const (
	// ReversalDateNow dates the reversal at the moment it is made.
	ReversalDateNow ReversalDate = "now"
	// ReversalDateOriginal dates the reversal at the original transaction.
	ReversalDateOriginal ReversalDate = "original"
)

// ParseReversalDate parses a configured reversal dating mode. Empty means
// ReversalDateNow.
func ParseReversalDate(s string) (ReversalDate, error) {
	switch ReversalDate(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReversalDateNow:
		return ReversalDateNow, nil
	case ReversalDateOriginal:
		return ReversalDateOriginal, nil
	}
	return "", fmt.Errorf("unknown reversal date mode %q (want now or original)", s)
}

// Service is the entry point for recording and querying an owner's books.
// Writes for one owner are serialized; reads for one owner see either all
// or none of a write.
type Service struct {
	store        store.Store
	taxonomy     *accounts.Taxonomy
	log          zerolog.Logger
	now          func() time.Time
	reversalDate ReversalDate

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// Option configures a Service.
type Option func(*Service)

// WithTaxonomy fills in the main category of expenses recorded with only
// a sub-category.
func WithTaxonomy(t *accounts.Taxonomy) Option {
	return func(s *Service) { s.taxonomy = t }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReversalDate sets how reversing entries are dated.
func WithReversalDate(d ReversalDate) Option {
	return func(s *Service) { s.reversalDate = d }
}

// NewService creates a Service writing through st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:        st,
		log:          zerolog.Nop(),
		now:          time.Now,
		reversalDate: ReversalDateNow,
		locks:        make(map[string]*sync.RWMutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lockFor(owner string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[owner]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[owner] = l
	}
	return l
}

// Record validates txn, stores it and appends its journal pair in one
// batch. It returns the transaction as stored, with ID and date filled in.
func (s *Service) Record(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	txn, err := s.normalize(txn)
	if err != nil {
		return model.Transaction{}, err
	}
	m, err := accounts.Map(txn.Kind, txn.Method, txn.SubCategory)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	lock := s.lockFor(txn.Owner)
	lock.Lock()
	defer lock.Unlock()

	lines, err := s.store.LoadJournal(ctx, txn.Owner)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("loading journal: %w", err)
	}

	memo := txn.Memo
	if txn.Kind == model.KindIncome {
		memo = txn.Category
	}
	pair, err := s.newPair(lines, txn.Date, m, txn, memo)
	if err != nil {
		return model.Transaction{}, err
	}

	if err := s.store.Apply(ctx, txn.Owner, store.Batch{
		Kind:   txn.Kind,
		Append: []model.Transaction{txn},
		Lines:  pair,
	}); err != nil {
		if errors.Is(err, store.ErrDuplicateTransaction) {
			return model.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
		}
		return model.Transaction{}, fmt.Errorf("recording %s: %w", txn.ID, err)
	}

	s.log.Info().
		Str("owner", txn.Owner).
		Str("kind", string(txn.Kind)).
		Str("id", txn.ID).
		Str("entry", pair[0].EntryGroup()).
		Str("amount", txn.Amount.String()).
		Msg("transaction recorded")
	return txn, nil
}

// Reverse removes transaction txnID from the owner's kind collection and
// appends a pair cancelling its journal entry. It reports false, and
// changes nothing, when no such transaction exists.
func (s *Service) Reverse(ctx context.Context, kind model.Kind, txnID, owner string) (bool, error) {
	if err := model.ValidateOwner(owner); err != nil {
		return false, err
	}
	kind, err := model.ParseKind(string(kind))
	if err != nil {
		return false, err
	}

	lock := s.lockFor(owner)
	lock.Lock()
	defer lock.Unlock()

	txns, err := s.store.LoadTransactions(ctx, owner, kind)
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", kind, err)
	}
	var txn model.Transaction
	found := false
	for _, t := range txns {
		if t.ID == txnID {
			txn, found = t, true
			break
		}
	}
	if !found {
		s.log.Debug().Str("owner", owner).Str("kind", string(kind)).Str("id", txnID).Msg("nothing to reverse")
		return false, nil
	}

	m, err := accounts.MapReversal(kind, txn.Method, txn.SubCategory)
	if err != nil {
		return false, err
	}
	lines, err := s.store.LoadJournal(ctx, owner)
	if err != nil {
		return false, fmt.Errorf("loading journal: %w", err)
	}

	date := s.now().UTC().Truncate(time.Second)
	if s.reversalDate == ReversalDateOriginal {
		date = txn.Date
	}
	pair, err := s.newPair(lines, date, m, txn, ReversalMemoPrefix+txn.Memo)
	if err != nil {
		return false, err
	}

	if err := s.store.Apply(ctx, owner, store.Batch{
		Kind:   kind,
		Delete: []string{txnID},
		Lines:  pair,
	}); err != nil {
		return false, fmt.Errorf("reversing %s: %w", txnID, err)
	}

	s.log.Info().
		Str("owner", owner).
		Str("kind", string(kind)).
		Str("id", txnID).
		Str("entry", pair[0].EntryGroup()).
		Msg("transaction reversed")
	return true, nil
}

// newPair builds the next journal pair for txn in the month of date.
func (s *Service) newPair(existing []model.JournalLine, date time.Time, m accounts.Mapping, txn model.Transaction, memo string) ([]model.JournalLine, error) {
	legIDs := make([]string, len(existing))
	for i, l := range existing {
		legIDs[i] = l.EntryID
	}
	debit, credit, err := journal.NewPair(journal.PairParams{
		Date:          date,
		DebitAccount:  m.Debit,
		CreditAccount: m.Credit,
		Amount:        txn.Amount,
		Memo:          memo,
		EntryID:       id.Entry(date, id.NextSeq(legIDs, date)),
		TransactionID: txn.ID,
	})
	if err != nil {
		return nil, err
	}
	pair := []model.JournalLine{debit, credit}
	if verrs := journal.Validate(pair); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransaction, strings.Join(msgs, "; "))
	}
	return pair, nil
}

// normalize validates txn and fills in its ID, date and expense category.
func (s *Service) normalize(txn model.Transaction) (model.Transaction, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, fmt.Sprintf(format, args...))
	}

	if err := model.ValidateOwner(txn.Owner); err != nil {
		return txn, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	kind, err := model.ParseKind(string(txn.Kind))
	if err != nil {
		return txn, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	txn.Kind = kind
	if !txn.Amount.IsPositive() {
		return txn, invalid("amount must be positive, got %s", txn.Amount)
	}
	if !txn.Amount.Equal(txn.Amount.Round(2)) {
		return txn, invalid("amount %s has more than two decimal places", txn.Amount)
	}
	if !accounts.ValidMethod(txn.Kind, txn.Method) {
		return txn, invalid("method %q does not apply to %s", txn.Method, txn.Kind)
	}

	txn.Category = strings.TrimSpace(txn.Category)
	txn.SubCategory = strings.TrimSpace(txn.SubCategory)
	switch txn.Kind {
	case model.KindIncome:
		if txn.Category == "" {
			return txn, invalid("income source is required")
		}
		txn.SubCategory = ""
	case model.KindExpense:
		if txn.SubCategory == "" {
			return txn, invalid("expense sub-category is required")
		}
		if accounts.IsReserved(txn.SubCategory) {
			return txn, invalid("sub-category %q is a fixed or revenue account", txn.SubCategory)
		}
		if txn.Category == "" && s.taxonomy != nil {
			txn.Category, _ = s.taxonomy.CategoryOf(txn.SubCategory)
		}
	}

	if txn.ID == "" {
		txn.ID = id.NewTransactionID()
	}
	if txn.Date.IsZero() {
		txn.Date = s.now()
	}
	txn.Date = txn.Date.UTC().Truncate(time.Second)
	return txn, nil
}
