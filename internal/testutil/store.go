package testutil

import (
	"context"
	"maps"
	"sort"
	"sync"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
)

type txKey struct{}

// InMemoryDB backs every in-memory repository. Units of work are serialized
// on one mutex and rolled back by restoring a snapshot of all tables.
// Rows are stored by value and replaced on update, never mutated in place.
type InMemoryDB struct {
	mu sync.Mutex

	members      map[string]models.Member
	rules        map[string]models.Rule
	events       map[string]models.Event
	transactions map[string]models.Transaction
	vouchers     map[string]models.Voucher
	voucherLogs  map[string]models.VoucherLog
	draws        map[string]models.LotteryDraw
	prizes       map[string]models.Prize
	winners      map[string]models.Winner

	// insertion order for stable listings
	seq   int64
	order map[string]int64
}

// NewInMemoryDB creates an empty database
func NewInMemoryDB() *InMemoryDB {
	db := &InMemoryDB{}
	db.Clear()
	return db
}

// Clear drops every row
func (db *InMemoryDB) Clear() {
	db.members = make(map[string]models.Member)
	db.rules = make(map[string]models.Rule)
	db.events = make(map[string]models.Event)
	db.transactions = make(map[string]models.Transaction)
	db.vouchers = make(map[string]models.Voucher)
	db.voucherLogs = make(map[string]models.VoucherLog)
	db.draws = make(map[string]models.LotteryDraw)
	db.prizes = make(map[string]models.Prize)
	db.winners = make(map[string]models.Winner)
	db.order = make(map[string]int64)
	db.seq = 0
}

func (db *InMemoryDB) snapshot() *InMemoryDB {
	return &InMemoryDB{
		members:      maps.Clone(db.members),
		rules:        maps.Clone(db.rules),
		events:       maps.Clone(db.events),
		transactions: maps.Clone(db.transactions),
		vouchers:     maps.Clone(db.vouchers),
		voucherLogs:  maps.Clone(db.voucherLogs),
		draws:        maps.Clone(db.draws),
		prizes:       maps.Clone(db.prizes),
		winners:      maps.Clone(db.winners),
		order:        maps.Clone(db.order),
		seq:          db.seq,
	}
}

func (db *InMemoryDB) restore(s *InMemoryDB) {
	db.members = s.members
	db.rules = s.rules
	db.events = s.events
	db.transactions = s.transactions
	db.vouchers = s.vouchers
	db.voucherLogs = s.voucherLogs
	db.draws = s.draws
	db.prizes = s.prizes
	db.winners = s.winners
	db.order = s.order
	db.seq = s.seq
}

// WithTx implements repositories.Transactor
func (db *InMemoryDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snap := db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

// lock takes the database mutex unless ctx already runs inside WithTx.
func (db *InMemoryDB) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *InMemoryDB) track(id string) {
	db.seq++
	db.order[id] = db.seq
}

// sortByInsertion orders ids oldest first
func (db *InMemoryDB) sortByInsertion(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return db.order[ids[i]] < db.order[ids[j]] })
}

func notFound(entity, id string) error {
	return ierr.NewError(entity+" not found").
		WithHintf("%s not found", entity).
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

func conflict(hint string) error {
	return ierr.NewError("unique constraint violated").
		WithHint(hint).
		Mark(ierr.ErrConflict)
}

func page[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Stores returns repositories.Stores wired to this database
func (db *InMemoryDB) Stores() repositories.Stores {
	return repositories.Stores{
		Tx:           db,
		Members:      &InMemoryMemberStore{db: db},
		Rules:        &InMemoryRuleStore{db: db},
		Events:       &InMemoryEventStore{db: db},
		Transactions: &InMemoryTransactionStore{db: db},
		Vouchers:     &InMemoryVoucherStore{db: db},
		VoucherLogs:  &InMemoryVoucherLogStore{db: db},
		Draws:        &InMemoryDrawStore{db: db},
		Prizes:       &InMemoryPrizeStore{db: db},
		Winners:      &InMemoryWinnerStore{db: db},
	}
}
