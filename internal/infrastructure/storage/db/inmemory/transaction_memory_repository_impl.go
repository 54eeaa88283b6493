package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/nomic-io/nomic-wallet/internal/core/domain"
)

type transactionInmemoryStore struct {
	transactions map[string]domain.TransactionRecord
	locker       *sync.RWMutex
}

type transactionRepositoryImpl struct {
	store *transactionInmemoryStore
}

// NewTransactionRepositoryImpl returns a new empty domain.TransactionRepository
func NewTransactionRepositoryImpl() domain.TransactionRepository {
	return &transactionRepositoryImpl{
		store: &transactionInmemoryStore{
			transactions: map[string]domain.TransactionRecord{},
			locker:       &sync.RWMutex{},
		},
	}
}

func (r *transactionRepositoryImpl) AddTransaction(
	_ context.Context, record domain.TransactionRecord,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.transactions[record.TxID]; !ok {
		r.store.transactions[record.TxID] = record
	}
	return nil
}

func (r *transactionRepositoryImpl) GetTransaction(
	_ context.Context, txid string,
) (*domain.TransactionRecord, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	record, ok := r.store.transactions[txid]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &record, nil
}

func (r *transactionRepositoryImpl) ListTransactions(
	_ context.Context, page *domain.Page,
) ([]domain.TransactionRecord, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	records := make([]domain.TransactionRecord, 0, len(r.store.transactions))
	for _, v := range r.store.transactions {
		records = append(records, v)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp == records[j].Timestamp {
			return records[i].Nonce > records[j].Nonce
		}
		return records[i].Timestamp > records[j].Timestamp
	})

	if page == nil {
		return records, nil
	}

	from := page.Offset()
	if from >= len(records) {
		return make([]domain.TransactionRecord, 0), nil
	}
	to := from + page.Size
	if to > len(records) {
		to = len(records)
	}
	return records[from:to], nil
}
