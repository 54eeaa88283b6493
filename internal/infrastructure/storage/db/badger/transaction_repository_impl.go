package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/nomic-io/nomic-wallet/internal/core/domain"
)

type transactionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTransactionRepositoryImpl initialize a badger implementation of the
// domain.TransactionRepository
func NewTransactionRepositoryImpl(
	store *badgerhold.Store,
) domain.TransactionRepository {
	return transactionRepositoryImpl{store}
}

func (r transactionRepositoryImpl) AddTransaction(
	_ context.Context, record domain.TransactionRecord,
) error {
	err := r.store.Insert(record.TxID, &record)
	// records are immutable, a duplicate is the very same transaction.
	if err == badgerhold.ErrKeyExists {
		return nil
	}
	return err
}

func (r transactionRepositoryImpl) GetTransaction(
	_ context.Context, txid string,
) (*domain.TransactionRecord, error) {
	var record domain.TransactionRecord
	if err := r.store.Get(txid, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r transactionRepositoryImpl) ListTransactions(
	_ context.Context, page *domain.Page,
) ([]domain.TransactionRecord, error) {
	query := &badgerhold.Query{}
	if page != nil {
		query.Skip(page.Offset()).Limit(page.Size)
	}
	return r.findTransactions(query)
}

func (r transactionRepositoryImpl) findTransactions(
	query *badgerhold.Query,
) ([]domain.TransactionRecord, error) {
	var records []domain.TransactionRecord

	query.SortBy("Timestamp", "Nonce").Reverse()
	if err := r.store.Find(&records, query); err != nil {
		return nil, err
	}
	if records == nil {
		records = make([]domain.TransactionRecord, 0)
	}
	return records, nil
}
