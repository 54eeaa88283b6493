package application_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/nomic-io/nomic-wallet/internal/core/domain"
	"github.com/nomic-io/nomic-wallet/internal/core/ports"
	"github.com/nomic-io/nomic-wallet/pkg/signatory"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

// **** Node client ****

type mockNodeClient struct {
	mock.Mock
}

func (m *mockNodeClient) GetAccount(
	ctx context.Context, pubkey []byte,
) (ports.Account, error) {
	args := m.Called(ctx, pubkey)

	var res ports.Account
	if a := args.Get(0); a != nil {
		res = a.(ports.Account)
	}
	return res, args.Error(1)
}

func (m *mockNodeClient) GetSignatorySet(
	ctx context.Context,
) (*signatory.Set, error) {
	args := m.Called(ctx)

	var res *signatory.Set
	if a := args.Get(0); a != nil {
		res = a.(*signatory.Set)
	}
	return res, args.Error(1)
}

func (m *mockNodeClient) Send(
	ctx context.Context, tx transaction.Transaction,
) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// sentTransactions returns the transactions given to Send in call order
func (m *mockNodeClient) sentTransactions() []transaction.Transaction {
	txs := make([]transaction.Transaction, 0)
	for _, call := range m.Calls {
		if call.Method == "Send" {
			txs = append(txs, call.Arguments.Get(1).(transaction.Transaction))
		}
	}
	return txs
}

// **** Transaction repository ****

type mockTransactionRepository struct {
	mock.Mock
}

func (m *mockTransactionRepository) AddTransaction(
	ctx context.Context, record domain.TransactionRecord,
) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockTransactionRepository) GetTransaction(
	ctx context.Context, txid string,
) (*domain.TransactionRecord, error) {
	args := m.Called(ctx, txid)

	var res *domain.TransactionRecord
	if a := args.Get(0); a != nil {
		res = a.(*domain.TransactionRecord)
	}
	return res, args.Error(1)
}

func (m *mockTransactionRepository) ListTransactions(
	ctx context.Context, page *domain.Page,
) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx, page)

	var res []domain.TransactionRecord
	if a := args.Get(0); a != nil {
		res = a.([]domain.TransactionRecord)
	}
	return res, args.Error(1)
}

// **** Ledger ****

// ledgerNodeClient behaves like a ledger that rejects any transaction whose
// nonce is not the current account nonce and increments it on acceptance.
type ledgerNodeClient struct {
	lock     sync.Mutex
	nonce    uint64
	accepted []uint64
}

func (l *ledgerNodeClient) GetAccount(
	_ context.Context, _ []byte,
) (ports.Account, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return ports.Account{Nonce: l.nonce}, nil
}

func (l *ledgerNodeClient) GetSignatorySet(
	_ context.Context,
) (*signatory.Set, error) {
	return nil, nil
}

func (l *ledgerNodeClient) Send(
	_ context.Context, tx transaction.Transaction,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	nonce := tx.(*transaction.Transfer).Nonce
	if nonce != l.nonce {
		return ports.ErrNetwork
	}
	l.accepted = append(l.accepted, nonce)
	l.nonce++
	return nil
}
