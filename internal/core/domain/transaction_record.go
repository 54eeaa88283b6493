package domain

import (
	"encoding/hex"
	"errors"
	"time"

	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

var (
	// ErrUnknownTransactionKind ...
	ErrUnknownTransactionKind = errors.New("transaction kind not supported")
	// ErrTransactionNotFound ...
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionRecord is the local history entry of a transaction submitted by
// the wallet.
type TransactionRecord struct {
	TxID      string
	Kind      string
	From      string
	To        string
	Amount    uint64
	FeeAmount uint64
	Nonce     uint64
	Timestamp int64
}

// NewTransactionRecord returns the record of a submitted transaction. The
// destination is the human readable address the user sent to. The record is
// identified by the hex encoded sighash.
func NewTransactionRecord(
	tx transaction.Transaction, destination string,
) (*TransactionRecord, error) {
	sighash, err := tx.Sighash()
	if err != nil {
		return nil, err
	}

	record := &TransactionRecord{
		TxID:      hex.EncodeToString(sighash),
		Kind:      tx.Kind().String(),
		From:      hex.EncodeToString(tx.Sender()),
		To:        destination,
		Timestamp: time.Now().Unix(),
	}

	switch t := tx.(type) {
	case *transaction.Transfer:
		record.Amount = t.Amount
		record.FeeAmount = t.FeeAmount
		record.Nonce = t.Nonce
	case *transaction.Withdrawal:
		record.Amount = t.Amount
		record.Nonce = t.Nonce
	default:
		return nil, ErrUnknownTransactionKind
	}

	return record, nil
}

// IsTransfer returns whether the record refers to a native transfer
func (r TransactionRecord) IsTransfer() bool {
	return r.Kind == transaction.KindTransfer.String()
}

// IsWithdrawal returns whether the record refers to a peg withdrawal
func (r TransactionRecord) IsWithdrawal() bool {
	return r.Kind == transaction.KindWithdrawal.String()
}
