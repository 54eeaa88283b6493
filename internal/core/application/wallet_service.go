package application

import (
	"context"
	"encoding/hex"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nomic-io/nomic-wallet/internal/core/domain"
	"github.com/nomic-io/nomic-wallet/internal/core/ports"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
	"github.com/nomic-io/nomic-wallet/pkg/wallet"
)

// WalletInfo summarizes the wallet addresses and the state of its account.
type WalletInfo struct {
	Address        string
	DepositAddress string
	Nonce          uint64
	Balance        uint64
}

type WalletService interface {
	ReceiveAddress() string
	DepositAddress(ctx context.Context) (string, error)
	Info(ctx context.Context) (*WalletInfo, error)
	Send(
		ctx context.Context, address string, amount uint64,
	) (*domain.TransactionRecord, error)
	Withdraw(
		ctx context.Context, bitcoinAddress string, amount uint64,
	) (*domain.TransactionRecord, error)
	ListTransactions(
		ctx context.Context, page *domain.Page,
	) ([]domain.TransactionRecord, error)
}

type walletService struct {
	wallet     *wallet.Wallet
	nodeClient ports.NodeClient
	repository domain.TransactionRepository

	// serializes fetch-nonce -> build -> sign -> submit for the account so
	// that two transactions never share the same nonce.
	submitMtx sync.Mutex
}

func NewWalletService(
	w *wallet.Wallet,
	nodeClient ports.NodeClient,
	repository domain.TransactionRepository,
) (WalletService, error) {
	if w == nil {
		return nil, ErrNullWallet
	}
	if nodeClient == nil {
		return nil, ErrNullNodeClient
	}
	if repository == nil {
		return nil, ErrNullRepository
	}
	return &walletService{
		wallet:     w,
		nodeClient: nodeClient,
		repository: repository,
	}, nil
}

func (s *walletService) ReceiveAddress() string {
	return s.wallet.ReceiveAddress()
}

func (s *walletService) DepositAddress(ctx context.Context) (string, error) {
	set, err := s.nodeClient.GetSignatorySet(ctx)
	if err != nil {
		return "", err
	}
	if set == nil {
		return "", ErrNullSignatorySet
	}
	return s.wallet.DepositAddress(set)
}

func (s *walletService) Info(ctx context.Context) (*WalletInfo, error) {
	info := &WalletInfo{Address: s.wallet.ReceiveAddress()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		account, err := s.nodeClient.GetAccount(gctx, s.wallet.PubKeyBytes())
		if err != nil {
			return err
		}
		info.Nonce = account.Nonce
		info.Balance = account.Balance
		return nil
	})
	g.Go(func() error {
		addr, err := s.DepositAddress(gctx)
		if err != nil {
			return err
		}
		info.DepositAddress = addr
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return info, nil
}

// Send transfers amount to the given native address. The recipient is
// validated before any request is made to the node.
func (s *walletService) Send(
	ctx context.Context, address string, amount uint64,
) (*domain.TransactionRecord, error) {
	if amount == 0 {
		return nil, wallet.ErrZeroAmount
	}
	if _, err := wallet.DecodeNativeAddress(
		s.wallet.AddressPrefix(), address,
	); err != nil {
		return nil, err
	}

	return s.submit(ctx, address, func(nonce uint64) (transaction.Transaction, error) {
		tx, err := s.wallet.BuildTransfer(address, amount, nonce)
		if err != nil {
			return nil, err
		}
		return tx, nil
	})
}

// Withdraw pegs amount out to the given bitcoin address. The address is
// validated before any request is made to the node.
func (s *walletService) Withdraw(
	ctx context.Context, bitcoinAddress string, amount uint64,
) (*domain.TransactionRecord, error) {
	if amount == 0 {
		return nil, wallet.ErrZeroAmount
	}
	if _, err := wallet.OutputScript(
		bitcoinAddress, s.wallet.Network(),
	); err != nil {
		return nil, err
	}

	return s.submit(ctx, bitcoinAddress, func(nonce uint64) (transaction.Transaction, error) {
		tx, err := s.wallet.BuildWithdrawal(bitcoinAddress, amount, nonce)
		if err != nil {
			return nil, err
		}
		return tx, nil
	})
}

func (s *walletService) ListTransactions(
	ctx context.Context, page *domain.Page,
) ([]domain.TransactionRecord, error) {
	return s.repository.ListTransactions(ctx, page)
}

func (s *walletService) submit(
	ctx context.Context,
	destination string,
	build func(nonce uint64) (transaction.Transaction, error),
) (*domain.TransactionRecord, error) {
	s.submitMtx.Lock()
	defer s.submitMtx.Unlock()

	pubkey := s.wallet.PubKeyBytes()
	account, err := s.nodeClient.GetAccount(ctx, pubkey)
	if err != nil {
		return nil, err
	}

	tx, err := build(account.Nonce)
	if err != nil {
		return nil, err
	}
	if err := s.wallet.SignTransaction(tx); err != nil {
		return nil, err
	}
	if err := s.nodeClient.Send(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.MarkSubmitted(); err != nil {
		return nil, err
	}

	record, err := domain.NewTransactionRecord(tx, destination)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account": accountID(pubkey),
		"kind":    record.Kind,
		"txid":    record.TxID,
		"nonce":   record.Nonce,
		"amount":  record.Amount,
	}).Info("transaction submitted")

	// the transaction is already in the hands of the ledger, a failure here
	// only affects local history.
	if err := s.repository.AddTransaction(ctx, *record); err != nil {
		log.WithError(err).WithField("txid", record.TxID).Warn(
			"failed to store transaction in history",
		)
	}

	return record, nil
}

func accountID(pubkey []byte) string {
	return hex.EncodeToString(pubkey)
}
