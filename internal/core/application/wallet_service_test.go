package application_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nomic-io/nomic-wallet/internal/core/application"
	"github.com/nomic-io/nomic-wallet/internal/core/domain"
	"github.com/nomic-io/nomic-wallet/internal/core/ports"
	"github.com/nomic-io/nomic-wallet/pkg/signatory"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
	"github.com/nomic-io/nomic-wallet/pkg/wallet"
)

const testBitcoinAddress = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"

var ctx = context.Background()

func TestNewWalletService(t *testing.T) {
	w := newTestWallet(t)

	tests := []struct {
		wallet *wallet.Wallet
		client ports.NodeClient
		repo   domain.TransactionRepository
		err    error
	}{
		{nil, &mockNodeClient{}, &mockTransactionRepository{}, application.ErrNullWallet},
		{w, nil, &mockTransactionRepository{}, application.ErrNullNodeClient},
		{w, &mockNodeClient{}, nil, application.ErrNullRepository},
	}
	for _, tt := range tests {
		_, err := application.NewWalletService(tt.wallet, tt.client, tt.repo)
		assert.Equal(t, tt.err, err)
	}
}

func TestSend(t *testing.T) {
	w := newTestWallet(t)
	recipient := newTestWallet(t).ReceiveAddress()
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)

	addr := svc.ReceiveAddress()
	assert.True(t, strings.HasPrefix(addr, "nomic1"))
	_, err := wallet.DecodeNativeAddress("nomic", addr)
	require.NoError(t, err)

	client.On("GetAccount", mock.Anything, w.PubKeyBytes()).
		Return(ports.Account{Nonce: 7, Balance: 10000}, nil)
	client.On("Send", mock.Anything, mock.AnythingOfType("*transaction.Transfer")).
		Return(nil)
	repo.On("AddTransaction", mock.Anything, mock.Anything).Return(nil)

	record, err := svc.Send(ctx, recipient, 500)
	require.NoError(t, err)
	require.NotNil(t, record)

	client.AssertNumberOfCalls(t, "Send", 1)
	repo.AssertNumberOfCalls(t, "AddTransaction", 1)

	txs := client.sentTransactions()
	require.Len(t, txs, 1)
	tx := txs[0].(*transaction.Transfer)
	assert.Equal(t, w.PubKeyBytes(), tx.From)
	assert.Equal(t, uint64(500), tx.Amount)
	assert.Equal(t, uint64(1000), tx.FeeAmount)
	assert.Equal(t, uint64(7), tx.Nonce)
	assert.Len(t, tx.Signature, transaction.SignatureLen)
	assert.Equal(t, transaction.StatusSubmitted, tx.Status())

	digest, err := tx.Sighash()
	require.NoError(t, err)
	assert.True(t, verifyCompact(w.PublicKey(), digest, tx.Signature))

	assert.Equal(t, recipient, record.To)
	assert.Equal(t, uint64(7), record.Nonce)
	assert.True(t, record.IsTransfer())
}

func TestSendRejectsForeignPrefix(t *testing.T) {
	w := newTestWallet(t)
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)

	other, err := wallet.EncodeNativeAddress("othernet", w.PubKeyBytes())
	require.NoError(t, err)

	_, err = svc.Send(ctx, other, 500)
	assert.ErrorIs(t, err, wallet.ErrAddressPrefix)

	_, err = svc.Send(ctx, "nomic1invalid", 500)
	assert.ErrorIs(t, err, wallet.ErrAddressDecode)

	_, err = svc.Send(ctx, w.ReceiveAddress(), 0)
	assert.Equal(t, wallet.ErrZeroAmount, err)

	client.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AddTransaction", mock.Anything, mock.Anything)
}

func TestSendPropagatesNonce(t *testing.T) {
	w := newTestWallet(t)
	recipient := newTestWallet(t).ReceiveAddress()
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)

	client.On("GetAccount", mock.Anything, w.PubKeyBytes()).
		Return(ports.Account{Nonce: 41}, nil).Once()
	client.On("GetAccount", mock.Anything, w.PubKeyBytes()).
		Return(ports.Account{Nonce: 42}, nil).Once()
	client.On("Send", mock.Anything, mock.Anything).Return(nil)
	repo.On("AddTransaction", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Send(ctx, recipient, 100)
	require.NoError(t, err)
	_, err = svc.Send(ctx, recipient, 100)
	require.NoError(t, err)

	txs := client.sentTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, uint64(41), txs[0].(*transaction.Transfer).Nonce)
	assert.Equal(t, uint64(42), txs[1].(*transaction.Transfer).Nonce)
}

func TestConcurrentSendsNeverShareNonce(t *testing.T) {
	w := newTestWallet(t)
	recipient := newTestWallet(t).ReceiveAddress()
	ledger := &ledgerNodeClient{nonce: 3}
	repo := &mockTransactionRepository{}
	repo.On("AddTransaction", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(t, w, ledger, repo)

	count := 8
	wg := &sync.WaitGroup{}
	errs := make(chan error, count)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(ctx, recipient, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, ledger.accepted, count)
	for i, nonce := range ledger.accepted {
		assert.Equal(t, uint64(3+i), nonce)
	}
}

func TestFailingSend(t *testing.T) {
	w := newTestWallet(t)
	recipient := newTestWallet(t).ReceiveAddress()
	networkErr := fmt.Errorf("%w: connection refused", ports.ErrNetwork)

	t.Run("account", func(t *testing.T) {
		client, repo := &mockNodeClient{}, &mockTransactionRepository{}
		svc := newTestService(t, w, client, repo)
		client.On("GetAccount", mock.Anything, mock.Anything).
			Return(nil, networkErr)

		_, err := svc.Send(ctx, recipient, 500)
		assert.ErrorIs(t, err, ports.ErrNetwork)
		client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("submission", func(t *testing.T) {
		client, repo := &mockNodeClient{}, &mockTransactionRepository{}
		svc := newTestService(t, w, client, repo)
		client.On("GetAccount", mock.Anything, mock.Anything).
			Return(ports.Account{Nonce: 1}, nil)
		client.On("Send", mock.Anything, mock.Anything).Return(networkErr)

		_, err := svc.Send(ctx, recipient, 500)
		assert.ErrorIs(t, err, ports.ErrNetwork)
		repo.AssertNotCalled(t, "AddTransaction", mock.Anything, mock.Anything)
	})

	t.Run("history", func(t *testing.T) {
		client, repo := &mockNodeClient{}, &mockTransactionRepository{}
		svc := newTestService(t, w, client, repo)
		client.On("GetAccount", mock.Anything, mock.Anything).
			Return(ports.Account{Nonce: 1}, nil)
		client.On("Send", mock.Anything, mock.Anything).Return(nil)
		repo.On("AddTransaction", mock.Anything, mock.Anything).
			Return(errors.New("disk full"))

		record, err := svc.Send(ctx, recipient, 500)
		require.NoError(t, err)
		assert.NotNil(t, record)
	})
}

func TestWithdraw(t *testing.T) {
	w := newTestWallet(t)
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)

	client.On("GetAccount", mock.Anything, w.PubKeyBytes()).
		Return(ports.Account{Nonce: 12}, nil)
	client.On("Send", mock.Anything, mock.AnythingOfType("*transaction.Withdrawal")).
		Return(nil)
	repo.On("AddTransaction", mock.Anything, mock.Anything).Return(nil)

	record, err := svc.Withdraw(ctx, testBitcoinAddress, 2000)
	require.NoError(t, err)
	assert.True(t, record.IsWithdrawal())
	assert.Equal(t, testBitcoinAddress, record.To)

	txs := client.sentTransactions()
	require.Len(t, txs, 1)
	tx := txs[0].(*transaction.Withdrawal)
	assert.Equal(t, uint64(2000), tx.Amount)
	assert.Equal(t, uint64(12), tx.Nonce)
	assert.Equal(t, transaction.StatusSubmitted, tx.Status())

	digest, err := tx.Sighash()
	require.NoError(t, err)
	assert.True(t, verifyCompact(w.PublicKey(), digest, tx.Signature))
}

func TestFailingWithdraw(t *testing.T) {
	w := newTestWallet(t)
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)

	_, err := svc.Withdraw(ctx, "invalid", 2000)
	assert.ErrorIs(t, err, wallet.ErrAddressParse)

	_, err = svc.Withdraw(ctx, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", 2000)
	assert.ErrorIs(t, err, wallet.ErrAddressParse)

	_, err = svc.Withdraw(ctx, testBitcoinAddress, 0)
	assert.Equal(t, wallet.ErrZeroAmount, err)

	client.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
}

func TestDepositAddressAndInfo(t *testing.T) {
	w := newTestWallet(t)
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)
	set := newTestSignatorySet(t)

	client.On("GetSignatorySet", mock.Anything).Return(set, nil)
	client.On("GetAccount", mock.Anything, w.PubKeyBytes()).
		Return(ports.Account{Nonce: 2, Balance: 5000}, nil)

	expected, err := w.DepositAddress(set)
	require.NoError(t, err)

	addr, err := svc.DepositAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, addr)

	info, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, &application.WalletInfo{
		Address:        w.ReceiveAddress(),
		DepositAddress: expected,
		Nonce:          2,
		Balance:        5000,
	}, info)
}

func TestFailingDepositAddress(t *testing.T) {
	w := newTestWallet(t)
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)

	client.On("GetSignatorySet", mock.Anything).Return(nil, nil)

	_, err := svc.DepositAddress(ctx)
	assert.Equal(t, application.ErrNullSignatorySet, err)
}

func TestListTransactions(t *testing.T) {
	w := newTestWallet(t)
	client, repo := &mockNodeClient{}, &mockTransactionRepository{}
	svc := newTestService(t, w, client, repo)

	page := domain.NewPage(1, 5)
	records := []domain.TransactionRecord{{TxID: "a"}, {TxID: "b"}}
	repo.On("ListTransactions", mock.Anything, &page).Return(records, nil)

	res, err := svc.ListTransactions(ctx, &page)
	require.NoError(t, err)
	assert.Equal(t, records, res)
}

func newTestWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.LoadOrGenerate(wallet.LoadOrGenerateOpts{
		Path: filepath.Join(t.TempDir(), "privkey"),
	})
	require.NoError(t, err)
	return w
}

func newTestService(
	t *testing.T,
	w *wallet.Wallet,
	client ports.NodeClient,
	repo domain.TransactionRepository,
) application.WalletService {
	t.Helper()
	svc, err := application.NewWalletService(w, client, repo)
	require.NoError(t, err)
	return svc
}

func newTestSignatorySet(t *testing.T) *signatory.Set {
	t.Helper()
	signatories := make([]signatory.Signatory, 0, 4)
	for i := 0; i < 4; i++ {
		privkey, err := btcec.NewPrivateKey()
		require.NoError(t, err)
		signatories = append(signatories, signatory.Signatory{
			PubKey:      privkey.PubKey().SerializeCompressed(),
			VotingPower: uint64(i + 1),
		})
	}
	set, err := signatory.NewSet(signatories)
	require.NoError(t, err)
	return set
}

func verifyCompact(pubkey *btcec.PublicKey, digest, sig []byte) bool {
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(digest, pubkey)
}
