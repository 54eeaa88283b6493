package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

// BuildTransferOpts is the struct given to BuildTransfer method
type BuildTransferOpts struct {
	From          []byte
	To            string
	Amount        uint64
	Nonce         uint64
	FeeAmount     uint64
	AddressPrefix string
}

func (o BuildTransferOpts) validate() error {
	if len(o.From) != transaction.PubKeyLen {
		return transaction.ErrInvalidSenderLength
	}
	if o.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

// BuildTransfer decodes the recipient native address and returns an unsigned
// transfer. The nonce must be the one of the freshest known state of the
// sender account: the builder does not track it.
func BuildTransfer(opts BuildTransferOpts) (*transaction.Transfer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	prefix := opts.AddressPrefix
	if len(prefix) <= 0 {
		prefix = DefaultAddressPrefix
	}
	to, err := DecodeNativeAddress(prefix, opts.To)
	if err != nil {
		return nil, err
	}

	return transaction.NewTransfer(
		opts.From, to, opts.Amount, opts.FeeAmount, opts.Nonce,
	), nil
}

// BuildWithdrawalOpts is the struct given to BuildWithdrawal method
type BuildWithdrawalOpts struct {
	From    []byte
	To      string
	Amount  uint64
	Nonce   uint64
	Network *chaincfg.Params
}

func (o BuildWithdrawalOpts) validate() error {
	if len(o.From) != transaction.PubKeyLen {
		return transaction.ErrInvalidSenderLength
	}
	if o.Amount == 0 {
		return ErrZeroAmount
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	return nil
}

// BuildWithdrawal parses the bitcoin address and returns an unsigned
// withdrawal paying to its output script.
func BuildWithdrawal(opts BuildWithdrawalOpts) (*transaction.Withdrawal, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	script, err := OutputScript(opts.To, opts.Network)
	if err != nil {
		return nil, err
	}

	return transaction.NewWithdrawal(
		opts.From, script, opts.Amount, opts.Nonce,
	), nil
}

// OutputScript returns the output script paying to the given bitcoin address
// of the given network.
func OutputScript(address string, network *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, network)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAddressParse, err)
	}
	if !addr.IsForNet(network) {
		return nil, fmt.Errorf(
			"%w: address is not for network %s", ErrAddressParse, network.Name,
		)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAddressParse, err)
	}
	return script, nil
}

// Digest returns the sighash of the transaction.
func Digest(tx transaction.Transaction) ([]byte, error) {
	if isNil(tx) {
		return nil, ErrNullTransaction
	}
	digest, err := tx.Sighash()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSighash, err)
	}
	if len(digest) != transaction.SighashLen {
		return nil, fmt.Errorf(
			"%w: digest is %d bytes long", ErrSighash, len(digest),
		)
	}
	return digest, nil
}
