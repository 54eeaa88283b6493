package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

const (
	// SecretKeyLen is the size in bytes of the persisted secret
	SecretKeyLen = 32
	// DefaultAddressPrefix is the human readable part of native addresses
	DefaultAddressPrefix = "nomic"
	// DefaultTransferFee is the fee paid by every transfer
	DefaultTransferFee = uint64(1000)
)

var (
	// DefaultNetwork is the bitcoin network deposit and withdrawal addresses
	// belong to
	DefaultNetwork = &chaincfg.TestNet3Params
)

var (
	// ErrIO is returned when the secret key file cannot be read or written
	ErrIO = errors.New("wallet key file i/o failure")
	// ErrInvalidKey ...
	ErrInvalidKey = errors.New(
		"secret key must be a 32 byte non-zero scalar lower than the curve order",
	)
	// ErrNullKeyPath ...
	ErrNullKeyPath = errors.New("key file path must not be null")
	// ErrAddressDecode ...
	ErrAddressDecode = errors.New("address is not a valid bech32 string")
	// ErrAddressPrefix ...
	ErrAddressPrefix = errors.New("invalid address prefix")
	// ErrInvalidAddressPrefix is returned for a prefix that cannot be the
	// human readable part of a bech32 native address
	ErrInvalidAddressPrefix = fmt.Errorf(
		"address prefix must be 1 to %d printable ascii characters",
		MaxAddressPrefixLen,
	)
	// ErrAddressParse ...
	ErrAddressParse = errors.New("address is not a valid bitcoin address")
	// ErrScriptConstruction ...
	ErrScriptConstruction = errors.New("signatory set produced an invalid redeem script")
	// ErrNullSignatories ...
	ErrNullSignatories = errors.New("signatory set must not be null")
	// ErrNullNetwork ...
	ErrNullNetwork = errors.New("network params are null")
	// ErrSighash ...
	ErrSighash = errors.New("transaction cannot be hashed for signing")
	// ErrInvalidDigestLength ...
	ErrInvalidDigestLength = errors.New("digest must be 32 bytes long")
	// ErrNullTransaction ...
	ErrNullTransaction = errors.New("transaction must not be null")
	// ErrZeroAmount ...
	ErrZeroAmount = errors.New("amount must not be zero")
)

// Wallet holds the single secret key of the user and the settings needed to
// turn it into native and deposit addresses and signed transactions.
// The secret is immutable once loaded and never leaves the wallet except
// through its key file.
type Wallet struct {
	privkey        *btcec.PrivateKey
	signer         Signer
	addressPrefix  string
	receiveAddress string
	transferFee    uint64
	network        *chaincfg.Params
}

// LoadOrGenerateOpts is the struct given to LoadOrGenerate method.
// Zero values for AddressPrefix, TransferFee and Network mean defaults. A
// non-nil TransferFee is used as is, zero included.
type LoadOrGenerateOpts struct {
	Path          string
	AddressPrefix string
	TransferFee   *uint64
	Network       *chaincfg.Params
}

func (o *LoadOrGenerateOpts) validate() error {
	if len(o.Path) <= 0 {
		return ErrNullKeyPath
	}
	if len(o.AddressPrefix) <= 0 {
		o.AddressPrefix = DefaultAddressPrefix
	}
	// bech32 encodes the prefix lowercase.
	o.AddressPrefix = strings.ToLower(o.AddressPrefix)
	if err := ValidateAddressPrefix(o.AddressPrefix); err != nil {
		return err
	}
	if o.TransferFee == nil {
		fee := DefaultTransferFee
		o.TransferFee = &fee
	}
	if o.Network == nil {
		o.Network = DefaultNetwork
	}
	return nil
}

// LoadOrGenerate reads the secret key stored at opts.Path or, if there is
// none, generates a new one and persists it there.
func LoadOrGenerate(opts LoadOrGenerateOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	privkey, err := loadOrGenerateKey(opts.Path)
	if err != nil {
		return nil, err
	}

	receiveAddress, err := EncodeNativeAddress(
		opts.AddressPrefix, privkey.PubKey().SerializeCompressed(),
	)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		privkey:        privkey,
		signer:         newSigner(privkey),
		addressPrefix:  opts.AddressPrefix,
		receiveAddress: receiveAddress,
		transferFee:    *opts.TransferFee,
		network:        opts.Network,
	}, nil
}

// PublicKey returns the public key of the wallet.
func (w *Wallet) PublicKey() *btcec.PublicKey {
	return w.privkey.PubKey()
}

// PubKeyBytes returns the 33 byte compressed serialization of the public key,
// which is also the account identifier on the native chain.
func (w *Wallet) PubKeyBytes() []byte {
	return w.PublicKey().SerializeCompressed()
}

// Signer returns the sign-only capability bound to the wallet secret.
func (w *Wallet) Signer() Signer {
	return w.signer
}

// AddressPrefix returns the expected prefix of native addresses.
func (w *Wallet) AddressPrefix() string {
	return w.addressPrefix
}

// Network returns the bitcoin network params used for deposits and
// withdrawals.
func (w *Wallet) Network() *chaincfg.Params {
	return w.network
}

// ReceiveAddress returns the native bech32 address of the wallet.
func (w *Wallet) ReceiveAddress() string {
	return w.receiveAddress
}

// DepositAddress returns the P2WSH address where bitcoins must be sent to be
// pegged into the wallet account.
func (w *Wallet) DepositAddress(signatories RedeemScripter) (string, error) {
	return DeriveDepositAddress(DeriveDepositAddressOpts{
		PubKey:      w.PubKeyBytes(),
		Signatories: signatories,
		Network:     w.network,
	})
}

// BuildTransfer returns an unsigned transfer from the wallet account.
func (w *Wallet) BuildTransfer(
	to string, amount, nonce uint64,
) (*transaction.Transfer, error) {
	return BuildTransfer(BuildTransferOpts{
		From:          w.PubKeyBytes(),
		To:            to,
		Amount:        amount,
		Nonce:         nonce,
		FeeAmount:     w.transferFee,
		AddressPrefix: w.addressPrefix,
	})
}

// BuildWithdrawal returns an unsigned withdrawal from the wallet account.
func (w *Wallet) BuildWithdrawal(
	bitcoinAddress string, amount, nonce uint64,
) (*transaction.Withdrawal, error) {
	return BuildWithdrawal(BuildWithdrawalOpts{
		From:    w.PubKeyBytes(),
		To:      bitcoinAddress,
		Amount:  amount,
		Nonce:   nonce,
		Network: w.network,
	})
}

// SignTransaction computes the digest of the given unsigned transaction,
// signs it and attaches the signature.
func (w *Wallet) SignTransaction(tx transaction.Transaction) error {
	digest, err := Digest(tx)
	if err != nil {
		return err
	}
	sig, err := w.signer.Sign(digest)
	if err != nil {
		return err
	}
	return Attach(tx, sig)
}
