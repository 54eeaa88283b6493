package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

// Signer is a sign-only capability over the wallet secret. It deliberately
// exposes neither verification nor the key itself.
type Signer interface {
	// Sign returns the 64 byte compact (r || s) signature of a 32 byte digest.
	Sign(digest []byte) ([]byte, error)
}

type signer struct {
	privkey *btcec.PrivateKey
}

func newSigner(privkey *btcec.PrivateKey) Signer {
	return signer{privkey}
}

// Sign produces a deterministic (RFC6979) low-S signature.
func (s signer) Sign(digest []byte) ([]byte, error) {
	if len(digest) != transaction.SighashLen {
		return nil, ErrInvalidDigestLength
	}

	// the first byte of the compact form is the pubkey recovery code.
	sig, err := ecdsa.SignCompact(s.privkey, digest, true)
	if err != nil {
		return nil, err
	}
	return sig[1:], nil
}

// Attach sets the signature on the transaction. It is the last mutation of
// the transaction before it is submitted.
func Attach(tx transaction.Transaction, signature []byte) error {
	if isNil(tx) {
		return ErrNullTransaction
	}
	return tx.Attach(signature)
}
