package transaction

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	// PubKeyLen is the length of a compressed secp256k1 public key
	PubKeyLen = 33
	// SighashLen is the length of the digest signed to authorize a transaction
	SighashLen = chainhash.HashSize
	// SignatureLen is the length of a compact r||s signature
	SignatureLen = 64

	tagTransfer   byte = 0x01
	tagWithdrawal byte = 0x02
)

var (
	// ErrIncompleteTransaction ...
	ErrIncompleteTransaction = errors.New(
		"transaction is missing sender or destination and cannot be hashed",
	)
	// ErrInvalidSenderLength ...
	ErrInvalidSenderLength = errors.New("sender must be a 33 byte compressed pubkey")
	// ErrInvalidSignatureLength ...
	ErrInvalidSignatureLength = errors.New("signature must be 64 bytes long")
	// ErrAlreadySigned ...
	ErrAlreadySigned = errors.New("transaction is already signed")
	// ErrNotSigned ...
	ErrNotSigned = errors.New("transaction must be signed to be submitted")
)

// Kind distinguishes the transaction variants accepted by the ledger.
type Kind int

const (
	KindTransfer Kind = iota
	KindWithdrawal
)

func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindWithdrawal:
		return "withdrawal"
	default:
		return "unknown"
	}
}

// Transaction is the common contract of Transfer and Withdrawal. The sighash
// is computed over the unsigned fields only, hence it does not change once
// the signature is attached.
type Transaction interface {
	Kind() Kind
	Sender() []byte
	Sighash() ([]byte, error)
	Status() Status
	Attach(signature []byte) error
	MarkSubmitted() error
}

// Transfer moves native coins between two accounts.
type Transfer struct {
	From      []byte
	To        []byte
	Amount    uint64
	FeeAmount uint64
	Nonce     uint64
	Signature []byte

	lifecycle
}

// NewTransfer returns an unsigned Transfer.
func NewTransfer(from, to []byte, amount, fee, nonce uint64) *Transfer {
	return &Transfer{
		From:      from,
		To:        to,
		Amount:    amount,
		FeeAmount: fee,
		Nonce:     nonce,
		Signature: []byte{},
	}
}

func (t *Transfer) Kind() Kind     { return KindTransfer }
func (t *Transfer) Sender() []byte { return t.From }

// Sighash returns the double-sha256 of the canonical serialization of the
// unsigned fields.
func (t *Transfer) Sighash() ([]byte, error) {
	if err := checkParties(t.From, t.To); err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer([]byte{tagTransfer})
	if err := writeParties(buf, t.From, t.To); err != nil {
		return nil, err
	}
	writeUint64s(buf, t.Amount, t.FeeAmount, t.Nonce)

	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// Attach sets the signature and moves the transaction to the signed state.
func (t *Transfer) Attach(signature []byte) error {
	if err := t.sign(signature); err != nil {
		return err
	}
	t.Signature = append([]byte{}, signature...)
	return nil
}

// Withdrawal moves pegged coins out to a script on the bitcoin chain.
type Withdrawal struct {
	From      []byte
	To        []byte
	Amount    uint64
	Nonce     uint64
	Signature []byte

	lifecycle
}

// NewWithdrawal returns an unsigned Withdrawal paying to the given output
// script.
func NewWithdrawal(from, script []byte, amount, nonce uint64) *Withdrawal {
	return &Withdrawal{
		From:      from,
		To:        script,
		Amount:    amount,
		Nonce:     nonce,
		Signature: []byte{},
	}
}

func (w *Withdrawal) Kind() Kind     { return KindWithdrawal }
func (w *Withdrawal) Sender() []byte { return w.From }

// Sighash returns the double-sha256 of the canonical serialization of the
// unsigned fields.
func (w *Withdrawal) Sighash() ([]byte, error) {
	if err := checkParties(w.From, w.To); err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer([]byte{tagWithdrawal})
	if err := writeParties(buf, w.From, w.To); err != nil {
		return nil, err
	}
	writeUint64s(buf, w.Amount, w.Nonce)

	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// Attach sets the signature and moves the transaction to the signed state.
func (w *Withdrawal) Attach(signature []byte) error {
	if err := w.sign(signature); err != nil {
		return err
	}
	w.Signature = append([]byte{}, signature...)
	return nil
}

func checkParties(from, to []byte) error {
	if len(from) <= 0 || len(to) <= 0 {
		return ErrIncompleteTransaction
	}
	if len(from) != PubKeyLen {
		return ErrInvalidSenderLength
	}
	return nil
}

func writeParties(buf *bytes.Buffer, from, to []byte) error {
	if err := wire.WriteVarBytes(buf, 0, from); err != nil {
		return err
	}
	return wire.WriteVarBytes(buf, 0, to)
}

func writeUint64s(buf *bytes.Buffer, values ...uint64) {
	b := make([]byte, 8)
	for _, v := range values {
		binary.LittleEndian.PutUint64(b, v)
		buf.Write(b)
	}
}
