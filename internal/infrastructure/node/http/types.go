package httpnode

import (
	"encoding/hex"
	"fmt"

	"github.com/nomic-io/nomic-wallet/pkg/signatory"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

type accountResponse struct {
	Nonce   uint64 `json:"nonce"`
	Balance uint64 `json:"balance"`
}

type signatoryJSON struct {
	PubKey      string `json:"pubkey"`
	VotingPower uint64 `json:"voting_power"`
}

type signatorySetResponse struct {
	Signatories []signatoryJSON `json:"signatories"`
}

func (r signatorySetResponse) toSet() (*signatory.Set, error) {
	signatories := make([]signatory.Signatory, 0, len(r.Signatories))
	for i, s := range r.Signatories {
		pubkey, err := hex.DecodeString(s.PubKey)
		if err != nil {
			return nil, fmt.Errorf("signatory %d: invalid pubkey: %s", i, err)
		}
		signatories = append(signatories, signatory.Signatory{
			PubKey:      pubkey,
			VotingPower: s.VotingPower,
		})
	}
	return signatory.NewSet(signatories)
}

type transactionRequest struct {
	Type      string  `json:"type"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    uint64  `json:"amount"`
	FeeAmount *uint64 `json:"fee_amount,omitempty"`
	Nonce     uint64  `json:"nonce"`
	Signature string  `json:"signature"`
}

func newTransactionRequest(tx transaction.Transaction) (*transactionRequest, error) {
	switch t := tx.(type) {
	case *transaction.Transfer:
		fee := t.FeeAmount
		return &transactionRequest{
			Type:      t.Kind().String(),
			From:      hex.EncodeToString(t.From),
			To:        hex.EncodeToString(t.To),
			Amount:    t.Amount,
			FeeAmount: &fee,
			Nonce:     t.Nonce,
			Signature: hex.EncodeToString(t.Signature),
		}, nil
	case *transaction.Withdrawal:
		return &transactionRequest{
			Type:      t.Kind().String(),
			From:      hex.EncodeToString(t.From),
			To:        hex.EncodeToString(t.To),
			Amount:    t.Amount,
			Nonce:     t.Nonce,
			Signature: hex.EncodeToString(t.Signature),
		}, nil
	default:
		return nil, ErrUnsupportedTransaction
	}
}
