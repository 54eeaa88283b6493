package signatory

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
)

const (
	// MaxVotingPower is the biggest total voting power representable as a
	// 4 byte script number
	MaxVotingPower = math.MaxInt32

	compressedPubKeyLen = 33
)

var (
	// ErrEmptySet ...
	ErrEmptySet = errors.New("signatory set must not be empty")
	// ErrZeroVotingPower ...
	ErrZeroVotingPower = errors.New("signatory voting power must not be zero")
	// ErrVotingPowerOverflow ...
	ErrVotingPowerOverflow = fmt.Errorf(
		"total voting power must not exceed %d", MaxVotingPower,
	)
	// ErrInvalidPubKey ...
	ErrInvalidPubKey = errors.New("signatory pubkey must be a valid compressed key")
	// ErrDuplicatedSignatory ...
	ErrDuplicatedSignatory = errors.New("signatory pubkey must be unique in set")
	// ErrInvalidDepositor ...
	ErrInvalidDepositor = errors.New("depositor must be a 33 byte compressed pubkey")
)

// Signatory is a member of the peg federation weighted by its voting power.
type Signatory struct {
	PubKey      []byte
	VotingPower uint64
}

// Set is the ordered collection of signatories in charge of the peg reserve
type Set struct {
	signatories      []Signatory
	totalVotingPower uint64
}

// NewSet validates the given signatories and returns them as a Set ordered by
// descending voting power, ties broken by pubkey.
func NewSet(signatories []Signatory) (*Set, error) {
	if len(signatories) <= 0 {
		return nil, ErrEmptySet
	}

	seen := make(map[string]struct{}, len(signatories))
	sorted := make([]Signatory, 0, len(signatories))
	total := uint64(0)
	for i, s := range signatories {
		if len(s.PubKey) != compressedPubKeyLen {
			return nil, fmt.Errorf("signatory %d: %w", i, ErrInvalidPubKey)
		}
		if _, err := btcec.ParsePubKey(s.PubKey); err != nil {
			return nil, fmt.Errorf("signatory %d: %w", i, ErrInvalidPubKey)
		}
		if s.VotingPower == 0 {
			return nil, fmt.Errorf("signatory %d: %w", i, ErrZeroVotingPower)
		}
		key := hex.EncodeToString(s.PubKey)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("signatory %d: %w", i, ErrDuplicatedSignatory)
		}
		seen[key] = struct{}{}

		if s.VotingPower > MaxVotingPower-total {
			return nil, ErrVotingPowerOverflow
		}
		total += s.VotingPower

		sorted = append(sorted, Signatory{
			PubKey:      append([]byte{}, s.PubKey...),
			VotingPower: s.VotingPower,
		})
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VotingPower != sorted[j].VotingPower {
			return sorted[i].VotingPower > sorted[j].VotingPower
		}
		return bytes.Compare(sorted[i].PubKey, sorted[j].PubKey) < 0
	})

	return &Set{sorted, total}, nil
}

// Signatories returns a copy of the ordered signatories.
func (s *Set) Signatories() []Signatory {
	out := make([]Signatory, len(s.signatories))
	copy(out, s.signatories)
	return out
}

// TotalVotingPower returns the sum of the voting power of all signatories
func (s *Set) TotalVotingPower() uint64 {
	return s.totalVotingPower
}

// Threshold is the voting power that must be strictly exceeded to spend a
// deposit.
func (s *Set) Threshold() uint64 {
	return s.totalVotingPower * 2 / 3
}

// RedeemScript returns the witness script locking a deposit made by the
// given depositor. The script sums the voting power of every signatory whose
// signature checks and requires the sum to be greater than the threshold.
// The depositor pubkey is committed at the end so each depositor gets a
// distinct address.
func (s *Set) RedeemScript(depositor []byte) ([]byte, error) {
	if len(s.signatories) <= 0 {
		return nil, ErrEmptySet
	}
	if len(depositor) != compressedPubKeyLen {
		return nil, ErrInvalidDepositor
	}

	builder := txscript.NewScriptBuilder()
	for i, sig := range s.signatories {
		if i > 0 {
			builder.AddOp(txscript.OP_SWAP)
		}
		builder.
			AddData(sig.PubKey).
			AddOp(txscript.OP_CHECKSIG).
			AddOp(txscript.OP_IF).
			AddInt64(int64(sig.VotingPower))
		if i == 0 {
			builder.
				AddOp(txscript.OP_ELSE).
				AddOp(txscript.OP_0)
		} else {
			builder.AddOp(txscript.OP_ADD)
		}
		builder.AddOp(txscript.OP_ENDIF)
	}

	builder.
		AddInt64(int64(s.Threshold())).
		AddOp(txscript.OP_GREATERTHAN).
		AddData(depositor).
		AddOp(txscript.OP_DROP)

	return builder.Script()
}
