package wallet

import (
	"crypto/sha256"
	"fmt"
	"reflect"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// RedeemScripter is the only capability of a signatory set the wallet relies
// on: producing the witness script that locks a deposit of a depositor.
type RedeemScripter interface {
	RedeemScript(depositor []byte) ([]byte, error)
}

const (
	// MaxAddressPrefixLen keeps native addresses of 33 byte pubkeys within the
	// 90 characters of bech32: separator, 53 data and 6 checksum characters
	// leave 30 for the prefix.
	MaxAddressPrefixLen = 30
)

// ValidateAddressPrefix checks that prefix is a lowercase bech32 human
// readable part.
func ValidateAddressPrefix(prefix string) error {
	if len(prefix) <= 0 || len(prefix) > MaxAddressPrefixLen {
		return ErrInvalidAddressPrefix
	}
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c < 33 || c > 126 || (c >= 'A' && c <= 'Z') {
			return ErrInvalidAddressPrefix
		}
	}
	return nil
}

// EncodeNativeAddress returns the bech32 encoding of the given bytes, usually
// a compressed pubkey, with the provided human readable prefix.
func EncodeNativeAddress(prefix string, pubkey []byte) (string, error) {
	if err := ValidateAddressPrefix(strings.ToLower(prefix)); err != nil {
		return "", err
	}
	data, err := bech32.ConvertBits(pubkey, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, data)
}

// DecodeNativeAddress is the inverse of EncodeNativeAddress. It fails with
// ErrAddressPrefix if the address is valid bech32 but belongs to another
// namespace.
func DecodeNativeAddress(prefix, address string) ([]byte, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAddressDecode, err)
	}
	if hrp != strings.ToLower(prefix) {
		return nil, ErrAddressPrefix
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAddressDecode, err)
	}
	if len(decoded) <= 0 {
		return nil, ErrAddressDecode
	}
	return decoded, nil
}

// DeriveDepositAddressOpts is the struct given to DeriveDepositAddress method
type DeriveDepositAddressOpts struct {
	PubKey      []byte
	Signatories RedeemScripter
	Network     *chaincfg.Params
}

func (o DeriveDepositAddressOpts) validate() error {
	if len(o.PubKey) <= 0 {
		return ErrScriptConstruction
	}
	if isNil(o.Signatories) {
		return ErrNullSignatories
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	return nil
}

// DeriveDepositAddress builds the redeem script of the signatory set for the
// depositor pubkey and returns the segwit v0 P2WSH address committing to it.
// The result only depends on the inputs, so it can be recomputed offline.
func DeriveDepositAddress(opts DeriveDepositAddressOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	script, err := opts.Signatories.RedeemScript(opts.PubKey)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrScriptConstruction, err)
	}
	if err := checkRedeemScript(script); err != nil {
		return "", err
	}

	witnessProgram := sha256.Sum256(script)
	addr, err := btcutil.NewAddressWitnessScriptHash(
		witnessProgram[:], opts.Network,
	)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

func checkRedeemScript(script []byte) error {
	if len(script) <= 0 {
		return fmt.Errorf("%w: empty script", ErrScriptConstruction)
	}
	if len(script) > txscript.MaxScriptSize {
		return fmt.Errorf(
			"%w: script exceeds %d bytes", ErrScriptConstruction, txscript.MaxScriptSize,
		)
	}
	if _, err := txscript.DisasmString(script); err != nil {
		return fmt.Errorf("%w: %s", ErrScriptConstruction, err)
	}
	return nil
}

// isNil also catches typed nil pointers stored in an interface.
func isNil(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
