package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcec/v2"
	log "github.com/sirupsen/logrus"
)

func loadOrGenerateKey(path string) (*btcec.PrivateKey, error) {
	_, err := os.Stat(path)
	if err == nil {
		log.Infof("loading existing wallet from %s", path)
		return loadKey(path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrIO, err)
	}

	log.Infof("generating new wallet at %s", path)
	return generateKey(path)
}

func loadKey(path string) (*btcec.PrivateKey, error) {
	secret, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIO, err)
	}
	return parseSecret(secret)
}

func generateKey(path string) (*btcec.PrivateKey, error) {
	privkey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, privkey.Serialize()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIO, err)
	}
	return privkey, nil
}

// parseSecret accepts only the raw 32 byte encoding of a scalar in [1, n-1].
func parseSecret(secret []byte) (*btcec.PrivateKey, error) {
	if len(secret) != SecretKeyLen {
		return nil, ErrInvalidKey
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(secret); overflow || scalar.IsZero() {
		scalar.Zero()
		return nil, ErrInvalidKey
	}
	scalar.Zero()

	privkey, _ := btcec.PrivKeyFromBytes(secret)
	return privkey, nil
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it to path, so that a failure never leaves a partial key file.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0600); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
