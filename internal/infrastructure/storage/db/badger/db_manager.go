package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"

	"github.com/nomic-io/nomic-wallet/internal/core/domain"
	"github.com/nomic-io/nomic-wallet/internal/core/ports"
)

const transactionsDir = "transactions"

type repoManager struct {
	store                 *badgerhold.Store
	transactionRepository domain.TransactionRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	store, err := createDb(filepath.Join(baseDbDir, transactionsDir), logger)
	if err != nil {
		return nil, fmt.Errorf("opening transactions db: %w", err)
	}

	return &repoManager{
		store:                 store,
		transactionRepository: NewTransactionRepositoryImpl(store),
	}, nil
}

func (r *repoManager) TransactionRepository() domain.TransactionRepository {
	return r.transactionRepository
}

func (r *repoManager) Close() {
	r.store.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer
	if err := json.NewEncoder(&buff).Encode(value); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.Compression = options.ZSTD

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
