package inmemory

import (
	"github.com/nomic-io/nomic-wallet/internal/core/domain"
	"github.com/nomic-io/nomic-wallet/internal/core/ports"
)

type repoManager struct {
	transactionRepository domain.TransactionRepository
}

// NewRepoManager returns a ports.RepoManager whose history is lost on exit.
func NewRepoManager() ports.RepoManager {
	return &repoManager{
		transactionRepository: NewTransactionRepositoryImpl(),
	}
}

func (r *repoManager) TransactionRepository() domain.TransactionRepository {
	return r.transactionRepository
}

func (r *repoManager) Close() {}
