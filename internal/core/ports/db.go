package ports

import "github.com/nomic-io/nomic-wallet/internal/core/domain"

// RepoManager gives access to the wallet local storage.
type RepoManager interface {
	TransactionRepository() domain.TransactionRepository
	Close()
}
