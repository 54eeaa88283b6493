package domain

import "context"

const defaultPageSize = 10

// Page selects a window of a list, numbered from 1.
type Page struct {
	Number int
	Size   int
}

// NewPage returns a Page falling back to the first page of 10 elements for
// non positive arguments.
func NewPage(pageNumber, pageSize int) Page {
	pNumber := 1
	if pageNumber > 0 {
		pNumber = pageNumber
	}

	pSize := defaultPageSize
	if pageSize > 0 {
		pSize = pageSize
	}

	return Page{
		Number: pNumber,
		Size:   pSize,
	}
}

// Offset returns the index of the first element of the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TransactionRepository stores the history of submitted transactions.
// Listings are sorted from the most recent.
type TransactionRepository interface {
	AddTransaction(ctx context.Context, record TransactionRecord) error
	GetTransaction(ctx context.Context, txid string) (*TransactionRecord, error)
	ListTransactions(ctx context.Context, page *Page) ([]TransactionRecord, error)
}
