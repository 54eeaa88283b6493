package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/nomic-io/nomic-wallet/internal/core/domain"
)

var history = cli.Command{
	Name:  "history",
	Usage: "list the transactions submitted by this wallet, most recent first",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Usage: "the number of the page to be listed. If omitted, the entire list is returned",
		},
		&cli.IntFlag{
			Name:  "page_size",
			Usage: "the size of the page",
			Value: 10,
		},
	},
	Action: historyAction,
}

func historyAction(ctx *cli.Context) error {
	svc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	var page *domain.Page
	if pageNumber := ctx.Int("page"); pageNumber > 0 {
		p := domain.NewPage(pageNumber, ctx.Int("page_size"))
		page = &p
	}

	records, err := svc.ListTransactions(context.Background(), page)
	if err != nil {
		return err
	}

	txs := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		txs = append(txs, recordToMap(r))
	}
	printJSON(map[string]interface{}{"transactions": txs})
	return nil
}
