package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/nomic-io/nomic-wallet/internal/core/domain"
)

var btcFlag = &cli.BoolFlag{
	Name:  "btc",
	Usage: "interpret the amount in BTC instead of satoshis",
}

var send = cli.Command{
	Name:      "send",
	Usage:     "transfer funds to another native address",
	ArgsUsage: "<address> <amount>",
	Flags:     []cli.Flag{btcFlag},
	Action:    sendAction,
}

var withdraw = cli.Command{
	Name:      "withdraw",
	Usage:     "withdraw funds from the peg to a bitcoin address",
	ArgsUsage: "<btc-address> <amount>",
	Flags:     []cli.Flag{btcFlag},
	Action:    withdrawAction,
}

func sendAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return &invalidUsageError{ctx, "send"}
	}
	amount, err := parseAmount(ctx.Args().Get(1), ctx.Bool("btc"))
	if err != nil {
		return err
	}

	svc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := svc.Send(context.Background(), ctx.Args().Get(0), amount)
	if err != nil {
		return err
	}

	printRecord(*record)
	return nil
}

func withdrawAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return &invalidUsageError{ctx, "withdraw"}
	}
	amount, err := parseAmount(ctx.Args().Get(1), ctx.Bool("btc"))
	if err != nil {
		return err
	}

	svc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := svc.Withdraw(context.Background(), ctx.Args().Get(0), amount)
	if err != nil {
		return err
	}

	printRecord(*record)
	return nil
}

func printRecord(record domain.TransactionRecord) {
	printJSON(recordToMap(record))
}

func recordToMap(record domain.TransactionRecord) map[string]interface{} {
	m := map[string]interface{}{
		"txid":       record.TxID,
		"type":       record.Kind,
		"to":         record.To,
		"amount":     record.Amount,
		"amount_btc": formatBtc(record.Amount),
		"nonce":      record.Nonce,
		"timestamp":  record.Timestamp,
	}
	if record.IsTransfer() {
		m["fee_amount"] = record.FeeAmount
	}
	return m
}
