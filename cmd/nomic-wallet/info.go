package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var info = cli.Command{
	Name:   "info",
	Usage:  "get addresses, balance and nonce of the wallet account",
	Action: infoAction,
}

func infoAction(_ *cli.Context) error {
	svc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	walletInfo, err := svc.Info(context.Background())
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"address":         walletInfo.Address,
		"deposit_address": walletInfo.DepositAddress,
		"nonce":           walletInfo.Nonce,
		"balance":         walletInfo.Balance,
		"balance_btc":     formatBtc(walletInfo.Balance),
	})
	return nil
}
