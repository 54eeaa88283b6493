package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var address = cli.Command{
	Name:   "address",
	Usage:  "print the native address receiving transfers",
	Action: addressAction,
}

var depositaddress = cli.Command{
	Name:   "deposit-address",
	Usage:  "print the bitcoin address to deposit funds into the peg",
	Action: depositAddressAction,
}

func addressAction(_ *cli.Context) error {
	svc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	printJSON(map[string]string{"address": svc.ReceiveAddress()})
	return nil
}

func depositAddressAction(_ *cli.Context) error {
	svc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	addr, err := svc.DepositAddress(context.Background())
	if err != nil {
		return err
	}

	printJSON(map[string]string{"deposit_address": addr})
	return nil
}
