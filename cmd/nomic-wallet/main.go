package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/nomic-io/nomic-wallet/internal/config"
	"github.com/nomic-io/nomic-wallet/internal/core/application"
	"github.com/nomic-io/nomic-wallet/internal/core/ports"
	httpnode "github.com/nomic-io/nomic-wallet/internal/infrastructure/node/http"
	dbbadger "github.com/nomic-io/nomic-wallet/internal/infrastructure/storage/db/badger"
	"github.com/nomic-io/nomic-wallet/internal/infrastructure/storage/db/inmemory"
	"github.com/nomic-io/nomic-wallet/pkg/wallet"
)

const satsPerBtcExp = 8

var version = "dev"

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "nomic-wallet"
	app.Usage = "Command line wallet for the nomic bitcoin peg"
	app.Before = func(_ *cli.Context) error {
		if err := config.InitConfig(); err != nil {
			return err
		}
		log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
		return nil
	}
	app.Commands = append(
		app.Commands,
		&address,
		&depositaddress,
		&info,
		&send,
		&withdraw,
		&history,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func getWalletService() (application.WalletService, func(), error) {
	transferFee := config.GetUint64(config.TransferFeeKey)
	w, err := wallet.LoadOrGenerate(wallet.LoadOrGenerateOpts{
		Path:          config.GetKeyFile(),
		AddressPrefix: config.GetString(config.AddressPrefixKey),
		TransferFee:   &transferFee,
		Network:       config.GetNetwork(),
	})
	if err != nil {
		return nil, nil, err
	}

	nodeClient, err := httpnode.NewNodeClient(httpnode.Opts{
		Endpoint:       config.GetString(config.NodeEndpointKey),
		RequestTimeout: config.GetNodeRequestTimeout(),
		RateLimit:      config.GetInt(config.NodeRateLimitKey),
	})
	if err != nil {
		return nil, nil, err
	}

	repoManager, err := getRepoManager()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { repoManager.Close() }

	svc, err := application.NewWalletService(
		w, nodeClient, repoManager.TransactionRepository(),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func getRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		return inmemory.NewRepoManager(), nil
	}

	// badger is chatty at info level.
	var logger badger.Logger
	if log.IsLevelEnabled(log.DebugLevel) {
		logger = log.StandardLogger()
	}
	return dbbadger.NewRepoManager(config.GetDbDir(), logger)
}

// parseAmount reads an amount in satoshis or, if inBtc is set, in BTC with up
// to 8 decimals.
func parseAmount(str string, inBtc bool) (uint64, error) {
	amount, err := decimal.NewFromString(str)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %s", str)
	}
	if inBtc {
		amount = amount.Shift(satsPerBtcExp)
	}
	if !amount.IsInteger() || !amount.IsPositive() {
		return 0, fmt.Errorf("amount must be a positive number of satoshis")
	}

	sats := amount.BigInt()
	if !sats.IsUint64() {
		return 0, fmt.Errorf("amount %s out of range", str)
	}
	return sats.Uint64(), nil
}

// formatBtc renders an amount in satoshis as BTC.
func formatBtc(sats uint64) string {
	return decimal.NewFromBigInt(
		new(big.Int).SetUint64(sats), -satsPerBtcExp,
	).StringFixed(satsPerBtcExp)
}

func printJSON(resp interface{}) {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(jsonBytes))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[nomic-wallet] %v\n", err)
	}
	os.Exit(1)
}
