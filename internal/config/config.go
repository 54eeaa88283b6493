package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"

	"github.com/nomic-io/nomic-wallet/pkg/wallet"
)

const (
	// DatadirKey is the local data directory holding key and history
	DatadirKey = "DATADIR"
	// KeyFileKey is the path of the raw 32 bytes secret key file. Defaults to
	// <datadir>/privkey
	KeyFileKey = "KEY_FILE"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// AddressPrefixKey is the human readable part of native addresses
	AddressPrefixKey = "ADDRESS_PREFIX"
	// TransferFeeKey is the fee amount attached to every native transfer
	TransferFeeKey = "TRANSFER_FEE"
	// BtcNetworkKey is the bitcoin network of deposit and withdrawal addresses
	BtcNetworkKey = "BTC_NETWORK"
	// NodeEndpointKey is the base url of the node REST interface
	NodeEndpointKey = "NODE_ENDPOINT"
	// NodeRequestTimeoutKey is the timeout in milliseconds of every node request
	NodeRequestTimeoutKey = "NODE_REQUEST_TIMEOUT"
	// NodeRateLimitKey is the max number of node requests per second
	NodeRateLimitKey = "NODE_RATE_LIMIT"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"

	// DBBadger persists the history on disk
	DBBadger = "badger"
	// DBInMemory keeps the history for the lifetime of the process
	DBInMemory = "inmemory"

	DbLocation     = "db"
	keyFileName    = "privkey"
	defaultNetwork = "testnet"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("nomic-wallet", false)

	networks = map[string]*chaincfg.Params{
		"mainnet": &chaincfg.MainNetParams,
		"testnet": &chaincfg.TestNet3Params,
		"regtest": &chaincfg.RegressionNetParams,
		"signet":  &chaincfg.SigNetParams,
		"simnet":  &chaincfg.SimNetParams,
	}
)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("NOMIC_WALLET")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(AddressPrefixKey, wallet.DefaultAddressPrefix)
	vip.SetDefault(TransferFeeKey, wallet.DefaultTransferFee)
	vip.SetDefault(BtcNetworkKey, defaultNetwork)
	vip.SetDefault(NodeEndpointKey, "http://localhost:8080")
	vip.SetDefault(NodeRequestTimeoutKey, 15000)
	vip.SetDefault(NodeRateLimitKey, 10)
	vip.SetDefault(DBTypeKey, DBBadger)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

// GetKeyFile returns the configured key path, falling back to the default
// one inside the datadir.
func GetKeyFile() string {
	if path := GetString(KeyFileKey); path != "" {
		return path
	}
	return filepath.Join(GetDatadir(), keyFileName)
}

// GetNetwork returns the chain params for the configured bitcoin network.
func GetNetwork() *chaincfg.Params {
	return networks[strings.ToLower(GetString(BtcNetworkKey))]
}

// GetNodeRequestTimeout returns the node request timeout as a duration.
func GetNodeRequestTimeout() time.Duration {
	return time.Duration(GetInt(NodeRequestTimeoutKey)) * time.Millisecond
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	prefix := strings.ToLower(GetString(AddressPrefixKey))
	if err := wallet.ValidateAddressPrefix(prefix); err != nil {
		return fmt.Errorf("%s: %s", AddressPrefixKey, err)
	}

	if vip.GetInt64(TransferFeeKey) < 0 {
		return fmt.Errorf("%s must not be negative", TransferFeeKey)
	}

	network := strings.ToLower(GetString(BtcNetworkKey))
	if _, ok := networks[network]; !ok {
		return fmt.Errorf(
			"unknown %s %s, must be one of mainnet, testnet, regtest, signet, simnet",
			BtcNetworkKey, network,
		)
	}

	if len(GetString(NodeEndpointKey)) <= 0 {
		return fmt.Errorf("missing node endpoint")
	}
	if GetInt(NodeRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", NodeRequestTimeoutKey)
	}
	if GetInt(NodeRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", NodeRateLimitKey)
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf(
			"unknown %s %s, must be either %s or %s",
			DBTypeKey, dbType, DBBadger, DBInMemory,
		)
	}

	return nil
}

func initDatadir() error {
	if err := makeDirectoryIfNotExists(GetDatadir()); err != nil {
		return err
	}
	if GetString(DBTypeKey) == DBBadger {
		return makeDirectoryIfNotExists(GetDbDir())
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0700)
	}
	return nil
}
