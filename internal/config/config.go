package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/thanhpk/randstr"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// HTTPListeningPortKey is the port where the HTTP interface will listen on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// JWTSecretKey is the HMAC secret used to sign and verify bearer tokens.
	// A random one is generated at every start if not set.
	JWTSecretKey = "JWT_SECRET"
	// AdminTokenTTLKey is the validity of the admin token written to the
	// datadir at startup, 0 for no expiry
	AdminTokenTTLKey = "ADMIN_TOKEN_TTL"
	// AdminAccountKey is the account granted every permission at startup
	AdminAccountKey = "ADMIN_ACCOUNT"
	// DeployerAccountKey is the account the contracts of the simulated host
	// are deployed from
	DeployerAccountKey = "DEPLOYER_ACCOUNT"
	// BeneficiaryKey is the account receiving the fees of the orders,
	// defaults to the admin account
	BeneficiaryKey = "BENEFICIARY"
	// BuyFeePctKey is the fee on buy orders, as a fraction of 10^18
	BuyFeePctKey = "BUY_FEE_PCT"
	// SellFeePctKey is the fee on sell orders, as a fraction of 10^18
	SellFeePctKey = "SELL_FEE_PCT"
	// GatedKey makes the market maker start closed until explicitly opened
	GatedKey = "GATED"
	// CollateralsKey is the comma separated list of the names of the
	// collateral tokens deployed and whitelisted at first start
	CollateralsKey = "COLLATERALS"
	// VirtualSupplyKey is the virtual supply of the collaterals whitelisted at
	// first start
	VirtualSupplyKey = "VIRTUAL_SUPPLY"
	// VirtualBalanceKey is the virtual balance of the collaterals whitelisted
	// at first start
	VirtualBalanceKey = "VIRTUAL_BALANCE"
	// ReserveRatioKey is the reserve ratio, in parts per million, of the
	// collaterals whitelisted at first start
	ReserveRatioKey = "RESERVE_RATIO"
	// OrdersPerSecondKey caps the rate of order requests, 0 for no limit
	OrdersPerSecondKey = "ORDERS_PER_SECOND"
	// FaucetMaxAmountKey is the max amount funded by a single faucet request,
	// 0 disables the faucet
	FaucetMaxAmountKey = "FAUCET_MAX_AMOUNT"
	// WebhookTimeoutKey is the timeout of every webhook delivery
	WebhookTimeoutKey = "WEBHOOK_TIMEOUT"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for dumping memory statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation       = "db"
	ProfilerLocation = "stats"
	AdminTokenFile   = "admin.jwt"

	DBInMemory = "inmemory"
	DBBadger   = "badger"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("bondingd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("BONDING")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(HTTPListeningPortKey, 9090)
	vip.SetDefault(JWTSecretKey, randstr.Hex(32))
	vip.SetDefault(AdminTokenTTLKey, 0)
	vip.SetDefault(DeployerAccountKey, "0x00000000000000000000000000000000000000d0")
	vip.SetDefault(BuyFeePctKey, "0")
	vip.SetDefault(SellFeePctKey, "0")
	vip.SetDefault(GatedKey, false)
	vip.SetDefault(CollateralsKey, "DAI")
	vip.SetDefault(VirtualSupplyKey, "0")
	vip.SetDefault(VirtualBalanceKey, "0")
	vip.SetDefault(ReserveRatioKey, domain.RatioBase/10)
	vip.SetDefault(OrdersPerSecondKey, 0)
	vip.SetDefault(FaucetMaxAmountKey, "0")
	vip.SetDefault(WebhookTimeoutKey, 15*time.Second)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

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

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetAddress returns the account set for the given key. Validation makes
// sure it's well formed.
func GetAddress(key string) common.Address {
	return common.HexToAddress(GetString(key))
}

// GetAmount returns the base-10 integer set for the given key, zero if not
// valid.
func GetAmount(key string) *uint256.Int {
	n, err := uint256.FromDecimal(GetString(key))
	if err != nil {
		return new(uint256.Int)
	}
	return n
}

// GetCollaterals returns the names of the collateral tokens, without blanks.
func GetCollaterals() []string {
	names := make([]string, 0)
	for _, name := range strings.Split(GetString(CollateralsKey), ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func GetBeneficiary() common.Address {
	if vip.IsSet(BeneficiaryKey) {
		return GetAddress(BeneficiaryKey)
	}
	return GetAddress(AdminAccountKey)
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBInMemory && dbType != DBBadger {
		return fmt.Errorf(
			"%s must be either '%s' or '%s'", DBTypeKey, DBInMemory, DBBadger,
		)
	}

	if !vip.IsSet(AdminAccountKey) {
		return fmt.Errorf("missing admin account")
	}
	for _, key := range []string{
		AdminAccountKey, DeployerAccountKey, BeneficiaryKey,
	} {
		if !vip.IsSet(key) {
			continue
		}
		if !common.IsHexAddress(GetString(key)) {
			return fmt.Errorf("%s is not a valid account", key)
		}
	}
	if GetBeneficiary() == (common.Address{}) {
		return fmt.Errorf("beneficiary must not be the zero account")
	}

	pctBase := uint256.NewInt(domain.PctBase)
	for _, key := range []string{BuyFeePctKey, SellFeePctKey} {
		pct, err := uint256.FromDecimal(GetString(key))
		if err != nil {
			return fmt.Errorf("%s must be a base-10 integer: %s", key, err)
		}
		if !pct.Lt(pctBase) {
			return fmt.Errorf("%s must be lower than %d", key, domain.PctBase)
		}
	}

	for _, key := range []string{
		VirtualSupplyKey, VirtualBalanceKey, FaucetMaxAmountKey,
	} {
		if _, err := uint256.FromDecimal(GetString(key)); err != nil {
			return fmt.Errorf("%s must be a base-10 integer: %s", key, err)
		}
	}

	ratio := GetInt(ReserveRatioKey)
	if ratio <= 0 || ratio > domain.RatioBase {
		return fmt.Errorf(
			"%s must be in range (0, %d]", ReserveRatioKey, domain.RatioBase,
		)
	}

	if GetInt(OrdersPerSecondKey) < 0 {
		return fmt.Errorf("%s must not be negative", OrdersPerSecondKey)
	}
	if GetInt(StatsIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", StatsIntervalKey)
	}
	if len(GetString(JWTSecretKey)) <= 0 {
		return fmt.Errorf("missing jwt secret")
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == DBBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	} else if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
