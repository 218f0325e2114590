package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	// Chain connection
	RPCURL          string
	ContractAddress string
	ExpectedChainID int64
	// SignerKey is a hex private key. Empty means read-only mode:
	// every write endpoint will fail, reads still work.
	SignerKey string

	// Journal database; empty host disables journaling.
	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	// Idempotency store; empty addr disables the guard.
	RedisAddr string
	RedisDB   int

	IdempTTLSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:         getenv("APP_PORT", "8080"),
		RPCURL:          getenv("RPC_URL", "http://localhost:8545"),
		ContractAddress: os.Getenv("CONTRACT_ADDRESS"),
		ExpectedChainID: 31337,
		SignerKey:       os.Getenv("SIGNER_KEY"),

		MySQLHost: os.Getenv("MYSQL_HOST"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "microloan"),
		MySQLUser: getenv("MYSQL_USER", "microloan"),
		MySQLPass: getenv("MYSQL_PASS", "microloan"),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		IdempTTLSecs: 300,
	}
	if v := os.Getenv("EXPECTED_CHAIN_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ExpectedChainID = n
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.RPCURL == "" {
		return errors.New("missing RPC_URL")
	}
	if c.ContractAddress == "" {
		return errors.New("missing CONTRACT_ADDRESS")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("invalid CONTRACT_ADDRESS %q", c.ContractAddress)
	}
	if c.JournalEnabled() {
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	}
	return nil
}

func (c *Config) JournalEnabled() bool { return c.MySQLHost != "" }

func (c *Config) IdempotencyEnabled() bool { return c.RedisAddr != "" }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME columns
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
