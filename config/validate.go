package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MinJWTSecretLength bounds the HS256 signing secret.
var MinJWTSecretLength = 32

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	if err := validateAddress("ledger.Owner", c.Ledger.Owner); err != nil {
		return err
	}
	if err := validateAddress("ledger.Platform", c.Ledger.Platform); err != nil {
		return err
	}
	if strings.TrimSpace(c.Ledger.Deployer) != "" {
		if err := validateAddress("ledger.Deployer", c.Ledger.Deployer); err != nil {
			return err
		}
	}
	switch c.Storage {
	case "leveldb", "bolt":
	default:
		return fmt.Errorf("storage: unsupported backend %q", c.Storage)
	}
	if len(c.RPC.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("rpc: JWTSecret must be at least %d bytes", MinJWTSecretLength)
	}
	switch c.Indexer.Driver {
	case "", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Indexer.DSN) == "" {
			return fmt.Errorf("indexer: postgres driver requires DSN")
		}
	default:
		return fmt.Errorf("indexer: unsupported driver %q", c.Indexer.Driver)
	}
	return nil
}

func validateAddress(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !common.IsHexAddress(value) {
		return fmt.Errorf("%s: invalid address %q", field, value)
	}
	if common.HexToAddress(value) == (common.Address{}) {
		return fmt.Errorf("%s must not be the zero address", field)
	}
	return nil
}

// OwnerAddress returns the configured registry owner.
func (l Ledger) OwnerAddress() common.Address { return common.HexToAddress(strings.TrimSpace(l.Owner)) }

// PlatformAddress returns the configured platform payee.
func (l Ledger) PlatformAddress() common.Address {
	return common.HexToAddress(strings.TrimSpace(l.Platform))
}

// DeployerAddress returns the splitter derivation seed.
func (l Ledger) DeployerAddress() common.Address {
	return common.HexToAddress(strings.TrimSpace(l.Deployer))
}
