// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Contract genesis: owner, metadata and initial balances, applied once
//     when the contract database is created
//   - Node settings: runtime configuration, can change between restarts
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Node Configuration (runtime settings)
// =============================================================================

// Config holds node runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Contract genesis file (default: <datadir>/<network>/contract.json)
	GenesisFile string `conf:"genesis"`

	// RPC server
	RPC RPCConfig

	// Payout dispatcher
	Dispatch DispatchConfig

	// Storage maintenance
	Storage StorageConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// DispatchConfig holds transfer dispatcher settings.
type DispatchConfig struct {
	Enabled  bool          `conf:"dispatch.enabled"`
	Interval time.Duration `conf:"dispatch.interval"`
}

// StorageConfig holds database maintenance settings.
type StorageConfig struct {
	GCInterval time.Duration `conf:"storage.gcinterval"` // 0 disables value log GC
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.artdressup
//	macOS:   ~/Library/Application Support/ArtDressUp
//	Windows: %APPDATA%\ArtDressUp
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".artdressup"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "ArtDressUp")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "ArtDressUp")
		}
		return filepath.Join(home, "AppData", "Roaming", "ArtDressUp")
	default:
		return filepath.Join(home, ".artdressup")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// StateDir returns the contract database directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.NetworkDataDir(), "state")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "artdressup.conf")
}

// ContractGenesisFile returns the contract genesis path.
func (c *Config) ContractGenesisFile() string {
	if c.GenesisFile != "" {
		return c.GenesisFile
	}
	return filepath.Join(c.NetworkDataDir(), "contract.json")
}
