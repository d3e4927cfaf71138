package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Domain  DomainConfig  `mapstructure:"domain"`
	Auction AuctionConfig `mapstructure:"auction"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Genesis GenesisConfig `mapstructure:"genesis"`
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Address string `mapstructure:"address"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level string `mapstructure:"level"` // zap level name: debug, info, warn, error
}

// DomainConfig identifies this deployment for signature scoping. Requests
// signed for a different name, version, chain id or instance address are
// rejected.
type DomainConfig struct {
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	ChainID         uint64 `mapstructure:"chain_id"`
	InstanceAddress string `mapstructure:"instance_address"`
}

// AuctionConfig holds auction policy knobs.
type AuctionConfig struct {
	MaxDuration time.Duration `mapstructure:"max_duration"`
}

// AdminConfig holds the credentials for the authenticated admin endpoints.
// Empty values disable them.
type AdminConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// GenesisConfig seeds state at boot: value balances by address and
// pre-minted assets.
type GenesisConfig struct {
	Balances map[string]string `mapstructure:"balances"` // address -> decimal amount
	Assets   []GenesisAsset    `mapstructure:"assets"`
}

// GenesisAsset is one asset minted at boot.
type GenesisAsset struct {
	Owner string `mapstructure:"owner"`
	ID    uint64 `mapstructure:"id"`
	URI   string `mapstructure:"uri"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (config Config, err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("domain.name", "AuctionHouse")
	viper.SetDefault("domain.version", "1")
	viper.SetDefault("domain.chain_id", 1)
	viper.SetDefault("domain.instance_address", "0x00000000000000000000000000000000000a0c71")
	viper.SetDefault("auction.max_duration", "168h")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return
		}
	}

	err = viper.Unmarshal(&config)
	return
}
