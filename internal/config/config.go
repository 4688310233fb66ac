package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Trading    Trading    `mapstructure:"trading"`
	MarketData MarketData `mapstructure:"marketdata"`
	Logger     Logger     `mapstructure:"logger"`
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Trading holds the configuration for the order lifecycle.
type Trading struct {
	AccountID          string  `mapstructure:"account_id"`
	StartingBalance    float64 `mapstructure:"starting_balance"`
	SettlementDelaySec int     `mapstructure:"settlement_delay_sec"`
	RoundingPrecision  int32   `mapstructure:"rounding_precision"`
}

// MarketData holds the configuration for the remote daily-bars feed.
type MarketData struct {
	FeedURL        string  `mapstructure:"feed_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("trading.account_id", "primary")
	viper.SetDefault("trading.starting_balance", 10000)
	viper.SetDefault("trading.settlement_delay_sec", 60)
	viper.SetDefault("trading.rounding_precision", 2)
	viper.SetDefault("marketdata.rate_limit", 20)      // requests per second
	viper.SetDefault("marketdata.rate_limit_burst", 5) // burst size

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
