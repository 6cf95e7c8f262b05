// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Picks    PicksConfig    `mapstructure:"picks"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr       string   `mapstructure:"addr"`
	AdminToken string   `mapstructure:"admin_token"`
	CORSOrigin []string `mapstructure:"cors_origins"`
	Timezone   string   `mapstructure:"timezone"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds the connection settings for the sale-table feed and
// jackpot announcements.
type RedisConfig struct {
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	SaleKey        string `mapstructure:"sale_key"`
	JackpotChannel string `mapstructure:"jackpot_channel"`
}

// EconomyConfig holds the coin economy constants.
type EconomyConfig struct {
	NewUserBonus   int64  `mapstructure:"new_user_bonus"`
	DailyBonus     int64  `mapstructure:"daily_bonus"`
	SpinCost       int64  `mapstructure:"spin_cost"`
	BasePayout     int64  `mapstructure:"base_payout"`
	MinSlotSymbols int    `mapstructure:"min_slot_symbols"`
	PoisonLabel    string `mapstructure:"poison_label"`
}

// PicksConfig holds prediction game configuration.
type PicksConfig struct {
	CoinsPerCorrect int64 `mapstructure:"coins_per_correct"`
	RequireAllPicks bool  `mapstructure:"require_all_picks"`
	MinGames        int   `mapstructure:"min_games"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. SERVER_ADDR, DATABASE_HOST, ECONOMY_DAILY_BONUS.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.timezone", "America/New_York")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "usaleague")
	v.SetDefault("database.name", "usaleague")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.sale_key", "shop:sale")
	v.SetDefault("redis.jackpot_channel", "slots:jackpot")

	// Economy defaults
	v.SetDefault("economy.new_user_bonus", 100)
	v.SetDefault("economy.daily_bonus", 50)
	v.SetDefault("economy.spin_cost", 1)
	v.SetDefault("economy.base_payout", 500)
	v.SetDefault("economy.min_slot_symbols", 3)
	v.SetDefault("economy.poison_label", "hopedogo")

	// Picks defaults
	v.SetDefault("picks.coins_per_correct", 10)
	v.SetDefault("picks.require_all_picks", true)
	v.SetDefault("picks.min_games", 1)
}
