package config

import (
	"time"

	"github.com/MarwanIssa100/SparkUp/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Chain  ChainConfig  `mapstructure:"chain"`
	Policy PolicyConfig `mapstructure:"policy"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// ChainConfig single chain connection settings
type ChainConfig struct {
	ChainId       int64         `mapstructure:"chain_id"`      // chain ID used for transaction signing
	RpcUrl        string        `mapstructure:"rpc_url"`       // RPC node URL
	ContractAddr  string        `mapstructure:"contract_addr"` // SparkUp contract address
	PrivateKey    string        `mapstructure:"private_key"`   // session key; empty means read-only
	Confirmations int           `mapstructure:"confirmations"` // blocks before a receipt counts as confirmed
	PollInterval  time.Duration `mapstructure:"poll_interval"` // receipt poll interval
}

// PolicyConfig product policy knobs, not protocol constants
type PolicyConfig struct {
	CampaignDuration time.Duration `mapstructure:"campaign_duration"` // deadline offset for new ideas
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`     // per snapshot batch
	FetchWorkers     int           `mapstructure:"fetch_workers"`     // parallel record reads
	ReconcileTimeout time.Duration `mapstructure:"reconcile_timeout"` // pending command goes stale after this
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`  // periodic full snapshot
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout, stderr, file
	File   string `mapstructure:"file"`   // log file path when output is file
}

// GetLevel implements the logger.LogConfig interface
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput implements the logger.LogConfig interface
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile implements the logger.LogConfig interface
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sparkup")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("chain.chain_id", 534351) // Scroll Sepolia
	viper.SetDefault("chain.confirmations", 1)
	viper.SetDefault("chain.poll_interval", "2s")
	viper.SetDefault("policy.campaign_duration", "720h")
	viper.SetDefault("policy.fetch_timeout", "15s")
	viper.SetDefault("policy.fetch_workers", 8)
	viper.SetDefault("policy.reconcile_timeout", "2m")
	viper.SetDefault("policy.refresh_interval", "30s")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
