package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Device   DeviceConfig   `mapstructure:"device"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Spending SpendingConfig `mapstructure:"spending"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DeviceConfig 设备端配置
type DeviceConfig struct {
	StoreDriver string `mapstructure:"store_driver"` // 本地存储驱动：sqlite / redis / memory
	StorePath   string `mapstructure:"store_path"`
	BackendURL  string `mapstructure:"backend_url"` // 云端 API 地址
	// 单次网络请求超时（秒）
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	// PIN 码 bcrypt 成本因子
	PinHashCost int `mapstructure:"pin_hash_cost"`
}

type SyncConfig struct {
	// 同步轮询间隔（秒）
	IntervalSeconds int `mapstructure:"interval_seconds"`
	// 联网探测间隔（秒）
	ProbeIntervalSeconds int `mapstructure:"probe_interval_seconds"`
	// 单条记录连续失败多少次后标记为 error
	MaxRetryCount int `mapstructure:"max_retry_count"`
}

// SpendingConfig 消费保护默认值
type SpendingConfig struct {
	DefaultWeeklyLimit  int64 `mapstructure:"default_weekly_limit"`
	DefaultPinThreshold int64 `mapstructure:"default_pin_threshold"`
	DefaultRequirePin   bool  `mapstructure:"default_require_pin"`
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	applyDefaults(config)

	GlobalConfig = config
	return config
}

func applyDefaults(c *Config) {
	if c.Device.RequestTimeoutSeconds <= 0 {
		c.Device.RequestTimeoutSeconds = 10
	}
	if c.Device.PinHashCost <= 0 {
		c.Device.PinHashCost = 10
	}
	if c.Sync.IntervalSeconds <= 0 {
		c.Sync.IntervalSeconds = 30
	}
	if c.Sync.ProbeIntervalSeconds <= 0 {
		c.Sync.ProbeIntervalSeconds = 5
	}
	if c.Sync.MaxRetryCount <= 0 {
		c.Sync.MaxRetryCount = 5
	}
	if c.Spending.DefaultWeeklyLimit <= 0 {
		c.Spending.DefaultWeeklyLimit = 500
	}
	if c.Spending.DefaultPinThreshold <= 0 {
		c.Spending.DefaultPinThreshold = 100
	}
}

// RequestTimeout 网络请求超时时间
func (c *DeviceConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// SyncInterval 同步轮询间隔
func (c *SyncConfig) SyncInterval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ProbeInterval 联网探测间隔
func (c *SyncConfig) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSeconds) * time.Second
}
