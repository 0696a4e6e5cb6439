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
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Business BusinessConfig `mapstructure:"business"`
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

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	WithdrawResult string `mapstructure:"withdraw_result"`
}

// BusinessConfig 业务参数
//
// 锁的等待/租约时间是构造参数，不走全局状态，方便测试时换成任意值。
// withdraw_lock_enabled 为 false 时走无锁对照实现，仅用于并发实验，
// 生产环境必须保持开启。
type BusinessConfig struct {
	WithdrawLockEnabled bool `mapstructure:"withdraw_lock_enabled"`
	LockWaitSeconds     int  `mapstructure:"lock_wait_seconds"`
	LockLeaseSeconds    int  `mapstructure:"lock_lease_seconds"`
	MaxRetryCount       int  `mapstructure:"max_retry_count"`
}

// LockWait 等锁上限，缺省 1 秒
func (c *BusinessConfig) LockWait() time.Duration {
	if c.LockWaitSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.LockWaitSeconds) * time.Second
}

// LockLease 持锁租约上限，缺省 3 秒
// 租约必须明显大于临界区耗时，否则会出现互斥空窗
func (c *BusinessConfig) LockLease() time.Duration {
	if c.LockLeaseSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.LockLeaseSeconds) * time.Second
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

	GlobalConfig = config
	return config
}
