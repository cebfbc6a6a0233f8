package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Storage     StorageConfig     `mapstructure:"storage"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

type StorageConfig struct {
	File string `mapstructure:"file"`
}

type CredentialsConfig struct {
	Hash string `mapstructure:"hash"` // bcrypt | plain
	Cost int    `mapstructure:"cost"`
}

type LeaderboardConfig struct {
	Size int `mapstructure:"size"`
}

const (
	HashBcrypt = "bcrypt"
	HashPlain  = "plain"
)

// AppConfig 当前命令使用的配置，由 Load 的结果设置
var AppConfig *Config

// Load 读取配置：path 为空时找 ./config.yaml，找不到就用默认值。
// ROULETTE_ 前缀的环境变量覆盖文件中的值，如 ROULETTE_STORAGE_FILE
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("storage.file", "accountBank.txt")
	v.SetDefault("credentials.hash", HashBcrypt)
	v.SetDefault("credentials.cost", 10)
	v.SetDefault("leaderboard.size", 10)

	v.SetEnvPrefix("ROULETTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Credentials.Hash {
	case HashBcrypt, HashPlain:
	default:
		return fmt.Errorf("credentials.hash must be %q or %q, got %q", HashBcrypt, HashPlain, c.Credentials.Hash)
	}
	if c.Storage.File == "" {
		return errors.New("storage.file is empty")
	}
	if c.Leaderboard.Size < 0 {
		return fmt.Errorf("leaderboard.size must not be negative, got %d", c.Leaderboard.Size)
	}
	return nil
}
