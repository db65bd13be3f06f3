package main

import (
	"fmt"
	"strings"

	"referral-contest-bot/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Telegram TelegramConfig `yaml:"telegram"`
	Contest  ContestConfig  `yaml:"contest"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"botToken"`
	BotUsername string `yaml:"botUsername"`
	// Group is the contest group username without the @. Empty disables
	// the membership gate.
	Group    string  `yaml:"group"`
	AdminIDs []int64 `yaml:"adminIDs"`
}

type ContestConfig struct {
	MinReferrals   int    `yaml:"minReferrals"`
	ReferralSecret string `yaml:"referralSecret"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.SetDefault("logLevel", "info")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("contest.minReferrals", 5)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.Telegram.BotUsername == "" {
		return nil, fmt.Errorf("telegram bot username is required")
	}
	if cfg.Contest.ReferralSecret == "" {
		return nil, fmt.Errorf("referral secret is required")
	}
	if cfg.Contest.MinReferrals < 1 {
		return nil, fmt.Errorf("minReferrals must be at least 1")
	}

	return &cfg, nil
}
