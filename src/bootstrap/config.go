package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	EnginePath    string `mapstructure:"ENGINE_PATH"`
	ServerPort    string `mapstructure:"SERVER_PORT"`
	RedisUrl      string `mapstructure:"REDIS_URL"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogConsole    bool   `mapstructure:"LOG_CONSOLE"`
	LogDev        bool   `mapstructure:"LOG_DEV"`
	AnalysisDepth int    `mapstructure:"ANALYSIS_DEPTH"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)
	viper.SetDefault("ENGINE_PATH", "stockfish")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ANALYSIS_DEPTH", 15)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
