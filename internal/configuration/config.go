package configuration

import (
	"cheggienexus/internal/logger"
	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
	"time"
)

type Config struct {
	ServerAddress    string
	DatabaseURI      string
	RedisAddress     string
	LogLevel         logger.Level
	LogToFile        bool
	AuthSecretKey    jwk.Key
	AdminEmail       string
	AdminPassword    string
	OpenAIKey        string
	AnthropicKey     string
	GoogleKey        string
	OpenRouterKey    string
	RollupInterval   time.Duration
	ProviderTimeout  time.Duration
	CompletionsCache bool
}

type tomlConfig struct {
	ServerAddress    string `toml:"server_address"`
	DatabaseURI      string `toml:"database_uri"`
	RedisAddress     string `toml:"redis_address"`
	LogLevel         string `toml:"log_level"`
	LogToFile        bool   `toml:"log_to_file"`
	AuthSecretKey    string `toml:"auth_secret_key"`
	AdminEmail       string `toml:"admin_email"`
	AdminPassword    string `toml:"admin_password"`
	OpenAIKey        string `toml:"openai_api_key"`
	AnthropicKey     string `toml:"anthropic_api_key"`
	GoogleKey        string `toml:"google_api_key"`
	OpenRouterKey    string `toml:"openrouter_api_key"`
	RollupInterval   string `toml:"rollup_interval"`
	ProviderTimeout  string `toml:"provider_timeout"`
	CompletionsCache bool   `toml:"completions_cache"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8900"
	}

	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.RedisAddress == "" {
		tc.RedisAddress = "localhost:6379"
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	if tc.AdminEmail == "" || tc.AdminPassword == "" {
		return nil, errors.New("admin_email and admin_password must be set")
	}

	if tc.RollupInterval == "" {
		tc.RollupInterval = "15m"
	}
	rollupInterval, err := time.ParseDuration(tc.RollupInterval)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse rollup_interval: %s", tc.RollupInterval)
	}
	if rollupInterval < 15*time.Second {
		return nil, errors.Errorf("rollup_interval too short (%v), minimum interval: 15s", rollupInterval)
	}

	if tc.ProviderTimeout == "" {
		tc.ProviderTimeout = "60s"
	}
	providerTimeout, err := time.ParseDuration(tc.ProviderTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse provider_timeout: %s", tc.ProviderTimeout)
	}

	return &Config{
		ServerAddress:    tc.ServerAddress,
		DatabaseURI:      tc.DatabaseURI,
		RedisAddress:     tc.RedisAddress,
		LogLevel:         logLevel,
		LogToFile:        tc.LogToFile,
		AuthSecretKey:    authSecretKey,
		AdminEmail:       tc.AdminEmail,
		AdminPassword:    tc.AdminPassword,
		OpenAIKey:        tc.OpenAIKey,
		AnthropicKey:     tc.AnthropicKey,
		GoogleKey:        tc.GoogleKey,
		OpenRouterKey:    tc.OpenRouterKey,
		RollupInterval:   rollupInterval,
		ProviderTimeout:  providerTimeout,
		CompletionsCache: tc.CompletionsCache,
	}, nil
}
