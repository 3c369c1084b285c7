package config

import (
	"os"
	"strconv"
	"time"

	"github.com/lukehollenback/kucoin/constants"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//
// Config describes where and how a client talks to the exchange. It holds only the names of the
// environment variables that carry the credentials, never the credentials themselves.
//
type Config struct {
	BaseURL   string `yaml:"base.url"`
	TimeoutS  int    `yaml:"timeout.s"`
	Debug     bool   `yaml:"debug"`
	ColorLogs bool   `yaml:"color.logs"`

	KeyEnv        string `yaml:"credentials.key.env"`
	SecretEnv     string `yaml:"credentials.secret.env"`
	PassphraseEnv string `yaml:"credentials.passphrase.env"`
}

func Default() *Config {
	return &Config{
		BaseURL:       constants.ProductionHost,
		TimeoutS:      int(constants.DefaultTimeout / time.Second),
		KeyEnv:        constants.EnvAPIKey,
		SecretEnv:     constants.EnvAPISecret,
		PassphraseEnv: constants.EnvAPIPassphrase,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

//
// FromEnv builds a config from "kucoin.*" environment variables, leaving defaults in place for
// anything that is not set.
//
func FromEnv() (*Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv("kucoin.base.url"); ok {
		cfg.BaseURL = v
	}

	if v, ok := os.LookupEnv("kucoin.timeout.s"); ok {
		timeout, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrap(err, "kucoin.timeout.s")
		}

		cfg.TimeoutS = timeout
	}

	if v, ok := os.LookupEnv("kucoin.debug"); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrap(err, "kucoin.debug")
		}

		cfg.Debug = debug
		cfg.ColorLogs = debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		return errors.New("base.url must not be empty")
	}

	if cfg.TimeoutS <= 0 {
		return errors.Errorf("timeout.s must be positive, got %d", cfg.TimeoutS)
	}

	return nil
}

func (cfg *Config) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutS) * time.Second
}

//
// LookupCredentials reads the key, secret and passphrase from the configured environment
// variables. The values are handed straight to the caller and are never stored on the Config.
//
func (cfg *Config) LookupCredentials() (key string, secret string, passphrase string, err error) {
	lookup := func(name string) (string, error) {
		value, ok := os.LookupEnv(name)
		if !ok || value == "" {
			return "", errors.Errorf("environment variable %s is not set", name)
		}

		return value, nil
	}

	if key, err = lookup(cfg.KeyEnv); err != nil {
		return "", "", "", err
	}

	if secret, err = lookup(cfg.SecretEnv); err != nil {
		return "", "", "", err
	}

	if passphrase, err = lookup(cfg.PassphraseEnv); err != nil {
		return "", "", "", err
	}

	return key, secret, passphrase, nil
}
