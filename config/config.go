// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package config

import (
	"flag"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/vortexdb/memcatalog/pkg/log"
)

const (
	defaultDefaultSchema                 = "default"
	defaultTokenBucketFillRate           = 1000
	defaultTokenBucketBurstEventCapacity = 2000
	defaultEnableLimiter                 = false
)

type LimiterConfig struct {
	Enable                        bool `toml:"enable"`
	TokenBucketFillRate           int  `toml:"token-bucket-fill-rate"`
	TokenBucketBurstEventCapacity int  `toml:"token-bucket-burst-event-capacity"`
}

type Config struct {
	Log log.Config `toml:"log"`

	// DefaultSchema is registered at catalog construction and can never be
	// dropped.
	DefaultSchema string        `toml:"default-schema"`
	Limiter       LimiterConfig `toml:"limiter"`
}

func MakeDefaultConfig() Config {
	return Config{
		Log:           *log.DefaultConfig(),
		DefaultSchema: defaultDefaultSchema,
		Limiter: LimiterConfig{
			Enable:                        defaultEnableLimiter,
			TokenBucketFillRate:           defaultTokenBucketFillRate,
			TokenBucketBurstEventCapacity: defaultTokenBucketBurstEventCapacity,
		},
	}
}

// Parser parses the config from command line arguments and an optional TOML
// file named by --config.
type Parser struct {
	flagSet        *flag.FlagSet
	cfg            Config
	configFilePath string
}

func MakeConfigParser() (*Parser, error) {
	flagSet := flag.NewFlagSet("memcatalog", flag.ContinueOnError)
	parser := &Parser{
		flagSet: flagSet,
		cfg:     MakeDefaultConfig(),
	}
	flagSet.StringVar(&parser.configFilePath, "config", "", "config file path")

	return parser, nil
}

func (p *Parser) Parse(arguments []string) (*Config, error) {
	if err := p.flagSet.Parse(arguments); err != nil {
		return nil, ErrInvalidCommandArgs.WithCausef("original arguments:%v, parse err:%v", arguments, err)
	}

	if p.configFilePath != "" {
		if err := p.parseConfigFromToml(); err != nil {
			return nil, err
		}
	}

	return &p.cfg, nil
}

func (p *Parser) parseConfigFromToml() error {
	raw, err := os.ReadFile(p.configFilePath)
	if err != nil {
		return errors.WithMessagef(err, "read config file:%s", p.configFilePath)
	}

	if err := toml.Unmarshal(raw, &p.cfg); err != nil {
		return ErrInvalidConfigFile.WithCausef("file:%s, unmarshal err:%v", p.configFilePath, err)
	}

	return nil
}
