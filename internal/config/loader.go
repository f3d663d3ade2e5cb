package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"irisml/internal/tracking"
)

const (
	EnvPrefix = "IRIS_"
	EnvConfig = "IRIS_CONFIG"
	// EnvCI is set by CI runners; any non-empty value selects the Local
	// tracking endpoint.
	EnvCI = "CI"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file named by IRIS_CONFIG, if set
//  3. IRIS_* environment variables (IRIS_DATA_PATH -> data_path)
//
// The tracking endpoint is resolved from CI afterwards.
func Load(_ context.Context) (*Config, error) {
	return LoadWith(os.LookupEnv)
}

// LoadWith is Load with the config file and CI flag read through lookup.
// IRIS_* overrides always come from the process environment.
func LoadWith(lookup func(string) (string, bool)) (*Config, error) {
	k := koanf.New(".")

	if path, ok := lookup(EnvConfig); ok && path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	cfg.Endpoint = ResolveEndpoint(lookup)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveEndpoint selects Local under CI and Remote otherwise.
func ResolveEndpoint(lookup func(string) (string, bool)) tracking.Endpoint {
	if v, ok := lookup(EnvCI); ok && v != "" {
		return tracking.Local
	}
	return tracking.Remote
}

func Validate(c *Config) error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
