package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/thepwagner/aptkeys/pkg/launchpad"
	"github.com/thepwagner/aptkeys/pkg/repo"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "aptkeys.yml"
	defaultKeyring    = "/etc/apt/trusted.gpg.d/aptkeys.gpg"
	defaultKeyAssets  = "keys"
)

type Config struct {
	Keyring      string           `yaml:"keyring"`
	KeyAssets    string           `yaml:"keyAssets"`
	Launchpad    launchpad.Config `yaml:"launchpad"`
	Repositories repo.List        `yaml:"package-repositories"`
}

// LoadConfig reads the YAML config at path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("error decoding config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error opening config: %w", err)
	} else {
		slog.Info("no config file found, using defaults", slog.String("path", path))
	}

	if cfg.Keyring == "" {
		cfg.Keyring = defaultKeyring
	}
	if cfg.KeyAssets == "" {
		cfg.KeyAssets = defaultKeyAssets
	}
	if err := cfg.Repositories.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
