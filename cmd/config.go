package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the persistent flags; pointer fields tell a value
// that is present apart from one that is zero
type fileConfig struct {
	DB        string `yaml:"db"`
	Threshold *int   `yaml:"threshold"`
	Workers   *int   `yaml:"workers"`
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".neardup", "config.yaml")
}

// applyConfigFile fills persistent flags the user did not set from the
// YAML config file. Flags given on the command line always win. A
// missing default config is fine; a missing --config path is an error.
func applyConfigFile(cmd *cobra.Command) error {
	path := cfgFile
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	flags := cmd.Root().PersistentFlags()
	if cfg.DB != "" && !flags.Changed("db") {
		dbPath = cfg.DB
	}
	if cfg.Threshold != nil && !flags.Changed("threshold") {
		threshold = *cfg.Threshold
	}
	if cfg.Workers != nil && !flags.Changed("workers") {
		workers = *cfg.Workers
	}
	return nil
}
