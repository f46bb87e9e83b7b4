package config

// This file loads the key-value settings source: a dotenv-style file next
// to the executable (or one named with --settings), overlaid by the process
// environment. Keys match the Config env tags exactly.

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SettingsFileName is the default settings file looked up in InstallDir.
const SettingsFileName = "rawflow.env"

// LoadSettings reads settings into cfg. When path is empty the default
// settings file is used and may be absent; an explicit path must exist.
// environ is in os.Environ form and takes precedence over the file.
func LoadSettings(cfg *Config, path string, environ []string) error {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(InstallDir(), SettingsFileName)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read settings %s: %w", path, err)
		}
		values = map[string]string{}
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		values[k] = v
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: values}); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	return nil
}
