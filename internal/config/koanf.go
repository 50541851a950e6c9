// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/snapkeeper/config.yaml",
	"/etc/snapkeeper/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "SNAPKEEPER_CONFIG"

// EnvPrefix is the prefix for all Snapkeeper environment variables.
const EnvPrefix = "SNAPKEEPER_"

// Load builds the effective configuration. An explicit path (from the
// -config flag) takes precedence over ConfigPathEnvVar and the default
// search paths. A missing config file is not an error; env vars and
// defaults still apply.
func Load(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := resolveConfigPath(explicitPath)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveConfigPath determines which config file to use, if any.
func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		return envPath
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// The first underscore after the prefix separates the section from the key,
// so later underscores survive as part of the key name:
//
//	SNAPKEEPER_DATABASE_NAME         -> database.name
//	SNAPKEEPER_SNAPSHOT_MAX_BACKUPS  -> snapshot.max_backups
//	SNAPKEEPER_DATABASE_PASSWORD_FILE -> database.password_file
func envTransformFunc(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	// SNAPKEEPER_CONFIG is handled by resolveConfigPath, not as a key.
	if key == "config" {
		return ""
	}

	return strings.Replace(key, "_", ".", 1)
}
