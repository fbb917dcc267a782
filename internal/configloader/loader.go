// SPDX-License-Identifier: AGPL-3.0-or-later

// Package configloader reads the hb tool configuration file.
package configloader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/paths"
	"github.com/ohos-build/hb/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName is looked up in the working directory when neither the
	// --config flag nor HB_CONFIG name a file.
	DefaultFileName = "hb.yaml"
	// EnvConfig names the environment variable holding a config path.
	EnvConfig = "HB_CONFIG"

	defaultArgsDir         = "build/hb/resources/args"
	defaultOutDir          = "out"
	defaultPrebuiltsConfig = "build/prebuilts_download_config.json"
	defaultLogName         = "build.log"
	defaultOSLevel         = "standard"
	defaultPython          = "python3"
)

// ConfigPath picks the config file: explicit flag value, then HB_CONFIG,
// then ./hb.yaml. The second return reports whether the choice was explicit;
// an explicit file must exist.
func ConfigPath(flagValue string) (string, bool) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, true
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, true
	}
	return DefaultFileName, false
}

// Resolve loads the config chosen by ConfigPath.
func Resolve(flagValue string) (*types.Config, error) {
	path, explicit := ConfigPath(flagValue)
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return Defaults("")
	}
	return nil, err
}

// Load reads path and fills unset fields with defaults relative to the
// configured root_path (or the directory holding the file).
func Load(path string) (*types.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg types.Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, hberr.Wrap(hberr.CodeSchemaIO, err, "decode config %s", path)
	}
	if cfg.RootPath == "" {
		abs, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.RootPath = abs
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns a config rooted at root, or the working directory when
// root is empty.
func Defaults(root string) (*types.Config, error) {
	cfg := types.Config{RootPath: root}
	if cfg.RootPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working dir: %w", err)
		}
		cfg.RootPath = wd
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *types.Config) error {
	root := cfg.RootPath
	if cfg.OutPath == "" {
		cfg.OutPath = defaultOutDir
	}
	cfg.OutPath = paths.ResolveUnder(root, cfg.OutPath)
	if cfg.ArgsDir == "" {
		cfg.ArgsDir = defaultArgsDir
	}
	cfg.ArgsDir = paths.ResolveUnder(root, cfg.ArgsDir)
	if cfg.PrebuiltsConfig == "" {
		cfg.PrebuiltsConfig = defaultPrebuiltsConfig
	}
	cfg.PrebuiltsConfig = paths.ResolveUnder(root, cfg.PrebuiltsConfig)
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(cfg.OutPath, defaultLogName)
	}
	cfg.LogPath = paths.ResolveUnder(root, cfg.LogPath)
	if cfg.OSLevel == "" {
		cfg.OSLevel = defaultOSLevel
	}
	if cfg.Python == "" {
		cfg.Python = defaultPython
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
		cfg.LogFormat = "text"
	case "json":
		cfg.LogFormat = "json"
	default:
		return hberr.Config(hberr.CodeSchemaIO, "unsupported log_format %q", cfg.LogFormat)
	}

	// Data directory precedence: config file > DATA_DIR env > platform default.
	if cfg.DataDir != "" {
		paths.SetDataDirOverride(paths.ResolveUnder(root, cfg.DataDir))
	}
	cfg.DataDir = paths.DataDir()
	return nil
}
