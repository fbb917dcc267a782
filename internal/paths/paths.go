// SPDX-License-Identifier: AGPL-3.0-or-later

// Package paths resolves where hb keeps its own state and anchors
// workspace-relative paths.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
)

const (
	appDirName     = "hb"
	envDataDir     = "DATA_DIR"
	envXDGDataHome = "XDG_DATA_HOME"
	envLocalAppDir = "LOCALAPPDATA"
)

var override atomic.Pointer[string]

// SetDataDirOverride pins the data directory, usually from the data_dir
// config key. An empty dir clears it.
func SetDataDirOverride(dir string) {
	if dir == "" {
		override.Store(nil)
		return
	}
	clean := filepath.Clean(dir)
	override.Store(&clean)
}

// DataDir returns the directory holding hb.db: the config override, then
// $DATA_DIR, then the per-user data root joined with "hb".
func DataDir() string {
	if p := override.Load(); p != nil {
		return *p
	}
	if dir := os.Getenv(envDataDir); dir != "" {
		return filepath.Clean(dir)
	}
	if root, ok := userDataRoot(); ok {
		return filepath.Join(root, appDirName)
	}
	return filepath.Join(os.TempDir(), appDirName)
}

// userDataRoot is %LOCALAPPDATA% on Windows and $XDG_DATA_HOME or
// ~/.local/share elsewhere.
func userDataRoot() (string, bool) {
	env := envXDGDataHome
	if runtime.GOOS == "windows" {
		env = envLocalAppDir
	}
	if dir := os.Getenv(env); dir != "" {
		return dir, true
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Local"), true
	}
	return filepath.Join(home, ".local", "share"), true
}

// ResolveUnder returns p unchanged when absolute, otherwise p joined onto
// root. An empty p yields an empty string.
func ResolveUnder(root, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) || root == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
