// SPDX-License-Identifier: AGPL-3.0-or-later

package paths

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestDataDirOverrideWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envDataDir, filepath.Join(dir, "env"))
	SetDataDirOverride(dir)
	t.Cleanup(func() { SetDataDirOverride("") })

	if got := DataDir(); got != dir {
		t.Fatalf("DataDir()=%q want %q", got, dir)
	}
}

func TestDataDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envDataDir, dir)
	SetDataDirOverride("")

	if got := DataDir(); got != dir {
		t.Fatalf("DataDir()=%q want %q", got, dir)
	}
}

func TestDataDirFromUserDataRoot(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envDataDir, "")
	t.Setenv(envXDGDataHome, dir)
	t.Setenv(envLocalAppDir, dir)
	SetDataDirOverride("")

	want := filepath.Join(dir, appDirName)
	if got := DataDir(); got != want {
		t.Fatalf("DataDir()=%q want %q", got, want)
	}
}

func TestDataDirFallsBackToHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("home layout differs on windows")
	}
	home := t.TempDir()
	t.Setenv(envDataDir, "")
	t.Setenv(envXDGDataHome, "")
	t.Setenv("HOME", home)
	SetDataDirOverride("")

	want := filepath.Join(home, ".local", "share", appDirName)
	if got := DataDir(); got != want {
		t.Fatalf("DataDir()=%q want %q", got, want)
	}
}

func TestResolveUnder(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "src", "ohos")
	abs := filepath.Join(string(filepath.Separator), "tmp", "out")
	cases := []struct {
		name string
		p    string
		want string
	}{
		{name: "empty", p: "", want: ""},
		{name: "relative", p: filepath.Join("out", "args"), want: filepath.Join(root, "out", "args")},
		{name: "absolute", p: abs, want: abs},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveUnder(root, tc.p); got != tc.want {
				t.Fatalf("ResolveUnder(%q)=%q want %q", tc.p, got, tc.want)
			}
		})
	}
}
