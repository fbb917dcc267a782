// SPDX-License-Identifier: AGPL-3.0-or-later
package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ohos-build/hb/internal/hberr"
	"github.com/stretchr/testify/require"
)

const prebuiltsJSON = `{
  "linux": {
    "x86_64": {
      "copy_config": [
        {"unzip_filename": "ninja", "unzip_dir": "prebuilts/build-tools/linux-x86/bin"},
        {"unzip_filename": "gn", "unzip_dir": "prebuilts/build-tools/linux-x86/bin"}
      ]
    },
    "aarch64": {
      "copy_config": [
        {"unzip_filename": "gn", "unzip_dir": "prebuilts/build-tools/linux-aarch64/bin"}
      ]
    }
  },
  "darwin": {
    "x86_64": {
      "copy_config": [
        {"unzip_filename": "ninja", "unzip_dir": "prebuilts/build-tools/darwin-x86/bin"}
      ]
    }
  }
}`

func writePrebuilts(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	table := filepath.Join(root, "build", "prebuilts_download_config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(table), 0o755))
	require.NoError(t, os.WriteFile(table, []byte(prebuiltsJSON), 0o644))
	return root, table
}

func TestLocateFindsExecutable(t *testing.T) {
	root, table := writePrebuilts(t)
	dir := filepath.Join(root, "prebuilts", "build-tools", "linux-x86", "bin")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gn"), nil, 0o755))

	got, err := Locate(root, table, "linux", "amd64")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "gn"), got)
}

func TestLocateMissing(t *testing.T) {
	root, table := writePrebuilts(t)
	cases := []struct {
		name   string
		goos   string
		goarch string
	}{
		{name: "listed but absent", goos: "linux", goarch: "amd64"},
		{name: "arm64 listed but absent", goos: "linux", goarch: "arm64"},
		{name: "no gn entry", goos: "darwin", goarch: "amd64"},
		{name: "unknown host", goos: "windows", goarch: "amd64"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Locate(root, table, tc.goos, tc.goarch)
			require.ErrorIs(t, err, hberr.ErrGnMissing)
			require.Equal(t, hberr.CodeGnMissing, hberr.CodeOf(err))
		})
	}
}

func TestLocateMissingTable(t *testing.T) {
	_, err := Locate(t.TempDir(), filepath.Join(t.TempDir(), "absent.json"), "linux", "amd64")
	require.ErrorIs(t, err, hberr.ErrGnMissing)
}

func TestHostKeys(t *testing.T) {
	osKey, arch := hostKeys("darwin", "arm64")
	require.Equal(t, "darwin", osKey)
	require.Equal(t, "arm64", arch)
	_, arch = hostKeys("linux", "arm64")
	require.Equal(t, "aarch64", arch)
}
