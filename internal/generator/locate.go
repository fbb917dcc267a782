// SPDX-License-Identifier: AGPL-3.0-or-later
package generator

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/ohos-build/hb/internal/hberr"
)

const gnFileName = "gn"

type copyConfig struct {
	UnzipFilename string `json:"unzip_filename"`
	UnzipDir      string `json:"unzip_dir"`
}

type hostEntry struct {
	CopyConfig []copyConfig `json:"copy_config"`
}

// prebuiltsTable mirrors build/prebuilts_download_config.json:
// os -> machine -> copy_config entries.
type prebuiltsTable map[string]map[string]hostEntry

// hostKeys maps Go platform names onto the uname-style keys used by the
// prebuilts table.
func hostKeys(goos, goarch string) (string, string) {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "386":
		arch = "i686"
	case "arm64":
		if goos == "linux" {
			arch = "aarch64"
		}
	}
	return goos, arch
}

// Locate finds the gn executable listed in the prebuilts table for the given
// host. The executable must exist on disk.
func Locate(rootPath, table, goos, goarch string) (string, error) {
	data, err := os.ReadFile(table)
	if err != nil {
		return "", &hberr.Error{
			Kind:    hberr.KindResourceMissing,
			Code:    hberr.CodeGnMissing,
			Message: "cannot read prebuilts config " + table,
			Err:     err,
		}
	}
	var cfg prebuiltsTable
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", hberr.Wrap(hberr.CodeSchemaIO, err, "decode prebuilts config %s", table)
	}

	osKey, archKey := hostKeys(goos, goarch)
	entry, ok := cfg[osKey][archKey]
	if !ok {
		return "", hberr.Missing(hberr.CodeGnMissing, "no prebuilts entry for %s/%s in %s", osKey, archKey, table)
	}
	gnPath := ""
	for _, c := range entry.CopyConfig {
		if c.UnzipFilename == gnFileName {
			gnPath = filepath.Join(rootPath, c.UnzipDir, gnFileName)
			break
		}
	}
	if gnPath == "" {
		return "", hberr.Missing(hberr.CodeGnMissing, "There is no gn entry for %s/%s in %s", osKey, archKey, table)
	}
	if err := checkExecutable(gnPath); err != nil {
		return "", err
	}
	return gnPath, nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return hberr.Missing(hberr.CodeGnMissing, "There is no gn executable file at %s", path)
	}
	if err != nil {
		return &hberr.Error{Kind: hberr.KindResourceMissing, Code: hberr.CodeGnMissing, Message: "stat gn executable", Err: err}
	}
	return nil
}
