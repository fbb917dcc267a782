//go:build !windows

// SPDX-License-Identifier: AGPL-3.0-or-later
package e2e

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var hbBinary string

func TestMain(m *testing.M) {
	bin, err := buildHBBinary()
	if err != nil {
		panic(err)
	}
	hbBinary = bin
	code := m.Run()
	_ = os.RemoveAll(filepath.Dir(hbBinary))
	os.Exit(code)
}

func TestCLISetThenEnvPersists(t *testing.T) {
	workspace := setupWorkspace(t)

	runCommand(t, workspace, hbBinary, "set", "product", "--product-name", "rk3568")

	var schema map[string]struct {
		ArgDefault any `json:"argDefault"`
	}
	data := mustReadFile(t, filepath.Join(workspace, "args", "setargs.json"))
	if err := json.Unmarshal([]byte(data), &schema); err != nil {
		t.Fatalf("decode setargs.json: %v\n%s", err, data)
	}
	if schema["product_name"].ArgDefault != "rk3568" {
		t.Fatalf("product not persisted: %v", schema["product_name"].ArgDefault)
	}

	out := runCommand(t, workspace, hbBinary, "env", "--check", "--not-an-env-option")
	got := normalizeTableOutput(out)
	want := "NAME\tTYPE\tVALUE\ncheck\tbool\ttrue"
	if got != want {
		t.Fatalf("unexpected env table\nwant:\n%s\ngot:\n%s", want, got)
	}

	out = runCommand(t, workspace, hbBinary, "tool", "history", "--workflow", "set", "--output", "yaml")
	if !strings.Contains(out, "value: rk3568") {
		t.Fatalf("history missing product change:\n%s", out)
	}
}

func TestCLIBuildWithoutGnReportsCode(t *testing.T) {
	workspace := setupWorkspace(t)

	cmd := exec.Command(hbBinary, "build")
	cmd.Dir = workspace
	cmd.Env = append(os.Environ(), "DATA_DIR="+workspaceDataDir(workspace))
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "[OHOS ERROR] [0001]: ") {
		t.Fatalf("missing coded error:\n%s", out)
	}
}

func TestCLIHelpDoesNotPersist(t *testing.T) {
	workspace := setupWorkspace(t)

	out := runCommand(t, workspace, hbBinary, "clean", "--clean-phase", "deep", "--help")
	if !strings.Contains(out, "--clean-phase") {
		t.Fatalf("help missing schema option:\n%s", out)
	}
	data := mustReadFile(t, filepath.Join(workspace, "args", "cleanargs.json"))
	if !strings.Contains(data, `"regular"`) || strings.Contains(data, `"deep"`) {
		t.Fatalf("help must not persist option values:\n%s", data)
	}
}

// Helpers --------------------------------------------------------------------

func buildHBBinary() (string, error) {
	root := repoRoot()
	binDir, err := os.MkdirTemp("", "hb-bin")
	if err != nil {
		return "", err
	}
	binPath := filepath.Join(binDir, "hb-e2e")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/hb")
	cmd.Dir = root
	cacheDir := filepath.Join(binDir, "gocache")
	if err := os.Mkdir(cacheDir, 0o755); err != nil {
		return "", err
	}
	cmd.Env = append(os.Environ(), "GOCACHE="+cacheDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", errors.New(err.Error() + ": " + string(out))
	}
	return binPath, nil
}

func workspaceDataDir(dir string) string {
	return filepath.Join(dir, ".hb")
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	defaults := filepath.Join(dir, "args", "default")
	if err := os.MkdirAll(defaults, 0o755); err != nil {
		t.Fatalf("mkdir args: %v", err)
	}
	files := map[string]string{
		"buildargs.json": `{"product_name": {"argName": "--product-name", "argHelp": "product", "argPhase": "preTargetGenerate", "argAttribute": {}, "argType": "str", "argDefault": "", "resolveFuntion": "resolveToGnArg"}}`,
		"setargs.json":   `{"product_name": {"argName": "--product-name", "argHelp": "product", "argAttribute": {}, "argType": "str", "argDefault": "", "resolveFuntion": "resolveProductName"}, "all": {"argName": "--all", "argHelp": "all", "argAttribute": {}, "argType": "bool", "argDefault": false, "resolveFuntion": ""}}`,
		"envargs.json":   `{"check": {"argName": "--check", "argHelp": "check", "argAttribute": {}, "argType": "bool", "argDefault": false, "resolveFuntion": ""}}`,
		"cleanargs.json": `{"clean_phase": {"argName": "--clean-phase", "argHelp": "phase", "argAttribute": {}, "argType": "str", "argDefault": "regular", "resolveFuntion": ""}}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(defaults, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	config := "args_dir: args\nos_level: standard\n"
	if err := os.WriteFile(filepath.Join(dir, "hb.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("write hb.yaml: %v", err)
	}
	return dir
}

func runCommand(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	dataDir := workspaceDataDir(dir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("create data dir: %v", err)
	}
	cmd.Env = append(os.Environ(), "DATA_DIR="+dataDir, "HB_CONFIG=")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("%s %s failed: %v\n%s", name, strings.Join(args, " "), err, out)
	}
	return string(out)
}

func normalizeTableOutput(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		normalized = append(normalized, strings.Join(fields, "\t"))
	}
	return strings.Join(normalized, "\n")
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func repoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}
