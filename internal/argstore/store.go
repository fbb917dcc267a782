// SPDX-License-Identifier: AGPL-3.0-or-later

// Package argstore persists per-workflow argument schemas. Each workflow has
// a read-only default file and a current file seeded from it on first use.
package argstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/types"
)

const (
	defaultSubdir = "default"
	schemaExt     = ".json"
)

var workflowFiles = map[types.Workflow]string{
	types.WorkflowBuild: "buildargs.json",
	types.WorkflowSet:   "setargs.json",
	types.WorkflowEnv:   "envargs.json",
	types.WorkflowClean: "cleanargs.json",
}

// Change describes one persisted argument value.
type Change struct {
	Workflow   types.Workflow
	Name       string
	Value      any
	Invocation string
}

// Recorder receives every change written by Persist.
type Recorder interface {
	RecordChange(ctx context.Context, c Change) error
}

// Store reads and writes schema files below a single args directory.
type Store struct {
	dir        string
	defaultDir string
	recorder   Recorder

	mu    sync.Mutex
	locks map[types.Workflow]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultDir overrides where default schema files are read from.
// By default they live in <argsDir>/default.
func WithDefaultDir(dir string) Option {
	return func(s *Store) { s.defaultDir = dir }
}

// WithRecorder attaches a change recorder, typically the resolution journal.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// New returns a Store rooted at argsDir.
func New(argsDir string, opts ...Option) *Store {
	s := &Store{
		dir:        argsDir,
		defaultDir: filepath.Join(argsDir, defaultSubdir),
		locks:      make(map[types.Workflow]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory holding current schema files.
func (s *Store) Dir() string { return s.dir }

// Paths returns the current and default file paths for workflow.
func (s *Store) Paths(workflow types.Workflow) (current, def string, err error) {
	name, ok := workflowFiles[workflow]
	if !ok {
		return "", "", hberr.Config(hberr.CodeUnknownWorkflow,
			"You are trying to access args file, but there is no corresponding module %q args file", workflow)
	}
	return filepath.Join(s.dir, name), filepath.Join(s.defaultDir, name), nil
}

// Load returns the current schema for workflow, copying the default file into
// place first when no current file exists yet.
func (s *Store) Load(workflow types.Workflow) (types.Schema, error) {
	current, def, err := s.Paths(workflow)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(current); errors.Is(err, os.ErrNotExist) {
		if err := copyFile(def, current); err != nil {
			return nil, hberr.Wrap(hberr.CodeSchemaIO, err, "seed %s args from %s", workflow, def)
		}
	} else if err != nil {
		return nil, hberr.Wrap(hberr.CodeSchemaIO, err, "stat %s", current)
	}
	schema, err := readSchema(current)
	if err != nil {
		return nil, hberr.Wrap(hberr.CodeSchemaIO, err, "read %s args", workflow)
	}
	return schema, nil
}

// Persist stores value as the argDefault of name and rewrites the whole
// current file. Writers inside one process are serialised; separate
// processes are not, so the last full write wins. A failing recorder is
// logged and does not fail the call.
func (s *Store) Persist(ctx context.Context, workflow types.Workflow, name string, value any) error {
	lock := s.lockFor(workflow)
	lock.Lock()
	defer lock.Unlock()

	schema, err := s.Load(workflow)
	if err != nil {
		return err
	}
	entry, ok := schema[name]
	if !ok {
		return hberr.Config(hberr.CodeUnknownReference, "arg %q is not defined for module %q", name, workflow)
	}
	entry.ArgDefault = value
	schema[name] = entry
	if err := s.WriteSchema(workflow, schema); err != nil {
		return err
	}
	if s.recorder != nil {
		change := Change{Workflow: workflow, Name: name, Value: value, Invocation: InvocationFrom(ctx)}
		if err := s.recorder.RecordChange(ctx, change); err != nil {
			// The file is already written; history never fails a resolution.
			logging.FromContext(ctx).Warn("history not recorded", "workflow", workflow, "arg", name, "err", err)
		}
	}
	return nil
}

// WriteSchema replaces the current file of workflow with schema. The file is
// written next to its destination and renamed into place.
func (s *Store) WriteSchema(workflow types.Workflow, schema types.Schema) error {
	current, _, err := s.Paths(workflow)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return hberr.Wrap(hberr.CodeSchemaIO, err, "encode %s args", workflow)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(current, data); err != nil {
		return hberr.Wrap(hberr.CodeSchemaIO, err, "write %s", current)
	}
	return nil
}

// ResetAll removes every current schema file so the next Load reseeds from
// defaults. Missing files and a missing directory are not errors.
func (s *Store) ResetAll() error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return hberr.Wrap(hberr.CodeSchemaIO, err, "scan %s", s.dir)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), schemaExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return hberr.Wrap(hberr.CodeSchemaIO, err, "remove %s", e.Name())
		}
	}
	return nil
}

func (s *Store) lockFor(workflow types.Workflow) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[workflow]
	if !ok {
		l = &sync.Mutex{}
		s.locks[workflow] = l
	}
	return l
}

func readSchema(path string) (types.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var schema types.Schema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if schema == nil {
		schema = types.Schema{}
	}
	for k, d := range schema {
		d.ArgDefault = normalizeNumbers(d.ArgDefault)
		schema[k] = d
	}
	return schema, nil
}

// normalizeNumbers turns json.Number values into int when integral and
// float64 otherwise, recursing through lists and maps.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeNumbers(t[k])
		}
		return t
	default:
		return v
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
