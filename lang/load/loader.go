// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package load

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/module"

	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/token"
)

// A fileStack is a stack of paths of module files currently being
// parsed — `source`, `use path`, and `overlay use path` all push onto
// it before recursing and pop on every exit path, including errors.
// Pushing a path already on the stack is the one module-file cycle a
// compilation unit can make.
type fileStack []string

func (s *fileStack) Push(p string)  { *s = append(*s, p) }
func (s *fileStack) Pop()           { *s = (*s)[:len(*s)-1] }
func (s *fileStack) Contains(p string) bool {
	for _, q := range *s {
		if q == p {
			return true
		}
	}
	return false
}
func (s *fileStack) Copy() []string { return append([]string{}, *s...) }

// chainFrom returns the cycle chain to report: from the first
// occurrence of p up through the top of the stack, plus p again to
// show the repeat.
func (s *fileStack) chainFrom(p string) []string {
	all := s.Copy()
	for i, q := range all {
		if q == p {
			chain := append([]string{}, all[i:]...)
			return append(chain, p)
		}
	}
	return append(all, p)
}

// Env is the filesystem + environment-variable view the loader
// resolves paths against. A *Loader backed by the real OS filesystem
// implements this trivially; tests construct one over an overlayFS.
type Env interface {
	fs.StatFS
	// Getenv returns the named environment variable's raw value, which
	// the caller splits on the OS path-list separator.
	Getenv(name string) string
}

// osEnv is the default Env: the real filesystem and process
// environment, rooted at cwd.
type osEnv struct {
	cwd string
}

// NewOSEnv returns an Env backed by the real filesystem, rooted at cwd.
func NewOSEnv(cwd string) Env { return &osEnv{cwd: cwd} }

func (e *osEnv) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.cwd, name)
}

func (e *osEnv) Open(name string) (fs.File, error) { return os.Open(e.resolve(name)) }

func (e *osEnv) Stat(name string) (fs.FileInfo, error) { return os.Stat(e.resolve(name)) }

func (e *osEnv) Getenv(name string) string { return getenv(name) }

// NewTestEnv returns an Env over an in-memory file tree, for
// find_in_dirs / cycle-detection tests that must not touch disk. env
// holds the simulated NU_LIB_DIRS/NU_PLUGIN_DIRS-style variables.
func NewTestEnv(cwd string, files map[string]string, env map[string]string) Env {
	return &testEnv{fs: newOverlayFS(cwd, files), env: env}
}

type testEnv struct {
	fs  *overlayFS
	env map[string]string
}

func (e *testEnv) Open(name string) (fs.File, error)      { return e.fs.Open(name) }
func (e *testEnv) Stat(name string) (fs.FileInfo, error)   { return e.fs.Stat(name) }
func (e *testEnv) Getenv(name string) string               { return e.env[name] }

// Loader resolves module-file paths and guards against cyclical
// inclusion. One Loader belongs to one WorkingSet for the life of a
// compilation.
type Loader struct {
	env   Env
	stack fileStack
	// CurrentlyParsedCwd is the directory of the file currently being
	// parsed, or "" if parsing the top-level unit handed in by the
	// caller. Keyword handlers save and restore it around recursion.
	CurrentlyParsedCwd string
}

// NewLoader creates a Loader over env.
func NewLoader(env Env) *Loader { return &Loader{env: env} }

// ActualCwd returns CurrentlyParsedCwd if set, else processCwd.
func (l *Loader) ActualCwd(processCwd string) string {
	if l.CurrentlyParsedCwd != "" {
		return l.CurrentlyParsedCwd
	}
	return processCwd
}

// FindInDirs implements spec.md's find_in_dirs: resolve filename
// against actualCwd first; on failure, if filename is relative, try it
// against each directory named in the envVar environment variable
// (itself resolved against actualCwd first), in order, returning the
// first hit. Returns "" if nothing matches.
func (l *Loader) FindInDirs(filename, processCwd, envVar string) string {
	actualCwd := l.ActualCwd(processCwd)

	if p := l.canonicalize(actualCwd, filename); p != "" {
		return p
	}
	if filepath.IsAbs(filename) {
		return ""
	}
	for _, dir := range splitPathList(l.env.Getenv(envVar)) {
		base := l.canonicalizeDir(actualCwd, dir)
		if p := l.canonicalize(base, filename); p != "" {
			return p
		}
	}
	return ""
}

func (l *Loader) canonicalizeDir(actualCwd, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(actualCwd, dir)
}

func (l *Loader) canonicalize(base, filename string) string {
	p := filename
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, filename)
	}
	if _, err := l.env.Stat(p); err != nil {
		return ""
	}
	return p
}

// NotFoundErr constructs the taxonomy error to return when a path
// cannot be resolved — callers pass errors.SourcedFileNotFoundErr for
// `source`/`use`, errors.ModuleNotFoundErr for `overlay use`, and
// errors.RegisteredFileNotFoundErr for `register`.
type NotFoundErr func(p token.Pos, name string) errors.Error

// ReadFile resolves filename via FindInDirs against envVar and returns
// its contents, or notFound(pos, filename) if it cannot be found or read.
func (l *Loader) ReadFile(filename, processCwd, envVar string, pos token.Pos, notFound NotFoundErr) ([]byte, string, errors.Error) {
	resolved := l.FindInDirs(filename, processCwd, envVar)
	if resolved == "" {
		return nil, "", notFound(pos, filename)
	}
	f, err := l.env.Open(resolved)
	if err != nil {
		return nil, "", notFound(pos, resolved)
	}
	defer f.Close()
	data, rerr := readAll(f)
	if rerr != nil {
		return nil, "", notFound(pos, resolved)
	}
	return data, resolved, nil
}

// Enter pushes path onto the module-file stack, saves and updates
// CurrentlyParsedCwd to path's directory, and returns a restore
// function the caller defers immediately — pairing push/pop and
// cwd-save/restore even on error paths, per spec.md §5.
//
// If path is already on the stack, Enter returns a CyclicalModuleImport
// error and a no-op restore; the caller must still check the error
// before using the block it would otherwise parse.
func (l *Loader) Enter(path string, pos token.Pos) (restore func(), err errors.Error) {
	if rel := filepath.Base(path); rel != "" {
		if verr := module.CheckFilePath(rel); verr != nil {
			return func() {}, errors.InvalidModuleFilePathErr(pos, path, verr.Error())
		}
	}
	if l.stack.Contains(path) {
		return func() {}, errors.CyclicalModuleImportErr(pos, l.stack.chainFrom(path))
	}
	l.stack.Push(path)
	prevCwd := l.CurrentlyParsedCwd
	l.CurrentlyParsedCwd = filepath.Dir(path)
	return func() {
		l.stack.Pop()
		l.CurrentlyParsedCwd = prevCwd
	}, nil
}

func splitPathList(s string) []string {
	if s == "" {
		return nil
	}
	return filepath.SplitList(s)
}

func getenv(name string) string { return os.Getenv(name) }

func readAll(f fs.File) ([]byte, error) { return io.ReadAll(f) }
