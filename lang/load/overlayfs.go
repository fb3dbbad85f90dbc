// Copyright 2022 The CUE Authors
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

// Package load implements module-file resolution: the find_in_dirs
// path-search algorithm, the currently-parsed-file stack that detects
// `source`/`use`/`overlay use` cycles, and a virtual filesystem so
// tests can exercise both without touching disk.
package load

import (
	"io"
	"io/fs"
	"os"
	pathpkg "path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// overlayFile is an in-memory file or directory entry layered on top of
// the OS filesystem.
type overlayFile struct {
	basename  string
	contents  []byte
	modtime   time.Time
	isDir     bool
	readIndex int64
}

func (f *overlayFile) Name() string       { return f.basename }
func (f *overlayFile) Size() int64        { return int64(len(f.contents)) }
func (f *overlayFile) Mode() fs.FileMode  { return 0o644 }
func (f *overlayFile) ModTime() time.Time { return f.modtime }
func (f *overlayFile) IsDir() bool        { return f.isDir }
func (f *overlayFile) Sys() interface{}   { return nil }
func (f *overlayFile) Type() fs.FileMode  { return f.Mode() }

func (f *overlayFile) Info() (fs.FileInfo, error) { return f, nil }
func (f *overlayFile) Stat() (fs.FileInfo, error) { return f, nil }

func (f *overlayFile) Read(b []byte) (int, error) {
	n := copy(b, f.contents[f.readIndex:])
	f.readIndex += int64(n)
	if f.readIndex == f.Size() {
		return n, io.EOF
	}
	return n, nil
}

func (f *overlayFile) Close() error { return nil }

func (f *overlayFile) open() overlayFile {
	cp := *f
	cp.readIndex = 0
	return cp
}

// overlayFS is an fs.FS backed by an in-memory file map with a fallback
// to the real filesystem, so module-resolution tests can construct a
// whole directory tree of `.kd` sources without touching disk.
type overlayFS struct {
	files map[string]*overlayFile
	cwd   string
}

func newOverlayFS(cwd string, contents map[string]string) *overlayFS {
	fsys := &overlayFS{files: map[string]*overlayFile{}, cwd: cwd}
	for path, text := range contents {
		fsys.put(path, []byte(text))
	}
	return fsys
}

func (fsys *overlayFS) abs(path string) string {
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		path = filepath.Clean(filepath.Join(fsys.cwd, path))
	}
	return filepath.ToSlash(path)
}

func (fsys *overlayFS) put(path string, contents []byte) {
	path = fsys.abs(path)
	fsys.files[path] = &overlayFile{basename: pathpkg.Base(path), contents: contents, modtime: time.Now()}

	for dir := pathpkg.Dir(path); ; {
		prev := dir
		dir = pathpkg.Dir(dir)
		if dir == prev || dir == "" || dir == "." {
			break
		}
		if _, ok := fsys.files[dir]; ok {
			break
		}
		fsys.files[dir] = &overlayFile{basename: pathpkg.Base(dir), modtime: time.Now(), isDir: true}
	}
}

func (fsys *overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	name = fsys.abs(name)
	var list []fs.DirEntry
	for k, fi := range fsys.files {
		if k == name {
			continue
		}
		rel, err := filepath.Rel(name, k)
		rel = filepath.ToSlash(rel)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		if filepath.Base(rel) == rel {
			list = append(list, fi)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list, nil
}

func (fsys *overlayFS) Open(name string) (fs.File, error) {
	abs := fsys.abs(name)
	if fi, ok := fsys.files[abs]; ok {
		f := fi.open()
		return &f, nil
	}
	return os.Open(filepath.FromSlash(abs))
}

func (fsys *overlayFS) Stat(name string) (fs.FileInfo, error) {
	abs := fsys.abs(name)
	if fi, ok := fsys.files[abs]; ok {
		return fi, nil
	}
	return os.Stat(filepath.FromSlash(abs))
}
