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

package load_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/load"
	"github.com/kdparse/kd/lang/token"
)

func TestFindInDirsPrefersCwdOverLibDirs(t *testing.T) {
	env := load.NewTestEnv("/proj", map[string]string{
		"/proj/helper.kd": "local",
		"/libs/helper.kd": "from libdir",
	}, map[string]string{"NU_LIB_DIRS": "/libs"})
	l := load.NewLoader(env)

	got := l.FindInDirs("helper.kd", "/proj", "NU_LIB_DIRS")
	require.Equal(t, "/proj/helper.kd", got)
}

func TestFindInDirsFallsBackToLibDirs(t *testing.T) {
	env := load.NewTestEnv("/proj", map[string]string{
		"/libs/helper.kd": "from libdir",
	}, map[string]string{"NU_LIB_DIRS": "/libs"})
	l := load.NewLoader(env)

	got := l.FindInDirs("helper.kd", "/proj", "NU_LIB_DIRS")
	require.Equal(t, "/libs/helper.kd", got)
}

func TestFindInDirsSearchesMultipleLibDirsInOrder(t *testing.T) {
	dirs := "/first" + string(filepath.ListSeparator) + "/second"
	env := load.NewTestEnv("/proj", map[string]string{
		"/second/helper.kd": "from second",
	}, map[string]string{"NU_LIB_DIRS": dirs})
	l := load.NewLoader(env)

	got := l.FindInDirs("helper.kd", "/proj", "NU_LIB_DIRS")
	require.Equal(t, "/second/helper.kd", got)
}

func TestFindInDirsMissingReturnsEmpty(t *testing.T) {
	env := load.NewTestEnv("/proj", nil, nil)
	l := load.NewLoader(env)

	got := l.FindInDirs("nope.kd", "/proj", "NU_LIB_DIRS")
	require.Equal(t, "", got)
}

func TestEnterDetectsCycle(t *testing.T) {
	env := load.NewTestEnv("/proj", nil, nil)
	l := load.NewLoader(env)

	restoreA, err := l.Enter("/proj/a.kd", token.NoPos)
	require.Nil(t, err)
	defer restoreA()

	_, err2 := l.Enter("/proj/a.kd", token.NoPos)
	require.NotNil(t, err2)
}

func TestEnterRestoresCwdOnExit(t *testing.T) {
	env := load.NewTestEnv("/proj", nil, nil)
	l := load.NewLoader(env)

	before := l.CurrentlyParsedCwd
	restore, err := l.Enter("/proj/sub/file.kd", token.NoPos)
	require.Nil(t, err)
	require.Equal(t, "/proj/sub", l.CurrentlyParsedCwd)
	restore()
	require.Equal(t, before, l.CurrentlyParsedCwd)
}

func TestReadFileNotFoundReturnsProvidedError(t *testing.T) {
	env := load.NewTestEnv("/proj", nil, nil)
	l := load.NewLoader(env)

	called := false
	_, _, err := l.ReadFile("nope.kd", "/proj", "NU_LIB_DIRS", token.NoPos, func(p token.Pos, name string) errors.Error {
		called = true
		return errors.SourcedFileNotFoundErr(p, name)
	})
	require.NotNil(t, err)
	require.True(t, called)
}

func TestReadFileReadsResolvedContents(t *testing.T) {
	env := load.NewTestEnv("/proj", map[string]string{
		"/proj/a.kd": "let x = 1",
	}, nil)
	l := load.NewLoader(env)

	data, resolved, err := l.ReadFile("a.kd", "/proj", "NU_LIB_DIRS", token.NoPos, errors.SourcedFileNotFoundErr)
	require.Nil(t, err)
	require.Equal(t, "/proj/a.kd", resolved)
	require.Equal(t, "let x = 1", string(data))
}
