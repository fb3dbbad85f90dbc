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
	"testing"

	"github.com/rogpeppe/go-internal/txtar"
	"github.com/stretchr/testify/require"

	"github.com/kdparse/kd/lang/load"
	"github.com/kdparse/kd/lang/token"
)

// txtarFiles parses a txtar archive into the map[string]string shape
// load.NewTestEnv expects, keyed by absolute path under root.
func txtarFiles(root string, data string) map[string]string {
	a := txtar.Parse([]byte(data))
	files := make(map[string]string, len(a.Files))
	for _, f := range a.Files {
		files[root+"/"+f.Name] = string(f.Data)
	}
	return files
}

// A three-module chain, one fixture instead of three files on disk:
// a.kd sources b.kd, which sources c.kd.
const chainArchive = `
-- a.kd --
source "b.kd"
-- b.kd --
source "c.kd"
-- c.kd --
let x = 1
`

func TestLoaderResolvesTxtarChainByName(t *testing.T) {
	env := load.NewTestEnv("/proj", txtarFiles("/proj", chainArchive), nil)
	l := load.NewLoader(env)

	for _, name := range []string{"a.kd", "b.kd", "c.kd"} {
		got := l.FindInDirs(name, "/proj", "NU_LIB_DIRS")
		require.Equal(t, "/proj/"+name, got)
	}
}

// A two-file mutual-import cycle kept in one archive rather than two
// files on disk.
const cycleArchive = `
-- a.kd --
source "b.kd"
-- b.kd --
source "a.kd"
`

func TestLoaderDetectsCycleAcrossTxtarFiles(t *testing.T) {
	env := load.NewTestEnv("/proj", txtarFiles("/proj", cycleArchive), nil)
	l := load.NewLoader(env)

	restoreA, err := l.Enter("/proj/a.kd", token.NoPos)
	require.Nil(t, err)
	defer restoreA()

	restoreB, err := l.Enter("/proj/b.kd", token.NoPos)
	require.Nil(t, err)
	defer restoreB()

	_, err2 := l.Enter("/proj/a.kd", token.NoPos)
	require.NotNil(t, err2)
}

// A lib-dir fixture: the lookup starts from /proj, where helper.kd
// does not live, so the target only resolves once NU_LIB_DIRS is
// searched.
const libDirArchive = `
-- libs/helper.kd --
export def hello [] { }
-- libs/other.kd --
use "helper.kd" hello
`

func TestLoaderFindsTxtarFixtureViaLibDirs(t *testing.T) {
	files := txtarFiles("/proj", libDirArchive)
	env := load.NewTestEnv("/proj", files, map[string]string{"NU_LIB_DIRS": "/proj/libs"})
	l := load.NewLoader(env)

	got := l.FindInDirs("helper.kd", "/proj", "NU_LIB_DIRS")
	require.Equal(t, "/proj/libs/helper.kd", got)
}
