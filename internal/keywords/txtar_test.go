// Copyright 2020 CUE Authors
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

package keywords

import (
	"testing"

	"github.com/rogpeppe/go-internal/txtar"
	"github.com/stretchr/testify/require"
)

// txtarFiles parses a txtar archive into the map[string]string shape
// newTestWS expects, keyed by absolute path under root. Keeping a
// multi-module fixture in one archive reads better than a directory
// tree per test case.
func txtarFiles(root string, data string) map[string]string {
	a := txtar.Parse([]byte(data))
	files := make(map[string]string, len(a.Files))
	for _, f := range a.Files {
		files[root+"/"+f.Name] = string(f.Data)
	}
	return files
}

// A library module with two exports, imported through a glob `use`,
// kept as one archive.
const greetArchive = `
-- greet.kd --
export def hello [] { }
export def goodbye [] { }
`

func TestTxtarFixtureUseGlobBringsAllExports(t *testing.T) {
	files := txtarFiles("/libs", greetArchive)
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})

	_, errs := parseSource(ws, `use "greet.kd" *`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("hello", "")
	require.True(t, ok)
	_, ok = ws.FindDecl("goodbye", "")
	require.True(t, ok)
}

// Two modules that source each other: a fixture for the same cycle
// `lang/load`'s loader-level test exercises, here driven end to end
// through the `source` keyword handler.
const sourceCycleArchive = `
-- a.kd --
source "b.kd"
-- b.kd --
source "a.kd"
`

func TestTxtarFixtureSourceCycleErrors(t *testing.T) {
	files := txtarFiles("/proj", sourceCycleArchive)
	ws := newTestWS(files, nil)

	_, errs := parseSource(ws, `source "a.kd"`)
	require.NotEmpty(t, *errs)
}

// A one-module overlay fixture: greet.kd is loaded as an overlay,
// hidden, then re-activated — the whole scenario fits in one archive
// instead of a file created ad hoc per test.
const overlayReuseArchive = `
-- greet.kd --
export def hello [] { }
`

func TestTxtarFixtureOverlayUseHideUseAgain(t *testing.T) {
	files := txtarFiles("/libs", overlayReuseArchive)
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})

	_, errs := parseSource(ws, `overlay use "greet.kd"`)
	require.Empty(t, *errs)
	require.Equal(t, "greet.kd", ws.LastOverlayName())

	_, errs = parseSource(ws, `overlay hide`)
	require.Empty(t, *errs)
	require.Equal(t, "zero", ws.LastOverlayName())

	_, errs = parseSource(ws, `overlay use "greet.kd"`)
	require.Empty(t, *errs)
	require.Equal(t, "greet.kd", ws.LastOverlayName())

	_, ok := ws.FindDecl("hello", "")
	require.True(t, ok)
}
