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

	"github.com/stretchr/testify/require"
)

func TestUseGlobBringsAllExportsIntoScope(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }` + "\nexport def bye [] { }",
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `use "greet.kd" *`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("hello", "")
	require.True(t, ok)
	_, ok = ws.FindDecl("bye", "")
	require.True(t, ok)
}

func TestUseSingleMemberOnlyBindsThatName(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }` + "\nexport def bye [] { }",
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `use "greet.kd" hello`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("hello", "")
	require.True(t, ok)
	_, ok = ws.FindDecl("bye", "")
	require.False(t, ok)
}

func TestUseUnknownMemberErrors(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }`,
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `use "greet.kd" missing`)
	require.NotEmpty(t, *errs)
}

func TestUseMissingFileErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `use "nope.kd"`)
	require.NotEmpty(t, *errs)
}

func TestHideRemovesWholeModuleBinding(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }`,
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `use "greet.kd" *; hide greet *`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("hello", "")
	require.False(t, ok, "hide must actually remove the binding, not just flag the import pattern")
}

func TestHideSingleMemberNoLongerResolves(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }` + "\nexport def bye [] { }",
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `use "greet.kd" *; hide greet hello`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("hello", "")
	require.False(t, ok)
	_, ok = ws.FindDecl("bye", "")
	require.True(t, ok, "hide must only remove the matched name, not the whole module's bindings")
}

func TestHideUnknownNameErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `hide nope`)
	require.NotEmpty(t, *errs)
}
