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

func TestDefRegistersDeclAfterParsing(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `def greet [] { }`)
	require.Empty(t, *errs)

	id, ok := ws.FindDecl("greet", "")
	require.True(t, ok)
	require.Equal(t, "greet", ws.GetDecl(id).Name)
}

func TestDefAllowsSelfRecursionViaPredecl(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `def recurse [] { recurse }`)
	require.Empty(t, *errs)

	id, ok := ws.FindDecl("recurse", "")
	require.True(t, ok)
	decl := ws.GetDecl(id)
	require.True(t, ws.GetBlock(decl.BlockId).Recursive)
}

func TestDefDuplicateNameInSameScopeErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `def greet [] { }; def greet [] { }`)
	require.NotEmpty(t, *errs)
}

func TestDefWithSignatureParsesPositionals(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `def greet [name] { }`)
	require.Empty(t, *errs)

	id, ok := ws.FindDecl("greet", "")
	require.True(t, ok)
	require.Len(t, ws.GetDecl(id).Sig.Positional, 1)
	require.Equal(t, "name", ws.GetDecl(id).Sig.Positional[0].Name)
}

func TestDefHelpFlagShortCircuitsWithoutArityErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `def greet [] { } --help`)
	require.Empty(t, *errs)
}

func TestDefNamedAsEnclosingModuleErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `module greet { export def greet [] { } }`)
	require.NotEmpty(t, *errs)
}

func TestExternNamedAsEnclosingModuleErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `module greet { export extern greet [] }`)
	require.NotEmpty(t, *errs)
}

func TestExternPredeclaresWithUnknownArgsAllowed(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `extern "git" [...rest]`)
	require.Empty(t, *errs)

	id, ok := ws.FindDecl("git", "")
	require.True(t, ok)
	require.True(t, ws.GetDecl(id).AllowsUnknownArgs)
}
