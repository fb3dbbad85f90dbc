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

func TestSourceInstallsBindingsIntoCallerScope(t *testing.T) {
	files := map[string]string{
		"/libs/vars.kd": `let x = 1`,
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `source "vars.kd"`)
	require.Empty(t, *errs)

	_, ok := ws.FindVarByName("x")
	require.True(t, ok, "source's bindings land in the caller's own scope")
}

func TestSourceEnvInstallsBindingsIntoNestedScope(t *testing.T) {
	files := map[string]string{
		"/libs/vars.kd": `let x = 1`,
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `source-env "vars.kd"`)
	require.Empty(t, *errs)

	_, ok := ws.FindVarByName("x")
	require.False(t, ok, "source-env's bindings live in their own nested scope")
}

func TestSourceMissingFileErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `source "nope.kd"`)
	require.NotEmpty(t, *errs)
}

func TestRegisterRejectsNonPluginPrefixedPath(t *testing.T) {
	files := map[string]string{
		"/plugins/not_a_plugin": "",
	}
	ws := newTestWS(files, map[string]string{"NU_PLUGIN_DIRS": "/plugins"})
	_, errs := parseSource(ws, `register "not_a_plugin"`)
	require.NotEmpty(t, *errs)
}

func TestRegisterCachesPluginProbeAcrossCalls(t *testing.T) {
	files := map[string]string{
		"/plugins/nu_plugin_foo": "",
	}
	ws := newTestWS(files, map[string]string{"NU_PLUGIN_DIRS": "/plugins"})
	_, errs := parseSource(ws, `register "nu_plugin_foo"`)
	require.Empty(t, *errs)

	first, ok := ws.FindDecl("nu_plugin_foo", "")
	require.True(t, ok)

	_, errs = parseSource(ws, `register "nu_plugin_foo"`)
	require.Empty(t, *errs)

	second, ok := ws.FindDecl("nu_plugin_foo", "")
	require.True(t, ok)
	require.Same(t, ws.GetDecl(first), ws.GetDecl(second), "the second register reuses the cached probe's decl")
}

func TestRegisterWithSignatureUsesSuppliedName(t *testing.T) {
	files := map[string]string{
		"/plugins/nu_plugin_bar": "",
	}
	ws := newTestWS(files, map[string]string{"NU_PLUGIN_DIRS": "/plugins"})
	_, errs := parseSource(ws, `register "nu_plugin_bar" --signature "name: bar-cmd\nusage: a fine command\n"`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("bar-cmd", "")
	require.True(t, ok)
}

func TestRegisterWithMalformedSignatureErrors(t *testing.T) {
	files := map[string]string{
		"/plugins/nu_plugin_bar": "",
	}
	ws := newTestWS(files, map[string]string{"NU_PLUGIN_DIRS": "/plugins"})
	_, errs := parseSource(ws, `register "nu_plugin_bar" --signature "[not valid yaml"`)
	require.NotEmpty(t, *errs)
}
