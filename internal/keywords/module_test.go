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

func TestModuleExportDefIsReachableViaUse(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `module greet { export def hello [] { } }`)
	require.Empty(t, *errs)

	_, errs = parseSource(ws, `use greet hello`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("hello", "")
	require.True(t, ok)
}

func TestModuleBodyRejectsArbitraryCalls(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `module greet { print "hi" }`)
	require.NotEmpty(t, *errs)
}

func TestModuleExportMainIsCallableByModuleNameAlone(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `module greet { export def main [] { } }`)
	require.Empty(t, *errs)

	_, errs = parseSource(ws, `use greet main`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("greet", "")
	require.True(t, ok)
}
