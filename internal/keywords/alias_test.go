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

	"github.com/kdparse/kd/lang/ast"
)

func TestAliasStructuralBindsToParsedExpr(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `def greet [] { }; alias g = (greet)`)
	require.Empty(t, *errs)

	id, ok := ws.FindDecl("g", "")
	require.True(t, ok)
	require.Equal(t, ast.ExprCall, ws.GetDecl(id).AliasExpr.Kind)
}

func TestOldAliasStoresRawSpans(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `old-alias ll = ls -l`)
	require.Empty(t, *errs)

	id, ok := ws.FindAlias("ll")
	require.True(t, ok)
	require.Len(t, ws.GetOldAlias(id).Spans, 2, "one raw span per replacement token: ls, -l")
}

func TestAliasNamedAsEnclosingModuleErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `module greet { export def other [] { }; export alias greet = (other) }`)
	require.NotEmpty(t, *errs)
}

func TestAliasMissingEqualsErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `alias g`)
	require.NotEmpty(t, *errs)
}
