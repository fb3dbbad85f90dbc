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

func TestLetShadowingMintsFreshVarIdEachBind(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `let x = 1; let x = 2`)
	require.Empty(t, *errs)

	id, ok := ws.FindVarByName("x")
	require.True(t, ok)
	require.EqualValues(t, 2, ws.GetVar(id).Value.Int)
}

func TestConstReferencingPriorConstEvaluates(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `const m = 1; const n = $m + 1`)
	require.Empty(t, *errs)

	id, ok := ws.FindVarByName("n")
	require.True(t, ok)
	v := ws.GetVar(id)
	require.True(t, v.Const)
}

func TestConstReferencingUnknownNameErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `const n = $missing + 1`)
	require.NotEmpty(t, *errs)
}

func TestLetMissingEqualsErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `let x`)
	require.NotEmpty(t, *errs)
}

func TestLetSelfReferenceErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `let x = $x`)
	require.NotEmpty(t, *errs)
}

func TestMutSelfReferenceErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `mut x = $x`)
	require.NotEmpty(t, *errs)
}

func TestLetSelfReferenceNestedInListErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `let x = [1, $x]`)
	require.NotEmpty(t, *errs)
}

func TestLetReferencingPriorBindingOfSameNameOk(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `let x = 1; let x = $x`)
	require.Empty(t, *errs, "the RHS resolves against the prior binding, not the one being created")
}

func TestMutBindsLikeLet(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `mut x = 1`)
	require.Empty(t, *errs)

	id, ok := ws.FindVarByName("x")
	require.True(t, ok)
	require.False(t, ws.GetVar(id).Const)
}
