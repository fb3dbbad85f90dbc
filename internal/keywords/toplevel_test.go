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

func TestParseTopLevelAllowsMutualForwardReference(t *testing.T) {
	ws := newTestWS(nil, nil)
	b, errs := parseSource(ws, `def is-even [] { is-odd }; def is-odd [] { is-even }`)
	require.Empty(t, *errs)
	require.Len(t, b.Pipelines, 2)

	even, ok := ws.FindDecl("is-even", "")
	require.True(t, ok)
	odd, ok := ws.FindDecl("is-odd", "")
	require.True(t, ok)
	require.NotEqual(t, even, odd)
}

func TestParseTopLevelDuplicateDefAtFileScopeErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `def f [] { }; def f [] { }`)
	require.NotEmpty(t, *errs)
}
