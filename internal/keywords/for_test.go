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

func TestForBindsLoopVarOnlyInsideBody(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `for x in [1 2 3] { }`)
	require.Empty(t, *errs)

	_, ok := ws.FindVarByName("x")
	require.False(t, ok, "the loop variable must not leak past the for's own scope")
}

func TestForMissingInErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `for x [1 2 3] { }`)
	require.NotEmpty(t, *errs)
}

func TestForUnclosedBodyErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `for x in [1 2 3]`)
	require.NotEmpty(t, *errs)
}
