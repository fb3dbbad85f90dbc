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

func TestOverlayNewThenHideRemovesIt(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `overlay new greet`)
	require.Empty(t, *errs)
	require.Equal(t, "greet", ws.LastOverlayName())

	_, errs = parseSource(ws, `overlay hide greet`)
	require.Empty(t, *errs)
	require.Equal(t, "zero", ws.LastOverlayName())
}

func TestOverlayHideDefaultsToTopOfStack(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `overlay new greet`)
	require.Empty(t, *errs)

	_, errs = parseSource(ws, `overlay hide`)
	require.Empty(t, *errs)
	require.Equal(t, "zero", ws.LastOverlayName())
}

func TestOverlayHideDefaultFrameErrors(t *testing.T) {
	ws := newTestWS(nil, nil)
	_, errs := parseSource(ws, `overlay hide zero`)
	require.NotEmpty(t, *errs)
}

func TestOverlayUseFromModule(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }`,
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `use "greet.kd" *`)
	require.Empty(t, *errs)

	_, errs = parseSource(ws, `overlay use greet`)
	require.Empty(t, *errs)
	require.Equal(t, "greet", ws.LastOverlayName())
}

func TestOverlayUsePrefixedResolvesOnlyUnderPrefixedName(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }`,
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `overlay use "greet.kd" --prefix`)
	require.Empty(t, *errs)

	_, ok := ws.FindDecl("hello", "")
	require.False(t, ok, "a prefixed overlay's members must not resolve under their bare name")

	_, ok = ws.FindDecl("greet.kd hello", "")
	require.True(t, ok, "a prefixed overlay's members resolve as \"overlayname name\"")
}

func TestOverlayUsePrefixMismatchErrors(t *testing.T) {
	files := map[string]string{
		"/libs/greet.kd": `export def hello [] { }`,
	}
	ws := newTestWS(files, map[string]string{"NU_LIB_DIRS": "/libs"})
	_, errs := parseSource(ws, `overlay use "greet.kd" --prefix`)
	require.Empty(t, *errs)

	_, errs = parseSource(ws, `overlay use "greet.kd"`)
	require.NotEmpty(t, *errs)
}
