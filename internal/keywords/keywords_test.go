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

	"github.com/kdparse/kd/internal/core/symtab"
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/load"
)

// newTestWS builds a WorkingSet backed by an in-memory filesystem rooted
// at /proj, with extra named files available for use/source/overlay to
// resolve.
func newTestWS(files map[string]string, env map[string]string) *symtab.WorkingSet {
	return symtab.New(load.NewTestEnv("/proj", files, env))
}

// parseSource tokenizes src as a whole file and runs it through
// ParseTopLevel against ws, returning the accumulated errors.
func parseSource(ws *symtab.WorkingSet, src string) (*ast.Block, *errors.List) {
	span := ws.AddFile("/proj/main.kd", []byte(src))
	parts, _ := TokenizeParts(span.Start, []byte(src))
	errs := &errors.List{}
	b := ParseTopLevel(ws, parts, errs)
	return b, errs
}
