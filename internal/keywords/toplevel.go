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
	"github.com/kdparse/kd/internal/core/symtab"
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
)

// ParseTopLevel parses a whole file's worth of parts the same way
// parseModuleBlock parses a module body: a predeclaration pass over
// its lite commands first, so earlier definitions can forward-reference
// later ones within the file, then the usual pipeline walk. This is
// the entry point cmd/kd's "parse"/"check" subcommands drive.
func ParseTopLevel(ws *symtab.WorkingSet, parts []ast.Part, errs *errors.List) *ast.Block {
	lcs := splitLiteCommands(parts)
	PredeclarePass(ws, lcs, errs)
	return parseBlockBody(ws, parts, errs)
}
