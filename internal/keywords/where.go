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
	"github.com/kdparse/kd/lang/parser"
)

// handleWhere parses the row-filter keyword as an ordinary call against
// the builtin `where` declaration, validating its signature like any
// other call rather than hand-rolling its own arg parsing.
func handleWhere(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "row condition"))
		call := &ast.Call{Head: head, DeclId: ast.NoDeclId, Block: ast.NoBlockId, Pos: head.NamePos}
		return ast.PipelineFromCall(call)
	}

	call := parser.ParseCall(head, args, errs)
	id, ok := ws.FindDecl("where", "")
	if !ok {
		errs.Add(errors.Internalf(head.NamePos.Start, "'where' declaration not found"))
		return ast.PipelineFromCall(call)
	}
	call.DeclId = id
	if decl := ws.GetDecl(id); decl != nil {
		symtab.Validate(call, decl.Sig, errs)
	}
	return ast.PipelineFromCall(call)
}
