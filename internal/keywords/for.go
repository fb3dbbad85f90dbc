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

// handleFor implements `for VAR in ITERABLE { BODY }`: the loop
// variable gets its own VarId bound only inside the body's scope, and
// the body is parsed as an ordinary block.
func handleFor(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) < 4 || args[1].Text != "in" {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "loop variable, 'in', and an iterable"))
		return ast.PipelineFromCall(call)
	}
	varName := unquoteIdent(args[0].Text)

	bodyIdx := -1
	for i := 2; i < len(args); i++ {
		if args[i].Text == "{" {
			bodyIdx = i
			break
		}
	}
	if bodyIdx < 0 {
		errs.Add(errors.Unclosedf(head.NamePos.End, "for body"))
		return ast.PipelineFromCall(call)
	}
	iterParts := args[2:bodyIdx]
	iter := parser.ParseValue(iterParts, errs)

	bodyParts := args[bodyIdx:]
	inner := stripBraces(bodyParts, bodyParts[0].Pos.Start, errs)

	ws.EnterScope()
	varId := ws.AddVar(&symtab.VarInfo{Name: varName, Pos: args[0].Pos})
	block := parseBlockBody(ws, inner, errs)
	ws.ExitScope()
	block.Signature = &ast.Signature{Positional: []ast.Param{{Name: varName, VarId: varId}}}
	blockId := ws.AddBlock(block)

	call.Block = blockId
	call.ParserInfo = map[string]ast.Expr{"iterable": iter}
	return ast.PipelineFromCall(call)
}
