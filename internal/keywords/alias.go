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
	"github.com/kdparse/kd/lang/token"
)

// handleAlias implements the structural form `alias NAME = EXPR`, where
// EXPR is usually a call to an existing command with some arguments
// fixed. The target's name is checked against the unaliasable-keyword
// list before the decl is installed.
func handleAlias(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) < 3 || args[1].Text != "=" {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "= and an aliased expression"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	if err := symtab.ValidateCommandName(name, args[0].Pos.Start); err != nil {
		errs.Add(err)
	}
	rhs := args[2:]
	if err := symtab.ValidateAliasTarget(rhs[0].Text, rhs[0].Pos.Start); err != nil {
		errs.Add(err)
	}
	if mod := ws.CurrentBuildingModule(); mod != nil && name == mod.Name {
		errs.Add(errors.NamedAsModuleErr(args[0].Pos.Start, name))
		return ast.PipelineFromCall(call)
	}

	expr := parser.ParseValue(rhs, errs)

	id, ok := ws.PredeclId(name)
	if !ok {
		stub := &symtab.Decl{Name: name}
		id, _ = ws.AddPredecl(name, stub, args[0].Pos.Start)
	}
	decl := ws.GetDecl(id)
	decl.AliasExpr = expr
	decl.Pos = args[0].Pos
	if expr.Kind == ast.ExprCall && expr.Call != nil && expr.Call.DeclId != ast.NoDeclId {
		decl.AliasClone = ws.GetDecl(expr.Call.DeclId)
	}
	ws.MergePredecl(name)

	call.DeclId = id
	return ast.PipelineFromCall(call)
}

// handleOldAlias implements the legacy textual-substitution form
// `old-alias NAME = TOKENS...`: the replacement is stored as raw source
// spans rather than a parsed expression, so it can be spliced in
// unparsed at the call site.
func handleOldAlias(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) < 3 || args[1].Text != "=" {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "= and replacement tokens"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	if err := symtab.ValidateCommandName(name, args[0].Pos.Start); err != nil {
		errs.Add(err)
	}
	rhs := args[2:]
	if err := symtab.ValidateAliasTarget(rhs[0].Text, rhs[0].Pos.Start); err != nil {
		errs.Add(err)
	}

	spans := make([]token.Span, 0, len(rhs))
	for _, p := range rhs {
		spans = append(spans, p.Pos)
	}

	a := &symtab.OldAlias{
		Name:     name,
		Spans:    spans,
		Comments: lc.Comments,
		Pos:      args[0].Pos,
	}
	ws.AddOldAlias(name, a)

	call.DeclId = ast.NoDeclId
	return ast.PipelineFromCall(call)
}
