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

// PredeclarePass registers the name and signature of every def,
// def-env, extern, and structural alias among lcs as a predecl in ws's
// current scope, before any body is parsed — spec §4.3's
// predeclaration pass. Names already predeclared in this scope are a
// DuplicateCommandDef error.
func PredeclarePass(ws *symtab.WorkingSet, lcs []*ast.LiteCommand, errs *errors.List) {
	for _, lc := range lcs {
		if len(lc.Parts) == 0 {
			continue
		}
		first := lc.Parts[0].Text
		rest := lc.Parts
		if first == "export" && len(lc.Parts) >= 2 {
			first = lc.Parts[1].Text
			rest = lc.Parts[1:]
		}
		switch first {
		case "def", "def-env":
			predeclDef(ws, rest, errs)
		case "extern":
			predeclExtern(ws, rest, errs)
		case "alias":
			predeclAlias(ws, rest, errs)
		}
	}
}

func predeclDef(ws *symtab.WorkingSet, parts []ast.Part, errs *errors.List) {
	if len(parts) < 3 {
		return
	}
	name := unquoteIdent(parts[1].Text)
	if err := symtab.ValidateCommandName(name, parts[1].Pos.Start); err != nil {
		errs.Add(err)
		return
	}
	ws.EnterScope()
	sig, _ := parser.ParseSignature(parts[2:], errs)
	ws.ExitScope()
	stub := &symtab.Decl{Name: name, Sig: sig, BlockId: ast.NoBlockId, Pos: parts[1].Pos}
	if _, err := ws.AddPredecl(name, stub, parts[1].Pos.Start); err != nil {
		errs.Add(err)
	}
}

func predeclExtern(ws *symtab.WorkingSet, parts []ast.Part, errs *errors.List) {
	if len(parts) < 3 {
		return
	}
	name := unquoteIdent(parts[1].Text)
	if err := symtab.ValidateCommandName(name, parts[1].Pos.Start); err != nil {
		errs.Add(err)
		return
	}
	ws.EnterScope()
	sig, _ := parser.ParseSignature(parts[2:], errs)
	ws.ExitScope()
	stub := &symtab.Decl{Name: name, Sig: sig, ExternalName: name, AllowsUnknownArgs: true, Pos: parts[1].Pos}
	if _, err := ws.AddPredecl(name, stub, parts[1].Pos.Start); err != nil {
		errs.Add(err)
	}
}

func predeclAlias(ws *symtab.WorkingSet, parts []ast.Part, errs *errors.List) {
	if len(parts) < 2 {
		return
	}
	name := unquoteIdent(parts[1].Text)
	if err := symtab.ValidateCommandName(name, parts[1].Pos.Start); err != nil {
		errs.Add(err)
		return
	}
	stub := &symtab.Decl{Name: name, Pos: parts[1].Pos}
	if _, err := ws.AddPredecl(name, stub, parts[1].Pos.Start); err != nil {
		errs.Add(err)
	}
}

// handleDef implements the `def` full parse of spec §4.3.
func handleDef(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	return defOrDefEnv(ws, lc, errs, false)
}

// handleDefEnv implements `def-env`.
func handleDefEnv(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	return defOrDefEnv(ws, lc, errs, true)
}

func defOrDefEnv(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List, redirectEnv bool) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if res := symtab.Validate(call, nil, errs); res.Help {
		return ast.PipelineFromCall(call)
	}
	if len(args) < 3 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "name, signature, and block"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	ws.EnterScope()
	sig, rest := parser.ParseSignature(args[1:], errs)
	inner := stripBraces(rest, head.NamePos.End, errs)
	block := parseBlockBody(ws, inner, errs)
	ws.ExitScope()
	blockId := ws.AddBlock(block)

	if mod := ws.CurrentBuildingModule(); mod != nil && name == mod.Name {
		errs.Add(errors.NamedAsModuleErr(args[0].Pos.Start, name))
		return ast.PipelineFromCall(call)
	}

	id, ok := ws.PredeclId(name)
	if !ok {
		stub := &symtab.Decl{Name: name}
		id, _ = ws.AddPredecl(name, stub, head.NamePos.Start)
	}
	decl := ws.GetDecl(id)
	decl.Sig = sig
	decl.BlockId = blockId
	decl.RedirectEnv = redirectEnv
	block.Recursive = ast.ContainsCallTo(block, id)
	ws.MergePredecl(name)

	call.DeclId = id
	call.Block = blockId
	return ast.PipelineFromCall(call)
}

// handleExtern implements `extern`.
func handleExtern(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)
	if len(args) < 2 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "name and signature"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	ws.EnterScope()
	sig, _ := parser.ParseSignature(args[1:], errs)
	ws.ExitScope()

	if res := symtab.Validate(call, nil, errs); res.Help {
		return ast.PipelineFromCall(call)
	}
	if mod := ws.CurrentBuildingModule(); mod != nil && name == mod.Name {
		errs.Add(errors.NamedAsModuleErr(args[0].Pos.Start, name))
		return ast.PipelineFromCall(call)
	}

	id, ok := ws.PredeclId(name)
	if !ok {
		stub := &symtab.Decl{Name: name}
		id, _ = ws.AddPredecl(name, stub, head.NamePos.Start)
	}
	decl := ws.GetDecl(id)
	decl.Sig = sig
	decl.ExternalName = name
	decl.AllowsUnknownArgs = true
	ws.MergePredecl(name)

	call.DeclId = id
	return ast.PipelineFromCall(call)
}

func unquoteIdent(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
