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

// handleModule implements `module NAME { ... }` (spec §4.4): the third
// part must be a brace-delimited block, stripped and handed to
// parseModuleBlock.
func handleModule(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) < 2 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "name and a block"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	if err := symtab.ValidateCommandName(name, args[0].Pos.Start); err != nil {
		errs.Add(err)
	}
	bodyParts := args[1:]
	inner := stripBraces(bodyParts, bodyParts[0].Pos.Start, errs)

	modId := ws.AddModule(name, bodyParts[0].Pos)
	mod := ws.GetModule(modId)
	block := parseModuleBlock(ws, mod, inner, errs)
	blockId := ws.AddBlock(block)

	call.Block = blockId
	call.ParserInfo = map[string]ast.Expr{"module": {Kind: ast.ExprOverlay, OverlayModule: modId, Pos: bodyParts[0].Pos}}
	return ast.PipelineFromCall(call)
}

// parseModuleBlock is spec §4.4's parse_module_block: enter a fresh
// scope, run the predeclaration pass over the block's lite commands,
// then walk them in order dispatching on each leading keyword, folding
// export/export-env results into mod as they're produced.
func parseModuleBlock(ws *symtab.WorkingSet, mod *symtab.Module, innerParts []ast.Part, errs *errors.List) *ast.Block {
	ws.EnterScope()
	ws.PushBuildingModule(mod)

	lcs := splitLiteCommands(innerParts)
	PredeclarePass(ws, lcs, errs)

	b := &ast.Block{Id: ast.NoBlockId}
	for _, lc := range lcs {
		if len(lc.Parts) == 0 {
			continue
		}
		kw, ok := IsKeyword(lc)
		if !ok {
			errs.Add(errors.Unexpected(lc.Span().Start, "only definitions, aliases, use, and export are allowed in a module body"))
			continue
		}
		switch firstWord(kw) {
		case "def", "def-env", "extern", "old-alias", "alias", "use", "export", "export-env":
			b.Pipelines = append(b.Pipelines, Dispatch(ws, lc, errs))
		default:
			errs.Add(errors.Unexpected(lc.Span().Start, "keyword not allowed in a module body: "+kw))
		}
	}
	b.Pos = ast.Span2(firstSpan(innerParts), lastSpan(innerParts))

	ws.PopBuildingModule()
	ws.ExitScope()
	return b
}

func firstWord(kw string) string {
	for i, r := range kw {
		if r == ' ' {
			return kw[:i]
		}
	}
	return kw
}

// handleExportInBlock is the one-word `export` dispatch: bare `export`
// with no recognized sub-keyword is an error (the two-word forms
// `export def`, `export alias`, etc. are matched before this handler
// ever runs, via twoWordKeywords).
func handleExportInBlock(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	errs.Add(errors.UnexpectedKeyword(head.NamePos.End, "def, def-env, extern, alias, old-alias, or use after export"))
	return ast.PipelineFromCall(&ast.Call{Head: head, DeclId: ast.NoDeclId, Block: ast.NoBlockId, Pos: head.NamePos})
}

// handleExportEnv implements `export-env { BLOCK }`: parses the block
// and records its id on mod.EnvBlocks for later environment-setup
// replay by the evaluator.
func handleExportEnv(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "a block"))
		return ast.PipelineFromCall(call)
	}
	inner := stripBraces(args, args[0].Pos.Start, errs)

	ws.EnterScope()
	block := parseBlockBody(ws, inner, errs)
	ws.ExitScope()
	blockId := ws.AddBlock(block)

	if mod := ws.CurrentBuildingModule(); mod != nil {
		mod.EnvBlocks = append(mod.EnvBlocks, blockId)
	}
	call.Block = blockId
	return ast.PipelineFromCall(call)
}

func exportInto(ws *symtab.WorkingSet, name string, declId ast.DeclId) {
	mod := ws.CurrentBuildingModule()
	if mod == nil {
		return
	}
	if name == "main" {
		mod.Main = declId
		return
	}
	mod.Exports[name] = declId
}

func exportAliasInto(ws *symtab.WorkingSet, name string, aliasId ast.AliasId) {
	mod := ws.CurrentBuildingModule()
	if mod == nil {
		return
	}
	mod.AliasExports[name] = aliasId
}

// handleExportDef parses `export def` as `def` and additionally
// records the result on the module under construction.
func handleExportDef(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	p := defOrDefEnv(ws, stripExportPrefix(lc), errs, false)
	exportCallResult(ws, p)
	return p
}

func handleExportDefEnv(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	p := defOrDefEnv(ws, stripExportPrefix(lc), errs, true)
	exportCallResult(ws, p)
	return p
}

func handleExportExtern(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	p := handleExtern(ws, stripExportPrefix(lc), errs)
	exportCallResult(ws, p)
	return p
}

func handleExportAlias(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	p := handleAlias(ws, stripExportPrefix(lc), errs)
	exportCallResult(ws, p)
	return p
}

func handleExportOldAlias(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	p := handleOldAlias(ws, stripExportPrefix(lc), errs)
	call := p.Exprs[0].Call
	if call != nil && call.Head.Name != "" {
		if id, ok := ws.FindAlias(unquoteIdent(call.Head.Name)); ok {
			exportAliasInto(ws, unquoteIdent(call.Head.Name), id)
		}
	}
	return p
}

// handleExportUse parses `export use` as `use` and re-exports
// everything the nested use imported into the current scope.
func handleExportUse(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	p := handleUse(ws, stripExportPrefix(lc), errs)
	call := p.Exprs[0].Call
	if call == nil || call.ParserInfo == nil {
		return p
	}
	pat, ok := call.ParserInfo["pattern"]
	if !ok || pat.Import == nil {
		return p
	}
	for name, id := range resolveMatchedDecls(ws, pat.Import) {
		exportInto(ws, name, id)
	}
	for name, id := range resolveMatchedAliases(ws, pat.Import) {
		exportAliasInto(ws, name, id)
	}
	return p
}

// exportCallResult finds the just-defined name's decl and folds it
// into the module under construction.
func exportCallResult(ws *symtab.WorkingSet, p *ast.Pipeline) {
	if len(p.Exprs) == 0 || p.Exprs[0].Call == nil {
		return
	}
	call := p.Exprs[0].Call
	if call.DeclId == ast.NoDeclId {
		return
	}
	decl := ws.GetDecl(call.DeclId)
	if decl == nil {
		return
	}
	exportInto(ws, decl.Name, call.DeclId)
}

// stripExportPrefix returns a LiteCommand with the leading "export"
// word removed, so the sub-keyword's own handler sees its usual shape.
func stripExportPrefix(lc *ast.LiteCommand) *ast.LiteCommand {
	if len(lc.Parts) == 0 {
		return lc
	}
	return &ast.LiteCommand{Parts: lc.Parts[1:], Comments: lc.Comments}
}
