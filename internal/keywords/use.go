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

// resolveImportHead binds ip.Head to a module, either because it was
// already a known module name in scope or by loading it as a file
// (spec §4.5 steps 1-2).
func resolveImportHead(ws *symtab.WorkingSet, ip *ast.ImportPattern, errs *errors.List) (*symtab.Module, ast.ModuleId) {
	if id, ok := ws.FindModule(ip.Head.Name); ok {
		ip.Head.ModuleId = id
		return ws.GetModule(id), id
	}
	modId, err := loadModuleFile(ws, unquoteIdent(ip.Head.Name), ip.Head.NamePos.Start, errs, errors.SourcedFileNotFoundErr)
	if err != nil {
		errs.Add(err)
		return nil, ast.NoModuleId
	}
	ip.Head.ModuleId = modId
	return ws.GetModule(modId), modId
}

// matchImportPattern implements spec §4.5 step 3 against mod, given
// ip's member (there's always at most one member in this grammar).
func matchImportPattern(ws *symtab.WorkingSet, mod *symtab.Module, headName string, ip *ast.ImportPattern, errs *errors.List) (map[string]ast.DeclId, map[string]ast.AliasId) {
	decls := map[string]ast.DeclId{}
	aliases := map[string]ast.AliasId{}
	if mod == nil {
		return decls, aliases
	}
	if len(ip.Members) == 0 {
		for name, id := range mod.Exports {
			decls[headName+" "+name] = id
		}
		for name, id := range mod.AliasExports {
			aliases[headName+" "+name] = id
		}
		return decls, aliases
	}
	m := ip.Members[0]
	switch m.Kind {
	case ast.MemberGlob:
		for name, id := range mod.Exports {
			decls[name] = id
		}
		for name, id := range mod.AliasExports {
			aliases[name] = id
		}
	case ast.MemberName:
		resolveOneMember(mod, headName, m.Name, m.Pos, decls, aliases, errs)
	case ast.MemberList:
		for _, n := range m.Names {
			resolveOneMember(mod, headName, n.Name, n.Pos, decls, aliases, errs)
		}
	}
	return decls, aliases
}

func resolveOneMember(mod *symtab.Module, headName, name string, pos token.Span, decls map[string]ast.DeclId, aliases map[string]ast.AliasId, errs *errors.List) {
	_ = pos
	if name == "main" {
		if mod.Main != ast.NoDeclId {
			decls[headName] = mod.Main
			return
		}
		errs.Add(errors.ExportNotFoundErr(mod.Pos.Start, "main"))
		return
	}
	if id, ok := mod.Exports[name]; ok {
		decls[name] = id
		return
	}
	if id, ok := mod.AliasExports[name]; ok {
		aliases[name] = id
		return
	}
	errs.Add(errors.ExportNotFoundErr(mod.Pos.Start, name))
}

func resolveMatchedDecls(ws *symtab.WorkingSet, ip *ast.ImportPattern) map[string]ast.DeclId {
	mod := ws.GetModule(ip.Head.ModuleId)
	decls, _ := matchImportPattern(ws, mod, ip.Head.Name, ip, &errors.List{})
	return decls
}

func resolveMatchedAliases(ws *symtab.WorkingSet, ip *ast.ImportPattern) map[string]ast.AliasId {
	mod := ws.GetModule(ip.Head.ModuleId)
	_, aliases := matchImportPattern(ws, mod, ip.Head.Name, ip, &errors.List{})
	return aliases
}

// handleUse implements `use IMPORT_PATTERN` (spec §4.5).
func handleUse(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "import pattern"))
		return ast.PipelineFromCall(call)
	}
	ip := parser.ParseImportPattern(args, errs)
	mod, _ := resolveImportHead(ws, ip, errs)
	decls, aliases := matchImportPattern(ws, mod, ip.Head.Name, ip, errs)
	for name, id := range decls {
		ws.BindDeclName(name, id)
	}
	for name, id := range aliases {
		ws.BindAliasName(name, id)
	}

	call.ParserInfo = map[string]ast.Expr{"pattern": {Kind: ast.ExprImportPattern, Import: ip, Pos: ip.Pos}}
	return ast.PipelineFromCall(call)
}

// handleHide implements `hide IMPORT_PATTERN`: the same pattern
// arithmetic as use, but the matched names are removed from the
// current scope rather than installed (spec §4.5 final paragraph).
func handleHide(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "import pattern"))
		return ast.PipelineFromCall(call)
	}
	ip := parser.ParseImportPattern(args, errs)

	var mod *symtab.Module
	if id, ok := ws.FindModule(ip.Head.Name); ok {
		ip.Head.ModuleId = id
		mod = ws.GetModule(id)
	}
	ip.Hidden = map[string]bool{}
	if mod != nil {
		decls, aliases := matchImportPattern(ws, mod, ip.Head.Name, ip, errs)
		for name := range decls {
			ip.Hidden[name] = true
			ws.RemoveDeclName(name)
		}
		for name := range aliases {
			ip.Hidden[name] = true
			ws.RemoveAliasName(name)
		}
	} else if _, ok := ws.FindAlias(ip.Head.Name); ok {
		ip.Hidden[ip.Head.Name] = true
		ws.RemoveAliasName(ip.Head.Name)
	} else if _, ok := ws.FindDecl(ip.Head.Name, ""); ok {
		ip.Hidden[ip.Head.Name] = true
		ws.RemoveDeclName(ip.Head.Name)
	} else {
		errs.Add(errors.ModuleOrOverlayNotFoundErr(ip.Head.NamePos.Start))
	}

	call.ParserInfo = map[string]ast.Expr{"pattern": {Kind: ast.ExprImportPattern, Import: ip, Pos: ip.Pos}}
	return ast.PipelineFromCall(call)
}
