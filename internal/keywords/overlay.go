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

// handleOverlayNew implements `overlay new NAME` (spec §4.6): creates
// an empty module and pushes a new, unprefixed overlay frame onto it.
func handleOverlayNew(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 2)
	args := argParts(lc, 2)
	call := parser.ParseCall(head, args, errs)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "overlay name"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	modId := ws.AddModule(name, args[0].Pos)
	ws.AddOverlay(name, modId, nil, nil, false)

	call.ParserInfo = map[string]ast.Expr{"module": {Kind: ast.ExprOverlay, OverlayModule: modId, Pos: args[0].Pos}}
	return ast.PipelineFromCall(call)
}

// handleOverlayUse implements `overlay use NAME [as ALIAS] [--prefix]
// [--reload]` (spec §4.6 steps 1-4).
func handleOverlayUse(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 2)
	args := argParts(lc, 2)
	call := parser.ParseCall(head, args, errs)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "overlay name"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	activateAs := name
	i := 1
	if i < len(args) && args[i].Text == "as" && i+1 < len(args) {
		activateAs = unquoteIdent(args[i+1].Text)
		i += 2
	}
	prefixed := call.HasFlag("prefix")
	reload := call.HasFlag("reload")

	if existing, ok := ws.FindOverlay(activateAs); ok {
		if existing.Prefixed != prefixed {
			errs.Add(errors.OverlayPrefixMismatchErr(args[0].Pos.Start, activateAs, "already active with a different --prefix setting"))
			return ast.PipelineFromCall(call)
		}
		if activateAs != name && existing.Name != activateAs {
			errs.Add(errors.OverlayPrefixMismatchErr(args[0].Pos.Start, activateAs, "rename does not match the existing overlay"))
			return ast.PipelineFromCall(call)
		}
		if reload {
			if mod := ws.GetModule(existing.Origin); mod != nil {
				ws.RemoveOverlay(activateAs, false)
				ws.AddOverlay(activateAs, existing.Origin, mod.Exports, mod.AliasExports, prefixed)
			}
		}
		return ast.PipelineFromCall(call)
	}

	if modId, ok := ws.FindModule(name); ok {
		mod := ws.GetModule(modId)
		ws.AddOverlay(activateAs, modId, mod.Exports, mod.AliasExports, prefixed)
		return ast.PipelineFromCall(call)
	}

	modId, err := loadModuleFile(ws, name, args[0].Pos.Start, errs, errors.ModuleNotFoundErr)
	if err != nil {
		errs.Add(err)
		return ast.PipelineFromCall(call)
	}
	mod := ws.GetModule(modId)
	ws.AddOverlay(activateAs, modId, mod.Exports, mod.AliasExports, prefixed)
	return ast.PipelineFromCall(call)
}

// handleOverlayHide implements `overlay hide NAME [--keep-custom]`
// (spec §4.6 last paragraph).
func handleOverlayHide(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 2)
	args := argParts(lc, 2)
	call := parser.ParseCall(head, args, errs)

	name := ws.LastOverlayName()
	if len(args) > 0 && len(args[0].Text) > 0 && args[0].Text[0] != '-' {
		name = unquoteIdent(args[0].Text)
	}
	keepCustom := call.HasFlag("keep-custom")

	if err := ws.RemoveOverlay(name, keepCustom); err != nil {
		errs.Add(err)
	}
	return ast.PipelineFromCall(call)
}
