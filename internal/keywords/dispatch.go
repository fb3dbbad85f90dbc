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

// Package keywords implements the keyword dispatcher and every keyword
// handler: definitions, aliases, modules, use/hide, overlays,
// source/register, let/const/mut, for, and where. Each handler takes
// the WorkingSet and a LiteCommand and returns a Pipeline plus at most
// one error, per spec.md §4.2's contract.
package keywords

import (
	"github.com/kdparse/kd/internal/core/symtab"
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
)

// Handler parses and applies one keyword's semantics against ws.
type Handler func(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline

// oneWordKeywords dispatch on the first part alone.
var oneWordKeywords = map[string]Handler{
	"def":         handleDef,
	"def-env":     handleDefEnv,
	"extern":      handleExtern,
	"alias":       handleAlias,
	"old-alias":   handleOldAlias,
	"for":         handleFor,
	"let":         handleLet,
	"const":       handleConst,
	"mut":         handleMut,
	"where":       handleWhere,
	"module":      handleModule,
	"export":      handleExportInBlock,
	"export-env":  handleExportEnv,
	"use":         handleUse,
	"hide":        handleHide,
	"source":      handleSource,
	"source-env":  handleSourceEnv,
	"register":    handleRegister,
}

// twoWordKeywords dispatch on the first two parts joined by a space.
var twoWordKeywords = map[string]Handler{
	"overlay new":    handleOverlayNew,
	"overlay use":    handleOverlayUse,
	"overlay hide":   handleOverlayHide,
	"export def":     handleExportDef,
	"export def-env": handleExportDefEnv,
	"export extern":  handleExportExtern,
	"export alias":   handleExportAlias,
	"export old-alias": handleExportOldAlias,
	"export use":     handleExportUse,
}

// IsKeyword reports whether lc's leading one or two parts name a
// parser keyword, and returns the matched keyword text.
func IsKeyword(lc *ast.LiteCommand) (string, bool) {
	if len(lc.Parts) == 0 {
		return "", false
	}
	if len(lc.Parts) >= 2 {
		two := lc.Parts[0].Text + " " + lc.Parts[1].Text
		if _, ok := twoWordKeywords[two]; ok {
			return two, true
		}
	}
	if _, ok := oneWordKeywords[lc.Parts[0].Text]; ok {
		return lc.Parts[0].Text, true
	}
	return "", false
}

// Dispatch routes lc to its handler. The caller has already confirmed
// via IsKeyword that lc names a keyword. Neither Dispatch nor its
// callers check whether an alias of the same name shadows the keyword:
// a keyword always reaches its handler. (symtab.ValidateAliasTarget,
// checked by handleAlias/handleOldAlias, limits which keywords an
// alias may target.)
func Dispatch(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	kw, ok := IsKeyword(lc)
	if !ok {
		return ast.GarbagePipeline(lc.Span())
	}
	if h, ok := twoWordKeywords[kw]; ok {
		return h(ws, lc, errs)
	}
	return oneWordKeywords[kw](ws, lc, errs)
}

// argParts returns lc's parts after skipping the keyword's own words
// (1 for a one-word keyword, 2 for a two-word keyword).
func argParts(lc *ast.LiteCommand, nKeywordWords int) []ast.Part {
	if len(lc.Parts) <= nKeywordWords {
		return nil
	}
	return lc.Parts[nKeywordWords:]
}

func headIdent(lc *ast.LiteCommand, nWords int) ast.Ident {
	name := lc.Parts[0].Text
	pos := lc.Parts[0].Pos
	if nWords == 2 {
		name = lc.Parts[0].Text + " " + lc.Parts[1].Text
		pos = ast.Span2(lc.Parts[0].Pos, lc.Parts[1].Pos)
	}
	return ast.Ident{Name: name, NamePos: pos, ModuleId: ast.NoModuleId}
}
