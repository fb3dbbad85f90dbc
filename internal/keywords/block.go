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

// splitLiteCommands splits a flat part sequence into separate
// LiteCommands on top-level `;` (bracket/brace/paren depth zero),
// mirroring the coarse command grouping the lite parser performs
// upstream of this package for anything nested inside a `{ }` block
// body, which this package is itself responsible for unpacking.
func splitLiteCommands(parts []ast.Part) []*ast.LiteCommand {
	var out []*ast.LiteCommand
	depth := 0
	start := 0
	flush := func(end int) {
		if end > start {
			out = append(out, &ast.LiteCommand{Parts: parts[start:end]})
		}
	}
	for i, p := range parts {
		switch p.Text {
		case "[", "(", "{":
			depth++
		case "]", ")", "}":
			depth--
		case ";":
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(parts))
	return out
}

// splitPipeline splits one command's parts into the `|`-chained calls
// of a single pipeline (top-level pipes only).
func splitPipeline(parts []ast.Part) [][]ast.Part {
	var out [][]ast.Part
	depth := 0
	start := 0
	for i, p := range parts {
		switch p.Text {
		case "[", "(", "{":
			depth++
		case "]", ")", "}":
			depth--
		case "|":
			if depth == 0 {
				out = append(out, parts[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, parts[start:])
	return out
}

// stripBraces validates that parts is exactly `{ ... }` and returns
// the interior parts.
func stripBraces(parts []ast.Part, pos token.Pos, errs *errors.List) []ast.Part {
	if len(parts) < 2 || parts[0].Text != "{" || parts[len(parts)-1].Text != "}" {
		errs.Add(errors.Unclosedf(pos, "block"))
		return nil
	}
	return parts[1 : len(parts)-1]
}

// parseBlockBody lite-splits innerParts into pipelines of calls and
// resolves each call's head against ws — this is the "walk pipelines,
// dispatch on keyword, else plain call" step used both for def/for
// bodies and for module blocks (spec §4.4 step 5 reuses the same
// traversal for its restricted keyword subset; callers that need that
// restriction check the result's calls themselves).
func parseBlockBody(ws *symtab.WorkingSet, innerParts []ast.Part, errs *errors.List) *ast.Block {
	b := &ast.Block{Id: ast.NoBlockId}
	for _, lc := range splitLiteCommands(innerParts) {
		if len(lc.Parts) == 0 {
			continue
		}
		if _, ok := IsKeyword(lc); ok {
			p := Dispatch(ws, lc, errs)
			b.Pipelines = append(b.Pipelines, p)
			continue
		}
		segments := splitPipeline(lc.Parts)
		var exprs []ast.Expr
		for _, seg := range segments {
			if len(seg) == 0 {
				continue
			}
			head := ast.Ident{Name: seg[0].Text, NamePos: seg[0].Pos, ModuleId: ast.NoModuleId}
			call := parser.ParseCall(head, seg[1:], errs)
			if id, ok := ws.FindDecl(head.Name, ""); ok {
				call.DeclId = id
			} else if id, ok := ws.PredeclId(head.Name); ok {
				call.DeclId = id
			}
			exprs = append(exprs, ast.Expr{Kind: ast.ExprCall, Call: call, Pos: call.Pos})
		}
		if len(exprs) == 0 {
			continue
		}
		b.Pipelines = append(b.Pipelines, &ast.Pipeline{Exprs: exprs, Pos: ast.Span2(exprs[0].Pos, exprs[len(exprs)-1].Pos)})
	}
	b.Pos = ast.Span2(firstSpan(innerParts), lastSpan(innerParts))
	return b
}

func firstSpan(parts []ast.Part) token.Span {
	if len(parts) == 0 {
		return token.NoSpan
	}
	return parts[0].Pos
}

func lastSpan(parts []ast.Part) token.Span {
	if len(parts) == 0 {
		return token.NoSpan
	}
	return parts[len(parts)-1].Pos
}
