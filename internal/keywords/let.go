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
	"github.com/kdparse/kd/internal/consteval"
	"github.com/kdparse/kd/internal/core/symtab"
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/parser"
)

// handleLet implements `let NAME = EXPR`.
func handleLet(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	return bind(ws, lc, errs, "let")
}

// handleConst implements `const NAME = EXPR`, additionally requiring
// EXPR to be constant-evaluable.
func handleConst(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	return bind(ws, lc, errs, "const")
}

// handleMut implements `mut NAME = EXPR`.
func handleMut(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	return bind(ws, lc, errs, "mut")
}

// bind is the common `let`/`const`/`mut` parse: a hand-written split on
// the first top-level `=` so the right-hand side is parsed, and
// checked for self-reference, before the left-hand side's VarId is
// created.
func bind(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List, keyword string) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) < 3 || args[1].Text != "=" {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "= and a value"))
		return ast.PipelineFromCall(call)
	}
	name := unquoteIdent(args[0].Text)
	if err := symtab.ValidateBinderName(keyword, name, args[0].Pos.Start); err != nil {
		errs.Add(err)
		return ast.PipelineFromCall(call)
	}

	rhsParts := args[2:]
	rhs := parser.ParseValue(rhsParts, errs)

	if self := findSelfReference(ws, rhs, name); self != nil {
		errs.Add(errors.SelfReferentialBindingErr(self.Pos.Start, name))
		return ast.PipelineFromCall(call)
	}

	v := &symtab.VarInfo{Name: name, Const: keyword == "const", Pos: args[0].Pos}
	v.Type = exprTypeName(rhs)

	if keyword == "const" {
		val, err := consteval.Eval(rhs, constLookup(ws))
		if err != nil {
			errs.Add(err)
		} else {
			v.Value = rhs
			v.Type = val.TypeName()
		}
	} else {
		v.Value = rhs
	}

	varId := ws.AddVar(v)
	call.ParserInfo = map[string]ast.Expr{
		"value":  rhs,
		"binder": {Kind: ast.ExprVar, VarId: varId, Name: name, Pos: args[0].Pos},
	}
	call.DeclId = ast.NoDeclId
	return ast.PipelineFromCall(call)
}

// findSelfReference walks expr looking for an ExprVar node named name,
// the binder currently being defined, that does not resolve to an
// existing (prior) binding of that name — i.e. `let x = x` where the
// RHS $x can only mean the binder under construction, not some earlier
// `x` already in scope. const's evaluator already rejects this case
// (any name not yet bound fails as not-constant-evaluable); let/mut
// have no evaluator, so the walk reproduces that check here.
func findSelfReference(ws *symtab.WorkingSet, expr ast.Expr, name string) *ast.Expr {
	switch expr.Kind {
	case ast.ExprVar:
		if expr.Name != name {
			return nil
		}
		if _, ok := ws.FindVarByName(name); ok {
			return nil
		}
		e := expr
		return &e
	case ast.ExprList:
		for _, el := range expr.Elems {
			if f := findSelfReference(ws, el, name); f != nil {
				return f
			}
		}
	case ast.ExprBinOp:
		if expr.LHS != nil {
			if f := findSelfReference(ws, *expr.LHS, name); f != nil {
				return f
			}
		}
		if expr.RHS != nil {
			if f := findSelfReference(ws, *expr.RHS, name); f != nil {
				return f
			}
		}
	case ast.ExprRecord:
		for _, fld := range expr.Fields {
			if f := findSelfReference(ws, fld.Value, name); f != nil {
				return f
			}
		}
	case ast.ExprCall, ast.ExprKeyword:
		if expr.Call != nil {
			for _, p := range expr.Call.Positional {
				if f := findSelfReference(ws, p, name); f != nil {
					return f
				}
			}
			for _, v := range expr.Call.Flags {
				if f := findSelfReference(ws, v, name); f != nil {
					return f
				}
			}
		}
	}
	return nil
}

func exprTypeName(e ast.Expr) string {
	switch e.Kind {
	case ast.ExprString:
		return "string"
	case ast.ExprInt:
		return "int"
	case ast.ExprFloat:
		return "float"
	case ast.ExprBool:
		return "bool"
	case ast.ExprList:
		return "list"
	case ast.ExprRecord:
		return "record"
	default:
		return "any"
	}
}
