// Copyright 2024 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package consteval implements the minimal constant evaluator required
// for `const` bindings and the path positionals of `source`, `use`,
// `overlay use`, and `register`: string literals, integer/float
// arithmetic, list/record construction, and variable lookups into
// previously declared constants. Anything else — a call to a
// non-constant command, for instance — is an error.
package consteval

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
)

var decCtx apd.Context

func init() {
	decCtx = apd.BaseContext
	decCtx.Precision = 24
}

// Lookup resolves a variable name to a previously evaluated constant.
// Handlers supply this by closing over the WorkingSet's var table.
type Lookup func(name string) (Value, bool)

// Kind discriminates the small set of constant value shapes.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindList
	KindRecord
)

// Value is a fully evaluated constant.
type Value struct {
	Kind   Kind
	Str    string
	Int    int64
	Float  float64
	Bool   bool
	List   []Value
	Record map[string]Value
}

// TypeName returns the inferred type name stored on a VarInfo for a
// successfully evaluated constant.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	}
	return "any"
}

// AsString returns v's string form for positional arguments that take
// a bare path or name (`source`, `use`, `register`); non-string values
// are rejected by the caller before reaching this point.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// Eval evaluates expr to a constant Value using lookup to resolve
// ExprVar references. It returns a single error (spec's
// one-error-per-construct policy) on the first node it cannot
// constant-evaluate.
func Eval(expr ast.Expr, lookup Lookup) (Value, errors.Error) {
	switch expr.Kind {
	case ast.ExprString:
		return Value{Kind: KindString, Str: expr.Str}, nil
	case ast.ExprInt:
		return Value{Kind: KindInt, Int: expr.Int}, nil
	case ast.ExprFloat:
		return Value{Kind: KindFloat, Float: expr.Float}, nil
	case ast.ExprBool:
		return Value{Kind: KindBool, Bool: expr.Bool}, nil
	case ast.ExprVar:
		if lookup == nil {
			return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Name)
		}
		v, ok := lookup(expr.Name)
		if !ok {
			return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Name)
		}
		return v, nil
	case ast.ExprList:
		out := make([]Value, 0, len(expr.Elems))
		for _, e := range expr.Elems {
			v, err := Eval(e, lookup)
			if err != nil {
				return Value{}, err
			}
			out = append(out, v)
		}
		return Value{Kind: KindList, List: out}, nil
	case ast.ExprRecord:
		rec := make(map[string]Value, len(expr.Fields))
		for _, f := range expr.Fields {
			v, err := Eval(f.Value, lookup)
			if err != nil {
				return Value{}, err
			}
			rec[f.Key] = v
		}
		return Value{Kind: KindRecord, Record: rec}, nil
	case ast.ExprBinOp:
		return evalBinOp(expr, lookup)
	default:
		return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, "")
	}
}

func evalBinOp(expr ast.Expr, lookup Lookup) (Value, errors.Error) {
	lhs, err := Eval(*expr.LHS, lookup)
	if err != nil {
		return Value{}, err
	}
	rhs, err := Eval(*expr.RHS, lookup)
	if err != nil {
		return Value{}, err
	}
	if lhs.Kind == KindString && rhs.Kind == KindString && expr.Op == "+" {
		return Value{Kind: KindString, Str: lhs.Str + rhs.Str}, nil
	}
	if !isNumeric(lhs) || !isNumeric(rhs) {
		return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Op)
	}
	if lhs.Kind == KindInt && rhs.Kind == KindInt {
		return evalIntOp(expr, lhs.Int, rhs.Int)
	}
	return evalFloatOp(expr, toFloat(lhs), toFloat(rhs))
}

func isNumeric(v Value) bool { return v.Kind == KindInt || v.Kind == KindFloat }

func toFloat(v Value) float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

func evalIntOp(expr ast.Expr, l, r int64) (Value, errors.Error) {
	var x, y, z apd.Decimal
	x.SetInt64(l)
	y.SetInt64(r)
	var cond apd.Condition
	var err error
	switch expr.Op {
	case "+":
		cond, err = decCtx.Add(&z, &x, &y)
	case "-":
		cond, err = decCtx.Sub(&z, &x, &y)
	case "*":
		cond, err = decCtx.Mul(&z, &x, &y)
	case "/":
		return evalFloatOp(expr, float64(l), float64(r))
	default:
		return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Op)
	}
	if err != nil || cond.Any() {
		return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Op)
	}
	n, err := z.Int64()
	if err != nil {
		return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Op)
	}
	return Value{Kind: KindInt, Int: n}, nil
}

func evalFloatOp(expr ast.Expr, l, r float64) (Value, errors.Error) {
	switch expr.Op {
	case "+":
		return Value{Kind: KindFloat, Float: l + r}, nil
	case "-":
		return Value{Kind: KindFloat, Float: l - r}, nil
	case "*":
		return Value{Kind: KindFloat, Float: l * r}, nil
	case "/":
		if r == 0 {
			return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Op)
		}
		return Value{Kind: KindFloat, Float: l / r}, nil
	}
	return Value{}, errors.NotConstEvaluableErr(expr.Pos.Start, expr.Op)
}
