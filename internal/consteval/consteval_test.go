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

package consteval_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kdparse/kd/internal/consteval"
	"github.com/kdparse/kd/lang/ast"
)

func strExpr(s string) ast.Expr { return ast.Expr{Kind: ast.ExprString, Str: s} }
func intExpr(n int64) ast.Expr  { return ast.Expr{Kind: ast.ExprInt, Int: n} }
func floatExpr(f float64) ast.Expr {
	return ast.Expr{Kind: ast.ExprFloat, Float: f}
}

func binOp(op string, lhs, rhs ast.Expr) ast.Expr {
	return ast.Expr{Kind: ast.ExprBinOp, Op: op, LHS: &lhs, RHS: &rhs}
}

func TestEvalLiterals(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Expr
		want consteval.Value
	}{
		{"string", strExpr("hi"), consteval.Value{Kind: consteval.KindString, Str: "hi"}},
		{"int", intExpr(3), consteval.Value{Kind: consteval.KindInt, Int: 3}},
		{"float", floatExpr(1.5), consteval.Value{Kind: consteval.KindFloat, Float: 1.5}},
		{"bool", ast.Expr{Kind: ast.ExprBool, Bool: true}, consteval.Value{Kind: consteval.KindBool, Bool: true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := consteval.Eval(c.expr, nil)
			require.Nil(t, err)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Eval mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvalIntArithmetic(t *testing.T) {
	expr := binOp("+", intExpr(1), binOp("*", intExpr(2), intExpr(3)))
	got, err := consteval.Eval(expr, nil)
	require.Nil(t, err)
	require.Equal(t, consteval.KindInt, got.Kind)
	require.EqualValues(t, 7, got.Int)
}

func TestEvalIntDivisionFallsThroughToFloat(t *testing.T) {
	expr := binOp("/", intExpr(7), intExpr(2))
	got, err := consteval.Eval(expr, nil)
	require.Nil(t, err)
	require.Equal(t, consteval.KindFloat, got.Kind)
	require.InDelta(t, 3.5, got.Float, 1e-9)
}

func TestEvalStringConcat(t *testing.T) {
	expr := binOp("+", strExpr("foo"), strExpr("bar"))
	got, err := consteval.Eval(expr, nil)
	require.Nil(t, err)
	require.Equal(t, "foobar", got.Str)
}

func TestEvalVarLookup(t *testing.T) {
	lookup := func(name string) (consteval.Value, bool) {
		if name == "n" {
			return consteval.Value{Kind: consteval.KindInt, Int: 10}, true
		}
		return consteval.Value{}, false
	}
	expr := binOp("+", ast.Expr{Kind: ast.ExprVar, Name: "n"}, intExpr(1))
	got, err := consteval.Eval(expr, lookup)
	require.Nil(t, err)
	require.EqualValues(t, 11, got.Int)
}

func TestEvalUnknownVarErrors(t *testing.T) {
	expr := ast.Expr{Kind: ast.ExprVar, Name: "missing"}
	_, err := consteval.Eval(expr, func(string) (consteval.Value, bool) { return consteval.Value{}, false })
	require.NotNil(t, err)
}

func TestEvalNoLookupErrorsOnVar(t *testing.T) {
	expr := ast.Expr{Kind: ast.ExprVar, Name: "n"}
	_, err := consteval.Eval(expr, nil)
	require.NotNil(t, err)
}

func TestEvalCallIsNotConstEvaluable(t *testing.T) {
	expr := ast.Expr{Kind: ast.ExprCall, Call: &ast.Call{}}
	_, err := consteval.Eval(expr, nil)
	require.NotNil(t, err)
}

func TestEvalDivisionByZeroErrors(t *testing.T) {
	expr := binOp("/", floatExpr(1), floatExpr(0))
	_, err := consteval.Eval(expr, nil)
	require.NotNil(t, err)
}

func TestEvalListAndRecord(t *testing.T) {
	list := ast.Expr{Kind: ast.ExprList, Elems: []ast.Expr{intExpr(1), intExpr(2)}}
	got, err := consteval.Eval(list, nil)
	require.Nil(t, err)
	require.Len(t, got.List, 2)

	rec := ast.Expr{Kind: ast.ExprRecord, Fields: []ast.RecordField{
		{Key: "a", Value: intExpr(1)},
	}}
	got, err = consteval.Eval(rec, nil)
	require.Nil(t, err)
	require.Equal(t, int64(1), got.Record["a"].Int)
}
