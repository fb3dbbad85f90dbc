// Copyright 2018 The CUE Authors
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

package parser

import (
	"strconv"
	"strings"

	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/token"
)

// parser walks a flat slice of already whitespace-delimited parts —
// the lite parser upstream of this package has already done the
// bracket-aware splitting that would otherwise require re-scanning
// raw bytes. Recognizing literal shapes (numbers, strings, flags) is
// still this package's job.
type parser struct {
	parts []ast.Part
	idx   int
	errs  *errors.List
}

func (p *parser) atEnd() bool      { return p.idx >= len(p.parts) }
func (p *parser) cur() ast.Part    { return p.parts[p.idx] }
func (p *parser) advance()         { p.idx++ }

func (p *parser) parseValue() ast.Expr {
	lhs := p.parseValueAtom()
	for !p.atEnd() && isBinOp(p.cur().Text) {
		op := p.cur().Text
		p.advance()
		if p.atEnd() {
			p.errs.Add(errors.MissingPositionalf(lhs.Pos.End, "right-hand operand"))
			return lhs
		}
		rhs := p.parseValueAtom()
		l, r := lhs, rhs
		lhs = ast.Expr{
			Kind: ast.ExprBinOp,
			Op:   op,
			LHS:  &l,
			RHS:  &r,
			Pos:  token.Span{Start: l.Pos.Start, End: r.Pos.End},
		}
	}
	return lhs
}

func isBinOp(s string) bool {
	switch s {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

func (p *parser) parseValueAtom() ast.Expr {
	part := p.cur()
	text := part.Text

	switch {
	case text == "$":
		p.advance()
		return ast.Expr{Kind: ast.ExprGarbage, Pos: part.Pos}

	case strings.HasPrefix(text, "$"):
		p.advance()
		return ast.Expr{Kind: ast.ExprVar, Name: text[1:], Pos: part.Pos}

	case text == "[":
		return p.parseList()

	case text == "{":
		return p.parseRecord()

	case text == "(":
		return p.parseParenCall()

	case len(text) >= 2 && (text[0] == '"' || text[0] == '\''):
		p.advance()
		return ast.Expr{Kind: ast.ExprString, Str: unquote(text), Pos: part.Pos}

	case text == "true" || text == "false":
		p.advance()
		return ast.Expr{Kind: ast.ExprBool, Bool: text == "true", Pos: part.Pos}

	default:
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			p.advance()
			return ast.Expr{Kind: ast.ExprInt, Int: i, Pos: part.Pos}
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			p.advance()
			return ast.Expr{Kind: ast.ExprFloat, Float: f, Pos: part.Pos}
		}
		p.advance()
		return ast.Expr{Kind: ast.ExprString, Str: unquote(text), Pos: part.Pos}
	}
}

func (p *parser) parseList() ast.Expr {
	start := p.cur().Pos
	p.advance() // '['
	var elems []ast.Expr
	for !p.atEnd() && p.cur().Text != "]" {
		elems = append(elems, p.parseValue())
	}
	end := start
	if !p.atEnd() {
		end = p.cur().Pos
		p.advance() // ']'
	} else {
		p.errs.Add(errors.Unclosedf(start.Start, "list"))
	}
	return ast.Expr{Kind: ast.ExprList, Elems: elems, Pos: token.Span{Start: start.Start, End: end.End}}
}

func (p *parser) parseRecord() ast.Expr {
	start := p.cur().Pos
	p.advance() // '{'
	var fields []ast.RecordField
	for !p.atEnd() && p.cur().Text != "}" {
		key := unquote(p.cur().Text)
		p.advance()
		if !p.atEnd() && p.cur().Text == ":" {
			p.advance()
		}
		if p.atEnd() || p.cur().Text == "}" {
			p.errs.Add(errors.MissingPositionalf(start.End, "record value"))
			break
		}
		val := p.parseValue()
		fields = append(fields, ast.RecordField{Key: key, Value: val})
	}
	end := start
	if !p.atEnd() {
		end = p.cur().Pos
		p.advance() // '}'
	} else {
		p.errs.Add(errors.Unclosedf(start.Start, "record"))
	}
	return ast.Expr{Kind: ast.ExprRecord, Fields: fields, Pos: token.Span{Start: start.Start, End: end.End}}
}

// parseParenCall treats `(name args...)` as a nested call expression;
// the generic parser does not resolve name against the symbol table —
// keyword handlers that need that (e.g. const evaluation of
// `(open foo)`) inspect Call.Head.Name themselves.
func (p *parser) parseParenCall() ast.Expr {
	start := p.cur().Pos
	p.advance() // '('
	if p.atEnd() {
		p.errs.Add(errors.Unclosedf(start.Start, "parenthesized call"))
		return ast.Expr{Kind: ast.ExprGarbage, Pos: start}
	}
	head := ast.Ident{Name: p.cur().Text, NamePos: p.cur().Pos}
	p.advance()
	var argParts []ast.Part
	for !p.atEnd() && p.cur().Text != ")" {
		argParts = append(argParts, p.cur())
		p.advance()
	}
	end := start
	if !p.atEnd() {
		end = p.cur().Pos
		p.advance() // ')'
	} else {
		p.errs.Add(errors.Unclosedf(start.Start, "parenthesized call"))
	}
	call := ParseCall(head, argParts, p.errs)
	call.Pos = token.Span{Start: start.Start, End: end.End}
	return ast.Expr{Kind: ast.ExprCall, Call: call, Pos: call.Pos}
}

func isFlagPart(s string) bool {
	return strings.HasPrefix(s, "--") || (len(s) == 2 && s[0] == '-' && !isASCIIDigit(s[1]))
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func isBraceOpen(s string) bool { return s == "{" || s == "[" || s == "(" }

// splitFlag handles `--flag=value` inline assignment; other shapes
// return (name, nil) so the caller looks ahead for the value.
func splitFlag(s string) (string, *ast.Expr) {
	name := strings.TrimLeft(s, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		val := name[i+1:]
		name = name[:i]
		e := ast.Expr{Kind: ast.ExprString, Str: unquote(val)}
		return name, &e
	}
	return name, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		inner := s[1 : len(s)-1]
		if s[0] == '"' {
			if u, err := strconv.Unquote(s); err == nil {
				return u
			}
		}
		return inner
	}
	return s
}

func callSpan(head ast.Ident, args []ast.Part) token.Span {
	end := head.NamePos.End
	if len(args) > 0 {
		end = args[len(args)-1].Pos.End
	}
	return token.Span{Start: head.NamePos.Start, End: end}
}

func emptySpan(parts []ast.Part) token.Span {
	if len(parts) == 0 {
		return token.NoSpan
	}
	return parts[0].Pos
}

func spanOf(parts []ast.Part) token.Span {
	if len(parts) == 0 {
		return token.NoSpan
	}
	return token.Span{Start: parts[0].Pos.Start, End: parts[len(parts)-1].Pos.End}
}

func parseSignatureBody(parts []ast.Part, errs *errors.List) *ast.Signature {
	sig := &ast.Signature{}
	i := 0
	for i < len(parts) {
		pt := parts[i]
		if pt.Text == "," {
			i++
			continue
		}
		if strings.HasPrefix(pt.Text, "--") || strings.HasPrefix(pt.Text, "-") {
			flag := ast.Flag{Long: strings.TrimLeft(pt.Text, "-")}
			i++
			if i < len(parts) && parts[i].Text == ":" {
				i++
				if i < len(parts) {
					flag.Type = parts[i].Text
					i++
				}
			}
			sig.Flags = append(sig.Flags, flag)
			continue
		}
		if strings.HasPrefix(pt.Text, "...") {
			name := strings.TrimPrefix(pt.Text, "...")
			rest := ast.Param{Name: name}
			i++
			if i < len(parts) && parts[i].Text == ":" {
				i++
				if i < len(parts) {
					rest.Type = parts[i].Text
					i++
				}
			}
			sig.Rest = &rest
			continue
		}
		optional := strings.HasSuffix(pt.Text, "?")
		name := strings.TrimSuffix(pt.Text, "?")
		param := ast.Param{Name: name}
		i++
		if i < len(parts) && parts[i].Text == ":" {
			i++
			if i < len(parts) {
				param.Type = parts[i].Text
				i++
			}
		}
		if i < len(parts) && parts[i].Text == "=" {
			i++
			if i < len(parts) {
				v := parts[i]
				val := ParseValue([]ast.Part{v}, errs)
				param.Default = &val
				i++
				optional = true
			}
		}
		if optional {
			sig.Optional = append(sig.Optional, param)
		} else {
			sig.Positional = append(sig.Positional, param)
		}
	}
	return sig
}
