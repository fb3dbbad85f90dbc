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

// Package parser implements the generic expression parser that
// spec.md treats as an external collaborator of the keyword-directed
// core: ParseCall, ParseValue, ParseSignature, and ParseImportPattern.
// Keyword handlers in internal/keywords call these as black boxes —
// they consume a slice of ast.Part source spans and return an AST node
// plus accumulated errors, with no knowledge of the symbol table.
package parser

import (
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/token"
)

// ParseCall parses argParts as the argument list of a call whose head
// is already known, producing positional expressions and flags. A
// `{ ... }` argument becomes a single ExprBlockRef positional with no
// BlockId; the keyword handler parses that block's body itself. It
// does not resolve head against any symbol table — callers that need
// a DeclId attach it themselves.
func ParseCall(head ast.Ident, argParts []ast.Part, errs *errors.List) *ast.Call {
	p := &parser{parts: argParts, errs: errs}
	call := &ast.Call{Head: head, DeclId: ast.NoDeclId, Block: ast.NoBlockId, Flags: map[string]ast.Expr{}}
	call.Pos = callSpan(head, argParts)
	for !p.atEnd() {
		part := p.cur()
		if isFlagPart(part.Text) {
			p.advance()
			name, val := splitFlag(part.Text)
			if val != nil {
				call.Flags[name] = *val
				continue
			}
			// look ahead for a value unless the next token is itself a flag
			if !p.atEnd() && !isFlagPart(p.cur().Text) && !isBraceOpen(p.cur().Text) {
				v := p.parseValueAtom()
				call.Flags[name] = v
			} else {
				call.Flags[name] = ast.Expr{Kind: ast.ExprBool, Bool: true, Pos: part.Pos}
			}
			continue
		}
		if part.Text == "{" { // a block argument, not a record
			start, depth := part.Pos, 0
			for !p.atEnd() {
				t := p.cur()
				p.advance()
				if t.Text == "{" {
					depth++
				} else if t.Text == "}" {
					depth--
				}
				if depth == 0 {
					call.Positional = append(call.Positional, ast.Expr{Kind: ast.ExprBlockRef, BlockId: ast.NoBlockId, Pos: token.Span{Start: start.Start, End: t.Pos.End}})
					break
				}
			}
			continue
		}
		v := p.parseValue()
		call.Positional = append(call.Positional, v)
	}
	return call
}

// ParseValue parses parts as a single value expression: a literal, a
// variable reference, a parenthesized sub-call, a list, a record, or a
// left-associative chain of binary operators over those.
func ParseValue(parts []ast.Part, errs *errors.List) ast.Expr {
	p := &parser{parts: parts, errs: errs}
	if p.atEnd() {
		return ast.Expr{Kind: ast.ExprGarbage, Pos: emptySpan(parts)}
	}
	return p.parseValue()
}

// ParseSignature parses a `[a b --flag: type]`-shaped parameter list
// out of the front of parts and returns the remaining parts (the
// block, if any, is left untouched for the caller to extract).
func ParseSignature(parts []ast.Part, errs *errors.List) (*ast.Signature, []ast.Part) {
	if len(parts) == 0 || !(parts[0].Text == "[" || parts[0].Text == "(") {
		return &ast.Signature{}, parts
	}
	closer := "]"
	if parts[0].Text == "(" {
		closer = ")"
	}
	depth := 0
	end := -1
	for i, pt := range parts {
		if pt.Text == parts[0].Text {
			depth++
		} else if pt.Text == closer {
			depth--
			if depth == 0 {
				end = i
				break
			}
		}
	}
	if end == -1 {
		errs.Add(errors.Unclosedf(parts[0].Pos.Start, "signature"))
		return &ast.Signature{}, nil
	}
	sig := parseSignatureBody(parts[1:end], errs)
	return sig, parts[end+1:]
}

// ParseImportPattern parses `head [glob | name | [name...]]` out of
// parts. The head is left unresolved (ModuleId is NoModuleId); the
// caller (internal/keywords) resolves it against the WorkingSet.
func ParseImportPattern(parts []ast.Part, errs *errors.List) *ast.ImportPattern {
	if len(parts) == 0 {
		errs.Add(errors.MissingPositionalf(token.NoPos, "import pattern"))
		return &ast.ImportPattern{}
	}
	head := ast.Ident{Name: unquote(parts[0].Text), NamePos: parts[0].Pos, ModuleId: ast.NoModuleId}
	ip := &ast.ImportPattern{Head: head, Pos: spanOf(parts)}
	rest := parts[1:]
	if len(rest) == 0 {
		return ip
	}
	if rest[0].Text == "*" {
		ip.Members = append(ip.Members, ast.ImportPatternMember{Kind: ast.MemberGlob, Pos: rest[0].Pos})
		return ip
	}
	if rest[0].Text == "[" {
		var names []ast.NameWithSpan
		for _, pt := range rest[1:] {
			if pt.Text == "]" {
				break
			}
			names = append(names, ast.NameWithSpan{Name: unquote(pt.Text), Pos: pt.Pos})
		}
		ip.Members = append(ip.Members, ast.ImportPatternMember{Kind: ast.MemberList, Names: names, Pos: rest[0].Pos})
		return ip
	}
	ip.Members = append(ip.Members, ast.ImportPatternMember{Kind: ast.MemberName, Name: unquote(rest[0].Text), Pos: rest[0].Pos})
	return ip
}
