// Copyright 2019 CUE Authors
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

// Package ast defines the AST produced by the keyword-directed parser:
// lite commands, pipelines, calls, and the handful of expression forms
// the generic value/call parser understands.
package ast

import "github.com/kdparse/kd/lang/token"

// Id spaces. Disjoint, dense, process-lifetime-stable integers; see
// spec.md §3. Ids start at zero; -1 (the No* constants below) marks
// "unset" in every space.
type (
	DeclId    int
	AliasId   int
	ModuleId  int
	BlockId   int
	VarId     int
	OverlayId int
)

const (
	NoDeclId    DeclId    = -1
	NoAliasId   AliasId   = -1
	NoModuleId  ModuleId  = -1
	NoBlockId   BlockId   = -1
	NoVarId     VarId     = -1
	NoOverlayId OverlayId = -1
)

// Comment is a single `#`-led comment line attached to a node.
type Comment struct {
	Span token.Span
	Text string
}

// CommentGroup is a contiguous run of comment lines immediately
// preceding a declaration — its "usage" text.
type CommentGroup struct {
	List []Comment
}

// Text joins the group's lines with newlines, stripped of their
// leading comment marker.
func (g *CommentGroup) Text() string {
	if g == nil {
		return ""
	}
	s := ""
	for i, c := range g.List {
		if i > 0 {
			s += "\n"
		}
		s += c.Text
	}
	return s
}

// Node is any AST element. All nodes carry a span.
type Node interface {
	Span() token.Span
}

// Ident is a bare identifier occurrence: a command name, a variable
// reference, a module head.
type Ident struct {
	Name     string
	NamePos  token.Span
	ModuleId ModuleId // set when this ident is pre-bound to a module
}

func (i *Ident) Span() token.Span { return i.NamePos }

// Part is one lite-parser token span with its raw bytes, the unit the
// keyword dispatcher and generic parsers consume.
type Part struct {
	Text string
	Pos  token.Span
}

func (p Part) Span() token.Span { return p.Pos }

// LiteCommand is the pre-tokenized fragment the lite parser hands the
// dispatcher: a sequence of part-spans plus any comments attached
// immediately above it.
type LiteCommand struct {
	Parts    []Part
	Comments *CommentGroup
}

func (c *LiteCommand) Span() token.Span {
	if len(c.Parts) == 0 {
		return token.NoSpan
	}
	return token.Span{Start: c.Parts[0].Pos.Start, End: c.Parts[len(c.Parts)-1].Pos.End}
}

// Signature describes a callable's parameters: positional, optional,
// rest, and flags, each with an optional type annotation and default.
type Signature struct {
	Positional []Param
	Optional   []Param
	Rest       *Param
	Flags      []Flag
	InputType  string
	OutputType string
}

// Param is one positional/optional/rest parameter.
type Param struct {
	Name    string
	Type    string
	Default *Expr // nil if none
	VarId   VarId
}

// Flag is one named flag (long name, optional short alias, optional
// value type — a boolean switch has an empty Type).
type Flag struct {
	Long  string
	Short string
	Type  string
}

// ExprKind discriminates the small set of expression forms this
// parser's black-box collaborators (ParseValue/ParseCall) produce.
type ExprKind int

const (
	ExprGarbage ExprKind = iota
	ExprCall
	ExprString
	ExprInt
	ExprFloat
	ExprBool
	ExprVar
	ExprList
	ExprRecord
	ExprBinOp
	ExprImportPattern
	ExprOverlay
	ExprKeyword
	ExprBlockRef
)

// Expr is an expression node. Exactly one of its typed fields is
// meaningful, selected by Kind — deliberately a flat sum type rather
// than an interface hierarchy, mirroring the small, closed expression
// grammar this layer's black-box parsers are contracted to return.
type Expr struct {
	Kind ExprKind
	Pos  token.Span

	// ExprCall / ExprKeyword
	Call *Call

	// ExprString
	Str string
	// ExprInt
	Int int64
	// ExprFloat
	Float float64
	// ExprBool
	Bool bool
	// ExprVar
	VarId VarId
	Name  string

	// ExprList / ExprBinOp operands
	Elems []Expr
	Op    string
	LHS   *Expr
	RHS   *Expr

	// ExprRecord
	Fields []RecordField

	// ExprImportPattern
	Import *ImportPattern

	// ExprOverlay
	OverlayModule ModuleId

	// ExprBlockRef
	BlockId BlockId
}

func (e Expr) Span() token.Span { return e.Pos }

// RecordField is one key/value pair of a record literal.
type RecordField struct {
	Key   string
	Value Expr
}

// Call is a parsed invocation: head + positional/named arguments. It
// is produced by the generic call parser and mutated in place by
// keyword handlers (decl_id rewriting for `export`, parser-info
// attachment for `use`/`source`).
type Call struct {
	Head       Ident
	DeclId     DeclId
	Positional []Expr
	Flags      map[string]Expr // present flags; boolean flags map to ExprBool{true}
	Block      BlockId         // NoBlockId if the call has no attached block
	ParserInfo map[string]Expr // keyword-specific annotations threaded to the evaluator
	Pos        token.Span
}

func (c *Call) Span() token.Span { return c.Pos }

// HasFlag reports whether the named flag was supplied.
func (c *Call) HasFlag(name string) bool {
	if c.Flags == nil {
		return false
	}
	_, ok := c.Flags[name]
	return ok
}

// Positionalf returns the nth positional expression, or nil.
func (c *Call) Positionalf(n int) *Expr {
	if n < 0 || n >= len(c.Positional) {
		return nil
	}
	return &c.Positional[n]
}

// Pipeline is one `|`-chained sequence of calls; the keyword handlers
// in this parser only ever build single-call pipelines, wrapping their
// Call in Expr{Kind: ExprCall}.
type Pipeline struct {
	Exprs []Expr
	Pos   token.Span
}

func (p *Pipeline) Span() token.Span { return p.Pos }

// PipelineFromCall is the common case: a pipeline of exactly one call.
func PipelineFromCall(call *Call) *Pipeline {
	e := Expr{Kind: ExprCall, Pos: call.Pos, Call: call}
	return &Pipeline{Exprs: []Expr{e}, Pos: call.Pos}
}

// GarbagePipeline produces a placeholder pipeline for a span that
// failed to parse, so the caller always gets a valid AST shape even
// when an error is also returned (spec.md §7 propagation policy).
func GarbagePipeline(span token.Span) *Pipeline {
	call := &Call{Head: Ident{Name: "", NamePos: span}, DeclId: NoDeclId, Block: NoBlockId, Pos: span}
	return PipelineFromCall(call)
}

// Block is a top-level or nested sequence of pipelines sharing one
// scope, plus whether any pipeline recursively invokes the decl being
// defined (set by the `def`/`def-env` handler, spec.md §4.3 step 6).
type Block struct {
	Id        BlockId
	Pipelines []*Pipeline
	Signature *Signature // non-nil for a def/def-env/for body
	Recursive bool
	Pos       token.Span
}

func (b *Block) Span() token.Span { return b.Pos }

// ImportPatternMemberKind discriminates the three import-pattern
// member shapes of spec.md §3.
type ImportPatternMemberKind int

const (
	MemberGlob ImportPatternMemberKind = iota
	MemberName
	MemberList
)

// ImportPatternMember is one member of an import pattern following the
// head (spec.md §3's Glob / Name / List).
type ImportPatternMember struct {
	Kind  ImportPatternMemberKind
	Name  string         // MemberName
	Names []NameWithSpan // MemberList
	Pos   token.Span
}

// NameWithSpan pairs a raw name with the span it was written at, used
// by MemberList entries and by Hidden below.
type NameWithSpan struct {
	Name string
	Pos  token.Span
}

// ImportPattern is `head members…`, matched against a module by the
// import-pattern matcher (spec.md §4.1, §4.5).
type ImportPattern struct {
	Head    Ident
	Members []ImportPatternMember
	Hidden  map[string]bool // names removed post-resolution (set by `hide`)
	Pos     token.Span
}

func (p *ImportPattern) Span() token.Span { return p.Pos }

// Span2 combines two spans into the smallest span covering both,
// assuming a precedes b in the source buffer.
func Span2(a, b token.Span) token.Span {
	return token.Span{Start: a.Start, End: b.End}
}
