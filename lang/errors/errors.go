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

// Package errors defines the shared diagnostic type used across the
// lexer, parser, and symbol table: one error-per-construct, accumulated
// into a List, first-error-wins.
package errors

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/kdparse/kd/lang/token"
)

// Message is a deferred, unformatted error message.
type Message struct {
	format string
	args   []interface{}
}

func NewMessagef(format string, args ...interface{}) Message {
	return Message{format: format, args: args}
}

func (m *Message) Msg() (format string, args []interface{}) {
	return m.format, m.args
}

func (m *Message) Error() string {
	return fmt.Sprintf(m.format, m.args...)
}

// Error is the common diagnostic type. Every kind in the taxonomy
// (UnknownState, Expected, CyclicalModuleImport, ...) is a Code on a
// value of this single interface, constructed via Newf/one of the
// kind-specific helpers in kinds.go.
type Error interface {
	error
	Position() token.Pos
	InputPositions() []token.Pos
	Code() Code
	Msg() (format string, args []interface{})
}

// Is reports whether err or any error in its chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain assignable to target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Unwrap returns the result of calling Unwrap on err, if it implements it.
func Unwrap(err error) error { return errors.Unwrap(err) }

// Newf creates a generic Error with Code UnknownState.
func Newf(p token.Pos, format string, args ...interface{}) Error {
	return &posError{code: UnknownState, pos: p, Message: NewMessagef(format, args...)}
}

// WithCode creates an Error of a specific taxonomy Code.
func WithCode(code Code, p token.Pos, format string, args ...interface{}) Error {
	return &posError{code: code, pos: p, Message: NewMessagef(format, args...)}
}

// Wrapf wraps err with a new positioned message.
func Wrapf(err error, p token.Pos, format string, args ...interface{}) Error {
	parent := &posError{code: UnknownState, pos: p, Message: NewMessagef(format, args...)}
	return Wrap(parent, err)
}

// Wrap makes child a subordinate cause of parent.
func Wrap(parent Error, child error) Error {
	if child == nil {
		return parent
	}
	if a, ok := child.(List); ok {
		b := make(List, len(a))
		for i, e := range a {
			b[i] = &wrapped{parent, e}
		}
		return b
	}
	return &wrapped{parent, child}
}

type wrapped struct {
	main Error
	wrap error
}

func (e *wrapped) Error() string {
	msg := e.main.Error()
	if e.wrap == nil {
		return msg
	}
	if msg == "" {
		return e.wrap.Error()
	}
	return fmt.Sprintf("%s: %s", msg, e.wrap)
}

func (e *wrapped) Is(target error) bool   { return Is(e.main, target) }
func (e *wrapped) As(target interface{}) bool { return As(e.main, target) }
func (e *wrapped) Code() Code              { return e.main.Code() }
func (e *wrapped) Msg() (string, []interface{}) { return e.main.Msg() }

func (e *wrapped) InputPositions() []token.Pos {
	return append(e.main.InputPositions(), Positions(e.wrap)...)
}

func (e *wrapped) Position() token.Pos {
	if p := e.main.Position(); p.IsValid() {
		return p
	}
	if w, ok := e.wrap.(Error); ok {
		return w.Position()
	}
	return token.NoPos
}

func (e *wrapped) Unwrap() error { return e.wrap }

// Promote converts a plain Go error into an Error, defaulting its Code
// to InternalError since it did not originate from this package's
// taxonomy.
func Promote(err error, msg string) Error {
	if e, ok := err.(Error); ok {
		return e
	}
	e := Wrapf(err, token.NoPos, "%s", msg)
	if pe, ok := e.(*wrapped); ok {
		pe.main.(*posError).code = InternalError
	}
	return e
}

type posError struct {
	code Code
	pos  token.Pos
	Message
}

func (e *posError) Code() Code                { return e.code }
func (e *posError) Position() token.Pos       { return e.pos }
func (e *posError) InputPositions() []token.Pos { return nil }

// Positions returns every position carried by err, primary position
// first, deduplicated.
func Positions(err error) []token.Pos {
	e := Error(nil)
	if !errors.As(err, &e) {
		return nil
	}
	a := make([]token.Pos, 0, 3)
	if p := e.Position(); p.IsValid() {
		a = append(a, p)
	}
	for _, p := range e.InputPositions() {
		if p.IsValid() {
			a = append(a, p)
		}
	}
	return slices.Compact(a)
}

// Append combines a and b, flattening Lists, preserving first-error order.
func Append(a, b Error) Error {
	switch x := a.(type) {
	case nil:
		return b
	case List:
		return appendToList(x, b)
	}
	return appendToList(List{a}, b)
}

// Errors flattens err into its individual Error values.
func Errors(err error) []Error {
	if err == nil {
		return nil
	}
	var l List
	var one Error
	switch {
	case As(err, &l):
		return l
	case As(err, &one):
		return []Error{one}
	default:
		return []Error{Promote(err, "")}
	}
}

func appendToList(a List, err Error) List {
	switch x := err.(type) {
	case nil:
		return a
	case List:
		for _, e := range x {
			a = appendToList(a, e)
		}
		return a
	default:
		for _, e := range a {
			if e == err {
				return a
			}
		}
		return append(a, err)
	}
}

// List is a first-error-wins accumulator: callers append every diagnostic
// a handler produces, then read List[0] as "the" error per spec's
// one-error-per-construct policy, or range over the rest for -v output.
type List []Error

func (p List) Is(target error) bool {
	for _, e := range p {
		if errors.Is(e, target) {
			return true
		}
	}
	return false
}

func (p List) As(target interface{}) bool {
	for _, e := range p {
		if errors.As(e, target) {
			return true
		}
	}
	return false
}

// Add appends err to the list, flattening nested Lists.
func (p *List) Add(err Error) { *p = appendToList(*p, err) }

// AddNewf appends a generic positioned message.
func (p *List) AddNewf(pos token.Pos, msg string, args ...interface{}) {
	p.Add(&posError{code: UnknownState, pos: pos, Message: NewMessagef(msg, args...)})
}

// Reset empties the list.
func (p *List) Reset() { *p = (*p)[:0] }

// NewList boxes a slice of errors as a List-compatible Error, or nil if
// the slice is empty.
func NewList(errs ...Error) Error {
	if len(errs) == 0 {
		return nil
	}
	var l List
	for _, e := range errs {
		l.Add(e)
	}
	return l
}

// Sort orders a List by position, then path-free message.
func (p List) Sort() {
	slices.SortFunc(p, func(a, b Error) int {
		if c := cmp.Compare(a.Position(), b.Position()); c != 0 {
			return c
		}
		return cmp.Compare(a.Error(), b.Error())
	})
}

// RemoveMultiples sorts and drops near-duplicate errors at the same
// position, keeping only the first per site — spec §7's
// first-error-wins applied across an entire pass.
func (p *List) RemoveMultiples() {
	p.Sort()
	*p = slices.CompactFunc(*p, func(a, b Error) bool {
		return a.Position() == b.Position() && a.Error() == b.Error()
	})
}

// Sanitize sorts and deduplicates, collapsing a one-element list to a
// bare Error.
func Sanitize(err Error) Error {
	if err == nil {
		return nil
	}
	if l, ok := err.(List); ok {
		a := slices.Clone(l)
		a.RemoveMultiples()
		if len(a) == 1 {
			return a[0]
		}
		return a
	}
	return err
}

func (p List) Error() string {
	format, args := p.Msg()
	return fmt.Sprintf(format, args...)
}

func (p List) Code() Code {
	if len(p) == 0 {
		return UnknownState
	}
	return p[0].Code()
}

func (p List) Msg() (format string, args []interface{}) {
	switch len(p) {
	case 0:
		return "no errors", nil
	case 1:
		return p[0].Msg()
	default:
		return "%s (and %d more errors)", []interface{}{p[0], len(p) - 1}
	}
}

func (p List) Position() token.Pos {
	if len(p) == 0 {
		return token.NoPos
	}
	return p[0].Position()
}

func (p List) InputPositions() []token.Pos {
	if len(p) == 0 {
		return nil
	}
	return p[0].InputPositions()
}

// Err returns nil for an empty list, else the list itself as an error.
func (p List) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// Config controls how Print renders diagnostics.
type Config struct {
	Fset *token.FileSet
	Cwd  string
}

// Print writes one line per diagnostic in err (or the whole err if it
// is not a List) to w.
func Print(w io.Writer, err error, cfg *Config) {
	if cfg == nil {
		cfg = &Config{}
	}
	for _, e := range Errors(err) {
		printError(w, e, cfg)
	}
}

// Details renders err through Print into a string.
func Details(err error, cfg *Config) string {
	var b strings.Builder
	Print(&b, err, cfg)
	return b.String()
}

// String renders a single Error without position information beyond
// its formatted message.
func String(err Error) string {
	format, args := err.Msg()
	return fmt.Sprintf(format, args...)
}

func printError(w io.Writer, err Error, cfg *Config) {
	format, args := err.Msg()
	fmt.Fprintf(w, format, args...)
	if cfg.Fset != nil {
		if p := err.Position(); p.IsValid() {
			pos := cfg.Fset.Position(p)
			fmt.Fprintf(w, " (%s)", pos.String())
		}
	}
	fmt.Fprintln(w)
}
