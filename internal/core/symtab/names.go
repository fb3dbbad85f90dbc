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

package symtab

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/token"
)

// builtinVarNames are the identifiers `let`/`const`/`mut` refuse as
// binder names (spec §4.3).
var builtinVarNames = map[string]bool{
	"in": true, "nu": true, "env": true, "nothing": true,
}

// unaliasableKeywords is the fixed set of parser keywords that cannot
// be shadowed by `alias` (spec §4.2); a short allow-list of overlay
// subcommands remains aliasable.
var unaliasableKeywords = map[string]bool{
	"def": true, "def-env": true, "extern": true, "alias": true,
	"old-alias": true, "let": true, "const": true, "mut": true,
	"module": true, "export": true, "export-env": true, "use": true,
	"hide": true, "source": true, "source-env": true, "register": true,
	"for": true, "where": true,
}

var aliasableOverlaySubcommands = map[string]bool{
	"overlay new": true, "overlay use": true, "overlay hide": true,
}

// NormalizeName applies NFC normalization so that visually identical
// names written with different Unicode encodings collide predictably
// when used as declaration or binder names.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// ValidateCommandName rejects names forbidden as a def/def-env/extern/
// structural-alias name: not a bare identifier, containing '#' or '^',
// or parsable as a number or byte-size literal.
func ValidateCommandName(name string, pos token.Pos) errors.Error {
	name = NormalizeName(name)
	if strings.ContainsAny(name, "#^") {
		return errors.InvalidCommandName(pos, name)
	}
	if ast.LooksLikeNumber(name) || ast.LooksLikeFileSize(name) {
		return errors.InvalidCommandName(pos, name)
	}
	if !ast.IsValidIdent(name) {
		return errors.InvalidCommandName(pos, name)
	}
	return nil
}

// ValidateAliasTarget rejects aliasing a parser keyword unless it (or
// its two-word form) is in the aliasable allow-list.
func ValidateAliasTarget(keywordText string, pos token.Pos) errors.Error {
	if aliasableOverlaySubcommands[keywordText] {
		return nil
	}
	first := keywordText
	if i := strings.IndexByte(keywordText, ' '); i >= 0 {
		first = keywordText[:i]
	}
	if unaliasableKeywords[first] {
		return errors.CantAliasKeywordErr(pos, keywordText)
	}
	return nil
}

// ValidateBinderName rejects `let`/`const`/`mut` target names that
// shadow a builtin variable.
func ValidateBinderName(keyword, name string, pos token.Pos) errors.Error {
	if !builtinVarNames[name] {
		return nil
	}
	switch keyword {
	case "let":
		return errors.LetBuiltinVarErr(pos, name)
	case "const":
		return errors.ConstBuiltinVarErr(pos, name)
	case "mut":
		return errors.MutBuiltinVarErr(pos, name)
	}
	return nil
}
