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

package errors

import "github.com/kdparse/kd/lang/token"

// Code names one kind in the parser's error taxonomy. It exists so
// callers (and tests) can switch on "what kind of thing went wrong"
// without string-matching messages.
type Code int

const (
	UnknownState Code = iota

	// shape errors
	Expected
	ExpectedKeyword
	MissingPositional
	ExtraPositional
	Unclosed
	IncorrectValue

	// name errors
	CommandDefNotValid
	AliasNotValid
	DuplicateCommandDef
	NamedAsModule
	ExportMainAliasNotAllowed
	CantAliasKeyword
	LetBuiltinVar
	ConstBuiltinVar
	MutBuiltinVar

	// resolution errors
	ModuleNotFound
	ModuleOrOverlayNotFound
	ExportNotFound
	SourcedFileNotFound
	RegisteredFileNotFound
	CyclicalModuleImport
	InvalidModuleFilePath
	ActiveOverlayNotFound
	CantRemoveLastOverlay
	CantHideDefaultOverlay
	OverlayPrefixMismatch
	CantAddOverlayHelp
	SelfReferentialBinding

	// value errors
	NonUtf8
	NeedsPositiveValue
	LabeledError
	NotConstEvaluable

	// internal errors
	InternalError
)

func (c Code) String() string {
	switch c {
	case Expected:
		return "Expected"
	case ExpectedKeyword:
		return "ExpectedKeyword"
	case MissingPositional:
		return "MissingPositional"
	case ExtraPositional:
		return "ExtraPositional"
	case Unclosed:
		return "Unclosed"
	case IncorrectValue:
		return "IncorrectValue"
	case CommandDefNotValid:
		return "CommandDefNotValid"
	case AliasNotValid:
		return "AliasNotValid"
	case DuplicateCommandDef:
		return "DuplicateCommandDef"
	case NamedAsModule:
		return "NamedAsModule"
	case ExportMainAliasNotAllowed:
		return "ExportMainAliasNotAllowed"
	case CantAliasKeyword:
		return "CantAliasKeyword"
	case LetBuiltinVar:
		return "LetBuiltinVar"
	case ConstBuiltinVar:
		return "ConstBuiltinVar"
	case MutBuiltinVar:
		return "MutBuiltinVar"
	case ModuleNotFound:
		return "ModuleNotFound"
	case ModuleOrOverlayNotFound:
		return "ModuleOrOverlayNotFound"
	case ExportNotFound:
		return "ExportNotFound"
	case SourcedFileNotFound:
		return "SourcedFileNotFound"
	case RegisteredFileNotFound:
		return "RegisteredFileNotFound"
	case CyclicalModuleImport:
		return "CyclicalModuleImport"
	case InvalidModuleFilePath:
		return "InvalidModuleFilePath"
	case ActiveOverlayNotFound:
		return "ActiveOverlayNotFound"
	case CantRemoveLastOverlay:
		return "CantRemoveLastOverlay"
	case CantHideDefaultOverlay:
		return "CantHideDefaultOverlay"
	case OverlayPrefixMismatch:
		return "OverlayPrefixMismatch"
	case CantAddOverlayHelp:
		return "CantAddOverlayHelp"
	case SelfReferentialBinding:
		return "SelfReferentialBinding"
	case NonUtf8:
		return "NonUtf8"
	case NeedsPositiveValue:
		return "NeedsPositiveValue"
	case LabeledError:
		return "LabeledError"
	case NotConstEvaluable:
		return "NotConstEvaluable"
	case InternalError:
		return "InternalError"
	default:
		return "UnknownState"
	}
}

// Below are the taxonomy constructors named in spec.md §7. Each wraps
// WithCode with the message shape that kind of failure needs.

func Unexpected(p token.Pos, what string) Error {
	return WithCode(Expected, p, "expected %s", what)
}

func UnexpectedKeyword(p token.Pos, what string) Error {
	return WithCode(ExpectedKeyword, p, "expected keyword %s", what)
}

func MissingPositionalf(p token.Pos, name string) Error {
	return WithCode(MissingPositional, p, "missing required positional argument %s", name)
}

func ExtraPositionalf(p token.Pos, text string) Error {
	return WithCode(ExtraPositional, p, "extra positional argument %q", text)
}

func Unclosedf(p token.Pos, what string) Error {
	return WithCode(Unclosed, p, "unclosed %s", what)
}

func IncorrectValuef(p token.Pos, want, got string) Error {
	return WithCode(IncorrectValue, p, "expected %s, found %s", want, got)
}

func InvalidCommandName(p token.Pos, name string) Error {
	return WithCode(CommandDefNotValid, p, "'%s' is not a valid command name", name)
}

func InvalidAliasName(p token.Pos, name string) Error {
	return WithCode(AliasNotValid, p, "'%s' is not a valid alias name", name)
}

func DuplicateDef(p token.Pos, name string) Error {
	return WithCode(DuplicateCommandDef, p, "'%s' is defined more than once in this scope", name)
}

func NamedAsModuleErr(p token.Pos, name string) Error {
	return WithCode(NamedAsModule, p, "'%s' cannot be the same name as its enclosing module", name)
}

func ExportMainAliasForbidden(p token.Pos) Error {
	return WithCode(ExportMainAliasNotAllowed, p, "'main' cannot be exported as an alias")
}

func CantAliasKeywordErr(p token.Pos, keyword string) Error {
	return WithCode(CantAliasKeyword, p, "'%s' is a parser keyword and cannot be aliased", keyword)
}

func LetBuiltinVarErr(p token.Pos, name string) Error {
	return WithCode(LetBuiltinVar, p, "'%s' is a built-in variable that cannot be used in a let binding", name)
}

func ConstBuiltinVarErr(p token.Pos, name string) Error {
	return WithCode(ConstBuiltinVar, p, "'%s' is a built-in variable that cannot be used in a const binding", name)
}

func MutBuiltinVarErr(p token.Pos, name string) Error {
	return WithCode(MutBuiltinVar, p, "'%s' is a built-in variable that cannot be used in a mut binding", name)
}

func ModuleNotFoundErr(p token.Pos, name string) Error {
	return WithCode(ModuleNotFound, p, "module '%s' not found", name)
}

func ModuleOrOverlayNotFoundErr(p token.Pos) Error {
	return WithCode(ModuleOrOverlayNotFound, p, "not a module or overlay")
}

func ExportNotFoundErr(p token.Pos, name string) Error {
	return WithCode(ExportNotFound, p, "'%s' is not an exported name of this module", name)
}

func SourcedFileNotFoundErr(p token.Pos, name string) Error {
	return WithCode(SourcedFileNotFound, p, "sourced file '%s' not found", name)
}

func RegisteredFileNotFoundErr(p token.Pos, name string) Error {
	return WithCode(RegisteredFileNotFound, p, "plugin executable '%s' not found", name)
}

func CyclicalModuleImportErr(p token.Pos, chain []string) Error {
	return WithCode(CyclicalModuleImport, p, "cyclical module import:\n%s", joinChain(chain))
}

// InvalidModuleFilePathErr reports a resolved module-file path that
// fails basic module-path hygiene (control characters, reserved
// component names, path traversal) before it is pushed onto the
// cycle-detection stack.
func InvalidModuleFilePathErr(p token.Pos, path, reason string) Error {
	return WithCode(InvalidModuleFilePath, p, "invalid module file path '%s': %s", path, reason)
}

func joinChain(chain []string) string {
	out := ""
	for i, c := range chain {
		if i > 0 {
			out += "\nuses "
		}
		out += c
	}
	return out
}

func SelfReferentialBindingErr(p token.Pos, name string) Error {
	return WithCode(SelfReferentialBinding, p, "'%s' cannot reference itself in its own binding", name)
}

func ActiveOverlayNotFoundErr(p token.Pos) Error {
	return WithCode(ActiveOverlayNotFound, p, "no active overlay by that name")
}

func CantRemoveLastOverlayErr(p token.Pos) Error {
	return WithCode(CantRemoveLastOverlay, p, "cannot remove the last active overlay")
}

func CantHideDefaultOverlayErr(p token.Pos, name string) Error {
	return WithCode(CantHideDefaultOverlay, p, "'%s' is the default overlay and cannot be hidden", name)
}

func OverlayPrefixMismatchErr(p token.Pos, name, state string) Error {
	return WithCode(OverlayPrefixMismatch, p, "overlay '%s' is already active %s a prefix", name, state)
}

func CantAddOverlayHelpErr(p token.Pos, msg string) Error {
	return WithCode(CantAddOverlayHelp, p, "%s", msg)
}

func NonUtf8Err(p token.Pos) Error {
	return WithCode(NonUtf8, p, "non-UTF-8 input")
}

func NeedsPositiveValueErr(p token.Pos) Error {
	return WithCode(NeedsPositiveValue, p, "value must be positive")
}

func Labeled(p token.Pos, title, msg string) Error {
	return WithCode(LabeledError, p, "%s: %s", title, msg)
}

// NotConstEvaluableErr reports a node the constant evaluator cannot
// reduce: a call to a non-constant command, an unresolved variable, or
// an operator it doesn't implement.
func NotConstEvaluableErr(p token.Pos, what string) Error {
	return WithCode(NotConstEvaluable, p, "not constant-evaluable: %s", what)
}

func Internalf(p token.Pos, format string, args ...interface{}) Error {
	return WithCode(InternalError, p, "internal error: "+format, args...)
}
