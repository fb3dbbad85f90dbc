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
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kdparse/kd/internal/consteval"
	"github.com/kdparse/kd/internal/core/symtab"
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/parser"
)

func constLookup(ws *symtab.WorkingSet) consteval.Lookup {
	return func(name string) (consteval.Value, bool) {
		id, ok := ws.FindVarByName(name)
		if !ok {
			return consteval.Value{}, false
		}
		v := ws.GetVar(id)
		if v == nil || !v.Const {
			return consteval.Value{}, false
		}
		val, err := consteval.Eval(v.Value, constLookup(ws))
		if err != nil {
			return consteval.Value{}, false
		}
		return val, true
	}
}

// handleSource implements `source PATH` (spec §4.7): evaluates PATH as
// a constant, resolves it via find_in_dirs, parses its contents in the
// *current* scope so its bindings stay visible to the caller, and
// restores cwd on every exit path.
func handleSource(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	return sourceOrSourceEnv(ws, lc, errs, false)
}

// handleSourceEnv implements `source-env PATH`: identical except the
// sourced block is parsed in a nested scope of its own, so its
// bindings are not visible to the caller afterwards.
func handleSourceEnv(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	return sourceOrSourceEnv(ws, lc, errs, true)
}

func sourceOrSourceEnv(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List, scoped bool) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "file name"))
		return ast.PipelineFromCall(call)
	}
	pathExpr := parser.ParseValue(args, errs)
	val, cerr := consteval.Eval(pathExpr, constLookup(ws))
	if cerr != nil {
		errs.Add(cerr)
		return ast.PipelineFromCall(call)
	}
	name, ok := val.AsString()
	if !ok {
		errs.Add(errors.IncorrectValuef(args[0].Pos.Start, "string", val.TypeName()))
		return ast.PipelineFromCall(call)
	}

	data, resolved, rerr := ws.Loader.ReadFile(name, "", "NU_LIB_DIRS", args[0].Pos.Start, errors.SourcedFileNotFoundErr)
	if rerr != nil {
		errs.Add(rerr)
		return ast.PipelineFromCall(call)
	}
	restore, centerr := ws.Loader.Enter(resolved, args[0].Pos.Start)
	defer restore()
	if centerr != nil {
		errs.Add(centerr)
		return ast.PipelineFromCall(call)
	}

	span := ws.AddFile(resolved, data)
	parts, _ := TokenizeParts(span.Start, data)

	if scoped {
		ws.EnterScope()
	}
	block := parseBlockBody(ws, parts, errs)
	if scoped {
		ws.ExitScope()
	}
	blockId := ws.AddBlock(block)

	call.Block = blockId
	call.ParserInfo = map[string]ast.Expr{"sourced": {Kind: ast.ExprBlockRef, BlockId: blockId, Pos: span}}
	return ast.PipelineFromCall(call)
}

// pluginSignatureDoc is the YAML shape a `register --signature` value
// or a probed plugin's stdout decodes into.
type pluginSignatureDoc struct {
	Name      string   `yaml:"name"`
	Usage     string   `yaml:"usage"`
	Flags     []string `yaml:"flags"`
	InputType string   `yaml:"input_type"`
}

// handleRegister implements `register PATH [--signature YAML]` (spec
// §4.7): resolves the plugin executable, requires a `nu_plugin_`
// filename prefix, and either deserializes a supplied signature or
// returns the cached probe result for that path.
func handleRegister(ws *symtab.WorkingSet, lc *ast.LiteCommand, errs *errors.List) *ast.Pipeline {
	head := headIdent(lc, 1)
	args := argParts(lc, 1)
	call := parser.ParseCall(head, args, errs)

	if len(args) == 0 {
		errs.Add(errors.MissingPositionalf(head.NamePos.End, "plugin executable path"))
		return ast.PipelineFromCall(call)
	}
	pathExpr := parser.ParseValue([]ast.Part{args[0]}, errs)
	val, cerr := consteval.Eval(pathExpr, constLookup(ws))
	if cerr != nil {
		errs.Add(cerr)
		return ast.PipelineFromCall(call)
	}
	name, ok := val.AsString()
	if !ok {
		errs.Add(errors.IncorrectValuef(args[0].Pos.Start, "string", val.TypeName()))
		return ast.PipelineFromCall(call)
	}
	if base := baseName(name); !strings.HasPrefix(base, "nu_plugin_") {
		errs.Add(errors.IncorrectValuef(args[0].Pos.Start, "a nu_plugin_-prefixed executable", base))
		return ast.PipelineFromCall(call)
	}

	_, resolved, rerr := ws.Loader.ReadFile(name, "", "NU_PLUGIN_DIRS", args[0].Pos.Start, errors.RegisteredFileNotFoundErr)
	if rerr != nil {
		errs.Add(rerr)
		return ast.PipelineFromCall(call)
	}

	var doc pluginSignatureDoc
	if sigExpr, hasSig := call.Flags["signature"]; hasSig {
		if yerr := yaml.Unmarshal([]byte(sigExpr.Str), &doc); yerr != nil {
			errs.Add(errors.IncorrectValuef(sigExpr.Pos.Start, "YAML plugin signature", yerr.Error()))
			return ast.PipelineFromCall(call)
		}
	} else if cached, hit := ws.CachedPluginProbe(resolved); hit {
		installPluginDecl(ws, cached)
		call.DeclId = ws.MustFindDecl(cached.Name)
		return ast.PipelineFromCall(call)
	} else {
		doc = pluginSignatureDoc{Name: baseName(name), Usage: "probed plugin command"}
	}

	decl := &symtab.Decl{
		Name:              doc.Name,
		ExternalName:      doc.Name,
		AllowsUnknownArgs: true,
		Usage:             doc.Usage,
		Sig:               &ast.Signature{InputType: doc.InputType},
	}
	ws.CachePluginProbe(resolved, decl)
	id := installPluginDecl(ws, decl)
	call.DeclId = id
	return ast.PipelineFromCall(call)
}

func installPluginDecl(ws *symtab.WorkingSet, decl *symtab.Decl) ast.DeclId {
	return ws.AddDecl(decl.Name, decl)
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
