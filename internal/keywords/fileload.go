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
	"path/filepath"
	"strings"

	"github.com/kdparse/kd/internal/core/symtab"
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/scanner"
	"github.com/kdparse/kd/lang/token"
)

// TokenizeParts runs the sub-lexical scanner over an entire file's
// bytes (rather than one lite-command part's, its usual input),
// producing the flat Part sequence that splitLiteCommands/
// splitPipeline expect, plus the leading comment run (spec §4.4 step
// 3's module docs). A newline outside `[ ]` and `( )` becomes a `;`
// part, so each line of a file is its own lite command.
func TokenizeParts(base token.Pos, src []byte) ([]ast.Part, *ast.CommentGroup) {
	var sc scanner.Scanner
	sc.Init(base, src)

	var leading []ast.Comment
	sawCode := false
	var parts []ast.Part
	depth, prevEnd := 0, -1
	for {
		tok := sc.Scan()
		if tok.Kind == scanner.EOF {
			break
		}
		if tok.Kind == scanner.COMMENT {
			if !sawCode {
				leading = append(leading, ast.Comment{Span: tok.Pos, Text: strings.TrimPrefix(tok.Text, "#")})
			}
			continue
		}
		sawCode = true
		start := int(tok.Pos.Start - base)
		if prevEnd >= 0 && depth == 0 && strings.Contains(string(src[prevEnd:start]), "\n") {
			at := base + token.Pos(prevEnd)
			parts = append(parts, ast.Part{Text: ";", Pos: token.Span{Start: at, End: at}})
		}
		switch tok.Kind {
		case scanner.LBRACK, scanner.LPAREN:
			depth++
		case scanner.RBRACK, scanner.RPAREN:
			depth--
		}
		prevEnd = int(tok.Pos.End - base)
		parts = append(parts, ast.Part{Text: tok.Text, Pos: tok.Pos})
	}
	var cg *ast.CommentGroup
	if len(leading) > 0 {
		cg = &ast.CommentGroup{List: leading}
	}
	return parts, cg
}

// loadModuleFile resolves name via find_in_dirs, guards against
// cyclical inclusion through ws.Loader, reads the file, and parses it
// as a module named by the file's stem (spec §4.5 step 2). On success
// it returns the new ModuleId. loadModuleFile undoes its own cwd and
// file-stack changes via Loader.Enter's restore on every exit path, so
// the caller has nothing to undo.
func loadModuleFile(ws *symtab.WorkingSet, name string, pos token.Pos, errs *errors.List, notFound func(token.Pos, string) errors.Error) (ast.ModuleId, errors.Error) {
	data, resolved, err := ws.Loader.ReadFile(name, "", "NU_LIB_DIRS", pos, notFound)
	if err != nil {
		return ast.NoModuleId, err
	}
	restore, cerr := ws.Loader.Enter(resolved, pos)
	defer restore()
	if cerr != nil {
		return ast.NoModuleId, cerr
	}

	span := ws.AddFile(resolved, data)
	parts, _ := TokenizeParts(span.Start, data)

	stem := strings.TrimSuffix(filepath.Base(resolved), filepath.Ext(resolved))
	modId := ws.AddModule(stem, span)
	mod := ws.GetModule(modId)
	parseModuleBlock(ws, mod, parts, errs)
	return modId, nil
}
