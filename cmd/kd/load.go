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

package main

import (
	"errors"
	"os"

	"github.com/kdparse/kd/internal/core/symtab"
	"github.com/kdparse/kd/internal/keywords"
	"github.com/kdparse/kd/lang/ast"
	kderrors "github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/load"
)

// errSilent signals a subcommand failed with diagnostics already
// printed to stderr, so cobra shouldn't print the error again.
var errSilent = errors.New("")

// loadWorkingSet applies the resolved NU_LIB_DIRS/NU_PLUGIN_DIRS onto
// the process environment the loader's osEnv reads through, then
// builds a fresh WorkingSet rooted at the current directory.
func loadWorkingSet() (*symtab.WorkingSet, error) {
	if v := libDirs(); v != "" {
		if err := os.Setenv("NU_LIB_DIRS", v); err != nil {
			return nil, err
		}
	}
	if v := pluginDirs(); v != "" {
		if err := os.Setenv("NU_PLUGIN_DIRS", v); err != nil {
			return nil, err
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return symtab.New(load.NewOSEnv(cwd)), nil
}

// readAndTokenize reads path and tokenizes it into the flat Part
// sequence keywords.ParseTopLevel consumes.
func readAndTokenize(ws *symtab.WorkingSet, path string) ([]ast.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	span := ws.AddFile(path, data)
	parts, _ := keywords.TokenizeParts(span.Start, data)
	return parts, nil
}

func newErrorList() *kderrors.List {
	return &kderrors.List{}
}
