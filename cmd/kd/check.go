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
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kdparse/kd/internal/keywords"
	"github.com/kdparse/kd/lang/errors"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "parse every .nu file under path and report only errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, root string) error {
	ws, err := loadWorkingSet()
	if err != nil {
		return err
	}

	var files []string
	walkErr := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(p, ".nu") {
			files = append(files, p)
		}
		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	var all errors.List
	for _, f := range files {
		parts, err := readAndTokenize(ws, f)
		if err != nil {
			return err
		}
		errs := newErrorList()
		keywords.ParseTopLevel(ws, parts, errs)
		all = append(all, *errs...)
	}

	if len(all) > 0 {
		errors.Print(cmd.ErrOrStderr(), all.Err(), &errors.Config{Fset: ws.Fset})
		return errSilent
	}
	return nil
}
