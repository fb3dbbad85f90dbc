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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdparse/kd/internal/keywords"
	"github.com/kdparse/kd/lang/errors"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "parse a file and print its top-level pipelines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0])
		},
	}
}

func runParse(cmd *cobra.Command, path string) error {
	ws, err := loadWorkingSet()
	if err != nil {
		return err
	}
	parts, err := readAndTokenize(ws, path)
	if err != nil {
		return err
	}
	errs := newErrorList()
	block := keywords.ParseTopLevel(ws, parts, errs)

	out := cmd.OutOrStdout()
	for i, p := range block.Pipelines {
		fmt.Fprintf(out, "pipeline %d: %d expr(s)\n", i, len(p.Exprs))
	}
	if len(*errs) > 0 {
		errors.Print(cmd.ErrOrStderr(), errs.Err(), &errors.Config{Fset: ws.Fset})
		return errSilent
	}
	return nil
}
