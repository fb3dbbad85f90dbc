// Copyright 2024 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package symtab

import (
	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
)

// ValidateResult is the outcome of matching a parsed Call against a
// Signature: either the call short-circuits on `--help` or it
// validates cleanly/with errors.
type ValidateResult struct {
	Help bool
}

// Validate checks call against sig: detects `--help`/`-h` for
// short-circuiting (spec §4.3 step 2) and reports arity mismatches —
// too few required positionals, or extras when sig has no rest
// parameter — onto errs.
func Validate(call *ast.Call, sig *ast.Signature, errs *errors.List) ValidateResult {
	if call.HasFlag("help") {
		return ValidateResult{Help: true}
	}
	if sig == nil {
		return ValidateResult{}
	}
	required := RequiredPositionalCount(sig)
	if len(call.Positional) < required {
		errs.Add(errors.MissingPositionalf(call.Pos.End, sig.Positional[len(call.Positional)].Name))
	}
	max := required + len(sig.Optional)
	if sig.Rest == nil && len(call.Positional) > max {
		extra := call.Positional[max]
		errs.Add(errors.ExtraPositionalf(extra.Pos.Start, "unexpected extra argument"))
	}
	return ValidateResult{}
}

// RequiredPositionalCount returns the number of positionals sig
// requires (excluding Optional and Rest).
func RequiredPositionalCount(sig *ast.Signature) int {
	if sig == nil {
		return 0
	}
	return len(sig.Positional)
}
