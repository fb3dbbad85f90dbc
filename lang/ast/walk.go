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

package ast

// WalkCalls invokes visit for every Call reachable from b: the head
// call of each pipeline, and — one level deep, as spec.md §4.3 step 6
// requires for recursion detection — any Call wrapped as a positional
// keyword argument of that head call.
func WalkCalls(b *Block, visit func(*Call)) {
	if b == nil {
		return
	}
	for _, p := range b.Pipelines {
		for _, e := range p.Exprs {
			if e.Kind != ExprCall && e.Kind != ExprKeyword {
				continue
			}
			c := e.Call
			if c == nil {
				continue
			}
			visit(c)
			for _, arg := range c.Positional {
				if arg.Kind == ExprCall || arg.Kind == ExprKeyword {
					if arg.Call != nil {
						visit(arg.Call)
					}
				}
			}
		}
	}
}

// ContainsCallTo reports whether any call in b (including one-level-
// deep keyword-wrapped positionals) invokes decl.
func ContainsCallTo(b *Block, decl DeclId) bool {
	found := false
	WalkCalls(b, func(c *Call) {
		if c.DeclId == decl {
			found = true
		}
	})
	return found
}
