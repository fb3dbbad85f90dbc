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

// Package symtab implements the WorkingSet: the stateful, scoped
// symbol table that the keyword-directed parser interleaves with
// parsing itself. It owns the disjoint DeclId/AliasId/ModuleId/
// BlockId/VarId/OverlayId arenas, the scope stack, the predeclaration
// registry, and the overlay stack.
package symtab

import (
	"github.com/google/uuid"

	"github.com/kdparse/kd/lang/ast"
	"github.com/kdparse/kd/lang/errors"
	"github.com/kdparse/kd/lang/load"
	"github.com/kdparse/kd/lang/token"
)

// DeclKind discriminates the four Declaration variants of spec §3.
type DeclKind int

const (
	DeclBlockCommand DeclKind = iota
	DeclExternal
	DeclAlias
	DeclBuiltin
)

// Decl is a named, callable entity. Exactly the fields relevant to
// Kind are populated; see spec §3's Declaration.
type Decl struct {
	Name string
	Sig  *ast.Signature

	// DeclBlockCommand
	BlockId     ast.BlockId
	RedirectEnv bool // def-env

	// DeclExternal
	ExternalName      string
	AllowsUnknownArgs bool

	// DeclAlias (structural: `alias NAME = EXPR`)
	AliasExpr  ast.Expr
	AliasClone *Decl // clone of the target command, for signature/help

	Usage      string
	ExtraUsage string
	Pos        token.Span
}

// OldAlias is the legacy textual-substitution alias: a replacement
// stored as raw source spans rather than a parsed expression.
type OldAlias struct {
	Name     string
	Spans    []token.Span
	Comments *ast.CommentGroup
	Pos      token.Span
}

// Module is a named, flat collection of exportable decls and aliases.
// It has no intrinsic scope — its contents are installed into a
// consumer's scope by `use` or `overlay use`.
type Module struct {
	Name         string
	Main         ast.DeclId // NoDeclId if none exported as `main`
	Exports      map[string]ast.DeclId
	AliasExports map[string]ast.AliasId
	EnvBlocks    []ast.BlockId // export-env bodies, in declaration order
	Pos          token.Span
}

func newModule(name string, pos token.Span) *Module {
	return &Module{
		Name:         name,
		Main:         ast.NoDeclId,
		Exports:      map[string]ast.DeclId{},
		AliasExports: map[string]ast.AliasId{},
		Pos:          pos,
	}
}

// OverlayFrame is a named activation of a module onto the lookup
// stack: a materialized, possibly-prefixed view of the module's
// decls/aliases at the time of activation (or last `--reload`).
type OverlayFrame struct {
	Name     string
	Origin   ast.ModuleId
	Decls    map[string]ast.DeclId
	Aliases  map[string]ast.AliasId
	Prefixed bool

	// addedAfterActivation records every name bound while this overlay
	// is on top of the stack (noteOverlayAddition). The bindings
	// themselves live in scope frames, not in this frame's
	// Decls/Aliases.
	addedAfterActivation map[string]bool
}

func newOverlayFrame(name string, origin ast.ModuleId, prefixed bool) *OverlayFrame {
	return &OverlayFrame{
		Name:                 name,
		Origin:               origin,
		Decls:                map[string]ast.DeclId{},
		Aliases:              map[string]ast.AliasId{},
		Prefixed:             prefixed,
		addedAfterActivation: map[string]bool{},
	}
}

// VarInfo describes one let/const/mut binding.
type VarInfo struct {
	Name  string
	Type  string
	Const bool
	Value ast.Expr // meaningful iff Const
	Pos   token.Span
}

// scopeFrame is one level of the symbol table's scope stack: local
// decls, old-aliases, modules, and the predecl table that lets a
// block's body reference names declared earlier in the same pass
// (spec §4.3's predeclaration protocol).
type scopeFrame struct {
	decls    map[string]ast.DeclId
	aliases  map[string]ast.AliasId
	modules  map[string]ast.ModuleId
	vars     map[string]ast.VarId
	predecls map[string]ast.DeclId // name -> reserved DeclId, body not yet merged
}

func newScopeFrame() *scopeFrame {
	return &scopeFrame{
		decls:    map[string]ast.DeclId{},
		aliases:  map[string]ast.AliasId{},
		modules:  map[string]ast.ModuleId{},
		vars:     map[string]ast.VarId{},
		predecls: map[string]ast.DeclId{},
	}
}

// WorkingSet is the mutable symbol table plus span registry exclusively
// owned during one parse. Zero value is not usable — construct with New.
type WorkingSet struct {
	Fset *token.FileSet

	decls    []*Decl
	aliases  []*OldAlias
	modules  []*Module
	blocks   []*ast.Block
	vars     []*VarInfo
	overlays []*OverlayFrame

	scopes []*scopeFrame

	// building tracks the Module currently being populated by a
	// `module NAME { ... }` block's `export`/`export-env` handlers; nil
	// outside of module-block parsing.
	building []*Module

	Loader *load.Loader

	// sessionFingerprint is a random identifier generated once per
	// WorkingSet and returned by SessionFingerprint. probeCache, which
	// lets re-registering the same executable within one WorkingSet's
	// lifetime reuse the probe result, is keyed by resolved path alone.
	sessionFingerprint uuid.UUID
	probeCache         map[string]*Decl

	Errs errors.List
}

// New creates an empty WorkingSet with the well-known default overlay
// (bottom of the overlay stack, unremovable) and one top-level scope.
func New(env load.Env) *WorkingSet {
	ws := &WorkingSet{
		Fset:               token.NewFileSet(),
		Loader:              load.NewLoader(env),
		sessionFingerprint:  uuid.New(),
		probeCache:          map[string]*Decl{},
	}
	ws.overlays = append(ws.overlays, newOverlayFrame("zero", ast.NoModuleId, false))
	ws.scopes = append(ws.scopes, newScopeFrame())
	seedBuiltins(ws)
	return ws
}

// seedBuiltins installs the handful of declarations the keyword
// handlers assume always resolve, even on a WorkingSet with nothing
// else defined yet: `where` is parsed as an ordinary call against its
// own Decl (handleWhere) rather than given bespoke arg-parsing, so one
// has to exist before any script runs.
func seedBuiltins(ws *WorkingSet) {
	ws.AddDecl("where", &Decl{
		Name:              "where",
		Sig:               &ast.Signature{Positional: []ast.Param{{Name: "condition"}}},
		ExternalName:      "where",
		AllowsUnknownArgs: false,
		Usage:             "Filter rows of input by a condition.",
		Pos:               token.NoSpan,
	})
}

// AddFile appends src to the shared source buffer under name and
// returns the span its bytes occupy.
func (ws *WorkingSet) AddFile(name string, src []byte) token.Span {
	return ws.Fset.AddFile(name, src)
}

// NextSpanStart returns the position the next AddFile call will start
// at, without actually adding anything — used by callers that need to
// reserve a position before source bytes are available.
func (ws *WorkingSet) NextSpanStart() token.Pos {
	return ws.Fset.NextBase()
}

// ---- scope stack ----

// EnterScope pushes a fresh scope frame.
func (ws *WorkingSet) EnterScope() {
	ws.scopes = append(ws.scopes, newScopeFrame())
}

// ExitScope pops the innermost scope frame. It does not invalidate any
// DeclId/AliasId/ModuleId already issued — only their visibility via
// FindDecl et al. changes.
func (ws *WorkingSet) ExitScope() {
	ws.scopes = ws.scopes[:len(ws.scopes)-1]
}

func (ws *WorkingSet) top() *scopeFrame { return ws.scopes[len(ws.scopes)-1] }

// ---- decl arena ----

// AddDecl installs decl into the arena and binds name in the current
// scope, returning the new DeclId.
func (ws *WorkingSet) AddDecl(name string, decl *Decl) ast.DeclId {
	id := ast.DeclId(len(ws.decls))
	ws.decls = append(ws.decls, decl)
	ws.top().decls[name] = id
	ws.noteOverlayAddition(name)
	return id
}

// GetDecl returns the decl for id.
func (ws *WorkingSet) GetDecl(id ast.DeclId) *Decl {
	if id == ast.NoDeclId {
		return nil
	}
	return ws.decls[id]
}

// BindDeclName binds an already-installed decl to name in the current
// scope, without allocating a new arena entry — this is how `use`/
// `overlay use` install an imported module's decls under (possibly
// renamed/prefixed) local names that all resolve to the same DeclId.
func (ws *WorkingSet) BindDeclName(name string, id ast.DeclId) {
	ws.top().decls[name] = id
	ws.noteOverlayAddition(name)
}

// BindAliasName is BindDeclName's counterpart for legacy aliases.
func (ws *WorkingSet) BindAliasName(name string, id ast.AliasId) {
	ws.top().aliases[name] = id
	ws.noteOverlayAddition(name)
}

// RemoveDeclName unbinds name from whichever scope frame currently
// defines it, innermost first — `hide`'s counterpart to BindDeclName,
// so a name `use` installed into scope actually stops resolving
// afterward instead of merely being flagged on the import pattern.
func (ws *WorkingSet) RemoveDeclName(name string) {
	for i := len(ws.scopes) - 1; i >= 0; i-- {
		if _, ok := ws.scopes[i].decls[name]; ok {
			delete(ws.scopes[i].decls, name)
			return
		}
	}
}

// RemoveAliasName is RemoveDeclName's counterpart for aliases.
func (ws *WorkingSet) RemoveAliasName(name string) {
	for i := len(ws.scopes) - 1; i >= 0; i-- {
		if _, ok := ws.scopes[i].aliases[name]; ok {
			delete(ws.scopes[i].aliases, name)
			return
		}
	}
}

// GetDeclMut is identical to GetDecl — included under its own name to
// mirror spec §4.1's read/write access pair; callers that need to
// mutate a predecl in place just dereference the pointer GetDecl
// already returns.
func (ws *WorkingSet) GetDeclMut(id ast.DeclId) *Decl { return ws.GetDecl(id) }

// noteOverlayAddition records that name was freshly bound while an
// overlay is active on top of the stack, so `overlay hide --keep-custom`
// can later tell which names in that frame postdate activation.
func (ws *WorkingSet) noteOverlayAddition(name string) {
	if len(ws.overlays) == 0 {
		return
	}
	top := ws.overlays[len(ws.overlays)-1]
	top.addedAfterActivation[name] = true
}

// FindDecl searches scope frames innermost-outward, then overlay
// frames top-down, respecting prefixed overlays by also matching
// "overlayname name". inputType is accepted for interface symmetry
// with spec §4.1 but is not used to disambiguate, per the Open
// Questions resolution recorded in DESIGN.md.
func (ws *WorkingSet) FindDecl(name string, inputType string) (ast.DeclId, bool) {
	for i := len(ws.scopes) - 1; i >= 0; i-- {
		if id, ok := ws.scopes[i].decls[name]; ok {
			return id, true
		}
	}
	for i := len(ws.overlays) - 1; i >= 0; i-- {
		ov := ws.overlays[i]
		if ov.Prefixed {
			continue
		}
		if id, ok := ov.Decls[name]; ok {
			return id, true
		}
	}
	for i := len(ws.overlays) - 1; i >= 0; i-- {
		ov := ws.overlays[i]
		if !ov.Prefixed {
			continue
		}
		if id, ok := ov.Decls[ov.Name+" "+name]; ok {
			return id, true
		}
	}
	return ast.NoDeclId, false
}

// ---- predeclaration protocol ----

// AddPredecl reserves name in the current scope with a stub Decl
// (signature known, body not yet parsed) and returns its DeclId. It is
// an error to predeclare a name already predeclared in the same scope.
func (ws *WorkingSet) AddPredecl(name string, stub *Decl, pos token.Pos) (ast.DeclId, errors.Error) {
	f := ws.top()
	if _, ok := f.predecls[name]; ok {
		return ast.NoDeclId, errors.DuplicateDef(pos, name)
	}
	id := ast.DeclId(len(ws.decls))
	ws.decls = append(ws.decls, stub)
	f.predecls[name] = id
	return id, nil
}

// MergePredecl promotes name's predecl to a real, visible decl in the
// current scope. Idempotent: merging a name already merged is a no-op.
func (ws *WorkingSet) MergePredecl(name string) {
	f := ws.top()
	id, ok := f.predecls[name]
	if !ok {
		return
	}
	f.decls[name] = id
	ws.noteOverlayAddition(name)
}

// PredeclId returns the DeclId reserved for name in the innermost scope
// frame that predeclares it, searching outward, whether or not it has
// been merged yet — this is how a body being parsed in its own nested
// scope resolves a forward or self reference.
func (ws *WorkingSet) PredeclId(name string) (ast.DeclId, bool) {
	for i := len(ws.scopes) - 1; i >= 0; i-- {
		if id, ok := ws.scopes[i].predecls[name]; ok {
			return id, true
		}
	}
	return ast.NoDeclId, false
}

// ---- old (legacy textual) aliases ----

// AddOldAlias installs an OldAlias and binds name in the current scope.
func (ws *WorkingSet) AddOldAlias(name string, a *OldAlias) ast.AliasId {
	id := ast.AliasId(len(ws.aliases))
	ws.aliases = append(ws.aliases, a)
	ws.top().aliases[name] = id
	ws.noteOverlayAddition(name)
	return id
}

// GetOldAlias returns the OldAlias for id.
func (ws *WorkingSet) GetOldAlias(id ast.AliasId) *OldAlias {
	if id == ast.NoAliasId {
		return nil
	}
	return ws.aliases[id]
}

// FindAlias searches for a legacy alias the same way FindDecl does.
func (ws *WorkingSet) FindAlias(name string) (ast.AliasId, bool) {
	for i := len(ws.scopes) - 1; i >= 0; i-- {
		if id, ok := ws.scopes[i].aliases[name]; ok {
			return id, true
		}
	}
	for i := len(ws.overlays) - 1; i >= 0; i-- {
		ov := ws.overlays[i]
		if ov.Prefixed {
			continue
		}
		if id, ok := ov.Aliases[name]; ok {
			return id, true
		}
	}
	for i := len(ws.overlays) - 1; i >= 0; i-- {
		ov := ws.overlays[i]
		if !ov.Prefixed {
			continue
		}
		if id, ok := ov.Aliases[ov.Name+" "+name]; ok {
			return id, true
		}
	}
	return ast.NoAliasId, false
}

// ---- modules ----

// AddModule installs an empty Module named name, binds it in the
// current scope, and returns its id. Used directly by `module NAME {}`
// and `overlay new NAME`.
func (ws *WorkingSet) AddModule(name string, pos token.Span) ast.ModuleId {
	id := ast.ModuleId(len(ws.modules))
	ws.modules = append(ws.modules, newModule(name, pos))
	ws.top().modules[name] = id
	return id
}

// FindModule looks up a module by name, scope frames innermost-outward.
func (ws *WorkingSet) FindModule(name string) (ast.ModuleId, bool) {
	for i := len(ws.scopes) - 1; i >= 0; i-- {
		if id, ok := ws.scopes[i].modules[name]; ok {
			return id, true
		}
	}
	return ast.NoModuleId, false
}

// GetModule returns the module for id.
func (ws *WorkingSet) GetModule(id ast.ModuleId) *Module {
	if id == ast.NoModuleId {
		return nil
	}
	return ws.modules[id]
}

// ---- plugin signature probe cache ----

// SessionFingerprint returns the random identifier generated for this
// WorkingSet when it was created. The probed-plugin cache does not use
// it; its entries are keyed by path.
func (ws *WorkingSet) SessionFingerprint() string { return ws.sessionFingerprint.String() }

// CachedPluginProbe returns a previously probed plugin decl for path,
// if `register` has already resolved that executable's signature in
// this WorkingSet's lifetime.
func (ws *WorkingSet) CachedPluginProbe(path string) (*Decl, bool) {
	d, ok := ws.probeCache[path]
	return d, ok
}

// CachePluginProbe records decl as the probed signature for path.
func (ws *WorkingSet) CachePluginProbe(path string, decl *Decl) {
	ws.probeCache[path] = decl
}

// ---- module-under-construction tracking ----

// PushBuildingModule marks m as the module currently being populated by
// `export`/`export-env` handlers dispatched from inside its block.
func (ws *WorkingSet) PushBuildingModule(m *Module) { ws.building = append(ws.building, m) }

// PopBuildingModule undoes the matching PushBuildingModule.
func (ws *WorkingSet) PopBuildingModule() { ws.building = ws.building[:len(ws.building)-1] }

// CurrentBuildingModule returns the innermost module under
// construction, or nil if none.
func (ws *WorkingSet) CurrentBuildingModule() *Module {
	if len(ws.building) == 0 {
		return nil
	}
	return ws.building[len(ws.building)-1]
}

// ---- blocks ----

// AddBlock installs b in the arena and returns its id, also setting
// b.Id so later lookups and the block itself agree.
func (ws *WorkingSet) AddBlock(b *ast.Block) ast.BlockId {
	id := ast.BlockId(len(ws.blocks))
	b.Id = id
	ws.blocks = append(ws.blocks, b)
	return id
}

// GetBlock returns the block for id.
func (ws *WorkingSet) GetBlock(id ast.BlockId) *ast.Block {
	if id == ast.NoBlockId {
		return nil
	}
	return ws.blocks[id]
}

// ---- vars ----

// AddVar installs a VarInfo, binds its name in the current scope
// (rebinding shadows any earlier binding of the same name — spec.md
// §8 scenario "let x = 1; let x = $x + 1; $x" relies on this), and
// returns its id. Binder-name validation (builtin names, shadowing
// rules) is the caller's job — see internal/keywords/let.go.
func (ws *WorkingSet) AddVar(v *VarInfo) ast.VarId {
	id := ast.VarId(len(ws.vars))
	ws.vars = append(ws.vars, v)
	ws.top().vars[v.Name] = id
	return id
}

// GetVar returns the VarInfo for id.
func (ws *WorkingSet) GetVar(id ast.VarId) *VarInfo {
	if id == ast.NoVarId {
		return nil
	}
	return ws.vars[id]
}

// FindVarByName searches scope frames innermost-outward for the
// nearest binding of name, the same resolution order `$name`
// references use.
func (ws *WorkingSet) FindVarByName(name string) (ast.VarId, bool) {
	for i := len(ws.scopes) - 1; i >= 0; i-- {
		if id, ok := ws.scopes[i].vars[name]; ok {
			return id, true
		}
	}
	return ast.NoVarId, false
}

// MustFindDecl looks up name in the current scope/overlay stack,
// panicking if absent — used only where the caller has just installed
// the decl itself and a miss would indicate an internal inconsistency.
func (ws *WorkingSet) MustFindDecl(name string) ast.DeclId {
	id, ok := ws.FindDecl(name, "")
	if !ok {
		panic("symtab: MustFindDecl: " + name + " not found")
	}
	return id
}

// ---- overlay stack ----

// AddOverlay pushes a new overlay frame materializing decls/aliases
// from origin under name. It always appends: an existing frame of the
// same name is left on the stack beneath the new one. Prefixed
// activation lays each name as "name origName" (spec §4.6), so a
// prefixed overlay's members are only reachable under that compound
// key, never their bare name.
func (ws *WorkingSet) AddOverlay(name string, origin ast.ModuleId, decls map[string]ast.DeclId, aliases map[string]ast.AliasId, prefixed bool) {
	f := newOverlayFrame(name, origin, prefixed)
	for k, v := range decls {
		f.Decls[overlayKey(name, k, prefixed)] = v
	}
	for k, v := range aliases {
		f.Aliases[overlayKey(name, k, prefixed)] = v
	}
	ws.overlays = append(ws.overlays, f)
}

func overlayKey(overlayName, name string, prefixed bool) string {
	if prefixed {
		return overlayName + " " + name
	}
	return name
}

// RemoveOverlay removes the named overlay. If keepCustom is set, each
// name in the frame's addedAfterActivation that also appears in the
// frame's own Decls/Aliases is re-laid into the frame beneath before
// the frame is dropped. Definitions made while the overlay was active
// are bound in scope frames, not in the overlay frame, so they stay
// visible after the overlay is removed, with or without keepCustom.
func (ws *WorkingSet) RemoveOverlay(name string, keepCustom bool) errors.Error {
	if name == ws.overlays[0].Name {
		return errors.CantHideDefaultOverlayErr(token.NoPos, name)
	}
	idx := -1
	for i, ov := range ws.overlays {
		if ov.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errors.ActiveOverlayNotFoundErr(token.NoPos)
	}
	if len(ws.overlays) == 1 {
		return errors.CantRemoveLastOverlayErr(token.NoPos)
	}
	removed := ws.overlays[idx]
	if keepCustom && idx > 0 {
		beneath := ws.overlays[idx-1]
		for k := range removed.addedAfterActivation {
			if id, ok := removed.Decls[k]; ok {
				beneath.Decls[k] = id
				beneath.addedAfterActivation[k] = true
			}
			if id, ok := removed.Aliases[k]; ok {
				beneath.Aliases[k] = id
				beneath.addedAfterActivation[k] = true
			}
		}
	}
	ws.overlays = append(ws.overlays[:idx], ws.overlays[idx+1:]...)
	return nil
}

// FindOverlay returns the active overlay frame named name, if any.
func (ws *WorkingSet) FindOverlay(name string) (*OverlayFrame, bool) {
	for i := len(ws.overlays) - 1; i >= 0; i-- {
		if ws.overlays[i].Name == name {
			return ws.overlays[i], true
		}
	}
	return nil, false
}

// LastOverlayName returns the name of the topmost overlay frame.
func (ws *WorkingSet) LastOverlayName() string {
	return ws.overlays[len(ws.overlays)-1].Name
}

// UniqueOverlayNames returns every distinct overlay name currently on
// the stack, bottom to top.
func (ws *WorkingSet) UniqueOverlayNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, ov := range ws.overlays {
		if !seen[ov.Name] {
			seen[ov.Name] = true
			names = append(names, ov.Name)
		}
	}
	return names
}

// NumOverlays returns the size of the overlay stack.
func (ws *WorkingSet) NumOverlays() int { return len(ws.overlays) }
