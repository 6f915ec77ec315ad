// Package process hosts the in-memory execution state for building
// transactions: a registry of loaded programs (stacks) with their key
// caches, trace execution, fee binding, and the proven artifacts that
// assemble into a transaction.
//
// A Process is either ephemeral (one orchestration call) or retained
// across calls by the caller. It does not synchronize itself; a
// retained Process assumes one call in flight at a time. The KeyCache
// inside each stack is internally locked so key insertion during a
// call is safe.
package process

import (
	"errors"
	"fmt"

	"aleosdk/program"
)

// ErrUnresolvedImport reports a program import that is neither loaded
// in the process nor supplied by the caller.
var ErrUnresolvedImport = errors.New("unresolved program import")

// Stack holds one loaded program and its key cache.
type Stack struct {
	program *program.Program
	keys    *KeyCache
}

// Program returns the stack's program definition.
func (s *Stack) Program() *program.Program { return s.program }

// Keys returns the stack's key cache.
func (s *Stack) Keys() *KeyCache { return s.keys }

// Process is a registry of program stacks.
type Process struct {
	stacks map[string]*Stack
}

// Load creates a process with the built-in credits program preloaded.
func Load() *Process {
	p := &Process{stacks: make(map[string]*Stack)}
	credits := program.Credits()
	p.stacks[credits.ID()] = &Stack{program: credits, keys: NewKeyCache()}
	return p
}

// Contains reports whether a program is loaded.
func (p *Process) Contains(programID string) bool {
	_, ok := p.stacks[programID]
	return ok
}

// Stack returns the stack for a loaded program.
func (p *Process) Stack(programID string) (*Stack, error) {
	stack, ok := p.stacks[programID]
	if !ok {
		return nil, fmt.Errorf("program %s is not loaded in the process", programID)
	}
	return stack, nil
}

// AddProgram registers a parsed program. Every import must already be
// loaded. Re-adding a program with unchanged source keeps the existing
// stack so its key cache survives across calls on a retained process;
// changed source replaces the stack and discards the cache.
func (p *Process) AddProgram(prog *program.Program) error {
	for _, imported := range prog.Imports() {
		if !p.Contains(imported) {
			return fmt.Errorf("%w: %s imports %s", ErrUnresolvedImport, prog.ID(), imported)
		}
	}
	if existing, ok := p.stacks[prog.ID()]; ok && existing.program.String() == prog.String() {
		return nil
	}
	p.stacks[prog.ID()] = &Stack{program: prog, keys: NewKeyCache()}
	return nil
}

// ResolveImports loads the full dependency closure of prog. Each import
// must either already be loaded or have source text in sources (keyed
// by program id); sources may themselves have imports, resolved
// recursively. The target program itself is then registered.
func (p *Process) ResolveImports(prog *program.Program, sources map[string]string) error {
	if err := p.resolveImports(prog, sources, map[string]bool{prog.ID(): true}); err != nil {
		return err
	}
	return p.AddProgram(prog)
}

func (p *Process) resolveImports(prog *program.Program, sources map[string]string, pending map[string]bool) error {
	for _, imported := range prog.Imports() {
		if p.Contains(imported) {
			continue
		}
		if pending[imported] {
			return fmt.Errorf("circular import of %s via %s", imported, prog.ID())
		}
		source, ok := sources[imported]
		if !ok {
			return fmt.Errorf("%w: %s imports %s", ErrUnresolvedImport, prog.ID(), imported)
		}
		parsed, err := program.Parse(source)
		if err != nil {
			return fmt.Errorf("import %s failed to parse: %w", imported, err)
		}
		if parsed.ID() != imported {
			return fmt.Errorf("import source for %s declares program %s", imported, parsed.ID())
		}
		pending[imported] = true
		if err := p.resolveImports(parsed, sources, pending); err != nil {
			return err
		}
		delete(pending, imported)
		if err := p.AddProgram(parsed); err != nil {
			return err
		}
	}
	return nil
}
