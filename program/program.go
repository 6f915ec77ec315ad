// Package program parses Aleo-style program text into an executable
// form: a namespaced program identifier, its import list, and its
// function definitions with optional finalize logic.
package program

import (
	"fmt"
	"strings"
)

// Program is an immutable parsed program.
type Program struct {
	id        string
	imports   []string
	functions []*Function
	byName    map[string]*Function
	source    string
}

// Function is one function definition: its on-chain instructions plus
// optional finalize logic priced separately.
type Function struct {
	Name         string
	Instructions []string
	Finalize     *Finalize
}

// Finalize holds the on-chain bookkeeping instructions of a function.
type Finalize struct {
	Instructions []string
}

// ID returns the namespaced program identifier, e.g. "credits.aleo".
func (p *Program) ID() string { return p.id }

// Imports returns the identifiers of imported programs, in declaration
// order.
func (p *Program) Imports() []string { return p.imports }

// Functions returns the function definitions in declaration order.
func (p *Program) Functions() []*Function { return p.functions }

// Function looks up a function by name.
func (p *Program) Function(name string) (*Function, error) {
	fn, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("function %q is not defined in program %s", name, p.id)
	}
	return fn, nil
}

// String returns the original source text.
func (p *Program) String() string { return p.source }

// CalleeOf extracts the cross-program call target of an instruction,
// if any. Call instructions have the form "call <program>/<function> ...".
func CalleeOf(instruction string) (programID, function string, ok bool) {
	fields := strings.Fields(instruction)
	if len(fields) < 2 || fields[0] != "call" {
		return "", "", false
	}
	programID, function, ok = strings.Cut(fields[1], "/")
	if !ok || programID == "" || function == "" {
		return "", "", false
	}
	return programID, function, true
}

// Parse parses program source text. The grammar is line oriented:
//
//	program <id>;
//	import <id>;
//	mapping <name>: / record <name>: / struct <name>:  declaration blocks
//	function <name>:  followed by indented instructions
//	finalize <name>:  finalize logic for a previously declared function
func Parse(source string) (*Program, error) {
	p := &Program{byName: map[string]*Function{}, source: source}

	// sink receives instruction lines of the currently open block; nil
	// outside any block. Declaration blocks parse but keep nothing.
	var sink func(string)
	discard := func(string) {}

	for lineNo, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		indented := raw != line && (strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t"))
		line = strings.TrimSuffix(line, ";")

		if indented {
			if sink == nil {
				return nil, fmt.Errorf("line %d: instruction outside a block", lineNo+1)
			}
			sink(line)
			continue
		}

		directive, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch directive {
		case "program":
			if p.id != "" {
				return nil, fmt.Errorf("line %d: duplicate program declaration", lineNo+1)
			}
			if err := validateID(rest); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			p.id = rest
			sink = nil
		case "import":
			if p.id == "" {
				return nil, fmt.Errorf("line %d: import before program declaration", lineNo+1)
			}
			if err := validateID(rest); err != nil {
				return nil, fmt.Errorf("line %d: invalid import: %w", lineNo+1, err)
			}
			p.imports = append(p.imports, rest)
			sink = nil
		case "mapping", "record", "struct":
			if !strings.HasSuffix(rest, ":") {
				return nil, fmt.Errorf("line %d: malformed %s declaration", lineNo+1, directive)
			}
			sink = discard
		case "function":
			name := strings.TrimSuffix(rest, ":")
			if name == rest || name == "" {
				return nil, fmt.Errorf("line %d: malformed function declaration", lineNo+1)
			}
			if _, dup := p.byName[name]; dup {
				return nil, fmt.Errorf("line %d: duplicate function %q", lineNo+1, name)
			}
			fn := &Function{Name: name}
			p.functions = append(p.functions, fn)
			p.byName[name] = fn
			sink = func(instruction string) { fn.Instructions = append(fn.Instructions, instruction) }
		case "finalize":
			name := strings.TrimSuffix(rest, ":")
			if name == rest || name == "" {
				return nil, fmt.Errorf("line %d: malformed finalize declaration", lineNo+1)
			}
			fn, ok := p.byName[name]
			if !ok {
				return nil, fmt.Errorf("line %d: finalize for undeclared function %q", lineNo+1, name)
			}
			if fn.Finalize != nil {
				return nil, fmt.Errorf("line %d: duplicate finalize for function %q", lineNo+1, name)
			}
			fn.Finalize = &Finalize{}
			sink = func(instruction string) { fn.Finalize.Instructions = append(fn.Finalize.Instructions, instruction) }
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineNo+1, directive)
		}
	}

	if p.id == "" {
		return nil, fmt.Errorf("program source has no program declaration")
	}
	return p, nil
}

func validateID(id string) error {
	name, suffix, ok := strings.Cut(id, ".")
	if !ok || name == "" || suffix == "" {
		return fmt.Errorf("program id %q is not of the form <name>.<network>", id)
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("program id %q contains invalid characters", id)
		}
	}
	return nil
}
