package facts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/EchoCog/r9c/internal/logging"
	"github.com/EchoCog/r9c/internal/membrane"
)

// program declares the base predicates the registry exports and the rules
// derived from them. Derived pair predicates order ids ascending so each
// unordered pair appears once and self-pairs never do.
const program = `
# Base predicates exported by the membrane registry.
Decl membrane(Id, Version, Energy).
Decl membrane_shape(Id, Product, Size, Dims).
Decl membrane_parent(Child, Parent).
Decl membrane_object(Id, Symbol).
Decl membrane_factor(Id, Pos, Value).

# Derived predicates.
Decl membrane_ancestor(Id, Ancestor).
Decl reshape_compatible(A, B).
Decl shares_object(A, B, Symbol).

membrane_ancestor(X, Y) :- membrane_parent(X, Y).
membrane_ancestor(X, Z) :- membrane_parent(X, Y), membrane_ancestor(Y, Z).

reshape_compatible(A, B) :-
    membrane_shape(A, P, _, _),
    membrane_shape(B, P, _, _),
    A < B.

shares_object(A, B, Symbol) :-
    membrane_object(A, Symbol),
    membrane_object(B, Symbol),
    A < B.
`

// derivedFactLimit caps fixpoint output so a pathological registry cannot
// run the evaluator unbounded.
const derivedFactLimit = 100000

// Engine evaluates the membrane fact base. The rule program is parsed and
// analyzed once at construction; Rebuild re-derives everything from a fresh
// registry snapshot.
type Engine struct {
	mu    sync.RWMutex
	info  *analysis.ProgramInfo
	store factstore.FactStore
	edb   int
	ready bool
}

// NewEngine parses and analyzes the rule program.
func NewEngine() (*Engine, error) {
	parsed, err := parse.Unit(strings.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("parse fact program: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(parsed, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze fact program: %w", err)
	}
	logging.FactsDebug("Fact program analyzed: %d predicates declared", len(info.Decls))
	return &Engine{info: info}, nil
}

// Rebuild replaces the fact base with one derived from records and
// evaluates the rules to fixpoint. The previous base survives if anything
// fails.
func (e *Engine) Rebuild(records []membrane.Record) error {
	timer := logging.StartTimer(logging.CategoryFacts, "Rebuild")

	atoms := recordAtoms(records)
	store := factstore.NewSimpleInMemoryStore()
	for _, atom := range atoms {
		store.Add(atom)
	}

	stats, err := engine.EvalProgramWithStats(e.info, store,
		engine.WithCreatedFactLimit(derivedFactLimit))
	if err != nil {
		return fmt.Errorf("evaluate fact program: %w", err)
	}

	e.mu.Lock()
	e.store = store
	e.edb = len(atoms)
	e.ready = true
	e.mu.Unlock()

	timer.Stop()
	logging.FactsDebug("Fact base rebuilt: membranes=%d edb=%d strata=%d",
		len(records), len(atoms), len(stats.Strata))
	return nil
}

// EDBCount returns the number of base facts loaded by the last Rebuild.
func (e *Engine) EDBCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.edb
}

// recordAtoms renders registry records as base fact atoms. Every numeric
// column is a Mangle number; object symbols stay strings.
func recordAtoms(records []membrane.Record) []ast.Atom {
	var atoms []ast.Atom
	for _, r := range records {
		id := ast.Number(int64(r.ID))
		atoms = append(atoms,
			ast.NewAtom("membrane", id,
				ast.Number(int64(r.Version)), ast.Number(int64(r.Energy))),
			ast.NewAtom("membrane_shape", id,
				ast.Number(int64(r.Product)), ast.Number(int64(r.Size)), ast.Number(int64(r.Dims))))
		if r.Parent != 0 {
			atoms = append(atoms,
				ast.NewAtom("membrane_parent", id, ast.Number(int64(r.Parent))))
		}
		for _, symbol := range r.Objects {
			atoms = append(atoms,
				ast.NewAtom("membrane_object", id, ast.String(symbol)))
		}
		for pos, value := range r.Factors {
			atoms = append(atoms,
				ast.NewAtom("membrane_factor", id,
					ast.Number(int64(pos)), ast.Number(int64(value))))
		}
	}
	return atoms
}
