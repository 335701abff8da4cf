package facts

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"

	"github.com/EchoCog/r9c/internal/logging"
)

// Query retrieves facts for a predicate, optionally filtered by a pattern.
// Accepts a bare predicate name ("membrane_ancestor") or a pattern with
// arguments ("membrane_ancestor(X, 1)"). Variables and _ are wildcards;
// constants must match. Results come back sorted for stable display.
func (e *Engine) Query(pattern string) ([]Fact, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, fmt.Errorf("fact base not built")
	}

	var (
		patternFact   Fact
		hasPattern    bool
		arity         int
		predicateName = strings.TrimSpace(pattern)
	)
	if idx := strings.Index(pattern, "("); idx > 0 {
		predicateName = strings.TrimSpace(pattern[:idx])
		parsed, err := parsePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad query pattern %q: %w", pattern, err)
		}
		patternFact = parsed
		hasPattern = true
		arity = len(parsed.Args)
		predicateName = parsed.Predicate
	}

	results := make([]Fact, 0)
	found := false
	for pred := range e.info.Decls {
		if pred.Symbol == predicateName && (!hasPattern || pred.Arity == arity) {
			found = true
			e.store.GetFacts(ast.NewQuery(pred), func(a ast.Atom) error {
				fact := atomToFact(a)
				if !hasPattern || matchesPattern(fact, patternFact) {
					results = append(results, fact)
				}
				return nil
			})
			break
		}
	}
	if !found {
		logging.FactsDebug("Query: predicate %q not declared", predicateName)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].String() < results[j].String() })
	logging.FactsDebug("Query %q: %d results", pattern, len(results))
	return results, nil
}

// QueryAll retrieves every fact organized by predicate, each predicate's
// rows sorted.
func (e *Engine) QueryAll() (map[string][]Fact, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, fmt.Errorf("fact base not built")
	}

	results := make(map[string][]Fact)
	for pred := range e.info.Decls {
		rows := make([]Fact, 0)
		e.store.GetFacts(ast.NewQuery(pred), func(a ast.Atom) error {
			rows = append(rows, atomToFact(a))
			return nil
		})
		sort.Slice(rows, func(i, j int) bool { return rows[i].String() < rows[j].String() })
		results[pred.Symbol] = rows
	}
	return results, nil
}

// parsePattern parses "pred(arg, ...)" into a Fact, using the Mangle
// parser so constants and variables follow its syntax exactly.
func parsePattern(pattern string) (Fact, error) {
	parsed, err := parse.Unit(strings.NewReader(pattern + "."))
	if err != nil {
		return Fact{}, err
	}
	if len(parsed.Clauses) == 0 {
		return Fact{}, fmt.Errorf("no clause in pattern")
	}
	return atomToFact(parsed.Clauses[0].Head), nil
}

func matchesPattern(f, pattern Fact) bool {
	if f.Predicate != pattern.Predicate {
		return false
	}
	if len(f.Args) != len(pattern.Args) {
		return false
	}
	for i := range pattern.Args {
		if !argMatches(pattern.Args[i], f.Args[i]) {
			return false
		}
	}
	return true
}

func argMatches(pattern, value interface{}) bool {
	// Variables come out of atomToFact as "?X" strings.
	if s, ok := pattern.(string); ok && strings.HasPrefix(s, "?") {
		return true
	}
	return reflect.DeepEqual(normalizeValue(pattern), normalizeValue(value))
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	default:
		return v
	}
}
