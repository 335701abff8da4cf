// Package facts projects the membrane registry into a Mangle (Datalog)
// fact base. The registry exports flat Records; this package renders them
// as base facts, evaluates a fixed rule set to fixpoint, and answers
// pattern queries over both base and derived predicates.
package facts

import (
	"fmt"
	"strings"

	"github.com/google/mangle/ast"
)

// Fact is one logical row, base or derived.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// String renders the fact in Datalog syntax: strings quoted, numbers bare.
func (f Fact) String() string {
	args := make([]string, len(f.Args))
	for i, arg := range f.Args {
		switch v := arg.(type) {
		case string:
			if strings.HasPrefix(v, "?") {
				args[i] = strings.TrimPrefix(v, "?") // variable
			} else {
				args[i] = fmt.Sprintf("%q", v)
			}
		case int64:
			args[i] = fmt.Sprintf("%d", v)
		case float64:
			args[i] = fmt.Sprintf("%f", v)
		default:
			args[i] = fmt.Sprintf("%v", v)
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// atomToFact converts a Mangle AST atom back to a Fact.
func atomToFact(a ast.Atom) Fact {
	args := make([]interface{}, len(a.Args))
	for i, term := range a.Args {
		args[i] = baseTermToValue(term)
	}
	return Fact{
		Predicate: a.Predicate.Symbol,
		Args:      args,
	}
}

// baseTermToValue extracts the Go value from a Mangle base term. Variables
// come back as "?X" strings so pattern matching can spot them.
func baseTermToValue(term ast.BaseTerm) interface{} {
	switch t := term.(type) {
	case ast.Constant:
		switch t.Type {
		case ast.NameType:
			return t.Symbol
		case ast.StringType:
			return t.Symbol
		case ast.BytesType:
			return t.Symbol
		case ast.NumberType:
			return t.NumValue
		case ast.Float64Type:
			return t.Float64Value
		default:
			return t.Symbol
		}
	case ast.Variable:
		return fmt.Sprintf("?%s", t.Symbol)
	default:
		return fmt.Sprintf("%v", term)
	}
}
