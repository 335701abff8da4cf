// Package shell implements the interactive membrane shell: a small command
// language over the membrane registry, usable from the TUI or headlessly.
// Files:
//   - runner.go: command execution against the registry (UI-independent)
//   - commands.go: per-command handlers
//   - parse.go: argument parsing (this file)
//   - model.go / view.go: bubbletea TUI wrapper around the runner
//   - help.go: command reference
package shell

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/EchoCog/r9c/internal/membrane"
)

// splitList normalizes a factor or index list. Accepts bracketed
// ("[2,2,3]"), comma-separated ("2,2,3"), and space-separated ("2 2 3")
// forms, in any mix.
func splitList(args []string) []string {
	joined := strings.Join(args, " ")
	joined = strings.NewReplacer("[", " ", "]", " ", ",", " ").Replace(joined)
	return strings.Fields(joined)
}

// parseFactors parses a prime-factor list for create/reshape.
func parseFactors(args []string) ([]uint32, error) {
	toks := splitList(args)
	if len(toks) == 0 {
		return nil, fmt.Errorf("expected a factor list, e.g. [2,2,3]")
	}
	factors := make([]uint32, 0, len(toks))
	for _, tok := range toks {
		n, err := strconv.ParseUint(tok, 10, 32)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid factor %q: expected a positive integer", tok)
		}
		factors = append(factors, uint32(n))
	}
	return factors, nil
}

// parseIndices parses an element index list for get/set.
func parseIndices(args []string) ([]int, error) {
	toks := splitList(args)
	if len(toks) == 0 {
		return nil, fmt.Errorf("expected an index list, e.g. [0,1]")
	}
	indices := make([]int, 0, len(toks))
	for _, tok := range toks {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: expected an integer", tok)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// parseID parses a membrane id.
func parseID(tok string) (membrane.ID, error) {
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid membrane id %q", tok)
	}
	return membrane.ID(n), nil
}

// parseValue parses an element value.
func parseValue(tok string) (float32, error) {
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid value %q: expected a number", tok)
	}
	return float32(f), nil
}
