package shell

import (
	"fmt"
	"strings"

	"github.com/EchoCog/r9c/internal/facts"
	"github.com/EchoCog/r9c/internal/logging"
	"github.com/EchoCog/r9c/internal/membrane"
)

// Runner executes shell commands against a membrane registry. It carries
// no UI state, so the TUI and the headless exec subcommand share it.
type Runner struct {
	store  *membrane.Store
	engine *facts.Engine
}

// NewRunner creates a runner over the given registry and facts engine.
// The engine may be nil; query commands then report it as unavailable.
func NewRunner(store *membrane.Store, engine *facts.Engine) *Runner {
	return &Runner{store: store, engine: engine}
}

// Result is the outcome of one executed command.
type Result struct {
	Output string // markdown, rendered by the TUI, printed raw headlessly
	Quit   bool
}

// Execute runs a single command line. Domain failures come back as errors
// with the output empty; an empty line is a no-op.
func (r *Runner) Execute(input string) (Result, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Result{}, nil
	}
	cmd, args := fields[0], fields[1:]
	logging.ShellDebug("execute: %s (%d args)", cmd, len(args))

	switch cmd {
	case "quit", "exit", "q":
		return Result{Quit: true}, nil

	case "help", "?":
		return Result{Output: helpText}, nil

	case "create":
		return r.cmdCreate(args)
	case "create-child":
		return r.cmdCreateChild(args)
	case "destroy":
		return r.cmdDestroy(args)
	case "reshape":
		return r.cmdReshape(args)

	case "get":
		return r.cmdGet(args)
	case "set":
		return r.cmdSet(args)
	case "fill":
		return r.cmdFill(args)

	case "obj-add":
		return r.cmdObjAdd(args)
	case "obj-remove":
		return r.cmdObjRemove(args)
	case "obj-find":
		return r.cmdObjFind(args)
	case "obj-transfer":
		return r.cmdObjTransfer(args)

	case "describe":
		return r.cmdDescribe(args)
	case "tree":
		return r.cmdTree(args)
	case "list":
		return r.cmdList(args)
	case "count":
		return r.cmdCount(args)
	case "limits":
		return r.cmdLimits(args)

	case "factorize":
		return r.cmdFactorize(args)

	case "query":
		return r.cmdQuery(args)
	case "facts":
		return r.cmdFacts(args)

	default:
		return Result{}, fmt.Errorf("unknown command %q (try `help`)", cmd)
	}
}

// ExecuteScript runs a newline- or semicolon-separated command sequence,
// stopping at the first failure or quit.
func (r *Runner) ExecuteScript(script string) ([]Result, error) {
	var results []Result
	for _, line := range splitScript(script) {
		res, err := r.Execute(line)
		if err != nil {
			return results, fmt.Errorf("%s: %w", line, err)
		}
		if res.Output != "" {
			results = append(results, res)
		}
		if res.Quit {
			break
		}
	}
	return results, nil
}

func splitScript(script string) []string {
	raw := strings.FieldsFunc(script, func(r rune) bool {
		return r == '\n' || r == ';'
	})
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// usage builds the canonical error for a malformed invocation.
func usage(form string) error {
	return fmt.Errorf("usage: %s", form)
}
