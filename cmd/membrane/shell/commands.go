package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/EchoCog/r9c/internal/membrane"
	"github.com/EchoCog/r9c/internal/primes"
)

// ===== Lifecycle =====

func (r *Runner) cmdCreate(args []string) (Result, error) {
	factors, err := parseFactors(args)
	if err != nil {
		return Result{}, err
	}
	id, err := r.store.Create(factors)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Created membrane **%d** with shape %s (product %d, size %d, dims %d)",
		id, formatFactors(factors), primes.Product(factors), primes.Size(factors), primes.Dimensions(factors))}, nil
}

func (r *Runner) cmdCreateChild(args []string) (Result, error) {
	if len(args) < 2 {
		return Result{}, usage("create-child <parent-id> <factors>")
	}
	parent, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	factors, err := parseFactors(args[1:])
	if err != nil {
		return Result{}, err
	}
	id, err := r.store.CreateChild(parent, factors)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Created membrane **%d** with shape %s inside membrane %d",
		id, formatFactors(factors), parent)}, nil
}

func (r *Runner) cmdDestroy(args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, usage("destroy <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	before := r.store.Count()
	if err := r.store.Destroy(id); err != nil {
		return Result{}, err
	}
	removed := before - r.store.Count()
	if removed == 1 {
		return Result{Output: fmt.Sprintf("Destroyed membrane **%d**", id)}, nil
	}
	return Result{Output: fmt.Sprintf("Destroyed membrane **%d** and its subtree (%d membranes)", id, removed)}, nil
}

func (r *Runner) cmdReshape(args []string) (Result, error) {
	if len(args) < 2 {
		return Result{}, usage("reshape <id> <factors>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	factors, err := parseFactors(args[1:])
	if err != nil {
		return Result{}, err
	}
	if err := r.store.Reshape(id, factors); err != nil {
		return Result{}, err
	}
	info, err := r.store.Describe(id)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Reshaped membrane **%d** to %s (version %d)",
		id, formatFactors(factors), info.Version)}, nil
}

// ===== Elements =====

func (r *Runner) cmdGet(args []string) (Result, error) {
	if len(args) < 2 {
		return Result{}, usage("get <id> <indices>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	indices, err := parseIndices(args[1:])
	if err != nil {
		return Result{}, err
	}
	value, err := r.store.GetElement(id, indices)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("membrane %d %v = **%g**", id, indices, value)}, nil
}

func (r *Runner) cmdSet(args []string) (Result, error) {
	if len(args) < 3 {
		return Result{}, usage("set <id> <indices> <value>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	value, err := parseValue(args[len(args)-1])
	if err != nil {
		return Result{}, err
	}
	indices, err := parseIndices(args[1 : len(args)-1])
	if err != nil {
		return Result{}, err
	}
	if err := r.store.SetElement(id, indices, value); err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("membrane %d %v ← %g", id, indices, value)}, nil
}

func (r *Runner) cmdFill(args []string) (Result, error) {
	if len(args) != 2 {
		return Result{}, usage("fill <id> <value>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	value, err := parseValue(args[1])
	if err != nil {
		return Result{}, err
	}
	if err := r.store.Fill(id, value); err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Filled membrane **%d** with %g", id, value)}, nil
}

// ===== Objects =====

func (r *Runner) cmdObjAdd(args []string) (Result, error) {
	if len(args) != 2 {
		return Result{}, usage("obj-add <id> <symbol>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	if err := r.store.AddObject(id, args[1]); err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Added object `%s` to membrane **%d**", args[1], id)}, nil
}

func (r *Runner) cmdObjRemove(args []string) (Result, error) {
	if len(args) != 2 {
		return Result{}, usage("obj-remove <id> <symbol>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	if err := r.store.RemoveObject(id, args[1]); err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Removed object `%s` from membrane **%d**", args[1], id)}, nil
}

func (r *Runner) cmdObjFind(args []string) (Result, error) {
	if len(args) != 2 {
		return Result{}, usage("obj-find <id> <symbol>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	found, err := r.store.FindObject(id, args[1])
	if err != nil {
		return Result{}, err
	}
	if found {
		return Result{Output: fmt.Sprintf("Object `%s` is **present** in membrane %d", args[1], id)}, nil
	}
	return Result{Output: fmt.Sprintf("Object `%s` is absent from membrane %d", args[1], id)}, nil
}

func (r *Runner) cmdObjTransfer(args []string) (Result, error) {
	if len(args) != 3 {
		return Result{}, usage("obj-transfer <from-id> <to-id> <symbol>")
	}
	from, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	to, err := parseID(args[1])
	if err != nil {
		return Result{}, err
	}
	if err := r.store.TransferObject(from, to, args[2]); err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Transferred object `%s`: membrane %d → membrane %d", args[2], from, to)}, nil
}

// ===== Inspection =====

func (r *Runner) cmdDescribe(args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, usage("describe <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return Result{}, err
	}
	info, err := r.store.Describe(id)
	if err != nil {
		return Result{}, err
	}
	objects, err := r.store.Objects(id)
	if err != nil {
		return Result{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Membrane %d\n\n", info.ID)
	fmt.Fprintf(&sb, "- shape: %s\n", formatFactors(info.PrimeFactors))
	fmt.Fprintf(&sb, "- product: %d, size: %d, dims: %d\n",
		primes.Product(info.PrimeFactors), primes.Size(info.PrimeFactors), primes.Dimensions(info.PrimeFactors))
	fmt.Fprintf(&sb, "- version: %d\n", info.Version)
	fmt.Fprintf(&sb, "- energy: %d\n", info.EnergyLevel)
	fmt.Fprintf(&sb, "- children: %d\n", info.ChildCount)
	if len(objects) == 0 {
		fmt.Fprintf(&sb, "- objects: none\n")
	} else {
		fmt.Fprintf(&sb, "- objects (%d): `%s`\n", len(objects), strings.Join(objects, "` `"))
	}
	return Result{Output: sb.String()}, nil
}

func (r *Runner) cmdTree(args []string) (Result, error) {
	var nodes []membrane.TreeNode
	switch len(args) {
	case 0:
		nodes = r.store.Forest()
	case 1:
		id, err := parseID(args[0])
		if err != nil {
			return Result{}, err
		}
		node, err := r.store.Tree(id)
		if err != nil {
			return Result{}, err
		}
		nodes = []membrane.TreeNode{node}
	default:
		return Result{}, usage("tree [id]")
	}
	if len(nodes) == 0 {
		return Result{Output: "No membranes."}, nil
	}

	var sb strings.Builder
	sb.WriteString("```\n")
	for _, node := range nodes {
		renderTree(&sb, node, "", "")
	}
	sb.WriteString("```")
	return Result{Output: sb.String()}, nil
}

func renderTree(sb *strings.Builder, node membrane.TreeNode, head, prefix string) {
	fmt.Fprintf(sb, "%s%s\n", head, treeLine(node))
	for i, child := range node.Children {
		branch, cont := "├─ ", "│  "
		if i == len(node.Children)-1 {
			branch, cont = "└─ ", "   "
		}
		renderTree(sb, child, prefix+branch, prefix+cont)
	}
}

func treeLine(node membrane.TreeNode) string {
	line := fmt.Sprintf("membrane %d %s v%d",
		node.Info.ID, formatFactors(node.Info.PrimeFactors), node.Info.Version)
	if len(node.Objects) > 0 {
		line += fmt.Sprintf(" {%s}", strings.Join(node.Objects, " "))
	}
	return line
}

func (r *Runner) cmdList(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("list")
	}
	records := r.store.Snapshot()
	if len(records) == 0 {
		return Result{Output: "No membranes."}, nil
	}

	var sb strings.Builder
	sb.WriteString("| ID | Parent | Shape | Product | Size | Dims | Version | Objects |\n")
	sb.WriteString("|----|--------|-------|---------|------|------|---------|--------|\n")
	for _, rec := range records {
		parent := "-"
		if rec.Parent != 0 {
			parent = strconv.FormatUint(uint64(rec.Parent), 10)
		}
		objects := "-"
		if len(rec.Objects) > 0 {
			objects = strings.Join(rec.Objects, " ")
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %d | %d | %d | %d | %s |\n",
			rec.ID, parent, formatFactors(rec.Factors), rec.Product, rec.Size, rec.Dims, rec.Version, objects)
	}
	return Result{Output: sb.String()}, nil
}

func (r *Runner) cmdCount(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("count")
	}
	return Result{Output: fmt.Sprintf("%d membrane(s) live (limit %d)",
		r.store.Count(), r.store.Limits().MaxMembranes)}, nil
}

func (r *Runner) cmdLimits(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("limits")
	}
	l := r.store.Limits()
	var sb strings.Builder
	sb.WriteString("## Registry Limits\n\n")
	fmt.Fprintf(&sb, "- max membranes: %d\n", l.MaxMembranes)
	fmt.Fprintf(&sb, "- max children per membrane: %d\n", l.MaxChildren)
	fmt.Fprintf(&sb, "- max objects per membrane: %d\n", l.MaxObjects)
	fmt.Fprintf(&sb, "- max factors per shape: %d\n", l.MaxFactors)
	fmt.Fprintf(&sb, "- max tensor elements: %d\n", l.MaxTensorElements)
	return Result{Output: sb.String()}, nil
}

// ===== Utilities =====

func (r *Runner) cmdFactorize(args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, usage("factorize <n> [n...]")
	}
	var sb strings.Builder
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || n < 2 {
			return Result{}, fmt.Errorf("invalid number %q: expected an integer >= 2", arg)
		}
		factors := primes.Factorize(uint32(n))
		fmt.Fprintf(&sb, "%d = %s (product %d, size %d, dims %d)\n",
			n, formatFactors(factors), primes.Product(factors), primes.Size(factors), primes.Dimensions(factors))
	}
	return Result{Output: sb.String()}, nil
}

// ===== Facts =====

func (r *Runner) cmdQuery(args []string) (Result, error) {
	if r.engine == nil {
		return Result{}, fmt.Errorf("facts engine unavailable")
	}
	if len(args) == 0 {
		return Result{}, usage("query <predicate-or-pattern>")
	}
	if err := r.engine.Rebuild(r.store.Snapshot()); err != nil {
		return Result{}, err
	}

	pattern := strings.Join(args, " ")
	results, err := r.engine.Query(pattern)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{Output: fmt.Sprintf("No facts match `%s`", pattern)}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d fact(s):\n\n```\n", len(results))
	for _, f := range results {
		sb.WriteString(f.String())
		sb.WriteString("\n")
	}
	sb.WriteString("```")
	return Result{Output: sb.String()}, nil
}

func (r *Runner) cmdFacts(args []string) (Result, error) {
	if r.engine == nil {
		return Result{}, fmt.Errorf("facts engine unavailable")
	}
	if len(args) != 0 {
		return Result{}, usage("facts")
	}
	if err := r.engine.Rebuild(r.store.Snapshot()); err != nil {
		return Result{}, err
	}

	all, err := r.engine.QueryAll()
	if err != nil {
		return Result{}, err
	}
	preds := make([]string, 0, len(all))
	total := 0
	for pred, rows := range all {
		preds = append(preds, pred)
		total += len(rows)
	}
	sort.Strings(preds)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d fact(s) over %d predicate(s), %d base:\n\n```\n",
		total, len(preds), r.engine.EDBCount())
	for _, pred := range preds {
		for _, f := range all[pred] {
			sb.WriteString(f.String())
			sb.WriteString("\n")
		}
	}
	sb.WriteString("```")
	return Result{Output: sb.String()}, nil
}

// formatFactors renders a factor list as "[2 2 3]".
func formatFactors(factors []uint32) string {
	toks := make([]string, len(factors))
	for i, f := range factors {
		toks[i] = strconv.FormatUint(uint64(f), 10)
	}
	return "[" + strings.Join(toks, " ") + "]"
}
