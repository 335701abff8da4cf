package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/EchoCog/r9c/cmd/membrane/shell"
	"github.com/EchoCog/r9c/internal/config"
	"github.com/EchoCog/r9c/internal/facts"
	"github.com/EchoCog/r9c/internal/logging"
	"github.com/EchoCog/r9c/internal/membrane"
	"github.com/EchoCog/r9c/internal/primes"
)

var (
	// Global flags
	cfgPath  string
	logLevel string
	verbose  bool

	// Loaded configuration, set by PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "membrane",
	Short: "r9c membrane shell - a registry of prime-factor tensor membranes",
	Long: `r9c manages membranes: nestable containers that pair a tensor buffer,
shaped by an ordered prime-factor list, with a set of symbolic objects.

Membranes live in a bounded registry, form a containment tree, and are
queryable as Mangle (Datalog) facts, including derived relations such as
the ancestor closure and reshape compatibility.

Run without arguments to start the interactive shell.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		opts := logging.Options{
			Level:   cfg.Logging.Level,
			File:    cfg.Logging.File,
			Console: cfg.Logging.Console,
		}
		if cmd.Name() == cmd.Root().Name() {
			// The TUI owns the terminal; keep logs in the file sink only.
			opts.Console = false
		}
		if err := logging.Initialize(opts); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}
		logging.Boot("membrane starting (config %s, level %s)", cfgPath, cfg.Logging.Level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

// execCmd runs shell commands from a script file or stdin
var execCmd = &cobra.Command{
	Use:   "exec [script]",
	Short: "Run shell commands from a script file (or stdin with -)",
	Long: `Executes newline- or semicolon-separated shell commands headlessly,
against a fresh registry. Lines starting with # are comments.

Example:
  membrane exec provision.mb
  echo "create 2 2 3; obj-add 1 ion; facts" | membrane exec -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExec,
}

// factorizeCmd prints prime-factor shapes for numbers
var factorizeCmd = &cobra.Command{
	Use:   "factorize [n...]",
	Short: "Prime-factorize numbers into candidate membrane shapes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFactorize,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level debug")

	stressCmd.Flags().IntVar(&stressWorkers, "workers", 8, "Concurrent workers")
	stressCmd.Flags().IntVar(&stressOps, "ops", 2000, "Operations per worker")
	stressCmd.Flags().Int64Var(&stressSeed, "seed", 1, "Registry buffer seed")

	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(factorizeCmd)
	rootCmd.AddCommand(stressCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// limitsFromConfig maps registry config onto store limits.
func limitsFromConfig(c *config.Config) membrane.Limits {
	return membrane.Limits{
		MaxMembranes:      c.Registry.MaxMembranes,
		MaxChildren:       c.Registry.MaxChildren,
		MaxObjects:        c.Registry.MaxObjects,
		MaxFactors:        c.Registry.MaxFactors,
		MaxTensorElements: c.Registry.MaxTensorElements,
	}
}

// buildStore creates the registry per config, honoring a fixed seed.
func buildStore(c *config.Config) (*membrane.Store, error) {
	limits := limitsFromConfig(c)
	if c.Registry.Seed != 0 {
		return membrane.NewStoreWithSeed(limits, c.Registry.Seed)
	}
	return membrane.NewStore(limits)
}

// buildRunner assembles the store, facts engine, and shell runner.
func buildRunner(c *config.Config) (*shell.Runner, *membrane.Store, error) {
	store, err := buildStore(c)
	if err != nil {
		return nil, nil, err
	}
	engine, err := facts.NewEngine()
	if err != nil {
		return nil, nil, fmt.Errorf("facts engine: %w", err)
	}
	return shell.NewRunner(store, engine), store, nil
}

// runShell starts the interactive TUI with config live-reload wired in.
func runShell() error {
	runner, store, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config edits take effect live: log level and registry limits.
	watcher, err := config.NewWatcher(cfgPath, func(next *config.Config) {
		if err := logging.SetLevel(next.Logging.Level); err != nil {
			logging.Config("reload: bad log level: %v", err)
		}
		if err := store.SetLimits(limitsFromConfig(next)); err != nil {
			logging.Config("reload: limits rejected: %v", err)
		}
	})
	if err != nil {
		logging.Config("config watcher unavailable: %v", err)
	} else {
		if err := watcher.Start(ctx); err == nil {
			defer watcher.Stop()
		}
	}

	return shell.Run(runner, cfg)
}

func runExec(cmd *cobra.Command, args []string) error {
	var (
		script []byte
		err    error
	)
	if len(args) == 0 || args[0] == "-" {
		script, err = io.ReadAll(os.Stdin)
	} else {
		script, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	runner, _, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	results, err := runner.ExecuteScript(string(script))
	for _, res := range results {
		fmt.Println(res.Output)
	}
	return err
}

func runFactorize(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || n < 2 {
			return fmt.Errorf("invalid number %q: expected an integer >= 2", arg)
		}
		factors := primes.Factorize(uint32(n))
		fmt.Printf("%d = %v (product %d, size %d, dims %d)\n",
			n, factors, primes.Product(factors), primes.Size(factors), primes.Dimensions(factors))
	}
	return nil
}
