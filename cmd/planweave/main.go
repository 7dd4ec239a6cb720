package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/planweave/internal/augment"
	"github.com/dusk-indust/planweave/internal/config"
	"github.com/dusk-indust/planweave/internal/infer"
	"github.com/dusk-indust/planweave/internal/mcptools"
	"github.com/dusk-indust/planweave/internal/toolreg"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectRoot string
	Verbose     bool
	ServeMCP    bool
	MCPAddr     string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("planweave", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "directory holding planweave.yml")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server for agent integration")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", "localhost:8391", "listen address for the MCP server")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.Verbose {
		cfg.Verbose = true
	}

	if flags.ServeMCP {
		return runServe(cfg, flags.MCPAddr)
	}

	switch fs.Arg(0) {
	case "convert":
		return runConvert(cfg, fs.Args()[1:])
	case "augment":
		return runAugment(cfg, fs.Args()[1:])
	case "report":
		return runReport(fs.Args()[1:])
	case "diagram":
		return runDiagram(fs.Args()[1:])
	case "":
		fs.Usage()
		return fmt.Errorf("a subcommand is required: convert, augment, report, diagram")
	default:
		return fmt.Errorf("unknown subcommand %q", fs.Arg(0))
	}
}

// runServe starts the MCP server over the configured store.
func runServe(cfg *config.ProjectConfig, addr string) error {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := st.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	svc := mcptools.NewPlanService(st, reg, inferConfig(cfg), augmentConfig(cfg))
	fmt.Fprintf(os.Stderr, "planweave MCP server listening on %s\n", addr)
	return mcptools.RunMCPServer(ctx, svc, addr)
}

// loadRegistry returns the configured tool-schema registry, or the built-in
// one when no path is set.
func loadRegistry(cfg *config.ProjectConfig) (*toolreg.Registry, error) {
	if cfg.ToolSchemaPath == "" {
		return toolreg.Default(), nil
	}
	reg, err := toolreg.Load(cfg.ToolSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("load tool schemas: %w", err)
	}
	return reg, nil
}

func inferConfig(cfg *config.ProjectConfig) infer.Config {
	return infer.Config{
		SemanticThreshold: cfg.Threshold(),
		AllowOrphans:      cfg.Orphans(),
	}
}

func augmentConfig(cfg *config.ProjectConfig) augment.Config {
	return augment.Config{
		Strategies:           cfg.Strategies,
		MaxVariants:          cfg.MaxVariants(),
		PreserveCriticalPath: cfg.PreserveCriticalPath,
	}
}
