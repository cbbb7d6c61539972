package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/tribunal/internal/audit"
	"github.com/dusk-indust/tribunal/internal/config"
	"github.com/dusk-indust/tribunal/internal/mcptools"
	"github.com/dusk-indust/tribunal/internal/report"
	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// CLI flags parsed from command line.
type cliFlags struct {
	RepoURL    string
	ReportPath string
	RubricPath string
	OutputDir  string
	JSON       bool
	Verbose    bool
	ServeMCP   bool
	Addr       string
	Version    bool
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

	fs := flag.NewFlagSet("tribunal", flag.ContinueOnError)
	fs.StringVar(&flags.RepoURL, "repo", "", "git URL or local path of the repository to audit")
	fs.StringVar(&flags.ReportPath, "report", "", "path to the written report that accompanies the repository")
	fs.StringVar(&flags.RubricPath, "rubric", "", "path to a rubric YAML file (default: built-in)")
	fs.StringVar(&flags.OutputDir, "out", "", "directory for the rendered verdict files")
	fs.BoolVar(&flags.JSON, "json", false, "print the verdict as JSON instead of markdown")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server exposing the audit tools")
	fs.StringVar(&flags.Addr, "addr", "localhost:8391", "listen address for -serve-mcp")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyConfig(&flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedOpts := workflow.DefaultOptions()
	if cfg.TaskTimeout() > 0 {
		schedOpts.TaskTimeout = cfg.TaskTimeout()
	}
	schedOpts.MaxParallel = cfg.MaxParallel

	store, err := openArchive(cfg.ArchivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	if flags.ServeMCP {
		svc := mcptools.NewAuditService(store, schedOpts)
		log.Printf("tribunal MCP server listening on %s", flags.Addr)
		return mcptools.RunMCPServer(ctx, svc, flags.Addr)
	}

	if rest := fs.Args(); len(rest) > 0 {
		switch rest[0] {
		case "runs":
			return runList(ctx, store)
		case "show":
			return runShow(ctx, store, rest[1:], flags.JSON)
		case "history":
			return runHistory(ctx, store, rest[1:])
		default:
			return fmt.Errorf("unknown command %q", rest[0])
		}
	}

	if flags.RepoURL == "" {
		fs.Usage()
		return fmt.Errorf("-repo is required")
	}
	return runAudit(ctx, store, flags, schedOpts)
}

// applyConfig fills flag defaults from tribunal.yml without overriding what
// the user passed explicitly.
func applyConfig(flags *cliFlags, cfg *config.ProjectConfig) {
	if flags.RubricPath == "" {
		flags.RubricPath = cfg.RubricPath
	}
	if flags.OutputDir == "" {
		flags.OutputDir = cfg.OutputDir
	}
	if cfg.Verbose {
		flags.Verbose = true
	}
}

func runAudit(ctx context.Context, store archiveStore, flags cliFlags, schedOpts workflow.Options) error {
	r := rubric.Default()
	if flags.RubricPath != "" {
		var err error
		if r, err = rubric.Load(flags.RubricPath); err != nil {
			return err
		}
	}

	opts := audit.Options{
		Rubric:    r,
		Scheduler: schedOpts,
		Archive:   store,
	}
	if flags.Verbose {
		opts.OnProgress = func(ev workflow.ProgressEvent) {
			log.Print(workflow.FormatEvent(ev))
		}
	}

	rep, err := audit.Run(ctx, workflow.Target{
		RepoURL:    flags.RepoURL,
		ReportPath: flags.ReportPath,
	}, opts)
	if err != nil {
		return err
	}

	if flags.OutputDir != "" {
		path, err := report.WriteFiles(rep, flags.OutputDir)
		if err != nil {
			return err
		}
		fmt.Printf("verdict written to %s\n", path)
		return nil
	}

	if flags.JSON {
		data, err := report.RenderJSON(rep)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	fmt.Print(report.RenderMarkdown(rep))
	return nil
}
