// Package audit assembles and runs the full two-stage pipeline: collectors
// fan out over the target, judges fan out over the evidence, and the
// synthesis engine reduces the opinion pool into one verdict per criterion.
// The CLI and the MCP server both drive audits through this package.
package audit

import (
	"context"
	"fmt"
	"log"

	"github.com/dusk-indust/tribunal/internal/archive"
	"github.com/dusk-indust/tribunal/internal/codescan"
	"github.com/dusk-indust/tribunal/internal/detective"
	"github.com/dusk-indust/tribunal/internal/judge"
	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// Options configures a single audit run.
type Options struct {
	Rubric    *rubric.Rubric
	Scheduler workflow.Options

	// Archive, when set, receives the finished run. Archive failures are
	// reported as warnings, not run failures.
	Archive archive.Store

	// OnProgress, when set, receives every pipeline progress event.
	OnProgress func(workflow.ProgressEvent)
}

// Run executes one complete audit of the target and returns the synthesized
// report.
func Run(ctx context.Context, target workflow.Target, opts Options) (*verdict.Report, error) {
	r := opts.Rubric
	if r == nil {
		r = rubric.Default()
	}

	parser := codescan.NewTreeSitterParser()
	defer parser.Close()

	sched := workflow.NewScheduler(opts.Scheduler)
	progressDone := make(chan struct{})
	defer func() {
		// Closing the scheduler ends the progress stream; wait for the
		// drain goroutine so no callback fires after Run returns.
		sched.Close()
		<-progressDone
	}()

	sched.Register(detective.NewRepoInvestigator(r, parser))
	sched.Register(detective.NewDocAnalyst(r))
	sched.Register(detective.NewCrossExaminer(r))

	panel, err := judge.NewPanel(r)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	for _, j := range panel {
		sched.Register(j)
	}

	events := sched.Progress()
	go func() {
		defer close(progressDone)
		for ev := range events {
			if opts.OnProgress != nil {
				opts.OnProgress(ev)
			}
		}
	}()

	state := workflow.NewWorkflowState(target)
	if err := sched.Run(ctx, state); err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	engine := verdict.NewEngine(verdict.PolicyFrom(r.Synthesis))
	rep := engine.BuildReport(r, state)

	if opts.Archive != nil {
		if err := opts.Archive.SaveRun(ctx, rep, state.EvidenceStore); err != nil {
			log.Printf("WARNING: audit: archive run %s: %v", rep.RunID, err)
			rep.Warnings = append(rep.Warnings, "archive failed: "+err.Error())
		}
	}
	return rep, nil
}
