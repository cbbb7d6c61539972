package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dusk-indust/tribunal/internal/archive"
	"github.com/dusk-indust/tribunal/internal/report"
)

// archiveStore is the archive backend the CLI commands operate on.
type archiveStore = archive.Store

func runList(ctx context.Context, store archiveStore) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %.1f/5  %-3d criteria  %s  %s\n",
			r.GeneratedAt.Format("2006-01-02 15:04"), r.OverallScore,
			r.Criteria, r.RunID, r.RepoURL)
	}
	return nil
}

func runShow(ctx context.Context, store archiveStore, args []string, asJSON bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: tribunal show <run-id>")
	}
	rep, err := store.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if rep == nil {
		return fmt.Errorf("unknown run %q", args[0])
	}
	if asJSON {
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

func runHistory(ctx context.Context, store archiveStore, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: tribunal history <criterion-id>")
	}
	points, err := store.ScoreHistory(ctx, args[0])
	if err != nil {
		return fmt.Errorf("score history: %w", err)
	}
	if len(points) == 0 {
		fmt.Printf("no archived scores for %s\n", args[0])
		return nil
	}
	for _, p := range points {
		fmt.Printf("%s  %d/5  %s\n", p.GeneratedAt.Format("2006-01-02 15:04"), p.Score, p.RunID)
	}
	return nil
}
