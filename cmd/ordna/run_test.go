package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/mover"
	"github.com/larsvincent/ordna/pkg/ordna/organize"
	"github.com/larsvincent/ordna/pkg/ordna/output"
	"github.com/larsvincent/ordna/pkg/ordna/planner"
	"github.com/larsvincent/ordna/pkg/ordna/scanner"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

func TestConvertRunResult(t *testing.T) {
	stats := types.NewStats()
	stats.RecordMove(types.MethodRule, "Documents", 2048)
	stats.RecordMove(types.MethodExternal, "Finance", 512)
	stats.Skipped = 1
	stats.Errors = 1

	r := &organize.Result{
		Root:   "/home/x/Downloads",
		DryRun: true,
		Moves: []organize.Move{
			{
				Name:     "report.pdf",
				From:     "/home/x/Downloads/report.pdf",
				To:       "/home/x/Downloads/Documents/PDF/2024-03/report.pdf",
				Category: "Documents",
				Method:   types.MethodRule,
				Size:     2048,
			},
			{
				Name:     "invoice.pdf",
				From:     "/home/x/Downloads/invoice.pdf",
				To:       "/home/x/Downloads/Finance/Invoices/2024-03/invoice.pdf",
				Category: "Finance",
				Method:   types.MethodExternal,
				Size:     512,
			},
		},
		Skips: []planner.Skip{
			{Name: "mystery.xyz", Path: "/home/x/Downloads/mystery.xyz", Reason: "no matching category"},
		},
		Errors: []mover.ItemError{
			{Name: "locked.bin", Path: "/home/x/Downloads/locked.bin", Error: "permission denied"},
		},
		Duplicates: []types.DuplicatePair{
			{Path: "/home/x/Downloads/b.txt", Original: "/home/x/Downloads/a.txt", Size: 64},
		},
		ScanErrors: []scanner.ScanError{
			{Path: "/home/x/Downloads/ghost", Error: "stat failed"},
		},
		Stats:       stats,
		Duration:    3 * time.Second,
		Interrupted: true,
	}

	out := convertRunResult(r)

	if out.Op != output.OpRun {
		t.Errorf("Op = %q, want %q", out.Op, output.OpRun)
	}
	if out.Root != r.Root {
		t.Errorf("Root = %q, want %q", out.Root, r.Root)
	}
	if !out.DryRun {
		t.Error("DryRun was not carried over")
	}
	if !out.Interrupted {
		t.Error("Interrupted was not carried over")
	}

	if len(out.Moves) != 2 {
		t.Fatalf("Moves = %d, want 2", len(out.Moves))
	}
	if out.Moves[0].Method != "rule" {
		t.Errorf("Moves[0].Method = %q, want %q", out.Moves[0].Method, "rule")
	}
	if out.Moves[1].Method != "external" {
		t.Errorf("Moves[1].Method = %q, want %q", out.Moves[1].Method, "external")
	}
	if out.Moves[0].SizeHuman != "2.0 KiB" {
		t.Errorf("Moves[0].SizeHuman = %q, want %q", out.Moves[0].SizeHuman, "2.0 KiB")
	}

	if len(out.Skips) != 1 || out.Skips[0].Reason != "no matching category" {
		t.Errorf("Skips not converted: %+v", out.Skips)
	}
	if len(out.Errors) != 1 || out.Errors[0].Message != "permission denied" {
		t.Errorf("Errors not converted: %+v", out.Errors)
	}
	if len(out.Duplicates) != 1 || out.Duplicates[0].Original != "/home/x/Downloads/a.txt" {
		t.Errorf("Duplicates not converted: %+v", out.Duplicates)
	}

	if len(out.Warnings) != 1 || !strings.Contains(out.Warnings[0], "ghost") {
		t.Errorf("Warnings = %v, want scan error mention", out.Warnings)
	}

	if out.Stats.Moved != 2 || out.Stats.Skipped != 1 || out.Stats.Errors != 1 {
		t.Errorf("Stats counts = %+v", out.Stats)
	}
	if out.Stats.ByMethod["rule"] != 1 || out.Stats.ByMethod["external"] != 1 {
		t.Errorf("ByMethod = %v", out.Stats.ByMethod)
	}
	if out.Stats.ByCategory["Documents"] != 1 || out.Stats.ByCategory["Finance"] != 1 {
		t.Errorf("ByCategory = %v", out.Stats.ByCategory)
	}
	if out.Stats.BytesMoved != 2560 {
		t.Errorf("BytesMoved = %d, want 2560", out.Stats.BytesMoved)
	}
	if out.Stats.Duration != 3*time.Second {
		t.Errorf("Duration = %v, want 3s", out.Stats.Duration)
	}
}

func TestConvertRunResultEmpty(t *testing.T) {
	r := &organize.Result{
		Root:  "/tmp/empty",
		Stats: types.NewStats(),
	}

	out := convertRunResult(r)

	if len(out.Moves) != 0 || len(out.Skips) != 0 || len(out.Errors) != 0 {
		t.Errorf("empty result produced content: %+v", out)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", out.Warnings)
	}
	if out.Interrupted {
		t.Error("Interrupted set on a clean result")
	}
}

func TestResolveFormatter(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("output", "json")
	if _, err := resolveFormatter(); err != nil {
		t.Fatalf("resolveFormatter(json) returned error: %v", err)
	}

	viper.Set("output", "bogus")
	_, err := resolveFormatter()
	if err == nil {
		t.Fatal("resolveFormatter(bogus) did not fail")
	}
	if !strings.Contains(err.Error(), "available formats") {
		t.Errorf("error %q does not list available formats", err)
	}
}
