package mover_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsvincent/ordna/pkg/ordna/mover"
	"github.com/larsvincent/ordna/pkg/ordna/planner"
	"github.com/larsvincent/ordna/pkg/ordna/resolve"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

func testClock() time.Time {
	return time.Date(2024, 3, 10, 14, 30, 5, 0, time.UTC)
}

func pinnedExecutor() *mover.Executor {
	return mover.NewWithResolver(resolve.NewWithClock(testClock))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fileMove(root, name, category, sub string, size int64) planner.Move {
	return planner.Move{
		Name:     name,
		From:     filepath.Join(root, name),
		DestDir:  filepath.Join(root, category, sub, "2024-03"),
		Method:   types.MethodRule,
		Category: category,
		Size:     size,
	}
}

func TestExecuteMovesFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"), "pdf-bytes")

	plan := &planner.Plan{
		Root:  root,
		Moves: []planner.Move{fileMove(root, "report.pdf", "Documents", "PDF", 9)},
	}

	result, err := mover.New().Execute(context.Background(), plan, mover.Options{})
	require.NoError(t, err)

	dest := filepath.Join(root, "Documents", "PDF", "2024-03", "report.pdf")
	assert.FileExists(t, dest)
	assert.NoFileExists(t, filepath.Join(root, "report.pdf"))

	require.Len(t, result.Records, 1)
	assert.Equal(t, filepath.Join(root, "report.pdf"), result.Records[0].From)
	assert.Equal(t, dest, result.Records[0].To)

	assert.Equal(t, 1, result.Stats.Moved)
	assert.Equal(t, int64(9), result.Stats.BytesMoved)
	assert.Equal(t, 1, result.Stats.ByMethod[types.MethodRule])
	assert.Equal(t, 1, result.Stats.ByCategory["Documents"])
	assert.Empty(t, result.Errors)
}

func TestExecuteRenameAppliesDatePrefix(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"), "x")

	plan := &planner.Plan{
		Root:  root,
		Moves: []planner.Move{fileMove(root, "report.pdf", "Documents", "PDF", 1)},
	}

	result, err := pinnedExecutor().Execute(context.Background(), plan, mover.Options{Rename: true})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	want := filepath.Join(root, "Documents", "PDF", "2024-03", "2024-03-10_report.pdf")
	assert.Equal(t, want, result.Records[0].To)
	assert.FileExists(t, want)
}

func TestExecuteRenameKeepsDatedNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2023-01-05 scan.png"), "x")

	plan := &planner.Plan{
		Root: root,
		Moves: []planner.Move{{
			Name:     "2023-01-05 scan.png",
			From:     filepath.Join(root, "2023-01-05 scan.png"),
			DestDir:  filepath.Join(root, "Media", "Images", "2024-03"),
			Method:   types.MethodRule,
			Category: "Media",
			Size:     1,
		}},
	}

	result, err := pinnedExecutor().Execute(context.Background(), plan, mover.Options{Rename: true})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	assert.Equal(t, "2023-01-05 scan.png", filepath.Base(result.Records[0].To))
}

func TestExecuteDryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"), "x")

	plan := &planner.Plan{
		Root:  root,
		Moves: []planner.Move{fileMove(root, "report.pdf", "Documents", "PDF", 1)},
	}

	result, err := mover.New().Execute(context.Background(), plan, mover.Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.FileExists(t, filepath.Join(root, "report.pdf"))
	assert.NoDirExists(t, filepath.Join(root, "Documents"))

	// The preview still reports what would move.
	require.Len(t, result.Records, 1)
	assert.Equal(t, 1, result.Stats.Moved)
}

func TestExecuteCollisionResolvedAtMoveTime(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"), "new")
	writeFile(t, filepath.Join(root, "Documents", "PDF", "2024-03", "report.pdf"), "old")

	plan := &planner.Plan{
		Root:  root,
		Moves: []planner.Move{fileMove(root, "report.pdf", "Documents", "PDF", 3)},
	}

	result, err := pinnedExecutor().Execute(context.Background(), plan, mover.Options{})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	want := filepath.Join(root, "Documents", "PDF", "2024-03", "report_20240310_143005.pdf")
	assert.Equal(t, want, result.Records[0].To)
	assert.FileExists(t, want)

	// The occupant is untouched.
	old, readErr := os.ReadFile(filepath.Join(root, "Documents", "PDF", "2024-03", "report.pdf"))
	require.NoError(t, readErr)
	assert.Equal(t, "old", string(old))
}

func TestExecuteMovesFolderWithContents(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vacation", "beach.jpg"), "jpeg")

	plan := &planner.Plan{
		Root: root,
		Moves: []planner.Move{{
			Name:     "vacation",
			From:     filepath.Join(root, "vacation"),
			DestDir:  filepath.Join(root, "Folders", "2024-02"),
			Method:   types.MethodRule,
			Category: "Folders",
			IsDir:    true,
		}},
	}

	result, err := pinnedExecutor().Execute(context.Background(), plan, mover.Options{Rename: true})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	// Folders never get the date prefix, even with renaming on.
	moved := filepath.Join(root, "Folders", "2024-02", "vacation")
	assert.Equal(t, moved, result.Records[0].To)
	assert.FileExists(t, filepath.Join(moved, "beach.jpg"))
	assert.NoDirExists(t, filepath.Join(root, "vacation"))
}

func TestExecutePerItemIsolation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.pdf"), "x")

	plan := &planner.Plan{
		Root: root,
		Moves: []planner.Move{
			fileMove(root, "vanished.pdf", "Documents", "PDF", 0),
			fileMove(root, "good.pdf", "Documents", "PDF", 1),
		},
	}

	result, err := mover.New().Execute(context.Background(), plan, mover.Options{})
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "vanished.pdf", result.Errors[0].Name)
	assert.Equal(t, 1, result.Stats.Errors)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "good.pdf", filepath.Base(result.Records[0].To))
	assert.Equal(t, 1, result.Stats.Moved)
}

func TestExecuteContextCanceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"), "x")

	plan := &planner.Plan{
		Root:  root,
		Moves: []planner.Move{fileMove(root, "report.pdf", "Documents", "PDF", 1)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := mover.New().Execute(ctx, plan, mover.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, result.Records)
	assert.FileExists(t, filepath.Join(root, "report.pdf"))
}

func TestExecuteCountsPlannedSkips(t *testing.T) {
	t.Parallel()

	plan := &planner.Plan{
		Root: t.TempDir(),
		Skips: []planner.Skip{
			{Name: "mystery.xyz", Reason: planner.ReasonNoCategory},
			{Name: "Fol", Reason: planner.ReasonSelfNesting, IsDir: true},
		},
	}

	result, err := mover.New().Execute(context.Background(), plan, mover.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Skipped)
	assert.Empty(t, result.Records)
}
