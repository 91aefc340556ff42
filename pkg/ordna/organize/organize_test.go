package organize_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsvincent/ordna/pkg/ordna/ai"
	"github.com/larsvincent/ordna/pkg/ordna/manifest"
	"github.com/larsvincent/ordna/pkg/ordna/mover"
	"github.com/larsvincent/ordna/pkg/ordna/organize"
	"github.com/larsvincent/ordna/pkg/ordna/planner"
	"github.com/larsvincent/ordna/pkg/ordna/resolve"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

func testClock() time.Time {
	return time.Date(2024, 3, 10, 14, 30, 5, 0, time.UTC)
}

// marchMod pins entry modification times inside the 2024-03 bucket.
var marchMod = time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

// newOrganizer builds an Organizer with a pinned clock and isolated
// state, returning it together with its manifest path.
func newOrganizer(t *testing.T, classifier *ai.Classifier) (*organize.Organizer, string) {
	t.Helper()

	stateDir := t.TempDir()
	manifestPath := filepath.Join(stateDir, "manifest.json")
	store, err := manifest.NewStore(manifestPath)
	require.NoError(t, err)

	org, err := organize.New(organize.Config{
		Classifier: classifier,
		Executor:   mover.NewWithResolver(resolve.NewWithClock(testClock)),
		Store:      store,
		LockDir:    filepath.Join(stateDir, "locks"),
	})
	require.NoError(t, err)

	return org, manifestPath
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, marchMod, marchMod))
}

// completionServer answers every chat completion request with the
// given message content.
func completionServer(t *testing.T, content string, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		resp := map[string]any{
			"id":     "cmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
}

func movesByName(result *organize.Result) map[string]organize.Move {
	byName := make(map[string]organize.Move, len(result.Moves))
	for _, m := range result.Moves {
		byName[m.Name] = m
	}
	return byName
}

func TestRunAndUndoRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, manifestPath := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "report.pdf"), "pdf-bytes")
	writeFile(t, filepath.Join(root, "song.mp3"), "mp3-bytes")
	writeFile(t, filepath.Join(root, "vacation", "notes.txt"), "notes")
	require.NoError(t, os.Chtimes(filepath.Join(root, "vacation"), marchMod, marchMod))

	result, err := org.Run(context.Background(), organize.Options{
		Root:    root,
		Rename:  true,
		Version: "1.0.0-test",
	})
	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.False(t, result.Interrupted)
	assert.Equal(t, root, result.Root)
	require.Len(t, result.Moves, 3)
	assert.Equal(t, 3, result.Stats.Moved)
	assert.Equal(t, int64(18), result.Stats.BytesMoved)
	assert.Equal(t, 1, result.Stats.ByCategory["Documents"])
	assert.Equal(t, 1, result.Stats.ByCategory["Media"])
	assert.Equal(t, 1, result.Stats.ByCategory["Folders"])

	pdfDest := filepath.Join(root, "Documents", "PDF", "2024-03", "2024-03-10_report.pdf")
	mp3Dest := filepath.Join(root, "Media", "Audio", "2024-03", "2024-03-10_song.mp3")
	dirDest := filepath.Join(root, "Folders", "2024-03", "vacation")
	assert.FileExists(t, pdfDest)
	assert.FileExists(t, mp3Dest)
	assert.DirExists(t, dirDest)
	assert.FileExists(t, filepath.Join(dirDest, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(root, "report.pdf"))
	assert.FileExists(t, manifestPath)

	byName := movesByName(result)
	assert.Equal(t, pdfDest, byName["report.pdf"].To)
	assert.Equal(t, types.MethodRule, byName["report.pdf"].Method)
	assert.True(t, byName["vacation"].IsDir)

	undo, err := org.Undo(context.Background())
	require.NoError(t, err)
	assert.False(t, undo.NothingToUndo)
	assert.Equal(t, root, undo.Root)
	assert.Equal(t, 3, undo.Restored)
	assert.Empty(t, undo.Errors)

	assert.FileExists(t, filepath.Join(root, "report.pdf"))
	assert.FileExists(t, filepath.Join(root, "song.mp3"))
	assert.FileExists(t, filepath.Join(root, "vacation", "notes.txt"))
	assert.NoFileExists(t, pdfDest)
	assert.NoFileExists(t, manifestPath)

	content, err := os.ReadFile(filepath.Join(root, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, manifestPath := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "report.pdf"), "x")
	writeFile(t, filepath.Join(root, "song.mp3"), "y")

	result, err := org.Run(context.Background(), organize.Options{
		Root:   root,
		DryRun: true,
		Rename: true,
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	require.Len(t, result.Moves, 2)

	byName := movesByName(result)
	want := filepath.Join(root, "Documents", "PDF", "2024-03", "2024-03-10_report.pdf")
	assert.Equal(t, want, byName["report.pdf"].To)

	assert.FileExists(t, filepath.Join(root, "report.pdf"))
	assert.FileExists(t, filepath.Join(root, "song.mp3"))
	assert.NoDirExists(t, filepath.Join(root, "Documents"))
	assert.NoFileExists(t, manifestPath)

	undo, err := org.Undo(context.Background())
	require.NoError(t, err)
	assert.True(t, undo.NothingToUndo)
}

func TestRunRulesOnlySkipsUnknown(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, _ := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "report.pdf"), "x")
	writeFile(t, filepath.Join(root, "mystery.xyz"), "y")

	result, err := org.Run(context.Background(), organize.Options{Root: root})
	require.NoError(t, err)
	require.Len(t, result.Moves, 1)
	assert.Equal(t, types.MethodRule, result.Moves[0].Method)

	require.Len(t, result.Skips, 1)
	assert.Equal(t, "mystery.xyz", result.Skips[0].Name)
	assert.Equal(t, planner.ReasonNoCategory, result.Skips[0].Reason)
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.FileExists(t, filepath.Join(root, "mystery.xyz"))
}

func TestRunClassifierOverridesRules(t *testing.T) {
	t.Parallel()

	content := "```json\n{\"invoice.pdf\": \"Finance/Invoices\"}\n```"
	srv := completionServer(t, content, nil)
	defer srv.Close()

	classifier := ai.New(ai.Config{APIKey: "test-key", BaseURL: srv.URL})
	org, _ := newOrganizer(t, classifier)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "invoice.pdf"), "x")
	writeFile(t, filepath.Join(root, "song.mp3"), "yy")

	result, err := org.Run(context.Background(), organize.Options{
		Root:        root,
		Granularity: ai.GranularityNormal,
	})
	require.NoError(t, err)
	require.Len(t, result.Moves, 2)

	assert.FileExists(t, filepath.Join(root, "Finance", "Invoices", "2024-03", "invoice.pdf"))
	assert.FileExists(t, filepath.Join(root, "Media", "Audio", "2024-03", "song.mp3"))

	byName := movesByName(result)
	assert.Equal(t, types.MethodExternal, byName["invoice.pdf"].Method)
	assert.Equal(t, "Finance", byName["invoice.pdf"].Category)
	assert.Equal(t, types.MethodRule, byName["song.mp3"].Method)
	assert.Equal(t, 1, result.Stats.ByMethod[types.MethodExternal])
	assert.Equal(t, 1, result.Stats.ByMethod[types.MethodRule])
}

func TestRunNoAISkipsClassifier(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := completionServer(t, "{}", &hits)
	defer srv.Close()

	classifier := ai.New(ai.Config{APIKey: "test-key", BaseURL: srv.URL})
	org, _ := newOrganizer(t, classifier)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "invoice.pdf"), "x")

	result, err := org.Run(context.Background(), organize.Options{Root: root, NoAI: true})
	require.NoError(t, err)

	assert.Equal(t, int32(0), hits.Load())
	require.Len(t, result.Moves, 1)
	assert.Equal(t, types.MethodRule, result.Moves[0].Method)
	assert.FileExists(t, filepath.Join(root, "Documents", "PDF", "2024-03", "invoice.pdf"))
}

func TestRunStageOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, _ := newOrganizer(t, nil)
	writeFile(t, filepath.Join(root, "report.pdf"), "x")

	var stages []organize.Stage
	_, err := org.Run(context.Background(), organize.Options{
		Root:    root,
		OnStage: func(s organize.Stage) { stages = append(stages, s) },
	})
	require.NoError(t, err)

	want := []organize.Stage{
		organize.StageScan,
		organize.StageDuplicates,
		organize.StagePlan,
		organize.StageExecute,
	}
	assert.Equal(t, want, stages, "classify is skipped without a classifier")
}

func TestRunReportsDuplicates(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, _ := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "a.txt"), "same-bytes")
	writeFile(t, filepath.Join(root, "b.txt"), "same-bytes")

	result, err := org.Run(context.Background(), organize.Options{Root: root})
	require.NoError(t, err)

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, filepath.Join(root, "b.txt"), result.Duplicates[0].Path)
	assert.Equal(t, filepath.Join(root, "a.txt"), result.Duplicates[0].Original)
	assert.Equal(t, int64(10), result.Duplicates[0].Size)

	// Duplicates are informational; both files still move.
	assert.Len(t, result.Moves, 2)
}

func TestRunExclude(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, _ := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "keep.pdf"), "x")
	writeFile(t, filepath.Join(root, "song.mp3"), "y")

	result, err := org.Run(context.Background(), organize.Options{
		Root:    root,
		Exclude: []string{"*.pdf"},
	})
	require.NoError(t, err)

	require.Len(t, result.Moves, 1)
	assert.Equal(t, "song.mp3", result.Moves[0].Name)
	assert.Empty(t, result.Skips)
	assert.FileExists(t, filepath.Join(root, "keep.pdf"))
}

func TestRunMissingRoot(t *testing.T) {
	t.Parallel()

	org, _ := newOrganizer(t, nil)

	result, err := org.Run(context.Background(), organize.Options{
		Root: filepath.Join(t.TempDir(), "absent"),
	})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestRunEmptyRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, manifestPath := newOrganizer(t, nil)

	result, err := org.Run(context.Background(), organize.Options{Root: root})
	require.NoError(t, err)
	assert.Empty(t, result.Moves)
	assert.Equal(t, 0, result.Stats.Moved)
	assert.NoFileExists(t, manifestPath, "empty runs leave no manifest")

	undo, err := org.Undo(context.Background())
	require.NoError(t, err)
	assert.True(t, undo.NothingToUndo)
}

func TestRunInterrupted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, manifestPath := newOrganizer(t, nil)
	writeFile(t, filepath.Join(root, "report.pdf"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := org.Run(ctx, organize.Options{Root: root})
	require.NoError(t, err)
	assert.True(t, result.Interrupted)
	assert.Empty(t, result.Moves)
	assert.FileExists(t, filepath.Join(root, "report.pdf"))
	assert.NoFileExists(t, manifestPath)
}

func TestUndoNothingToUndo(t *testing.T) {
	t.Parallel()

	org, _ := newOrganizer(t, nil)

	undo, err := org.Undo(context.Background())
	require.NoError(t, err)
	assert.True(t, undo.NothingToUndo)
	assert.Zero(t, undo.Restored)
}

func TestUndoMissingItemCountsError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, manifestPath := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "report.pdf"), "x")
	writeFile(t, filepath.Join(root, "song.mp3"), "y")

	result, err := org.Run(context.Background(), organize.Options{Root: root})
	require.NoError(t, err)
	require.Len(t, result.Moves, 2)

	byName := movesByName(result)
	require.NoError(t, os.Remove(byName["report.pdf"].To))

	undo, err := org.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, undo.Restored)
	require.Len(t, undo.Errors, 1)
	assert.Equal(t, "report.pdf", undo.Errors[0].Name)
	assert.Contains(t, undo.Errors[0].Error, "not found")

	assert.NoFileExists(t, manifestPath, "manifest clears even with per-item errors")
	assert.FileExists(t, filepath.Join(root, "song.mp3"))
}

func TestUndoOccupiedOriginalCountsError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, _ := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "report.pdf"), "old")

	result, err := org.Run(context.Background(), organize.Options{Root: root})
	require.NoError(t, err)
	require.Len(t, result.Moves, 1)
	dest := result.Moves[0].To

	writeFile(t, filepath.Join(root, "report.pdf"), "new")

	undo, err := org.Undo(context.Background())
	require.NoError(t, err)
	assert.Zero(t, undo.Restored)
	require.Len(t, undo.Errors, 1)
	assert.Contains(t, undo.Errors[0].Error, "occupied")

	assert.FileExists(t, dest, "the organized copy stays put")
	content, err := os.ReadFile(filepath.Join(root, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestUndoInterruptedKeepsManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	org, manifestPath := newOrganizer(t, nil)

	writeFile(t, filepath.Join(root, "report.pdf"), "x")
	writeFile(t, filepath.Join(root, "song.mp3"), "y")

	_, err := org.Run(context.Background(), organize.Options{Root: root})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = org.Undo(ctx)
	require.Error(t, err)
	assert.FileExists(t, manifestPath, "an interrupted undo keeps the manifest")

	undo, err := org.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, undo.Restored)
	assert.NoFileExists(t, manifestPath)
}
