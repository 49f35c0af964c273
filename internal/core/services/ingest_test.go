package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

func TestIngestDir_IsolatesFailingFile(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.txt":        "Paris is the capital of France.",
		"b.txt":        "This one will FAIL to embed.",
		"c.md":         "Berlin is the capital of Germany.",
		"ignored.docx": "not a supported type",
		"sub/d.txt":    "nested files are not scanned",
	})

	report, err := f.svc.IngestDir(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	names := report.FileNames()
	require.Len(t, names, 3)
	assert.Equal(t, "a.txt", names[0])
	assert.True(t, strings.HasPrefix(names[1], "b.txt (ERROR: "), names[1])
	assert.Equal(t, "c.md", names[2])
	assert.Equal(t, 1, report.Failed())

	assert.Equal(t, 1, f.store.flushCalls)
	assert.Equal(t, 2, f.store.Count("docs"))
}

func TestIngestDir_IsolatesExtractionFailure(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.txt": "Paris is the capital of France.",
		"b.txt": "unreadable",
		"c.md":  "Berlin is the capital of Germany.",
	})
	f.svc.extractor = NewTextExtractor(failingReader{fail: "b.txt"}, f.pdf)

	report, err := f.svc.IngestDir(context.Background())

	require.NoError(t, err)
	names := report.FileNames()
	require.Len(t, names, 3)
	assert.Equal(t, "a.txt", names[0])
	assert.True(t, strings.HasPrefix(names[1], "b.txt (ERROR: "), names[1])
	assert.Contains(t, names[1], "permission denied")
	assert.Equal(t, "c.md", names[2])
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, f.store.flushCalls)
}

func TestIngestDir_FlushesEvenWhenAllFail(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.txt": "FAIL one",
		"b.txt": "FAIL two",
	})

	report, err := f.svc.IngestDir(context.Background())

	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, 1, f.store.flushCalls)
}

func TestIngestDir_NoTextFile(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"blank.txt": "\n   \n",
		"full.txt":  "Paris",
	})

	report, err := f.svc.IngestDir(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"blank.txt (no text)", "full.txt"}, report.FileNames())
	assert.Equal(t, 1, report.Inserted)
}

func TestIngestDir_AssignsFreshIDs(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.txt": strings.Repeat("Paris paragraph\n", 6),
	})
	var ids []string
	f.svc.newID = func() string {
		id := "id-" + string(rune('a'+len(ids)))
		ids = append(ids, id)
		return id
	}

	report, err := f.svc.IngestDir(context.Background())

	require.NoError(t, err)
	assert.Equal(t, len(ids), report.Inserted)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestIngestDir_Pattern(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"a.txt":     "Paris",
		"b.md":      "Berlin",
		"sub/c.txt": "France",
	})
	f.svc.pattern = "**/*.txt"

	report, err := f.svc.IngestDir(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c.txt"}, report.FileNames())
}

func TestIngestDir_MissingDirectory(t *testing.T) {
	f := newIngestFixture(t, nil)
	f.svc.docsDir = filepath.Join(f.dir, "nope")

	_, err := f.svc.IngestDir(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestDir_FlushFailure(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.txt": "Paris"})
	f.store.flushErr = errors.New("flush rpc failed")

	report, err := f.svc.IngestDir(context.Background())

	assert.ErrorIs(t, err, domain.ErrStoreFault)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Inserted)
	assert.Empty(t, f.ledger.runs)
}

func TestIngestDir_RecordsLedgerRun(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.txt": "Paris"})

	_, err := f.svc.IngestDir(context.Background())
	require.NoError(t, err)

	require.Len(t, f.ledger.runs, 1)
	run := f.ledger.runs[0]
	assert.Equal(t, domain.IngestModeDir, run.Mode)
	assert.Equal(t, 1, run.Report.Inserted)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	history, err := f.svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestIngestDir_LedgerFailureIsNotFatal(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.txt": "Paris"})
	f.ledger.err = errors.New("disk full")

	report, err := f.svc.IngestDir(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
}

func TestHistory_WithoutLedger(t *testing.T) {
	f := newIngestFixture(t, nil)
	f.svc.SetLedger(nil)

	_, err := f.svc.History(context.Background(), 5)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestDir_CancelledContext(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.txt": "Paris"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.IngestDir(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.embedder.calls)
}

func TestIngestFiles_SavesThenIngests(t *testing.T) {
	f := newIngestFixture(t, nil)

	report, err := f.svc.IngestFiles(context.Background(), []domain.Upload{
		{Name: "paris.txt", Content: []byte("Paris is the capital of France.")},
		{Name: "../../escape.md", Content: []byte("Berlin is the capital of Germany.")},
		{Name: "slides.pptx", Content: []byte("binary")},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	names := report.FileNames()
	require.Len(t, names, 3)
	assert.Equal(t, "paris.txt", names[0])
	assert.Equal(t, "escape.md", names[1])
	assert.True(t, strings.HasPrefix(names[2], "slides.pptx (ERROR: "), names[2])

	for _, name := range []string{"paris.txt", "escape.md", "slides.pptx"} {
		_, err := os.Stat(filepath.Join(f.dir, name))
		assert.NoError(t, err, name)
	}
	assert.Equal(t, 1, f.store.flushCalls)
	require.Len(t, f.ledger.runs, 1)
	assert.Equal(t, domain.IngestModeUpload, f.ledger.runs[0].Mode)
}

func TestIngestFiles_EmptyName(t *testing.T) {
	f := newIngestFixture(t, nil)

	report, err := f.svc.IngestFiles(context.Background(), []domain.Upload{{Name: "", Content: []byte("x")}})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())
}

func TestIngestOne_Text(t *testing.T) {
	f := newIngestFixture(t, map[string]string{
		"notes.txt": "line one about Paris\nline two about Paris\nline three about Paris",
	})

	report, err := f.svc.IngestOne(context.Background(), "notes.txt", domain.IngestOptions{MaxPages: 10, MaxChunks: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, []string{"notes.txt"}, report.FileNames())
	assert.Equal(t, 1, f.store.flushCalls)
	assert.Equal(t, 2, f.store.Count("docs"))
	assert.Zero(t, f.pdf.calls)
}

func TestIngestOne_PDFPageBound(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"paper.pdf": "%PDF-1.4"})

	report, err := f.svc.IngestOne(context.Background(), "paper.pdf", domain.IngestOptions{MaxPages: 3, MaxChunks: 100})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, []int{3}, f.pdf.maxPages)
}

func TestIngestOne_PDFPageBoundUpperCaseExtension(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"PAPER.PDF": "%PDF-1.4"})

	report, err := f.svc.IngestOne(context.Background(), "PAPER.PDF", domain.IngestOptions{MaxPages: 3, MaxChunks: 100})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, []int{3}, f.pdf.maxPages)
}

func TestIngestOne_NotFound(t *testing.T) {
	f := newIngestFixture(t, nil)

	_, err := f.svc.IngestOne(context.Background(), "missing.pdf", domain.IngestOptions{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestOne_Unsupported(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"sheet.xlsx": "x"})

	_, err := f.svc.IngestOne(context.Background(), "sheet.xlsx", domain.IngestOptions{})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestOne_EmptyName(t *testing.T) {
	f := newIngestFixture(t, nil)

	_, err := f.svc.IngestOne(context.Background(), "", domain.IngestOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestOne_NoText(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"scan.pdf": "%PDF-1.4"})
	f.pdf.text = "   "

	report, err := f.svc.IngestOne(context.Background(), "scan.pdf", domain.IngestOptions{MaxPages: 10})

	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Equal(t, []string{"scan.pdf (no text)"}, report.FileNames())
	assert.Zero(t, f.store.flushCalls)
}

func TestIngestOne_FailureFailsCall(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"bad.txt": "FAIL"})

	_, err := f.svc.IngestOne(context.Background(), "bad.txt", domain.IngestOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.txt")
	assert.Zero(t, f.store.Count("docs"))
}

func TestIngestOne_EmbeddingUnavailable(t *testing.T) {
	f := newIngestFixture(t, map[string]string{"a.txt": "Paris"})
	f.embedder.script = []error{errTimeout, errTimeout, errTimeout}

	_, err := f.svc.IngestOne(context.Background(), "a.txt", domain.IngestOptions{})

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, 3, f.embedder.calls)
	assert.Len(t, f.sleeper.waits, 2)
}
