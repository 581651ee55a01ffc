package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/annomerge/internal/stores/codec"
	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/stores"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	nop := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test",
		WithConfig(&Config{LogLevel: "error", LogFormat: "json", LogOutput: "discard"}),
		WithLogger(&nop),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

func TestApp_NilOptions(t *testing.T) {
	if _, err := New("dev", "", "", "", WithConfig(nil)); !errors.IsValidationError(err) {
		t.Errorf("WithConfig(nil) error = %v, want validation error", err)
	}
	if _, err := New("dev", "", "", "", WithLogger(nil)); !errors.IsValidationError(err) {
		t.Errorf("WithLogger(nil) error = %v, want validation error", err)
	}
}

// TestApp_Stores verifies stores open through the app and survive a double close.
func TestApp_Stores(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "ann")

	if _, err := app.AnnotationStore(ctx, dir, stores.FormatYAML, false); !errors.IsNotFound(err) {
		t.Fatalf("opening a missing store: error = %v, want not found", err)
	}

	store, err := app.AnnotationStore(ctx, dir, stores.FormatYAML, true, stores.WithCache(time.Minute))
	if err != nil {
		t.Fatalf("AnnotationStore() failed: %v", err)
	}
	if err := store.Write(ctx, assessment.EmptyAnswerKey("doc1")); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	// Shutdown closes what is still open and ignores what was closed.
	if _, err := app.SystemOutputStore(ctx, dir, stores.FormatYAML); err != nil {
		t.Fatalf("SystemOutputStore() failed: %v", err)
	}
	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
	if len(app.opened) != 0 {
		t.Errorf("Shutdown() left %d stores tracked", len(app.opened))
	}
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecute_Version(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "annomerge 1.0.0\n" {
		t.Errorf("version output = %q", out)
	}

	out, err = execute(t, app, "version", "-v")
	if err != nil {
		t.Fatalf("version -v failed: %v", err)
	}
	if !strings.Contains(out, "commit:   abc123") {
		t.Errorf("verbose version output missing commit: %q", out)
	}
}

func TestExecute_RejectsUnknownOutputFormat(t *testing.T) {
	app := newTestApp(t)
	if _, err := execute(t, app, "version", "-o", "xml"); !errors.IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

// TestExecute_ImportAndStats runs both commands against on-disk stores.
func TestExecute_ImportAndStats(t *testing.T) {
	app := newTestApp(t)
	root := t.TempDir()
	sysDir := filepath.Join(root, "sys")
	annDir := filepath.Join(root, "ann")

	doc := assessment.DocID("doc1")
	r := assessment.Response{
		DocID:                   doc,
		Type:                    "Movement.Transport",
		Role:                    "Destination",
		CAS:                     "Kabul",
		CASOffsets:              assessment.Span{Start: 5, End: 10},
		BaseFiller:              assessment.Span{Start: 5, End: 10},
		PredicateJustifications: []assessment.Span{{Start: 0, End: 40}},
		Realis:                  assessment.RealisActual,
	}
	output, err := assessment.NewArgumentOutput(doc, []assessment.ScoredResponse{{Response: r, Confidence: 1}})
	if err != nil {
		t.Fatal(err)
	}
	data, err := codec.JSON{}.EncodeSystemOutput(output)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(sysDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sysDir, "doc1.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, app, "-o", "json", "import",
		"--system-output", sysDir, "--system-format", "json",
		"--annotation-store", annDir); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	out, err := execute(t, app, "-o", "json", "stats", annDir)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	var got []struct {
		Documents   int `json:"documents"`
		Unannotated int `json:"unannotated"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("stats output is not json: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0].Documents != 1 || got[0].Unannotated != 1 {
		t.Errorf("stats = %+v, want one document with one unannotated response", got)
	}
}
