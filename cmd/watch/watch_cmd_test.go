package watch

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/djdep/internal/analysis"
	"github.com/LegacyCodeHQ/djdep/internal/config"
)

func TestBroker_PublishAndSubscribe(t *testing.T) {
	b := newBroker()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	b.publish(`{"app": ["otherapp.m.f"]}`)

	select {
	case got := <-ch:
		assert.Equal(t, `{"app": ["otherapp.m.f"]}`, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestBroker_NewSubscriberReceivesLatest(t *testing.T) {
	b := newBroker()
	b.publish("digraph { X -> Y; }")

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	select {
	case got := <-ch:
		assert.Equal(t, "digraph { X -> Y; }", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for latest graph")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	b := newBroker()
	ch1 := b.subscribe()
	ch2 := b.subscribe()
	defer b.unsubscribe(ch1)
	defer b.unsubscribe(ch2)

	b.publish("digraph { A; }")

	select {
	case got := <-ch1:
		assert.Equal(t, "digraph { A; }", got)
	case <-time.After(time.Second):
		t.Fatal("ch1: timed out")
	}

	select {
	case got := <-ch2:
		assert.Equal(t, "digraph { A; }", got)
	case <-time.After(time.Second):
		t.Fatal("ch2: timed out")
	}
}

func TestHandleIndex_ServesHTML(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	handleIndex(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "djdep watch")
	assert.Contains(t, w.Body.String(), "EventSource")
}

func TestHandleGraph(t *testing.T) {
	b := newBroker()
	handler := handleGraph(b)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", routeGraph, nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	b.publish("{}")
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", routeGraph, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}", w.Body.String())
}

func TestHandleSSE_MultiLineData(t *testing.T) {
	b := newBroker()
	b.publish("digraph {\n  \"app\" -> \"otherapp\";\n}")

	server := httptest.NewServer(handleSSE(b))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])

	assert.Contains(t, body, "event: graph")
	assert.Contains(t, body, "data: digraph {")
	assert.Contains(t, body, "data:   \"app\" -> \"otherapp\";")
	assert.Contains(t, body, "data: }")
}

func TestIsRelevantChange(t *testing.T) {
	assert.True(t, isRelevantChange(fsnotify.Event{Name: "app/views.py", Op: fsnotify.Write}))
	assert.True(t, isRelevantChange(fsnotify.Event{Name: "app/__init__.py", Op: fsnotify.Create}))
	assert.True(t, isRelevantChange(fsnotify.Event{Name: "app/old.py", Op: fsnotify.Remove}))
	assert.False(t, isRelevantChange(fsnotify.Event{Name: "README.md", Op: fsnotify.Write}))
	assert.False(t, isRelevantChange(fsnotify.Event{Name: "app/views.pyc", Op: fsnotify.Write}))
	assert.False(t, isRelevantChange(fsnotify.Event{Name: "app/views.py", Op: fsnotify.Chmod}))
}

func TestAddWatchDirsWithAdder_SkipsConfiguredDirectories(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"app/sub", "app/__pycache__", ".git/objects", "vendor/lib"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	var added []string
	adder := func(path string) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		added = append(added, filepath.ToSlash(rel))
		return nil
	}

	skipped := map[string]bool{"__pycache__": true, ".git": true, "vendor": true}
	require.NoError(t, addWatchDirsWithAdder(root, skipped, adder))

	assert.ElementsMatch(t, []string{".", "app", "app/sub"}, added)
}

func TestAddWatchDirsWithAdder_IgnoresMissingDirectories(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "gone")
	require.NoError(t, os.MkdirAll(target, 0o755))

	adder := func(path string) error {
		if path == target {
			return os.ErrNotExist
		}
		return nil
	}

	assert.NoError(t, addWatchDirsWithAdder(root, nil, adder))
}

type fakeRenderer struct {
	outputs []string
	err     error
	calls   int
}

func (f *fakeRenderer) render() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	output := f.outputs[f.calls]
	f.calls++
	return output, nil
}

func TestGraphPublisher_PublishesOnlyChanges(t *testing.T) {
	var out bytes.Buffer
	b := newBroker()
	publisher := &graphPublisher{
		builder: &fakeRenderer{outputs: []string{"{}", "{}", `{"app": []}`}},
		broker:  b,
		out:     &out,
		errOut:  &bytes.Buffer{},
	}

	require.NoError(t, publisher.publish())
	require.NoError(t, publisher.publish())
	require.NoError(t, publisher.publish())

	assert.Equal(t, "{}\n{\"app\": []}\n", out.String())
	assert.Equal(t, `{"app": []}`, b.snapshot())
}

func TestGraphPublisher_RebuildReportsErrors(t *testing.T) {
	var errOut bytes.Buffer
	publisher := &graphPublisher{
		builder: &fakeRenderer{err: errors.New("broken tree")},
		broker:  newBroker(),
		out:     &bytes.Buffer{},
		errOut:  &errOut,
	}

	publisher.rebuild()

	assert.Contains(t, errOut.String(), "graph rebuild error: broken tree")
}

func TestGraphBuilder_RendersProjectAndCachesImports(t *testing.T) {
	root := t.TempDir()
	writeFile := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	writeFile("app/__init__.py", "")
	writeFile("app/a.py", "from otherapp.m import f\n")
	writeFile("otherapp/__init__.py", "")
	writeFile("otherapp/m.py", "")

	cfg := config.Default()
	cfg.ExcludeDirs = []string{"vendor"}
	builder, err := newGraphBuilder(analysis.Settings{ProjectDir: root, Config: cfg}, 64)
	require.NoError(t, err)

	output, err := builder.render()
	require.NoError(t, err)
	assert.JSONEq(t, `{"app": ["otherapp.m.f"]}`, output)
	assert.Equal(t, 3, builder.cache.Len(), "empty files of one package share an entry")

	writeFile("otherapp/m.py", "from app.a import g\n")
	output, err = builder.render()
	require.NoError(t, err)
	assert.JSONEq(t, `{"app": ["otherapp.m.f"], "otherapp": ["app.a.g"]}`, output)

	assert.True(t, builder.skippedDirs()["vendor"])
	assert.True(t, builder.skippedDirs()["migrations"])
}

func TestNewCommand_DefaultPort(t *testing.T) {
	cmd := NewCommand()

	port, err := cmd.Flags().GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 4900, port)
}

func TestRunWatch_RejectsCommit(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{"-p", t.TempDir(), "--commit", "HEAD", "--port", "0"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--commit cannot be used with watch")
}
