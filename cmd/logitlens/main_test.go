package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/logitlens/pkg/ioctx"
	"github.com/vito/logitlens/pkg/widget"
)

const compactYAML = `layers: [0, 1, 2]
input: ["The", " cat"]
topk:
  - [[" the", " a"], [" dog"]]
  - [[" the"], [" sat", " dog"]]
  - [[" cat"], [" sat"]]
tracked:
  - {" the": [0.3, 0.2, 0.1], " a": [0.1, 0.1, 0.1], " cat": [0.05, 0.1, 0.4]}
  - {" dog": [0.4, 0.3, 0.1], " sat": [0.1, 0.5, 0.7]}
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testContext(out *bytes.Buffer) context.Context {
	ctx := ioctx.StdoutToContext(context.Background(), out)
	ctx = ioctx.StderrToContext(ctx, &bytes.Buffer{})
	return ioctx.LoggerToContext(ctx, slog.New(slog.DiscardHandler))
}

func TestRunState(t *testing.T) {
	path := writeInput(t, "lens.yaml", compactYAML)

	var out bytes.Buffer
	require.NoError(t, runState(testContext(&out), Config{}, path))

	var snap widget.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, []string{"top"}, snap.ColorModes)
	assert.Equal(t, widget.DefaultTitle, snap.Title)
	assert.Empty(t, snap.PinnedRows)
}

func TestRunStateRestoresSnapshot(t *testing.T) {
	path := writeInput(t, "lens.yaml", compactYAML)
	state := writeInput(t, "state.json", `{
  "title": "Saved",
  "cellWidth": 9000,
  "pinnedRows": [{"pos": 1, "lineStyleName": "dashed"}, {"pos": 7, "lineStyleName": "solid"}]
}`)

	var out bytes.Buffer
	require.NoError(t, runState(testContext(&out), Config{StatePath: state}, path))

	var snap widget.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "Saved", snap.Title)
	assert.Equal(t, widget.DefaultConfig().Limits.MaxCellWidth, snap.CellWidth)
	assert.Equal(t, []widget.SnapshotRow{{Pos: 1, LineStyleName: "dashed"}}, snap.PinnedRows)
}

func TestRunRender(t *testing.T) {
	a := writeInput(t, "a.yaml", compactYAML)
	b := writeInput(t, "b.yaml", compactYAML)

	var out bytes.Buffer
	require.NoError(t, runRender(testContext(&out), Config{Width: 600}, []string{a, b}, "", "Compare", true))

	page := out.String()
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Compare</title>")
	assert.Equal(t, 2, strings.Count(page, `class="ll-widget`))
}

func TestRunRenderToFile(t *testing.T) {
	in := writeInput(t, "lens.yaml", compactYAML)
	dest := filepath.Join(t.TempDir(), "out.html")

	var out bytes.Buffer
	require.NoError(t, runRender(testContext(&out), Config{}, []string{in}, dest, "Lens", false))
	assert.Empty(t, out.String())

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<title>Lens</title>")
}

func TestRunRenderBadInput(t *testing.T) {
	good := writeInput(t, "good.yaml", compactYAML)
	bad := writeInput(t, "bad.json", `{"tokens": ["a"]}`)

	var out bytes.Buffer
	err := runRender(testContext(&out), Config{}, []string{good, bad}, "", "x", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
	assert.Empty(t, out.String())
}

func TestLoadConfigFlag(t *testing.T) {
	path := writeInput(t, "custom.toml", "title = \"From config\"\n")

	config, err := loadConfig(testContext(&bytes.Buffer{}), Config{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "From config", config.Title)
}
