package htmlmeta

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title> Field Notes </title>
  <meta name="description" content="Observations from the field.">
  <meta name="author" content="R. Harrison">
</head>
<body>
  <h1>Field Notes</h1>
  <p>The survey covered the northern ridge over three days of steady rain.
  Most of the markers placed last season were still standing, though two had
  been pushed over near the creek crossing.</p>
  <h2>Day one</h2>
  <p>We started at the old trailhead and worked uphill, logging each marker
  position against the previous survey. The gap between recorded and actual
  positions stayed under a meter for the whole stretch.</p>
  <a href="/maps">maps</a>
  <a href="/archive">archive</a>
  <img src="ridge.jpg" alt="">
</body>
</html>`

func writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.html")
	require.NoError(t, os.WriteFile(path, []byte(samplePage), 0o644))
	return path
}

func TestExtractHTML(t *testing.T) {
	attrs, err := ExtractHTML(context.Background(), writePage(t), nil)
	require.NoError(t, err)

	assert.Equal(t, "Field Notes", attrs["title"], "title is trimmed")
	assert.Equal(t, 2, attrs["links"])
	assert.Equal(t, 1, attrs["images"])
	assert.Equal(t, 2, attrs["headings"])
	assert.Equal(t, "en", attrs["lang"])

	meta, ok := attrs["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Observations from the field.", meta["description"])
	assert.Equal(t, "R. Harrison", meta["author"])
}

func TestExtractHTMLBareDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>nothing else</p>"), 0o644))

	attrs, err := ExtractHTML(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "", attrs["title"])
	assert.Equal(t, 0, attrs["links"])
	assert.NotContains(t, attrs, "meta")
	assert.NotContains(t, attrs, "lang")
}

func TestExtractReadability(t *testing.T) {
	attrs, err := ExtractReadability(context.Background(), writePage(t), nil)
	require.NoError(t, err)

	assert.Equal(t, "Field Notes", attrs["title"])
	length, ok := attrs["length"].(int)
	require.True(t, ok)
	assert.Greater(t, length, 0)
}

func TestExtractHTMLMissingFile(t *testing.T) {
	_, err := ExtractHTML(context.Background(), filepath.Join(t.TempDir(), "ghost.html"), nil)
	assert.Error(t, err)
}
