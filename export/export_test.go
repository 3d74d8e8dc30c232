package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/richinex/parley/model"
)

func sampleSession() *model.Session {
	return &model.Session{
		ID:   7,
		Name: "Arithmetic Question",
		Transcript: model.Transcript{
			model.UserTurn("What is 2+2?"),
			model.ModelTurn("4"),
		},
	}
}

func TestNewExporter(t *testing.T) {
	for format, ext := range map[string]string{
		"json":     "json",
		"JSON":     "json",
		"yaml":     "yaml",
		"yml":      "yaml",
		"md":       "md",
		"markdown": "md",
	} {
		e, err := NewExporter(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, e.Extension(), format)
	}

	_, err := NewExporter("pdf")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestJSONExport(t *testing.T) {
	e, err := NewExporter("json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Export(sampleSession(), &buf))

	var got struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		History []struct {
			Role  string   `json:"role"`
			Parts []string `json:"parts"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Arithmetic Question", got.Name)
	require.Len(t, got.History, 2)
	assert.Equal(t, "user", got.History[0].Role)
	assert.Equal(t, []string{"What is 2+2?"}, got.History[0].Parts)
	assert.Equal(t, "model", got.History[1].Role)
}

func TestJSONExportEmptyTranscript(t *testing.T) {
	e, err := NewExporter("json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Export(&model.Session{ID: 1, Name: "Empty"}, &buf))
	assert.Contains(t, buf.String(), `"history": []`)
}

func TestYAMLExport(t *testing.T) {
	e, err := NewExporter("yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Export(sampleSession(), &buf))

	var got model.Session
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleSession(), got)
}

func TestMarkdownExport(t *testing.T) {
	e, err := NewExporter("md")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Export(sampleSession(), &buf))

	want := "# Arithmetic Question\n" +
		"\n### User\n\nWhat is 2+2?\n" +
		"\n### Model\n\n4\n"
	assert.Equal(t, want, buf.String())
}

func TestFileName(t *testing.T) {
	e, err := NewExporter("md")
	require.NoError(t, err)

	assert.Equal(t, "7-arithmetic-question.md", FileName(sampleSession(), e))
	assert.Equal(t, "3-session.md", FileName(&model.Session{ID: 3, Name: "???"}, e))
	assert.Equal(t, "4-a-b.md", FileName(&model.Session{ID: 4, Name: "A -- B"}, e))
}
