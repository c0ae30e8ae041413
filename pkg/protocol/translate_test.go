package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdfmt/pkg/edit"
	"github.com/yaklabco/mdfmt/pkg/lineindex"
	"github.com/yaklabco/mdfmt/pkg/protocol"
)

func TestPositionAt(t *testing.T) {
	t.Parallel()

	idx := lineindex.New("ab\ncd😀e\n")

	tests := []struct {
		name   string
		offset int
		want   protocol.Position
	}{
		{"start", 0, protocol.Position{Line: 0, Character: 0}},
		{"newline byte", 2, protocol.Position{Line: 0, Character: 2}},
		{"second line", 3, protocol.Position{Line: 1, Character: 0}},
		{"after astral char", 9, protocol.Position{Line: 1, Character: 4}},
		{"end", 11, protocol.Position{Line: 2, Character: 0}},
		{"past end clamps", 50, protocol.Position{Line: 2, Character: 0}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, protocol.PositionAt(idx, testCase.offset))
		})
	}
}

func TestTextEdits(t *testing.T) {
	t.Parallel()

	original := "* a\n* b\n"
	idx := lineindex.New(original)

	edits := []edit.TextEdit{
		{StartOffset: 0, EndOffset: 1, NewText: "-"},
		{StartOffset: 4, EndOffset: 5, NewText: "-"},
	}

	got := protocol.TextEdits(idx, edits)
	want := []protocol.TextEdit{
		{
			Range:   protocol.Range{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: 0, Character: 1}},
			NewText: "-",
		},
		{
			Range:   protocol.Range{Start: protocol.Position{Line: 1, Character: 0}, End: protocol.Position{Line: 1, Character: 1}},
			NewText: "-",
		},
	}
	assert.Equal(t, want, got)
	assert.Nil(t, protocol.TextEdits(idx, nil))
}

func TestTextEdit_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(protocol.TextEdit{
		Range:   protocol.Range{End: protocol.Position{Line: 1, Character: 2}},
		NewText: "x",
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"range":{"start":{"line":0,"character":0},"end":{"line":1,"character":2}},"newText":"x"}`,
		string(data))
}

func TestInitializeResult_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync:           protocol.SyncFull,
			DocumentFormattingProvider: true,
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"capabilities":{"textDocumentSync":1,"documentFormattingProvider":true}}`,
		string(data))
}
