package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdfmt/internal/logging"
	"github.com/yaklabco/mdfmt/internal/server"
	"github.com/yaklabco/mdfmt/pkg/docstore"
	"github.com/yaklabco/mdfmt/pkg/format"
	"github.com/yaklabco/mdfmt/pkg/protocol"
)

const docURI = "file:///notes.md"

// session scripts the client side of a conversation.
type session struct {
	in   bytes.Buffer
	conn *server.Conn
	next int
}

func newSession() *session {
	s := &session{}
	s.conn = server.NewConn(nil, &s.in)
	return s
}

func (s *session) request(t *testing.T, method string, params any) int {
	t.Helper()
	s.next++
	msg := map[string]any{"jsonrpc": "2.0", "id": s.next, "method": method}
	if params != nil {
		msg["params"] = params
	}
	require.NoError(t, s.conn.Write(msg))
	return s.next
}

func (s *session) notify(t *testing.T, method string, params any) {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if params != nil {
		msg["params"] = params
	}
	require.NoError(t, s.conn.Write(msg))
}

func (s *session) initialize(t *testing.T) {
	t.Helper()
	s.request(t, "initialize", map[string]any{
		"processId":  nil,
		"clientInfo": map[string]any{"name": "test-client"},
	})
	s.notify(t, "initialized", map[string]any{})
}

func (s *session) open(t *testing.T, text string) {
	t.Helper()
	s.notify(t, "textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI: docURI, LanguageID: "markdown", Version: 1, Text: text,
		},
	})
}

func (s *session) format(t *testing.T, uri protocol.DocumentURI) int {
	t.Helper()
	return s.request(t, "textDocument/formatting", protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Options:      protocol.FormattingOptions{TabSize: 4, InsertSpaces: true},
	})
}

func (s *session) shutdown(t *testing.T) {
	t.Helper()
	s.request(t, "shutdown", nil)
	s.notify(t, "exit", nil)
}

// reply is any message the server sent.
type reply struct {
	ID     json.RawMessage       `json:"id"`
	Method string                `json:"method"`
	Params json.RawMessage       `json:"params"`
	Result json.RawMessage       `json:"result"`
	Error  *server.ResponseError `json:"error"`
}

type transcript struct {
	err      error
	byID     map[string]reply
	notified []reply
}

func (tr transcript) response(t *testing.T, id int) reply {
	t.Helper()
	r, ok := tr.byID[mustJSON(t, id)]
	require.True(t, ok, "no response for request %d", id)
	return r
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func run(t *testing.T, s *session, opts ...format.Option) transcript {
	t.Helper()

	srv := server.New(
		docstore.New(),
		format.New(opts...),
		logging.NewWithWriter(io.Discard, "error"),
		server.WithVersion("test"),
	)

	var out bytes.Buffer
	err := srv.Serve(context.Background(), &s.in, &out)

	tr := transcript{err: err, byID: map[string]reply{}}
	conn := server.NewConn(&out, io.Discard)
	for {
		body, rerr := conn.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		require.NoError(t, rerr)

		var r reply
		require.NoError(t, json.Unmarshal(body, &r))
		if r.Method != "" {
			tr.notified = append(tr.notified, r)
			continue
		}
		tr.byID[string(r.ID)] = r
	}
	return tr
}

func TestServe_FormattingSession(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "# Title\nbody\n")
	id := s.format(t, docURI)
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)

	var init protocol.InitializeResult
	require.NoError(t, json.Unmarshal(tr.response(t, 1).Result, &init))
	assert.Equal(t, protocol.SyncFull, init.Capabilities.TextDocumentSync)
	assert.True(t, init.Capabilities.DocumentFormattingProvider)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, server.Name, init.ServerInfo.Name)
	assert.Equal(t, "test", init.ServerInfo.Version)

	resp := tr.response(t, id)
	require.Nil(t, resp.Error)

	var edits []protocol.TextEdit
	require.NoError(t, json.Unmarshal(resp.Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, "\n", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 1, Character: 0}, edits[0].Range.Start)
	assert.Equal(t, edits[0].Range.Start, edits[0].Range.End)

	shutdown := tr.response(t, 3)
	assert.Nil(t, shutdown.Error)
	assert.JSONEq(t, "null", string(shutdown.Result))
	assert.Empty(t, tr.notified)
}

func TestServe_CanonicalDocumentReturnsNull(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "# Title\n\nbody\n")
	id := s.format(t, docURI)
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)

	resp := tr.response(t, id)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, "null", string(resp.Result))
}

func TestServe_DidChangeReplacesText(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "already canonical\n")
	s.notify(t, "textDocument/didChange", protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: docURI, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: "stale\n"},
			{Text: "* item\n"},
		},
	})
	id := s.format(t, docURI)
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)

	var edits []protocol.TextEdit
	require.NoError(t, json.Unmarshal(tr.response(t, id).Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, "-", edits[0].NewText)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}, edits[0].Range)
}

func TestServe_DidCloseForgetsDocument(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "text\n")
	s.notify(t, "textDocument/didClose", protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
	id := s.format(t, docURI)
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)

	resp := tr.response(t, id)
	require.NotNil(t, resp.Error)
	assert.Equal(t, server.CodeRequestFailed, resp.Error.Code)
}

func TestServe_RequestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script func(t *testing.T, s *session) int
		code   int
	}{
		{
			name: "before initialize",
			script: func(t *testing.T, s *session) int {
				t.Helper()
				id := s.format(t, docURI)
				s.initialize(t)
				return id
			},
			code: server.CodeServerNotInitialized,
		},
		{
			name: "unknown method",
			script: func(t *testing.T, s *session) int {
				t.Helper()
				s.initialize(t)
				return s.request(t, "textDocument/hover", map[string]any{})
			},
			code: server.CodeMethodNotFound,
		},
		{
			name: "unknown document",
			script: func(t *testing.T, s *session) int {
				t.Helper()
				s.initialize(t)
				return s.format(t, "file:///missing.md")
			},
			code: server.CodeRequestFailed,
		},
		{
			name: "unsupported construct",
			script: func(t *testing.T, s *session) int {
				t.Helper()
				s.initialize(t)
				s.open(t, "> quoted\n")
				return s.format(t, docURI)
			},
			code: server.CodeRequestFailed,
		},
		{
			name: "invalid params",
			script: func(t *testing.T, s *session) int {
				t.Helper()
				s.initialize(t)
				return s.request(t, "textDocument/formatting", []int{1, 2})
			},
			code: server.CodeInvalidParams,
		},
		{
			name: "missing params",
			script: func(t *testing.T, s *session) int {
				t.Helper()
				s.initialize(t)
				return s.request(t, "textDocument/formatting", nil)
			},
			code: server.CodeInvalidParams,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			s := newSession()
			id := testCase.script(t, s)
			s.shutdown(t)

			tr := run(t, s)
			require.NoError(t, tr.err)

			resp := tr.response(t, id)
			require.NotNil(t, resp.Error)
			assert.Equal(t, testCase.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestServe_IgnorePolicyReturnsNull(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "> quoted\n")
	id := s.format(t, docURI)
	s.shutdown(t)

	tr := run(t, s, format.WithPolicy(format.PolicyIgnore))
	require.NoError(t, tr.err)

	resp := tr.response(t, id)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, "null", string(resp.Result))
}

func TestServe_RequestAfterShutdown(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.request(t, "shutdown", nil)
	id := s.format(t, docURI)
	s.notify(t, "exit", nil)

	tr := run(t, s)
	require.NoError(t, tr.err)

	resp := tr.response(t, id)
	require.NotNil(t, resp.Error)
	assert.Equal(t, server.CodeInvalidRequest, resp.Error.Code)
}

func TestServe_MalformedJSON(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.in.WriteString("Content-Length: 9\r\n\r\n{\"id\": 1,")
	s.initialize(t)
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)

	resp, ok := tr.byID["null"]
	require.True(t, ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, server.CodeParseError, resp.Error.Code)
}

func TestServe_DuplicateOpenShowsMessage(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "one\n")
	s.open(t, "two\n")
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)

	require.Len(t, tr.notified, 1)
	assert.Equal(t, "window/showMessage", tr.notified[0].Method)

	var params protocol.ShowMessageParams
	require.NoError(t, json.Unmarshal(tr.notified[0].Params, &params))
	assert.Equal(t, protocol.MessageError, params.Type)
	assert.Contains(t, params.Message, docURI)
}

func TestServe_IncrementalChangeRejected(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "text\n")
	s.notify(t, "textDocument/didChange", protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: docURI, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{
			Range: &protocol.Range{End: protocol.Position{Character: 1}},
			Text:  "T",
		}},
	})
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)
	require.Len(t, tr.notified, 1)
}

func TestServe_UnknownNotificationIgnored(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.notify(t, "$/cancelRequest", map[string]any{"id": 7})
	s.shutdown(t)

	tr := run(t, s)
	require.NoError(t, tr.err)
	assert.Empty(t, tr.notified)
	assert.Len(t, tr.byID, 2)
}

func TestServe_ExitWithoutShutdown(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.notify(t, "exit", nil)

	tr := run(t, s)
	require.ErrorIs(t, tr.err, server.ErrExitWithoutShutdown)
}

func TestServe_EndOfStream(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)

	tr := run(t, s)
	require.NoError(t, tr.err)
	assert.Len(t, tr.byID, 1)
}

func TestServe_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := server.New(docstore.New(), format.New(), logging.NewWithWriter(io.Discard, "error"))
	err := srv.Serve(ctx, bytes.NewReader(nil), io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestServe_ShutdownLogsOpenDocuments(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.initialize(t)
	s.open(t, "# Title\n")
	s.shutdown(t)

	var logs bytes.Buffer
	srv := server.New(docstore.New(), format.New(), logging.NewWithWriter(&logs, "debug"))
	require.NoError(t, srv.Serve(context.Background(), &s.in, io.Discard))

	assert.Contains(t, logs.String(), "shutdown with open documents")
	assert.Contains(t, logs.String(), docURI)
}
