// Package server implements the Markdown formatting language server.
//
// The server speaks JSON-RPC 2.0 over a base-protocol framed byte stream
// (normally stdio) and handles messages one at a time in arrival order, so
// a formatting pass never overlaps a change to the same document.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdfmt/internal/logging"
	"github.com/yaklabco/mdfmt/pkg/docstore"
	"github.com/yaklabco/mdfmt/pkg/format"
	"github.com/yaklabco/mdfmt/pkg/protocol"
	"github.com/yaklabco/mdfmt/pkg/render"
)

// Name is reported to clients in serverInfo.
const Name = "mdfmt"

// ErrExitWithoutShutdown is returned by Serve when the client sends exit
// without a preceding shutdown request.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Server dispatches LSP messages to the document store and the formatter.
type Server struct {
	store     *docstore.Store
	formatter *format.Formatter
	logger    *log.Logger
	version   string

	conn        *Conn
	initialized bool
	shutdown    bool
	exited      bool
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported in serverInfo.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New creates a Server. A nil logger selects the default logger.
func New(store *docstore.Store, formatter *format.Formatter, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Server{
		store:     store,
		formatter: formatter,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads messages from r and writes responses to w until the client
// sends exit, the stream ends, or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.conn = NewConn(r, w)
	s.logger.Info("server started", logging.FieldFlavor, s.formatter.Flavor())

	for !s.exited {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := s.conn.Read()
		if errors.Is(err, io.EOF) {
			s.logger.Info("client closed the stream")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		if err := s.handle(ctx, body); err != nil {
			return err
		}
	}

	if !s.shutdown {
		return ErrExitWithoutShutdown
	}
	s.logger.Info("server stopped")
	return nil
}

// handle processes one message. Only transport failures are returned;
// protocol errors are reported to the client.
func (s *Server) handle(ctx context.Context, body json.RawMessage) error {
	var msg message
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logger.Warn("malformed message", logging.FieldError, err)
		return s.reply(jsonNull, nil, newError(CodeParseError, "parse error: %v", err))
	}

	if msg.Method == "" {
		// A response to a request we never sent.
		s.logger.Debug("ignoring message without method")
		return nil
	}

	logger := s.logger.With(logging.FieldMethod, msg.Method)
	logger.Debug("received")

	if !msg.isRequest() {
		s.notify(logging.WithLogger(ctx, logger), &msg)
		return nil
	}

	result, rerr := s.call(logging.WithLogger(ctx, logger), &msg)
	if rerr != nil {
		logger.Warn("request failed", logging.FieldCode, rerr.Code, logging.FieldError, rerr.Message)
	}
	return s.reply(msg.ID, result, rerr)
}

func (s *Server) reply(id json.RawMessage, result any, rerr *ResponseError) error {
	resp := response{JSONRPC: jsonrpcVersion, ID: id}
	if rerr != nil {
		resp.Error = rerr
	} else {
		data, err := resultOf(result)
		if err != nil {
			resp.Error = newError(CodeInternalError, "%v", err)
		} else {
			resp.Result = data
		}
	}
	if err := s.conn.Write(resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// call dispatches a request.
func (s *Server) call(ctx context.Context, msg *message) (any, *ResponseError) {
	if s.shutdown {
		return nil, newError(CodeInvalidRequest, "server is shutting down")
	}
	if !s.initialized && msg.Method != "initialize" {
		return nil, newError(CodeServerNotInitialized, "server not initialized")
	}

	switch msg.Method {
	case "initialize":
		return s.initialize(ctx, msg.Params)
	case "shutdown":
		s.shutdown = true
		if uris := s.store.URIs(); len(uris) > 0 {
			logging.FromContext(ctx).Debug("shutdown with open documents", logging.FieldURIs, uris)
		}
		return nil, nil
	case "textDocument/formatting":
		return s.formatting(ctx, msg.Params)
	default:
		return nil, newError(CodeMethodNotFound, "method not found: %s", msg.Method)
	}
}

// notify dispatches a notification. Failures are logged and shown to the
// user since notifications have no response.
func (s *Server) notify(ctx context.Context, msg *message) {
	logger := logging.FromContext(ctx)

	if msg.Method == "exit" {
		s.exited = true
		return
	}
	if s.shutdown || !s.initialized {
		logger.Debug("dropping notification")
		return
	}

	var err error
	switch msg.Method {
	case "initialized":
	case "textDocument/didOpen":
		err = s.didOpen(ctx, msg.Params)
	case "textDocument/didChange":
		err = s.didChange(ctx, msg.Params)
	case "textDocument/didClose":
		err = s.didClose(ctx, msg.Params)
	default:
		logger.Debug("ignoring unknown notification")
		return
	}

	if err != nil {
		logger.Error("notification failed", logging.FieldError, err)
		s.showError(err)
	}
}

func (s *Server) showError(err error) {
	werr := s.conn.Write(notification{
		JSONRPC: jsonrpcVersion,
		Method:  "window/showMessage",
		Params:  protocol.ShowMessageParams{Type: protocol.MessageError, Message: err.Error()},
	})
	if werr != nil {
		s.logger.Error("write notification", logging.FieldError, werr)
	}
}

func decode(params json.RawMessage, v any) *ResponseError {
	if len(params) == 0 {
		return newError(CodeInvalidParams, "missing params")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return newError(CodeInvalidParams, "invalid params: %v", err)
	}
	return nil
}

func (s *Server) initialize(ctx context.Context, raw json.RawMessage) (any, *ResponseError) {
	var params protocol.InitializeParams
	if len(raw) > 0 {
		if rerr := decode(raw, &params); rerr != nil {
			return nil, rerr
		}
	}

	logger := logging.FromContext(ctx)
	if params.ClientInfo != nil {
		logger.Info("client connected",
			logging.FieldClient, params.ClientInfo.Name,
			logging.FieldVersion, params.ClientInfo.Version)
	}

	s.initialized = true
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync:           protocol.SyncFull,
			DocumentFormattingProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{Name: Name, Version: s.version},
	}, nil
}

func (s *Server) didOpen(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidOpenTextDocumentParams
	if rerr := decode(raw, &params); rerr != nil {
		return rerr
	}

	item := params.TextDocument
	if _, err := s.store.Open(string(item.URI), item.Version, item.Text); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("document opened",
		logging.FieldURI, item.URI, logging.FieldDocVersion, item.Version)
	return nil
}

func (s *Server) didChange(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidChangeTextDocumentParams
	if rerr := decode(raw, &params); rerr != nil {
		return rerr
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// Full synchronization: the last change holds the whole document.
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if change.Range != nil {
		return newError(CodeInvalidParams, "incremental changes are not supported")
	}

	doc := params.TextDocument
	if _, err := s.store.Replace(string(doc.URI), doc.Version, change.Text); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("document changed",
		logging.FieldURI, doc.URI, logging.FieldDocVersion, doc.Version)
	return nil
}

func (s *Server) didClose(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidCloseTextDocumentParams
	if rerr := decode(raw, &params); rerr != nil {
		return rerr
	}
	if err := s.store.Close(string(params.TextDocument.URI)); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("document closed", logging.FieldURI, params.TextDocument.URI)
	return nil
}

func (s *Server) formatting(ctx context.Context, raw json.RawMessage) (any, *ResponseError) {
	var params protocol.DocumentFormattingParams
	if rerr := decode(raw, &params); rerr != nil {
		return nil, rerr
	}

	logger := logging.FromContext(ctx).With(logging.FieldURI, params.TextDocument.URI)

	doc, err := s.store.Get(string(params.TextDocument.URI))
	if err != nil {
		return nil, newError(CodeRequestFailed, "%v", err)
	}

	res, err := s.formatter.Document(doc.Text)
	switch {
	case errors.Is(err, render.ErrUnsupported):
		return nil, newError(CodeRequestFailed, "%v", err)
	case err != nil:
		logger.Error("formatter failed", logging.FieldError, err)
		return nil, newError(CodeInternalError, "%v", err)
	}

	if res.Skipped != nil {
		logger.Warn("document left unformatted", logging.FieldError, res.Skipped)
		return nil, nil
	}
	if !res.Changed() {
		return nil, nil
	}

	logger.Debug("formatted", logging.FieldEdits, len(res.Edits))
	return protocol.TextEdits(doc.Index, res.Edits), nil
}
