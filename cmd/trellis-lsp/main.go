package main

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/lexer"
	"github.com/pipe01/trellis/internal/workspace"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "trellis"

var version string = "0.1.0"
var handler protocol.Handler

var log = commonlog.GetLogger("trellis.lsp")

var (
	documentsMu sync.Mutex
	documents   = map[string]string{}
)

var tokenTypes = []string{
	"type",
	"property",
	"string",
}

func main() {
	commonlog.Configure(1, nil)

	protocol.SetTraceValue(protocol.TraceValueMessage)

	handler = protocol.Handler{
		Initialize:  initialize,
		Initialized: initialized,
		Shutdown:    shutdown,
		SetTrace:    setTrace,
		TextDocumentDidOpen: func(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
			documentsMu.Lock()
			documents[params.TextDocument.URI] = params.TextDocument.Text
			documentsMu.Unlock()

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidChange: func(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
			documentsMu.Lock()
			content, ok := documents[params.TextDocument.URI]
			if !ok {
				documentsMu.Unlock()
				return nil
			}

			for _, change := range params.ContentChanges {
				switch change := change.(type) {
				case protocol.TextDocumentContentChangeEventWhole:
					content = change.Text

				case protocol.TextDocumentContentChangeEvent:
					startIndex, endIndex := change.Range.IndexesIn(content)
					content = content[:startIndex] + change.Text + content[endIndex:]
				}
			}

			documents[params.TextDocument.URI] = content
			documentsMu.Unlock()

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidClose: func(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
			documentsMu.Lock()
			delete(documents, params.TextDocument.URI)
			documentsMu.Unlock()

			return nil
		},
		TextDocumentSemanticTokensFull: semanticTokensFull,
	}

	server := server.NewServer(&handler, lsName, false)

	server.RunStdio()
}

func document(uri string) (string, bool) {
	documentsMu.Lock()
	defer documentsMu.Unlock()

	contents, ok := documents[uri]
	return contents, ok
}

func handleDocument(context *glsp.Context, docURI string) error {
	url, err := url.Parse(docURI)
	if err != nil {
		return fmt.Errorf("parse document uri: %w", err)
	}
	if url.Scheme != "file" {
		return fmt.Errorf("invalid document uri scheme %q", url.Scheme)
	}

	contents, ok := document(docURI)
	if !ok {
		return nil
	}

	fileName := filepath.Base(url.Path)

	ws := workspace.New(filepath.Dir(url.Path))

	diags := []protocol.Diagnostic{}

	doc, err := ws.LoadWithContents(fileName, []byte(contents))
	if err != nil {
		diags = append(diags, fatalDiagnostic(err))
	} else {
		for _, d := range doc.Diagnostics {
			diags = append(diags, diagnostic(d))
		}
	}

	log.Debugf("%s: %d diagnostics", fileName, len(diags))

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diags,
	})

	return nil
}

func fatalDiagnostic(err error) protocol.Diagnostic {
	var derr *diag.Error
	if errors.As(err, &derr) {
		return diagnostic(derr)
	}

	var poserr diag.Situated
	if errors.As(err, &poserr) {
		return protocol.Diagnostic{
			Range: protocol.Range{
				Start: pos(poserr.At()),
				End:   pos(poserr.At()),
			},
			Severity: ptr(protocol.DiagnosticSeverityError),
			Source:   ptr(lsName),
			Message:  poserr.Error(),
		}
	}

	return protocol.Diagnostic{
		Severity: ptr(protocol.DiagnosticSeverityError),
		Source:   ptr(lsName),
		Message:  err.Error(),
	}
}

func diagnostic(d *diag.Error) protocol.Diagnostic {
	msg := d.Message
	if d.Suggestion != "" {
		msg += fmt.Sprintf("\nhelp: did you mean '%s'?", d.Suggestion)
	}

	end := d.Span.End
	if !d.Span.Start.Before(end) {
		end = d.Span.Start
		end.Column++
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: pos(d.Span.Start),
			End:   pos(end),
		},
		Severity: ptr(protocol.DiagnosticSeverityError),
		Source:   ptr(lsName),
		Message:  fmt.Sprintf("%s: %s", d.Kind, msg),
	}
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := handler.CreateServerCapabilities()
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     tokenTypes,
			TokenModifiers: []string{},
		},
		Range: false,
		Full:  true,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func semanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	content, ok := document(params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("document %q not found", params.TextDocument.URI)
	}

	tokens, err := lexer.New([]byte(content), filepath.Base(params.TextDocument.URI)).Collect()
	if err != nil {
		// Highlighting is dropped until the document lexes again.
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}

	return &protocol.SemanticTokens{
		Data: encodeTokens(tokens),
	}, nil
}

// encodeTokens converts markup tokens into the relative encoding used by
// semantic token responses. Tokens spanning more than one line are skipped.
func encodeTokens(tokens []lexer.Token) []protocol.UInteger {
	data := make([]protocol.UInteger, 0)

	var prevPos diag.Location
	for _, tk := range tokens {
		start := tk.Span.Start
		length := tk.Span.End.Column - start.Column

		var tokenType protocol.UInteger

		switch tk.Type {
		case lexer.TokenTagOpen:
			start.Column++ // <
			length = len([]rune(tk.Contents))
			tokenType = 0

		case lexer.TokenTagClose:
			start.Column += 2 // </
			length = len([]rune(tk.Contents))
			tokenType = 0

		case lexer.TokenAttributeName:
			tokenType = 1

		case lexer.TokenAttributeValue:
			tokenType = 2

		default:
			continue
		}

		if tk.Span.Start.Line != tk.Span.End.Line || length <= 0 {
			continue
		}

		var startDelta protocol.UInteger
		if start.Line == prevPos.Line {
			startDelta = protocol.UInteger(start.Column - prevPos.Column)
		} else {
			startDelta = protocol.UInteger(start.Column)
		}

		data = append(data,
			protocol.UInteger(start.Line-prevPos.Line),
			startDelta,
			protocol.UInteger(length),
			tokenType,
			0,
		)

		prevPos = start
	}

	return data
}

func ptr[T any](v T) *T {
	return &v
}

func pos(l diag.Location) protocol.Position {
	return protocol.Position{
		Line:      uint32(l.Line),
		Character: uint32(l.Column),
	}
}
