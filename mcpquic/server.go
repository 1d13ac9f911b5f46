// CLAUDE:SUMMARY QUIC listener and per-connection handler hosting MCP sessions over streams.
package mcpquic

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/quic-go/quic-go"

	"github.com/hazyhaar/testweave/idgen"
	"github.com/hazyhaar/testweave/kit"
)

// Handler runs one MCP session per QUIC connection. It owns no listener,
// so an external accept loop sharing a UDP socket can dispatch to it.
//
// The SDK owns the JSON-RPC read/write loop; the handler only validates
// the preamble and hands the stream over as a transport.
type Handler struct {
	mcpServer *mcp.Server
	logger    *slog.Logger
	newID     idgen.Generator
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerIDGenerator sets the session ID generator.
func WithHandlerIDGenerator(gen idgen.Generator) HandlerOption {
	return func(h *Handler) { h.newID = gen }
}

// NewHandler creates a connection handler over a shared MCP server.
func NewHandler(mcpSrv *mcp.Server, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		mcpServer: mcpSrv,
		logger:    logger,
		newID:     idgen.Prefixed("quic_", idgen.NanoID(8)),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ServeConn runs a QUIC connection as one MCP session and blocks until
// the session ends.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := h.handshake(ctx, conn)
	if err != nil {
		h.logger.Error("mcpquic: handshake failed", "remote", remote, "error", err)
		return
	}

	sessionID := h.newID()
	h.logger.Info("mcpquic: session starting", "session", sessionID, "remote", remote)

	// Session identity rides the context so audit entries can name the
	// transport and remote peer.
	ctx = kit.WithTransport(ctx, "mcp_quic")
	ctx = kit.WithSessionID(ctx, sessionID)
	ctx = kit.WithRemoteAddr(ctx, remote)

	ss, err := h.mcpServer.Connect(ctx, &quicServerTransport{stream: stream, sessionID: sessionID}, nil)
	if err != nil {
		h.logger.Error("mcpquic: connect failed", "session", sessionID, "error", err)
		stream.Close()
		return
	}

	if err := ss.Wait(); err != nil {
		h.logger.Debug("mcpquic: session wait", "session", sessionID, "error", err)
	}
	h.logger.Info("mcpquic: session ended", "session", sessionID, "remote", remote)
}

// handshake accepts the first stream and consumes the magic-byte
// preamble, closing the connection with the matching code on violation.
func (h *Handler) handshake(ctx context.Context, conn *quic.Conn) (*quic.Stream, error) {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		conn.CloseWithError(ConnErrorProtocolViolation, "stream accept failed")
		return nil, &ConnectionError{
			RemoteAddr: conn.RemoteAddr().String(),
			Code:       ConnErrorProtocolViolation,
			Err:        err,
		}
	}

	if err := ValidateMagicBytes(stream); err != nil {
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return nil, &ConnectionError{
			RemoteAddr: conn.RemoteAddr().String(),
			Code:       ConnErrorProtocolViolation,
			Err:        err,
		}
	}
	return stream, nil
}

// Listener accepts MCP-over-QUIC connections on its own socket and
// dispatches each to a Handler.
type Listener struct {
	listener *quic.Listener
	handler  *Handler
	logger   *slog.Logger
}

// NewListener binds addr and prepares the accept loop. Serve starts it.
func NewListener(addr string, tlsCfg *tls.Config, mcpSrv *mcp.Server, logger *slog.Logger, opts ...HandlerOption) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := quic.ListenAddr(addr, tlsCfg, ProductionQUICConfig())
	if err != nil {
		return nil, err
	}
	logger.Info("mcpquic: listener ready", "addr", addr)
	return &Listener{
		listener: l,
		handler:  NewHandler(mcpSrv, logger, opts...),
		logger:   logger,
	}, nil
}

// Serve accepts connections until the context is cancelled. Connections
// negotiating a foreign ALPN are refused before the handler sees them.
func (l *Listener) Serve(ctx context.Context) error {
	for {
		conn, err := l.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("mcpquic: accept", "error", err)
			continue
		}

		if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
			conn.CloseWithError(ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
			continue
		}

		go l.handler.ServeConn(ctx, conn)
	}
}

// Close stops accepting.
func (l *Listener) Close() error {
	return l.listener.Close()
}

// quicServerTransport exposes a QUIC stream as an mcp.Transport.
type quicServerTransport struct {
	stream    *quic.Stream
	sessionID string
}

func (t *quicServerTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	iot := &mcp.IOTransport{
		Reader: io.NopCloser(t.stream),
		Writer: streamWriteCloser{t.stream},
	}
	conn, err := iot.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &sessionConn{Connection: conn, id: t.sessionID}, nil
}

// sessionConn overrides SessionID; the SDK's ioConn reports "".
type sessionConn struct {
	mcp.Connection
	id string
}

func (c *sessionConn) SessionID() string { return c.id }

// streamWriteCloser adapts a *quic.Stream to io.WriteCloser.
type streamWriteCloser struct{ stream *quic.Stream }

func (w streamWriteCloser) Write(p []byte) (int, error) { return w.stream.Write(p) }
func (w streamWriteCloser) Close() error                { return w.stream.Close() }
