package rpcjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
)

// Error codes outside the JSON-RPC reserved range.
const (
	codeUpstreamStatus = 50200
	codeInternal       = 50000
)

// Server exposes the daemon's caching client and session over a unix socket.
type Server struct {
	requester domain.Requester
	session   *application.Session
	log       *zap.Logger
	listener  net.Listener
	path      string
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type upstreamStatus struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func Start(path string, requester domain.Requester, session *application.Session, log *zap.Logger) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Server{requester: requester, session: session, log: log.Named("rpc"), listener: ln, path: path}
	go s.serve()
	return s, nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(context.Background(), req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32600, Message: "invalid request"}, ID: req.ID}
	}
	s.log.Debug("call", zap.String("method", req.Method))

	switch req.Method {
	case "http.do":
		var p domain.Request
		if !decodeParams(req.Params, &p) || p.Method == "" || p.Path == "" {
			return invalidParams(req.ID)
		}
		out, err := s.requester.Do(ctx, p)
		if err != nil {
			return forwardError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "cache.invalidate":
		var p struct {
			Prefix string `json:"prefix"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		s.requester.InvalidatePrefix(p.Prefix)
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "session.state":
		if s.session == nil {
			return response{JSONRPC: "2.0", Result: application.SessionSnapshot{State: domain.SessionAnonymous}, ID: req.ID}
		}
		// Init is still running; a Sync now would start a second one.
		if s.session.State() == domain.SessionLoading {
			return response{JSONRPC: "2.0", Result: s.session.Snapshot(), ID: req.ID}
		}
		if err := s.session.Sync(ctx); err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: s.session.Snapshot(), ID: req.ID}
	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	}
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func invalidParams(id any) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: -32602, Message: "invalid params"}, ID: id}
}

// forwardError keeps a 5xx status and body intact so the caller can rebuild
// the StatusError.
func forwardError(id any, err error) response {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		data, _ := json.Marshal(upstreamStatus{Status: statusErr.Status, Body: statusErr.Body})
		return response{JSONRPC: "2.0", Error: &rpcError{Code: codeUpstreamStatus, Message: statusErr.Error(), Data: data}, ID: id}
	}
	return internalError(id, err)
}

func internalError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: codeInternal, Message: fmt.Sprintf("internal error: %v", err)}, ID: id}
}
