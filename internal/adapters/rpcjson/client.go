package rpcjson

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
)

const dialTimeout = 5 * time.Second

// Client talks to a running daemon. It implements domain.Requester, so the
// daemon's cache and in-flight dedup serve every process using the socket.
type Client struct {
	socket string
	log    *zap.Logger
	nextID atomic.Int64
}

type clientRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type clientResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      any             `json:"id"`
}

// CallError is a JSON-RPC error answer.
type CallError struct {
	Code    int
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("rpc error (%d): %s", e.Code, e.Message)
}

func NewClient(socket string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{socket: socket, log: log.Named("rpc-client")}
}

func (c *Client) Do(ctx context.Context, req domain.Request) (domain.Response, error) {
	var out domain.Response
	if err := c.call(ctx, "http.do", req, &out); err != nil {
		return domain.Response{}, err
	}
	return out, nil
}

// InvalidatePrefix asks the daemon to drop cached entries. Failures are only
// logged since the port has no error return.
func (c *Client) InvalidatePrefix(prefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := c.call(ctx, "cache.invalidate", map[string]string{"prefix": prefix}, nil); err != nil {
		c.log.Warn("invalidate daemon cache", zap.String("prefix", prefix), zap.Error(err))
	}
}

func (c *Client) SessionState(ctx context.Context) (application.SessionSnapshot, error) {
	var out application.SessionSnapshot
	err := c.call(ctx, "session.state", map[string]any{}, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socket)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w", c.socket, err)
	}
	defer func() { _ = conn.Close() }()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	req := clientRequest{JSONRPC: "2.0", Method: method, Params: params, ID: c.nextID.Add(1)}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return err
	}

	var resp clientResponse
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return err
	}
	if resp.Error != nil {
		if resp.Error.Code == codeUpstreamStatus {
			var upstream upstreamStatus
			if err := json.Unmarshal(resp.Error.Data, &upstream); err == nil {
				return &domain.StatusError{Status: upstream.Status, Body: upstream.Body}
			}
		}
		return &CallError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}
