package socketrpc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/seaguardian/seaguardian/internal/model"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes model.StateProvider over a Unix domain socket.
// Each method maps 1:1 to the StateProvider interface.
//
//   Method              Params                          Result
//   ────────────────    ──────────────────────────────  ─────────────────
//   Snapshot            (none)                          model.Snapshot
//   TriggerSOS          {VesselID: string}              model.Alert
//   AcknowledgeAlert    {AlertID: int64}                null
//   AddCatch            {Record: model.CatchRecord}     model.CatchRecord
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params (also rejected catch records, Data "invalid_catch")
//   -32603  Internal error (marshal failure)
//   -32000  Application error
//   -32004  Not found (Data "alert_not_found" or "vessel_not_found")

const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeApplication    = -32000
	CodeNotFound       = -32004
)

const (
	reasonAlertNotFound  = "alert_not_found"
	reasonVesselNotFound = "vessel_not_found"
	reasonInvalidCatch   = "invalid_catch"
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// Unwrap maps the error back to the model sentinel it was encoded from,
// so errors.Is works across the socket.
func (e *RPCError) Unwrap() error {
	switch e.Data {
	case reasonAlertNotFound:
		return model.ErrAlertNotFound
	case reasonVesselNotFound:
		return model.ErrVesselNotFound
	case reasonInvalidCatch:
		return model.ErrInvalidCatch
	}
	return nil
}

// errorFor encodes a provider error as an RPC error object.
func errorFor(err error) *RPCError {
	switch {
	case errors.Is(err, model.ErrAlertNotFound):
		return &RPCError{Code: CodeNotFound, Message: err.Error(), Data: reasonAlertNotFound}
	case errors.Is(err, model.ErrVesselNotFound):
		return &RPCError{Code: CodeNotFound, Message: err.Error(), Data: reasonVesselNotFound}
	case errors.Is(err, model.ErrInvalidCatch):
		return &RPCError{Code: CodeInvalidParams, Message: err.Error(), Data: reasonInvalidCatch}
	}
	return &RPCError{Code: CodeApplication, Message: err.Error()}
}

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/seaguardian/seaguardian.sock, falling back to
// ~/.local/state/seaguardian/seaguardian.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "seaguardian", "seaguardian.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/seaguardian.sock"
	}
	return filepath.Join(home, ".local", "state", "seaguardian", "seaguardian.sock")
}
