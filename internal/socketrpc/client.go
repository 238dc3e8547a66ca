package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"
)

const defaultCallTimeout = 30 * time.Second

// Client implements model.StateProvider over a Unix domain socket using JSON-RPC 2.0.
// Transport failures wrap model.ErrUnavailable; application errors are *RPCError.
type Client struct {
	conn    net.Conn
	mu      sync.Mutex
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("socketrpc: dial: %w: %v", model.ErrUnavailable, err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	return &Client{
		conn:    conn,
		scanner: scanner,
		encoder: json.NewEncoder(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call performs a JSON-RPC call and unmarshals the result into dest.
func (c *Client) call(ctx context.Context, method string, params interface{}, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultCallTimeout)
	}
	c.conn.SetDeadline(deadline)
	defer c.conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(req); err != nil {
		return fmt.Errorf("socketrpc: send: %w: %v", model.ErrUnavailable, err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("socketrpc: read: %w: %v", model.ErrUnavailable, err)
		}
		return fmt.Errorf("socketrpc: connection closed: %w", model.ErrUnavailable)
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}
	if resp.ID != id {
		return fmt.Errorf("socketrpc: response id %d does not match request %d", resp.ID, id)
	}

	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

func (c *Client) Snapshot(ctx context.Context) (model.Snapshot, error) {
	var result model.Snapshot
	err := c.call(ctx, "Snapshot", nil, &result)
	return result, err
}

func (c *Client) TriggerSOS(ctx context.Context, vesselID string) (model.Alert, error) {
	var result model.Alert
	err := c.call(ctx, "TriggerSOS", map[string]interface{}{"VesselID": vesselID}, &result)
	return result, err
}

func (c *Client) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	return c.call(ctx, "AcknowledgeAlert", map[string]interface{}{"AlertID": alertID}, nil)
}

func (c *Client) AddCatch(ctx context.Context, rec model.CatchRecord) (model.CatchRecord, error) {
	var result model.CatchRecord
	err := c.call(ctx, "AddCatch", map[string]interface{}{"Record": rec}, &result)
	return result, err
}
