package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client is a line-oriented protocol client over a single TCP session. The
// server serializes replies per connection, so a Client must not be shared
// across goroutines without external locking.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial opens a session with the market server.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Do sends one request and waits for the matching reply.
func (c *Client) Do(req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}
	if _, err := c.conn.Write(append(body, '\n')); err != nil {
		return Response{}, fmt.Errorf("send %s: %w", req.Type, err)
	}
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("read reply to %s: %w", req.Type, err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode reply to %s: %w", req.Type, err)
	}
	return resp, nil
}

// Stock fetches the available-stock snapshot.
func (c *Client) Stock() (map[string]int, error) {
	return c.snapshot(CmdGetStock)
}

// Cart fetches this session's reservation snapshot.
func (c *Client) Cart() (map[string]int, error) {
	return c.snapshot(CmdGetCart)
}

func (c *Client) snapshot(cmd string) (map[string]int, error) {
	req, _ := NewRequest(cmd, nil)
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.Type == RespError {
		var res Result
		_ = json.Unmarshal(resp.Payload, &res)
		return nil, fmt.Errorf("%s: %s", cmd, res.Message)
	}
	var p StockPayload
	if err := json.Unmarshal(resp.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", cmd, err)
	}
	return p.Items, nil
}

// Reserve asks the server to move quantity from stock into this session's
// cart. The returned Result carries the server's verdict either way.
func (c *Client) Reserve(product string, quantity int) (Result, error) {
	return c.item(CmdReserve, product, quantity)
}

// Cancel returns quantity from this session's cart to the stock.
func (c *Client) Cancel(product string, quantity int) (Result, error) {
	return c.item(CmdCancel, product, quantity)
}

// SetStock overrides a product's available quantity.
func (c *Client) SetStock(product string, quantity int) (Result, error) {
	return c.item(CmdSetStock, product, quantity)
}

func (c *Client) item(cmd, product string, quantity int) (Result, error) {
	req, err := NewRequest(cmd, ItemRequest{Product: product, Quantity: quantity})
	if err != nil {
		return Result{}, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return Result{}, err
	}
	var res Result
	if err := json.Unmarshal(resp.Payload, &res); err != nil {
		return Result{}, fmt.Errorf("decode %s payload: %w", cmd, err)
	}
	return res, nil
}

// Quit signs off gracefully. The server folds the cart back into stock on
// any disconnect, so Quit is a courtesy, not a requirement.
func (c *Client) Quit() error {
	req, _ := NewRequest(CmdQuit, nil)
	if _, err := c.Do(req); err != nil {
		return err
	}
	return c.conn.Close()
}

// Close drops the connection without signing off.
func (c *Client) Close() error { return c.conn.Close() }
