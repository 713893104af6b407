package main

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/ahinestrog/mercadinho/wire"
)

func startTestServer(t *testing.T, initial map[string]int) (*Market, string) {
	t.Helper()
	market := NewMarket(initial, nil)
	srv, err := NewServer(market, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		if err := srv.Serve(ctx); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	return market, srv.Addr().String()
}

func dialTest(t *testing.T, addr string) *wire.Client {
	t.Helper()
	c, err := wire.Dial(addr, 2*time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// waitForStock polls until the product reaches want or the deadline passes;
// disconnect cleanup runs asynchronously to the closing client.
func waitForStock(t *testing.T, m *Market, product string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Stock()[product] == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("stock of %q = %d, want %d", product, m.Stock()[product], want)
}

func TestServerFullSession(t *testing.T) {
	_, addr := startTestServer(t, map[string]int{"banana": 10})
	c := dialTest(t, addr)

	stock, err := c.Stock()
	if err != nil {
		t.Fatalf("Stock: %v", err)
	}
	if stock["banana"] != 10 {
		t.Errorf("stock = %v, want banana:10", stock)
	}

	res, err := c.Reserve("banana", 4)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.Status != wire.StatusOK {
		t.Fatalf("reserve result = %+v", res)
	}

	cart, err := c.Cart()
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if cart["banana"] != 4 {
		t.Errorf("cart = %v, want banana:4", cart)
	}

	res, err = c.Reserve("banana", 7)
	if err != nil {
		t.Fatalf("Reserve over: %v", err)
	}
	if res.Code != wire.CodeInsufficientStock || res.Available != 6 {
		t.Errorf("over-reserve result = %+v, want INSUFFICIENT_STOCK with available 6", res)
	}

	res, err = c.Cancel("banana", 2)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.Status != wire.StatusOK || res.Available != 8 {
		t.Errorf("cancel result = %+v, want OK with available 8", res)
	}

	if err := c.Quit(); err != nil {
		t.Fatalf("Quit: %v", err)
	}
}

func TestServerQuitRestocks(t *testing.T) {
	market, addr := startTestServer(t, map[string]int{"banana": 10})
	c := dialTest(t, addr)

	if _, err := c.Reserve("banana", 4); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := c.Quit(); err != nil {
		t.Fatalf("Quit: %v", err)
	}
	waitForStock(t, market, "banana", 10)
	if market.ActiveSessions() != 0 {
		t.Errorf("active sessions = %d, want 0", market.ActiveSessions())
	}
}

func TestServerAbruptDropRestocks(t *testing.T) {
	market, addr := startTestServer(t, map[string]int{"banana": 10})
	c := dialTest(t, addr)

	if _, err := c.Reserve("banana", 6); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	waitForStock(t, market, "banana", 4)

	// Drop the connection without signing off.
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitForStock(t, market, "banana", 10)
}

func TestServerSessionsAreIsolated(t *testing.T) {
	market, addr := startTestServer(t, map[string]int{"banana": 10})
	a := dialTest(t, addr)
	b := dialTest(t, addr)

	if _, err := a.Reserve("banana", 3); err != nil {
		t.Fatalf("A reserve: %v", err)
	}
	cartB, err := b.Cart()
	if err != nil {
		t.Fatalf("B cart: %v", err)
	}
	if len(cartB) != 0 {
		t.Errorf("B sees A's reservations: %v", cartB)
	}

	res, err := b.Cancel("banana", 1)
	if err != nil {
		t.Fatalf("B cancel: %v", err)
	}
	if res.Code != wire.CodeOverCancel {
		t.Errorf("B cancel of A's holding = %+v, want OVER_CANCEL", res)
	}
	if got := market.Stock()["banana"]; got != 7 {
		t.Errorf("stock = %d, want 7", got)
	}
}

func TestServerMalformedInputKeepsSessionAlive(t *testing.T) {
	_, addr := startTestServer(t, map[string]int{"banana": 10})

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("isto nao e json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	dec := json.NewDecoder(conn)
	var resp wire.Response
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decode error reply: %v", err)
	}
	if resp.Type != wire.RespError {
		t.Errorf("reply type = %s, want %s", resp.Type, wire.RespError)
	}

	// The session must survive the bad line.
	if _, err := conn.Write([]byte(`{"type":"GET_STOCK"}` + "\n")); err != nil {
		t.Fatalf("write after error: %v", err)
	}
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decode stock reply: %v", err)
	}
	if resp.Type != wire.RespStock {
		t.Errorf("reply type = %s, want %s", resp.Type, wire.RespStock)
	}
}

func TestServerUnknownCommand(t *testing.T) {
	_, addr := startTestServer(t, nil)
	c := dialTest(t, addr)

	req, _ := wire.NewRequest("EXPLODE", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.Type != wire.RespError {
		t.Fatalf("reply type = %s, want %s", resp.Type, wire.RespError)
	}
	var res wire.Result
	if err := json.Unmarshal(resp.Payload, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Code != wire.CodeInvalidRequest {
		t.Errorf("code = %s, want %s", res.Code, wire.CodeInvalidRequest)
	}
}

func TestServerAdminSetVisibleToAll(t *testing.T) {
	_, addr := startTestServer(t, map[string]int{"uva": 20})
	admin := dialTest(t, addr)
	client := dialTest(t, addr)

	res, err := admin.SetStock("uva", 0)
	if err != nil {
		t.Fatalf("SetStock: %v", err)
	}
	if res.Status != wire.StatusOK {
		t.Fatalf("set result = %+v", res)
	}

	res, err = client.Reserve("uva", 1)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.Code != wire.CodeInsufficientStock {
		t.Errorf("reserve after set-to-zero = %+v, want INSUFFICIENT_STOCK", res)
	}
}
