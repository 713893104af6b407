package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/cors"

	"github.com/ahinestrog/mercadinho/wire"
)

// The frontend keeps ONE market session open and acts on it: the page's cart
// is this process's cart, exactly like the desktop client it replaces.
type marketLink struct {
	mu     sync.Mutex
	addr   string
	client *wire.Client
}

func (l *marketLink) get() (*wire.Client, error) {
	if l.client != nil {
		return l.client, nil
	}
	c, err := wire.Dial(l.addr, 3*time.Second)
	if err != nil {
		return nil, err
	}
	l.client = c
	return c, nil
}

// do runs fn against the session, dropping the connection on network errors
// so the next request redials with a fresh cart.
func (l *marketLink) do(fn func(c *wire.Client) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := l.get()
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		_ = c.Close()
		l.client = nil
		return err
	}
	return nil
}

type stockRow struct {
	Product   string
	Available string
}

func main() {
	link := &marketLink{addr: getenv("MARKET_SERVICE_ADDR", "127.0.0.1:5050")}

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlePage)
	mux.HandleFunc("/api/stock", handleSnapshot(link, (*wire.Client).Stock))
	mux.HandleFunc("/api/cart", handleSnapshot(link, (*wire.Client).Cart))
	mux.HandleFunc("/api/reserve", handleAction(link, (*wire.Client).Reserve))
	mux.HandleFunc("/api/cancel", handleAction(link, (*wire.Client).Cancel))

	handler := cors.Default().Handler(mux)

	addr := getenv("FRONTEND_MARKET_ADDR", ":8082")
	fmt.Printf("market frontend listening on %s\n", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func handlePage(w http.ResponseWriter, r *http.Request) {
	tpl, err := template.ParseFiles("templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = tpl.Execute(w, nil)
}

func handleSnapshot(link *marketLink, fetch func(*wire.Client) (map[string]int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var items map[string]int
		err := link.do(func(c *wire.Client) error {
			var ferr error
			items, ferr = fetch(c)
			return ferr
		})
		if err != nil {
			http.Error(w, "market: "+err.Error(), http.StatusBadGateway)
			return
		}
		rows := make([]stockRow, 0, len(items))
		for p, q := range items {
			rows = append(rows, stockRow{Product: p, Available: humanize.Comma(int64(q))})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Product < rows[j].Product })
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": rows})
	}
}

func handleAction(link *marketLink, act func(*wire.Client, string, int) (wire.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		product := strings.TrimSpace(r.FormValue("product"))
		qty, err := strconv.Atoi(r.FormValue("quantity"))
		if product == "" || err != nil {
			http.Error(w, "product and numeric quantity required", http.StatusBadRequest)
			return
		}

		var res wire.Result
		err = link.do(func(c *wire.Client) error {
			var aerr error
			res, aerr = act(c, product, qty)
			return aerr
		})
		if err != nil {
			http.Error(w, "market: "+err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}
