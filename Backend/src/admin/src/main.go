// Administrative console for the market service. Connects as a regular
// session and drives the SET_STOCK / GET_STOCK commands interactively.
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/ahinestrog/mercadinho/wire"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5050", "market server address")
	flag.Parse()

	client, err := wire.Dial(*addr, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("--- connected to %s as admin ---\n", *addr)
	fmt.Println("commands:")
	fmt.Println("  SET <product> <quantity>   override available stock")
	fmt.Println("  GET                        print the stock table")
	fmt.Println("  QUIT                       sign off")
	fmt.Println(strings.Repeat("-", 50))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("admin > ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)

		switch strings.ToUpper(parts[0]) {
		case "QUIT", "SAIR", "EXIT":
			_ = client.Quit()
			fmt.Println("--- disconnected ---")
			return

		case "SET":
			if len(parts) != 3 {
				fmt.Println("usage: SET <product> <quantity>")
				continue
			}
			qty, err := strconv.Atoi(parts[2])
			if err != nil {
				fmt.Println("quantity must be a number")
				continue
			}
			res, err := client.SetStock(parts[1], qty)
			if err != nil {
				fmt.Fprintf(os.Stderr, "network error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("server: %s\n", res.Message)

		case "GET":
			stock, err := client.Stock()
			if err != nil {
				fmt.Fprintf(os.Stderr, "network error: %v\n", err)
				os.Exit(1)
			}
			printStock(stock)

		default:
			fmt.Println("unknown command; use SET, GET or QUIT")
		}
	}
	_ = client.Quit()
}

func printStock(stock map[string]int) {
	if len(stock) == 0 {
		fmt.Println("(no products)")
		return
	}
	products := make([]string, 0, len(stock))
	width := 0
	for p := range stock {
		products = append(products, p)
		if len(p) > width {
			width = len(p)
		}
	}
	sort.Strings(products)
	for _, p := range products {
		fmt.Printf("  %-*s  %s\n", width, p, humanize.Comma(int64(stock[p])))
	}
}
