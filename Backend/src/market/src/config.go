package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ListenAddr  string
	RabbitURL   string
	QEvents     string
	// Initial stock, "product:qty" pairs separated by commas.
	SeedStock map[string]int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func LoadConfig() Config {
	// Local overrides; absence is fine.
	_ = godotenv.Load()

	return Config{
		ServiceName: getenv("MARKET_SERVICE_NAME", "market"),
		ListenAddr:  getenv("MARKET_LISTEN_ADDR", ":5050"),
		RabbitURL:   os.Getenv("RABBITMQ_URL"),
		QEvents:     getenv("Q_MARKET_STOCK_EVENTS", "market.stock.events"),
		SeedStock:   parseSeed(getenv("MARKET_SEED_STOCK", "banana:10,uva:20,leite:5,pao:15")),
	}
}

// parseSeed reads "banana:10,uva:20"; malformed pairs are skipped.
func parseSeed(s string) map[string]int {
	out := map[string]int{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, qty, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 0 {
			continue
		}
		out[strings.TrimSpace(name)] = n
	}
	return out
}

const ShutdownGrace = 5 * time.Second
