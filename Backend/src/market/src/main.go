package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := LoadConfig()
	log.Info().
		Str("addr", cfg.ListenAddr).
		Int("products", len(cfg.SeedStock)).
		Bool("rabbit", cfg.RabbitURL != "").
		Msg("starting market service")

	// Event sink (optional)
	var sink EventSink
	if cfg.RabbitURL != "" {
		rabbit, err := NewRabbit(cfg)
		must(err)
		defer rabbit.Close()
		sink = rabbit
		log.Info().Str("queue", cfg.QEvents).Msg("stock events enabled")
	}

	market := NewMarket(cfg.SeedStock, sink)

	srv, err := NewServer(market, cfg.ListenAddr)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		cancel()
		time.Sleep(ShutdownGrace)
		os.Exit(0)
	}()

	log.Info().Str("addr", srv.Addr().String()).Msg("market listening")
	must(srv.Serve(ctx))
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
