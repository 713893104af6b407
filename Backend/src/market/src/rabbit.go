package main

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Rabbit publishes stock events to a durable queue. It is optional: the
// server runs with a no-op sink when RABBITMQ_URL is unset. Events are
// buffered and published from a single goroutine so the engine never blocks
// on broker I/O; when the buffer is full events are dropped, not queued
// against the critical section.
type Rabbit struct {
	cfg  Config
	conn *amqp.Connection
	ch   *amqp.Channel
	buf  chan StockEvent
	done chan struct{}
}

func NewRabbit(cfg Config) (*Rabbit, error) {
	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(cfg.QEvents, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	r := &Rabbit{
		cfg:  cfg,
		conn: conn,
		ch:   ch,
		buf:  make(chan StockEvent, 256),
		done: make(chan struct{}),
	}
	go r.run()
	return r, nil
}

func (r *Rabbit) Publish(ev StockEvent) {
	select {
	case r.buf <- ev:
	default:
		log.Warn().Str("kind", ev.Kind).Msg("event buffer full, dropping")
	}
}

func (r *Rabbit) run() {
	for ev := range r.buf {
		body, _ := json.Marshal(ev)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.ch.PublishWithContext(ctx, "", r.cfg.QEvents, false, false, amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		})
		cancel()
		if err != nil {
			log.Error().Err(err).Str("kind", ev.Kind).Msg("publish stock event failed")
		}
	}
	close(r.done)
}

func (r *Rabbit) Close() {
	close(r.buf)
	select {
	case <-r.done:
	case <-time.After(ShutdownGrace):
	}
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}
