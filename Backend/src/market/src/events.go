package main

// Stock-change event kinds published to the event queue.
const (
	EventReserved  = "stock.reserved"
	EventCancelled = "stock.cancelled"
	EventStockSet  = "stock.set"
	EventReturned  = "stock.returned"
)

// StockEvent describes one movement of quantity. Available is the product's
// availability right after the movement. Session is empty for admin sets.
type StockEvent struct {
	Kind      string    `json:"kind"`
	Session   SessionID `json:"session,omitempty"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	Available int       `json:"available"`
}

// EventSink receives stock events after the engine mutex is released.
// Implementations must not call back into the Market.
type EventSink interface {
	Publish(ev StockEvent)
}

type nopSink struct{}

func (nopSink) Publish(StockEvent) {}
