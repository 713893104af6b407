package main

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Market is the transactional core: the shared inventory, the per-session
// carts and the single mutex guarding both. Stock and carts are always
// mutated together inside one critical section, so every operation is atomic
// with respect to every other operation across all sessions. No I/O happens
// under the lock; events are published after it is released.
type Market struct {
	mu       sync.Mutex
	stock    inventory
	registry *cartRegistry
	events   EventSink
}

// NewMarket builds a Market around an initial stock. The initial quantities
// count as administratively set for conservation purposes. A nil sink
// disables event publishing.
func NewMarket(initial map[string]int, events EventSink) *Market {
	if events == nil {
		events = nopSink{}
	}
	stock := make(inventory, len(initial))
	for p, q := range initial {
		if q < 0 {
			q = 0
		}
		stock[normalize(p)] = q
	}
	return &Market{stock: stock, registry: newCartRegistry(), events: events}
}

// Connect allocates a fresh session identity and registers an empty cart.
// A duplicate id means uuid collision against a live session and is an
// internal fault, not a user error.
func (m *Market) Connect() (SessionID, error) {
	id := SessionID(uuid.NewString())

	m.mu.Lock()
	err := m.registry.open(id)
	active := m.registry.active()
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	log.Info().Str("session", string(id)).Int("active", active).Msg("session opened")
	return id, nil
}

// Disconnect closes the session and folds its abandoned cart back into the
// stock inside the same critical section. It runs exactly once per session:
// a second call fails with UnknownSession and alters nothing.
func (m *Market) Disconnect(id SessionID) error {
	m.mu.Lock()
	abandoned, err := m.registry.close(id)
	var evs []StockEvent
	for p, q := range abandoned {
		avail := m.stock.increase(p, q)
		evs = append(evs, StockEvent{Kind: EventReturned, Session: id, Product: p, Quantity: q, Available: avail})
	}
	active := m.registry.active()
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if len(abandoned) > 0 {
		log.Info().Str("session", string(id)).Int("lines", len(abandoned)).Msg("cart returned to stock")
	}
	log.Info().Str("session", string(id)).Int("active", active).Msg("session closed")
	m.publish(evs)
	return nil
}

// Reserve moves quantity from the stock into the session's cart. This is the
// only path by which stock becomes held. Rejections leave both structures
// untouched.
func (m *Market) Reserve(id SessionID, product string, quantity int) error {
	if quantity <= 0 {
		return InvalidRequestError{Reason: "quantity must be positive"}
	}
	product = normalize(product)
	if product == "" {
		return InvalidRequestError{Reason: "missing product name"}
	}

	m.mu.Lock()
	c, err := m.registry.get(id)
	if err == nil {
		err = m.stock.decrease(product, quantity)
	}
	var ev StockEvent
	if err == nil {
		c[product] += quantity
		ev = StockEvent{Kind: EventReserved, Session: id, Product: product, Quantity: quantity, Available: m.stock[product]}
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.publish([]StockEvent{ev})
	return nil
}

// Cancel returns quantity from the session's cart to the stock and reports
// the product's new availability. The product need not still exist in the
// stock's key set: crediting recreates it, which covers administrative
// removal while units were reserved.
func (m *Market) Cancel(id SessionID, product string, quantity int) (available int, err error) {
	if quantity <= 0 {
		return 0, InvalidRequestError{Reason: "quantity must be positive"}
	}
	product = normalize(product)
	if product == "" {
		return 0, InvalidRequestError{Reason: "missing product name"}
	}

	m.mu.Lock()
	c, err := m.registry.get(id)
	if err == nil {
		held := c[product]
		if quantity > held {
			err = OverCancelError{Product: product, Requested: quantity, Held: held}
		}
	}
	var ev StockEvent
	if err == nil {
		c[product] -= quantity
		if c[product] == 0 {
			delete(c, product)
		}
		available = m.stock.increase(product, quantity)
		ev = StockEvent{Kind: EventCancelled, Session: id, Product: product, Quantity: quantity, Available: available}
	}
	m.mu.Unlock()

	if err != nil {
		return 0, err
	}
	m.publish([]StockEvent{ev})
	return available, nil
}

// SetStock is the administrative override. It never touches carts, so it may
// shrink availability below what sessions currently hold; the original
// behaviour is kept and the oversubscription is logged instead of rejected.
func (m *Market) SetStock(product string, quantity int) error {
	product = normalize(product)
	if product == "" {
		return InvalidRequestError{Reason: "missing product name"}
	}

	m.mu.Lock()
	err := m.stock.set(product, quantity)
	var held int
	if err == nil {
		for _, c := range m.registry.carts {
			held += c[product]
		}
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if held > quantity {
		log.Warn().Str("product", product).Int("set", quantity).Int("held", held).
			Msg("stock set below quantity currently reserved")
	}
	m.publish([]StockEvent{{Kind: EventStockSet, Product: product, Quantity: quantity, Available: quantity}})
	return nil
}

// Stock returns a consistent snapshot of available quantities.
func (m *Market) Stock() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock.snapshot()
}

// Cart returns a consistent snapshot of one session's reservations.
func (m *Market) Cart(id SessionID) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.snapshot(id)
}

// ActiveSessions reports how many sessions are currently registered.
func (m *Market) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.active()
}

func (m *Market) publish(evs []StockEvent) {
	for _, ev := range evs {
		m.events.Publish(ev)
	}
}
