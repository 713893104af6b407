package main

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SessionID identifies one client connection for its lifetime. Ids are
// opaque uuids, decoupled from the transport: the network layer never acts
// as a map key itself.
type SessionID string

// cart holds one session's current reservations. An entry is always > 0;
// lines that reach zero are deleted immediately.
type cart map[string]int

// closedSessionMemory bounds the diagnostic record of recently closed ids.
const closedSessionMemory = 1024

// cartRegistry maps active sessions to their carts. Like inventory it has no
// lock of its own and is only touched under the Market mutex. It remembers
// recently closed ids so UnknownSession failures can say whether the session
// was already cleaned up or never existed.
type cartRegistry struct {
	carts  map[SessionID]cart
	closed *lru.Cache[SessionID, time.Time]
}

func newCartRegistry() *cartRegistry {
	closed, err := lru.New[SessionID, time.Time](closedSessionMemory)
	if err != nil {
		// only reachable with a non-positive size constant
		panic(err)
	}
	return &cartRegistry{carts: make(map[SessionID]cart), closed: closed}
}

// open inserts an empty cart for a new session.
func (r *cartRegistry) open(id SessionID) error {
	if _, ok := r.carts[id]; ok {
		return DuplicateSessionError{Session: id}
	}
	r.carts[id] = make(cart)
	return nil
}

// close removes and returns the session's cart. A second close for the same
// id fails with UnknownSession; it never double-credits stock.
func (r *cartRegistry) close(id SessionID) (cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, r.unknown(id)
	}
	delete(r.carts, id)
	r.closed.Add(id, time.Now())
	return c, nil
}

// get returns the live cart for engine mutation.
func (r *cartRegistry) get(id SessionID) (cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, r.unknown(id)
	}
	return c, nil
}

// snapshot returns a read-only copy for reporting.
func (r *cartRegistry) snapshot(id SessionID) (map[string]int, error) {
	c, err := r.get(id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(c))
	for p, q := range c {
		out[p] = q
	}
	return out, nil
}

// active returns the number of registered sessions.
func (r *cartRegistry) active() int { return len(r.carts) }

func (r *cartRegistry) unknown(id SessionID) error {
	_, wasClosed := r.closed.Get(id)
	return UnknownSessionError{Session: id, Closed: wasClosed}
}
