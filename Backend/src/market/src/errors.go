package main

import "fmt"

// Every per-request failure is a typed value returned to the dispatcher;
// nothing here terminates a session or escapes the engine as a panic.

type InvalidRequestError struct{ Reason string }

func (e InvalidRequestError) Error() string { return "invalid request: " + e.Reason }

type ProductNotFoundError struct{ Product string }

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q does not exist", e.Product)
}

type InsufficientStockError struct {
	Product   string
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: only %d %q available, requested %d",
		e.Available, e.Product, e.Requested)
}

type OverCancelError struct {
	Product   string
	Requested int
	Held      int
}

func (e OverCancelError) Error() string {
	return fmt.Sprintf("cancel exceeds reservation: only %d %q held, requested %d",
		e.Held, e.Product, e.Requested)
}

type UnknownSessionError struct {
	Session SessionID
	// Closed reports whether the session was seen before and already cleaned
	// up, as opposed to never having existed at all.
	Closed bool
}

func (e UnknownSessionError) Error() string {
	if e.Closed {
		return fmt.Sprintf("session %s already closed", e.Session)
	}
	return fmt.Sprintf("unknown session %s", e.Session)
}

// DuplicateSessionError indicates an id collision on connect. It cannot be
// provoked by clients and is treated as an internal fault.
type DuplicateSessionError struct{ Session SessionID }

func (e DuplicateSessionError) Error() string {
	return fmt.Sprintf("session %s already registered", e.Session)
}
