package main

import "strings"

// inventory maps a normalized product name to its available quantity.
// It carries no lock of its own: it is owned by Market and only touched
// while the Market mutex is held. Quantities never go negative, and a
// product drained or set to zero stays present at zero.
type inventory map[string]int

// normalize lower-cases and trims a product name. Product keys are always
// normalized before touching the inventory or a cart.
func normalize(product string) string {
	return strings.ToLower(strings.TrimSpace(product))
}

// snapshot returns a point-in-time copy; the internal map is never exposed.
func (inv inventory) snapshot() map[string]int {
	out := make(map[string]int, len(inv))
	for p, q := range inv {
		out[p] = q
	}
	return out
}

// set is the administrative override. It creates the product if absent and
// does not touch any cart, so it can move the conservation total.
func (inv inventory) set(product string, quantity int) error {
	if quantity < 0 {
		return InvalidRequestError{Reason: "quantity must not be negative"}
	}
	inv[product] = quantity
	return nil
}

// decrease removes amount from a product's availability. It is all-or-nothing:
// on InsufficientStock the inventory is untouched.
func (inv inventory) decrease(product string, amount int) error {
	avail, ok := inv[product]
	if !ok {
		return ProductNotFoundError{Product: product}
	}
	if avail < amount {
		return InsufficientStockError{Product: product, Requested: amount, Available: avail}
	}
	inv[product] = avail - amount
	return nil
}

// increase credits a product, recreating the entry if the product was
// removed from the inventory while units of it were still held in carts.
func (inv inventory) increase(product string, amount int) int {
	inv[product] += amount
	return inv[product]
}
