package main

import (
	"errors"
	"testing"
)

func TestInventoryDecreaseAllOrNothing(t *testing.T) {
	inv := inventory{"banana": 5}

	err := inv.decrease("banana", 6)
	var short InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("got %v, want InsufficientStockError", err)
	}
	if short.Available != 5 {
		t.Errorf("error reports available=%d, want 5", short.Available)
	}
	if inv["banana"] != 5 {
		t.Errorf("failed decrease mutated inventory: %d", inv["banana"])
	}

	if err := inv.decrease("banana", 5); err != nil {
		t.Fatalf("exact decrease: %v", err)
	}
	if q, ok := inv["banana"]; !ok || q != 0 {
		t.Errorf("drained product = %d (present=%v), want kept at 0", q, ok)
	}
}

func TestInventoryIncreaseRecreatesEntry(t *testing.T) {
	inv := inventory{}
	if got := inv.increase("fantasma", 3); got != 3 {
		t.Errorf("increase on absent entry = %d, want 3", got)
	}
	if got := inv.increase("fantasma", 2); got != 5 {
		t.Errorf("second increase = %d, want 5", got)
	}
}

func TestInventorySnapshotIsACopy(t *testing.T) {
	inv := inventory{"banana": 5}
	snap := inv.snapshot()
	snap["banana"] = 99
	if inv["banana"] != 5 {
		t.Error("snapshot aliases internal storage")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Banana":  "banana",
		" UVA ":   "uva",
		"leite":   "leite",
		"  PaO\t": "pao",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
