package main

import "testing"

func TestParseSeed(t *testing.T) {
	got := parseSeed("banana:10, uva:20 ,leite:5")
	want := map[string]int{"banana": 10, "uva": 20, "leite": 5}
	if len(got) != len(want) {
		t.Fatalf("parseSeed = %v, want %v", got, want)
	}
	for p, q := range want {
		if got[p] != q {
			t.Errorf("parseSeed[%q] = %d, want %d", p, got[p], q)
		}
	}
}

func TestParseSeedSkipsMalformedPairs(t *testing.T) {
	got := parseSeed("banana:10,semquantidade,uva:abc,pao:-3,,leite:5")
	want := map[string]int{"banana": 10, "leite": 5}
	if len(got) != len(want) {
		t.Fatalf("parseSeed = %v, want %v", got, want)
	}
	if got["banana"] != 10 || got["leite"] != 5 {
		t.Errorf("parseSeed = %v, want %v", got, want)
	}
}

func TestParseSeedEmpty(t *testing.T) {
	if got := parseSeed(""); len(got) != 0 {
		t.Errorf("parseSeed(\"\") = %v, want empty", got)
	}
}
