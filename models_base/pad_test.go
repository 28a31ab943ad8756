package models_base

import "testing"

func TestPad4(t *testing.T) {
	if n := pad4(2); n != 4 {
		t.Fatalf("Unexpected result. Want 4, have %d", n)
	}
	if n := pad4(0); n != 0 {
		t.Fatalf("Unexpected result. Want 0, have %d", n)
	}
	if n := pad4(4); n != 4 {
		t.Fatalf("Unexpected result. Want 4, have %d", n)
	}
	if n := pad4(5); n != 8 {
		t.Fatalf("Unexpected result. Want 8, have %d", n)
	}
}

func TestPaddingStrings(t *testing.T) {
	for give, want := range map[string]int{
		"":        0,
		"a":       3,
		"ab":      2,
		"abc":     1,
		"abcd":    0,
		"abcde":   3,
		"host.ex": 1,
	} {
		if p := OctetString(give).Padding(); p != want {
			t.Errorf("Padding(%q): want %d, have %d", give, want, p)
		}
	}
}
