package ioimage

import (
	"testing"
	"time"
)

func TestBinding_TickAdvancesCycleAndSpecials(t *testing.T) {
	b := NewBinding(50_000_000)

	now := time.Unix(1_700_000_000, 0)
	b.WithLocked(func() {
		b.Tick(now)
	})

	if got := b.Cycle(); got != 1 {
		t.Fatalf("Cycle() = %d, want 1", got)
	}

	sec, err := b.SpecialAt(0)
	if err != nil {
		t.Fatalf("SpecialAt(0): %v", err)
	}
	if !sec.Present || sec.Value != now.Unix() {
		t.Fatalf("SpecialAt(0) = %+v, want present with value %d", sec, now.Unix())
	}

	cyc, err := b.SpecialAt(1)
	if err != nil {
		t.Fatalf("SpecialAt(1): %v", err)
	}
	if !cyc.Present || cyc.Value != 1 {
		t.Fatalf("SpecialAt(1) = %+v, want present with value 1", cyc)
	}
}

func TestBinding_BoolAt(t *testing.T) {
	b := NewBinding(0)

	cell, err := b.BoolAt(KindBoolInput, 3, 5)
	if err != nil {
		t.Fatalf("BoolAt: %v", err)
	}
	cell.Present = true
	cell.Value = true

	got := b.Image.BoolInput[3][5]
	if !got.Present || !got.Value {
		t.Fatalf("Image.BoolInput[3][5] = %+v, want {true true}", got)
	}

	if _, err := b.BoolAt(KindBoolInput, Capacity, 0); err == nil {
		t.Fatal("BoolAt with out-of-range index: want error, got nil")
	}
	if _, err := b.BoolAt(KindBoolInput, 0, 8); err == nil {
		t.Fatal("BoolAt with out-of-range sub: want error, got nil")
	}
	if _, err := b.BoolAt(KindIntMemory, 0, 0); err == nil {
		t.Fatal("BoolAt with non-bool kind: want error, got nil")
	}
}

func TestBinding_WordAt(t *testing.T) {
	b := NewBinding(0)

	cell, err := b.WordAt(KindIntMemory, 10)
	if err != nil {
		t.Fatalf("WordAt: %v", err)
	}
	cell.Present = true
	cell.Value = 0xBEEF

	if got := b.Image.IntMemory[10]; !got.Present || got.Value != 0xBEEF {
		t.Fatalf("Image.IntMemory[10] = %+v, want {true 0xBEEF}", got)
	}

	if _, err := b.WordAt(KindDintMemory, 0); err == nil {
		t.Fatal("WordAt with dword kind: want error, got nil")
	}
}

func TestBinding_DwordAndLwordAt(t *testing.T) {
	b := NewBinding(0)

	dc, err := b.DwordAt(KindDintMemory, 1)
	if err != nil {
		t.Fatalf("DwordAt: %v", err)
	}
	dc.Present, dc.Value = true, 0xDEADBEEF
	if got := b.Image.DintMemory[1]; !got.Present || got.Value != 0xDEADBEEF {
		t.Fatalf("Image.DintMemory[1] = %+v", got)
	}

	lc, err := b.LwordAt(KindLintMemory, 2)
	if err != nil {
		t.Fatalf("LwordAt: %v", err)
	}
	lc.Present, lc.Value = true, 0x0102030405060708
	if got := b.Image.LintMemory[2]; !got.Present || got.Value != 0x0102030405060708 {
		t.Fatalf("Image.LintMemory[2] = %+v", got)
	}

	if _, err := b.DwordAt(KindLintMemory, 0); err == nil {
		t.Fatal("DwordAt with lword kind: want error, got nil")
	}
	if _, err := b.LwordAt(KindDintMemory, 0); err == nil {
		t.Fatal("LwordAt with dword kind: want error, got nil")
	}
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindBoolInput:        "bool_input",
		KindSpecialFunctions: "special_functions",
		Kind(999):            "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
