package history

import (
	"strconv"
	"testing"
)

func TestBook_DepthCap(t *testing.T) {
	b, err := New(16, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 5; i++ {
		b.Record("BTCUSDT", Trade{Symbol: "BTCUSDT", Price: strconv.Itoa(i)})
	}

	trades := b.Last("BTCUSDT", 10)
	if len(trades) != 3 {
		t.Fatalf("len = %d, want 3 (depth cap)", len(trades))
	}
	// Oldest first, entries 0 and 1 evicted.
	for i, want := range []string{"2", "3", "4"} {
		if trades[i].Price != want {
			t.Errorf("trades[%d].Price = %s, want %s", i, trades[i].Price, want)
		}
	}
}

func TestBook_LastLimit(t *testing.T) {
	b, err := New(16, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 5; i++ {
		b.Record("ETHUSDT", Trade{Price: strconv.Itoa(i)})
	}

	trades := b.Last("ETHUSDT", 2)
	if len(trades) != 2 || trades[0].Price != "3" || trades[1].Price != "4" {
		t.Errorf("Last(2) = %+v, want prices 3,4", trades)
	}
	if got := b.Last("ETHUSDT", 0); got != nil {
		t.Errorf("Last(0) = %+v, want nil", got)
	}
}

func TestBook_UnknownSymbol(t *testing.T) {
	b, err := New(16, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := b.Last("XRPUSDT", 5); got != nil {
		t.Errorf("Last on unknown symbol = %+v, want nil", got)
	}
}

func TestBook_SymbolEviction(t *testing.T) {
	b, err := New(2, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b.Record("BTCUSDT", Trade{Price: "1"})
	b.Record("ETHUSDT", Trade{Price: "2"})
	b.Record("XRPUSDT", Trade{Price: "3"}) // evicts BTCUSDT

	if got := b.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
	if got := b.Last("BTCUSDT", 1); got != nil {
		t.Errorf("evicted symbol still has history: %+v", got)
	}
	if got := b.Last("XRPUSDT", 1); len(got) != 1 || got[0].Price != "3" {
		t.Errorf("Last(XRPUSDT) = %+v", got)
	}
}

func TestNew_InvalidSizes(t *testing.T) {
	if _, err := New(16, 0); err == nil {
		t.Error("New with zero depth succeeded")
	}
	if _, err := New(0, 3); err == nil {
		t.Error("New with zero symbol capacity succeeded")
	}
}

func TestBook_EmptySymbolIgnored(t *testing.T) {
	b, err := New(4, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Record("", Trade{Price: "1"})
	if got := b.Len(); got != 0 {
		t.Errorf("Len = %d, want 0", got)
	}
}
