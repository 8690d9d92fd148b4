package history

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Trade is one recorded trade for a symbol. Price and size stay as the
// venue's strings; parsing them is the consumer's concern.
type Trade struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Side      string `json:"side"`
	Timestamp string `json:"timestamp"`
}

// Book keeps the last N trades per symbol. The set of tracked symbols
// is itself bounded: least recently traded symbols are evicted once the
// limit is reached, so memory stays capped on both axes.
type Book struct {
	mu      sync.Mutex
	depth   int
	symbols *lru.Cache[string, *ring]
}

// New creates a trade book holding up to depth trades for each of up to
// maxSymbols symbols.
func New(maxSymbols, depth int) (*Book, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("history depth must be positive, got %d", depth)
	}
	cache, err := lru.New[string, *ring](maxSymbols)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Book{depth: depth, symbols: cache}, nil
}

// Record appends a trade for symbol, evicting the oldest entry once the
// per-symbol depth is reached.
func (b *Book) Record(symbol string, t Trade) {
	if symbol == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.symbols.Get(symbol)
	if !ok {
		r = newRing(b.depth)
		b.symbols.Add(symbol, r)
	}
	r.push(t)
}

// Last returns up to n most recent trades for symbol, oldest first.
// Unknown symbols return nil.
func (b *Book) Last(symbol string, n int) []Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.symbols.Get(symbol)
	if !ok || n <= 0 {
		return nil
	}
	trades := r.snapshot()
	if len(trades) > n {
		trades = trades[len(trades)-n:]
	}
	return trades
}

// Symbols returns the currently tracked symbols, least recently traded first.
func (b *Book) Symbols() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.symbols.Keys()
}

// Len returns the number of tracked symbols.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.symbols.Len()
}

// ring is a fixed-capacity trade buffer.
type ring struct {
	buf  []Trade
	next int
	full bool
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Trade, capacity)}
}

func (r *ring) push(t Trade) {
	r.buf[r.next] = t
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

// snapshot returns the buffered trades oldest first.
func (r *ring) snapshot() []Trade {
	if !r.full {
		out := make([]Trade, r.next)
		copy(out, r.buf[:r.next])
		return out
	}
	out := make([]Trade, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}
