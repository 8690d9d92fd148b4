package wire

import (
	"testing"
)

func TestNewSubscribe_WireShape(t *testing.T) {
	frame, err := NewSubscribe("v2/ticker:BTCUSDT").Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := `{"type":"subscribe","payload":{"channels":[{"name":"v2/ticker:BTCUSDT"}]}}`
	if string(frame) != want {
		t.Errorf("frame = %s, want %s", frame, want)
	}
}

func TestNewUnsubscribe_WireShape(t *testing.T) {
	frame, err := NewUnsubscribe("v2/announcements").Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := `{"type":"unsubscribe","payload":{"channels":[{"name":"v2/announcements"}]}}`
	if string(frame) != want {
		t.Errorf("frame = %s, want %s", frame, want)
	}
}

func TestParse_TableFrame(t *testing.T) {
	raw := `{"type":"table","table":"v2/ticker","action":"update","data":[{"symbol":"BTCUSDT","price":"65000.50"},{"symbol":"ETHUSDT","price":"3100.10"}]}`
	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if msg.Type != TypeTable || msg.Table != "v2/ticker" || msg.Action != ActionUpdate {
		t.Errorf("msg = %+v", msg)
	}
	if len(msg.Data) != 2 {
		t.Fatalf("data items = %d, want 2", len(msg.Data))
	}
	if got := ItemSymbol(msg.Data[0]); got != "BTCUSDT" {
		t.Errorf("ItemSymbol(data[0]) = %s, want BTCUSDT", got)
	}
	if got := ItemSymbol(msg.Data[1]); got != "ETHUSDT" {
		t.Errorf("ItemSymbol(data[1]) = %s, want ETHUSDT", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		`{not json at all`,
		``,
		`42`,
		`{}`,            // no type
		`{"table":"x"}`, // still no type
	}
	for _, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", raw)
		}
	}
}

func TestItemSymbol_Missing(t *testing.T) {
	if got := ItemSymbol([]byte(`{"price":"65000.50"}`)); got != "" {
		t.Errorf("ItemSymbol = %q, want empty", got)
	}
	if got := ItemSymbol([]byte(`not json`)); got != "" {
		t.Errorf("ItemSymbol on garbage = %q, want empty", got)
	}
}
