package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame types
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypeTable       = "table"
)

// Table actions
const (
	ActionPartial = "partial"
	ActionInsert  = "insert"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
)

// ChannelRef names one channel in a subscribe/unsubscribe command.
// Name is the canonical key form: "channel" or "channel:symbol".
type ChannelRef struct {
	Name string `json:"name"`
}

// CommandPayload contains the channels a command applies to.
type CommandPayload struct {
	Channels []ChannelRef `json:"channels"`
}

// Command is an outbound subscribe or unsubscribe frame.
type Command struct {
	Type    string         `json:"type"`
	Payload CommandPayload `json:"payload"`
}

// NewSubscribe creates a subscribe command for the given canonical channel names.
func NewSubscribe(names ...string) *Command {
	return newCommand(TypeSubscribe, names)
}

// NewUnsubscribe creates an unsubscribe command for the given canonical channel names.
func NewUnsubscribe(names ...string) *Command {
	return newCommand(TypeUnsubscribe, names)
}

func newCommand(typ string, names []string) *Command {
	refs := make([]ChannelRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, ChannelRef{Name: name})
	}
	return &Command{Type: typ, Payload: CommandPayload{Channels: refs}}
}

// Bytes returns the command as JSON bytes.
func (c *Command) Bytes() ([]byte, error) {
	return json.Marshal(c)
}

// Message is a decoded inbound frame. Table frames carry a data array
// where each item may embed its own symbol for per-symbol routing.
type Message struct {
	Type   string            `json:"type"`
	Table  string            `json:"table"`
	Action string            `json:"action"`
	Data   []json.RawMessage `json:"data"`
}

// Parse decodes an inbound frame. A frame that is not valid JSON or has
// no type is an error; the caller decides whether that is fatal.
func Parse(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse frame: %w", err)
	}
	if m.Type == "" {
		return nil, errors.New("frame has no type")
	}
	return &m, nil
}

// ItemSymbol extracts the symbol field from a single table data item.
// Returns "" when the item has no symbol (global channel payload).
func ItemSymbol(item json.RawMessage) string {
	var probe struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(item, &probe); err != nil {
		return ""
	}
	return probe.Symbol
}
